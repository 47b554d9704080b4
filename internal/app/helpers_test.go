package app

import (
	"framepruner/internal/config"
	"framepruner/internal/detection"
)

type configBuilder struct {
	dir    string
	dbPath string
}

func (b *configBuilder) build() *config.Config {
	return &config.Config{
		ImageDirectory: b.dir,
		BlurRadii:      detection.DefaultBlurRadii,
		Border:         detection.DefaultBorder,
		MinContourArea: detection.DefaultMinArea,
		Thresholds:     detection.DefaultThresholds(),
		Workers:        2,
		DBPath:         b.dbPath,
	}
}
