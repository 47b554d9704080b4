package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"framepruner/internal/detection"
)

type Config struct {
	ImageDirectory  string
	ImageExtensions []string // Empty means every regular file in the directory
	BlurRadii       []int
	Border          detection.BorderSpec
	MinContourArea  float64
	Thresholds      detection.Thresholds
	Workers         int
	DryRun          bool
	TrashDirectory  string // Discarded frames are moved here instead of deleted
	RecordHash      bool
	DBPath          string
	LogDirectory    string
	Verbose         bool
	ListenAddr      string
	APIToken        string
	Serve           bool // Keep the progress server up after the run
}

// Load reads .env (if present) and the environment, falling back to defaults.
func Load() *Config {
	_ = godotenv.Load()

	defaults := detection.DefaultThresholds()
	return &Config{
		ImageDirectory:  getEnv("IMAGE_DIR", ""),
		ImageExtensions: getEnvAsList("IMAGE_EXTENSIONS", nil),
		BlurRadii:       getEnvAsIntList("BLUR_RADII", detection.DefaultBlurRadii),
		Border:          getEnvAsBorder("BORDER_MASK", detection.DefaultBorder),
		MinContourArea:  getEnvAsFloat("MIN_CONTOUR_AREA", detection.DefaultMinArea),
		Thresholds: detection.Thresholds{
			MinRegions:          getEnvAsInt("MIN_LEN_CONT", defaults.MinRegions),
			MinProbability:      getEnvAsFloat("MIN_PROB", defaults.MinProbability),
			MinorRegions:        getEnvAsInt("MINOR_CONT", defaults.MinorRegions),
			MinorProbability:    getEnvAsFloat("MINOR_PROB", defaults.MinorProbability),
			PersonRegions:       getEnvAsInt("PERSON_CONT", defaults.PersonRegions),
			PersonProbability:   getEnvAsFloat("PERSON_PROB", defaults.PersonProbability),
			InFrontRegions:      getEnvAsInt("INFRONT_CONT", defaults.InFrontRegions),
			InFrontProbability:  getEnvAsFloat("INFRONT_PROB", defaults.InFrontProbability),
			CarRegions:          getEnvAsInt("CAR_CONT", defaults.CarRegions),
			CarProbability:      getEnvAsFloat("CAR_PROB", defaults.CarProbability),
			ClimaticRegions:     getEnvAsInt("CLIMATIC_CONT", defaults.ClimaticRegions),
			ClimaticProbability: getEnvAsFloat("CLIMATIC_PROB", defaults.ClimaticProbability),
		},
		Workers:        getEnvAsInt("PROCESSING_WORKERS", 1),
		DryRun:         getEnvAsBool("DRY_RUN", false),
		TrashDirectory: getEnv("TRASH_DIR", ""),
		RecordHash:     getEnvAsBool("RECORD_HASH", false),
		DBPath:         getEnv("DB_PATH", ""),
		LogDirectory:   getEnv("LOG_DIR", ""),
		Verbose:        getEnvAsBool("VERBOSE", false),
		ListenAddr:     getEnv("LISTEN_ADDR", ""),
		APIToken:       getEnv("API_TOKEN", ""),
		Serve:          getEnvAsBool("SERVE", false),
	}
}

// BindFlags registers command-line flags that override the loaded values.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.ImageDirectory, "path", c.ImageDirectory, "path to the image directory")
	fs.Func("ext", "comma-separated image extensions to include (default: all files)", func(s string) error {
		c.ImageExtensions = splitList(s)
		return nil
	})
	fs.Func("blur", "comma-separated Gaussian blur kernel sizes (default \"3,5\")", func(s string) error {
		radii, err := parseIntList(s)
		if err != nil {
			return err
		}
		c.BlurRadii = radii
		return nil
	})
	fs.Func("border", "left,top,right,bottom border mask in percent (default \"5,10,5,0\")", func(s string) error {
		b, err := parseBorder(s)
		if err != nil {
			return err
		}
		c.Border = b
		return nil
	})
	fs.Float64Var(&c.MinContourArea, "min_area", c.MinContourArea, "minimum contour area in pixels")

	t := &c.Thresholds
	fs.IntVar(&t.MinRegions, "min_len_cont", t.MinRegions, "region count treated as no observable change")
	fs.Float64Var(&t.MinProbability, "min_prob", t.MinProbability, "change probability treated as no observable change")
	fs.IntVar(&t.MinorRegions, "minor_cont", t.MinorRegions, "region count for minor (sunlight) changes")
	fs.Float64Var(&t.MinorProbability, "minor_prob", t.MinorProbability, "minimum probability for minor (sunlight) changes")
	fs.IntVar(&t.PersonRegions, "person_cont", t.PersonRegions, "region count for a person or similar")
	fs.Float64Var(&t.PersonProbability, "person_prob", t.PersonProbability, "probability for a person or similar")
	fs.IntVar(&t.InFrontRegions, "infront_cont", t.InFrontRegions, "region count for something in front of the camera")
	fs.Float64Var(&t.InFrontProbability, "infront_prob", t.InFrontProbability, "probability for something in front of the camera")
	fs.IntVar(&t.CarRegions, "car_cont", t.CarRegions, "region count for a car entering or leaving")
	fs.Float64Var(&t.CarProbability, "car_prob", t.CarProbability, "probability for a car entering or leaving")
	fs.IntVar(&t.ClimaticRegions, "climatic_cont", t.ClimaticRegions, "region count for climatic changes")
	fs.Float64Var(&t.ClimaticProbability, "climatic_prob", t.ClimaticProbability, "probability for climatic changes")

	fs.IntVar(&c.Workers, "workers", c.Workers, "number of frame pairs scored concurrently")
	fs.BoolVar(&c.DryRun, "dry_run", c.DryRun, "report discards without touching files")
	fs.StringVar(&c.TrashDirectory, "trash", c.TrashDirectory, "move discarded frames here instead of deleting them")
	fs.BoolVar(&c.RecordHash, "hash", c.RecordHash, "record perceptual hash distance for every pair")
	fs.StringVar(&c.DBPath, "db", c.DBPath, "SQLite database for run history (disabled when empty)")
	fs.StringVar(&c.LogDirectory, "log_dir", c.LogDirectory, "directory for log files (console only when empty)")
	fs.BoolVar(&c.Verbose, "v", c.Verbose, "log every comparison")
	fs.StringVar(&c.ListenAddr, "listen", c.ListenAddr, "address for the progress server, e.g. :8080 (disabled when empty)")
	fs.StringVar(&c.APIToken, "token", c.APIToken, "bearer token required by the progress server")
	fs.BoolVar(&c.Serve, "serve", c.Serve, "keep the progress server running after the run")
}

// Validate checks every setting the run depends on.
func (c *Config) Validate() error {
	if c.ImageDirectory == "" {
		return errors.New("image directory is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Serve && c.ListenAddr == "" {
		return errors.New("serve requires a listen address")
	}
	return c.Detector().Validate()
}

// Detector builds the frame detector described by the configuration.
func (c *Config) Detector() *detection.Detector {
	radii := make([]int, len(c.BlurRadii))
	copy(radii, c.BlurRadii)
	return &detection.Detector{
		Preprocessor: detection.Preprocessor{BlurRadii: radii, Border: c.Border},
		MinArea:      c.MinContourArea,
		Thresholds:   c.Thresholds,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return splitList(value)
	}
	return defaultValue
}

func getEnvAsIntList(key string, defaultValue []int) []int {
	if value := os.Getenv(key); value != "" {
		if list, err := parseIntList(value); err == nil {
			return list
		}
	}
	return append([]int(nil), defaultValue...)
}

func getEnvAsBorder(key string, defaultValue detection.BorderSpec) detection.BorderSpec {
	if value := os.Getenv(key); value != "" {
		if b, err := parseBorder(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseIntList(s string) ([]int, error) {
	var out []int
	for _, part := range splitList(s) {
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", part)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseBorder(s string) (detection.BorderSpec, error) {
	parts := splitList(s)
	if len(parts) != 4 {
		return detection.BorderSpec{}, fmt.Errorf("border needs 4 values, got %d", len(parts))
	}
	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return detection.BorderSpec{}, fmt.Errorf("invalid border value %q", part)
		}
		v[i] = f
	}
	return detection.BorderSpec{Left: v[0], Top: v[1], Right: v[2], Bottom: v[3]}, nil
}
