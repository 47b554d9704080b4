package models

// Verdict is the stored classification of one frame against its successor.
type Verdict struct {
	ID           int64   `json:"id"`
	RunID        string  `json:"run_id"`
	FrameIndex   int     `json:"frame_index"`
	Filename     string  `json:"filename"`
	NextFilename string  `json:"next_filename"`
	Category     string  `json:"category"`
	Discarded    bool    `json:"discarded"`
	Probability  float64 `json:"probability"`
	Score        float64 `json:"score"`
	Regions      int     `json:"regions"`
	TotalRegions int     `json:"total_regions"`
	HashDistance int     `json:"hash_distance"`
}
