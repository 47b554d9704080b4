package detection

// Summary accumulates verdicts over a run. The zero value is ready to use.
type Summary struct {
	Counts    map[Category]int `json:"counts"`
	Compared  int              `json:"compared"`
	Discarded int              `json:"discarded"`
}

// Add folds one verdict into the summary.
func (s *Summary) Add(v Verdict) {
	if s.Counts == nil {
		s.Counts = make(map[Category]int, len(Categories))
	}
	s.Counts[v.Category]++
	s.Compared++
	if v.Discard {
		s.Discarded++
	}
}

// Merge adds the counts of other into s.
func (s *Summary) Merge(other Summary) {
	if s.Counts == nil {
		s.Counts = make(map[Category]int, len(Categories))
	}
	for c, n := range other.Counts {
		s.Counts[c] += n
	}
	s.Compared += other.Compared
	s.Discarded += other.Discarded
}

// Count returns how many verdicts fell into c.
func (s Summary) Count(c Category) int {
	return s.Counts[c]
}

// Kept returns the number of frames retained out of frames total, the last
// frame included.
func (s Summary) Kept(frames int) int {
	return frames - s.Discarded
}

// DiscardedPercent is the share of all frames in the sequence that was
// discarded, in percent.
func (s Summary) DiscardedPercent(frames int) float64 {
	if frames == 0 {
		return 0
	}
	return float64(s.Discarded) / float64(frames) * 100
}
