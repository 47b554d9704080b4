package detection

import "testing"

func TestSummary_AddAndMerge(t *testing.T) {
	verdicts := []Verdict{
		{Category: NoChange, Discard: true},
		{Category: Person},
		{Category: Climatic, Discard: true},
		{Category: Car},
		{Category: NoChange, Discard: true},
	}

	var a, b Summary
	for i, v := range verdicts {
		if i%2 == 0 {
			a.Add(v)
		} else {
			b.Add(v)
		}
	}

	var total Summary
	total.Merge(a)
	total.Merge(b)

	if total.Compared != len(verdicts) {
		t.Errorf("Expected %d compared, got %d", len(verdicts), total.Compared)
	}
	if total.Discarded != 3 {
		t.Errorf("Expected 3 discarded, got %d", total.Discarded)
	}
	if total.Count(NoChange) != 2 || total.Count(Person) != 1 || total.Count(MinorSunlight) != 0 {
		t.Errorf("Unexpected counts: %v", total.Counts)
	}

	sum := 0
	for _, c := range Categories {
		sum += total.Count(c)
	}
	if sum != total.Compared {
		t.Errorf("Category counts sum to %d, expected %d", sum, total.Compared)
	}

	frames := len(verdicts) + 1
	if kept := total.Kept(frames); kept != 3 {
		t.Errorf("Expected 3 kept, got %d", kept)
	}
	if pct := total.DiscardedPercent(frames); pct != 50 {
		t.Errorf("Expected 50%% discarded, got %f", pct)
	}
}

func TestSummary_Empty(t *testing.T) {
	var s Summary
	if s.Count(Car) != 0 {
		t.Error("Expected zero count on empty summary")
	}
	if s.DiscardedPercent(0) != 0 {
		t.Error("Expected zero percent for no frames")
	}
}
