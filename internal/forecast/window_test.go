package forecast

import (
	"testing"
	"time"
)

// scoredAt builds a minimal ScoredHour at base+offset hours with the given
// score and reasons.
func scoredAt(base time.Time, offset, score int, reasons ...string) ScoredHour {
	return ScoredHour{
		HourlySample: HourlySample{Time: base.Add(time.Duration(offset) * time.Hour)},
		Score:        score,
		Label:        LabelFor(score),
		Reasons:      reasons,
	}
}

func TestAnalyzePoorHourSplitsWindows(t *testing.T) {
	base := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	hours := []ScoredHour{
		scoredAt(base, 0, 60),
		scoredAt(base, 1, 72),
		scoredAt(base, 2, 30), // poor hour breaks the run
		scoredAt(base, 3, 80),
		scoredAt(base, 4, 90),
	}

	a := Analyze(hours)
	if len(a.Windows) != 2 {
		t.Fatalf("got %d windows, want 2", len(a.Windows))
	}

	// Ranked by average score descending: the later run (85) first.
	first := a.Windows[0]
	if !first.Start.Equal(base.Add(3 * time.Hour)) {
		t.Errorf("best window starts %v, want %v", first.Start, base.Add(3*time.Hour))
	}
	if first.AvgScore != 85 {
		t.Errorf("best window avg = %d, want 85", first.AvgScore)
	}
	if !first.End.Equal(base.Add(5 * time.Hour)) {
		t.Errorf("best window ends %v, want %v", first.End, base.Add(5*time.Hour))
	}

	second := a.Windows[1]
	if second.AvgScore != 66 {
		t.Errorf("second window avg = %d, want 66", second.AvgScore)
	}

	if a.Best == nil || a.Best.AvgScore != 85 {
		t.Errorf("Best = %+v, want the 85 window", a.Best)
	}
}

func TestAnalyzeHourGapSplitsWindows(t *testing.T) {
	base := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	hours := []ScoredHour{
		scoredAt(base, 0, 60),
		scoredAt(base, 1, 60),
		// two-hour hole in the sequence
		scoredAt(base, 4, 60),
		scoredAt(base, 5, 60),
	}

	a := Analyze(hours)
	if len(a.Windows) != 2 {
		t.Fatalf("got %d windows across a gap, want 2", len(a.Windows))
	}
}

func TestAnalyzeTieBreaksOnEarlierStart(t *testing.T) {
	base := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	hours := []ScoredHour{
		scoredAt(base, 0, 70),
		scoredAt(base, 1, 20),
		scoredAt(base, 2, 70),
	}

	a := Analyze(hours)
	if len(a.Windows) != 2 {
		t.Fatalf("got %d windows, want 2", len(a.Windows))
	}
	if !a.Windows[0].Start.Equal(base) {
		t.Errorf("equal-score tie must go to the earlier window, got start %v", a.Windows[0].Start)
	}
}

func TestAnalyzeAllPoorYieldsNoWindows(t *testing.T) {
	base := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	a := Analyze([]ScoredHour{
		scoredAt(base, 0, 10),
		scoredAt(base, 1, 49),
	})
	if len(a.Windows) != 0 {
		t.Errorf("got %d windows from all-poor hours, want 0", len(a.Windows))
	}
	if a.Best != nil {
		t.Errorf("Best = %+v, want nil", a.Best)
	}
	if len(a.Chart) != 2 {
		t.Errorf("chart has %d points, want 2 (all hours, poor included)", len(a.Chart))
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	a := Analyze(nil)
	if len(a.Windows) != 0 || a.Best != nil {
		t.Errorf("empty input: windows=%d best=%v, want none", len(a.Windows), a.Best)
	}
}

func TestWindowHighlightsOrdering(t *testing.T) {
	base := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	hours := []ScoredHour{
		scoredAt(base, 0, 75, ReasonSwellAligned, ReasonWindOffshore),
		scoredAt(base, 1, 75, ReasonSwellAligned, ReasonPeriodClean),
		scoredAt(base, 2, 75, ReasonSwellAligned, ReasonWindOffshore),
	}

	a := Analyze(hours)
	if len(a.Windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(a.Windows))
	}

	hl := a.Windows[0].Highlights
	want := []ReasonCount{
		{Code: ReasonSwellAligned, Count: 3},
		{Code: ReasonWindOffshore, Count: 2},
		{Code: ReasonPeriodClean, Count: 1},
	}
	if len(hl) != len(want) {
		t.Fatalf("got %d highlights, want %d", len(hl), len(want))
	}
	for i := range want {
		if hl[i] != want[i] {
			t.Errorf("highlight[%d] = %+v, want %+v", i, hl[i], want[i])
		}
	}
}
