package forecast

import (
	"math"
	"sort"
	"time"
)

// Window is a maximal contiguous run of hours at label "ok" or better.
// Windows are derived per request and never persisted.
type Window struct {
	Start      time.Time     `json:"start"`
	End        time.Time     `json:"end"`
	AvgScore   int           `json:"avg_score"`
	Hours      []ScoredHour  `json:"-"`
	Highlights []ReasonCount `json:"highlights"`
}

// ReasonCount is a reason code pooled across a window's member hours.
type ReasonCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// Analysis is the full derivation from a scored hourly sequence.
type Analysis struct {
	Windows []Window     `json:"windows"`
	Best    *Window      `json:"best,omitempty"`
	Chart   []ChartPoint `json:"chart"`
}

// Analyze partitions chronologically ordered scored hours into maximal runs
// of label >= ok. A single poor hour breaks a run - no gap smoothing.
// Windows are returned ranked by average score descending; ties go to the
// earlier start, then scan order, so reruns on unchanged input are stable.
func Analyze(hours []ScoredHour) Analysis {
	a := Analysis{Chart: make([]ChartPoint, 0, len(hours))}
	for _, h := range hours {
		a.Chart = append(a.Chart, ChartPoint{Time: h.Time, Score: h.Score})
	}

	var run []ScoredHour
	flush := func() {
		if len(run) > 0 {
			a.Windows = append(a.Windows, buildWindow(run))
			run = nil
		}
	}
	for _, h := range hours {
		if !h.Label.AtLeast(LabelOK) {
			flush()
			continue
		}
		// A gap in the hourly sequence (filtered buckets, missing data)
		// ends the run just like a poor hour does.
		if len(run) > 0 && h.Time.Sub(run[len(run)-1].Time) > time.Hour {
			flush()
		}
		run = append(run, h)
	}
	flush()

	sort.SliceStable(a.Windows, func(i, j int) bool {
		if a.Windows[i].AvgScore != a.Windows[j].AvgScore {
			return a.Windows[i].AvgScore > a.Windows[j].AvgScore
		}
		return a.Windows[i].Start.Before(a.Windows[j].Start)
	})

	if len(a.Windows) > 0 {
		a.Best = &a.Windows[0]
	}
	return a
}

// buildWindow aggregates a run of hours into a Window. The average score
// uses the same integer precision as individual scores.
func buildWindow(run []ScoredHour) Window {
	sum := 0
	counts := map[string]int{}
	for _, h := range run {
		sum += h.Score
		for _, r := range h.Reasons {
			counts[r]++
		}
	}

	highlights := make([]ReasonCount, 0, len(counts))
	for code, n := range counts {
		highlights = append(highlights, ReasonCount{Code: code, Count: n})
	}
	sort.Slice(highlights, func(i, j int) bool {
		if highlights[i].Count != highlights[j].Count {
			return highlights[i].Count > highlights[j].Count
		}
		return highlights[i].Code < highlights[j].Code
	})

	hours := make([]ScoredHour, len(run))
	copy(hours, run)

	return Window{
		Start:      run[0].Time,
		End:        run[len(run)-1].Time.Add(time.Hour),
		AvgScore:   int(math.Round(float64(sum) / float64(len(run)))),
		Hours:      hours,
		Highlights: highlights,
	}
}
