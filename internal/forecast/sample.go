// Package forecast turns raw hourly marine samples into suitability scores
// and contiguous "good windows". Scoring and window analysis are pure -
// same input, same output - so they are safe to run in parallel across spots.
package forecast

import "time"

// --------------------------------------------------------------------------
// Labels
// --------------------------------------------------------------------------

// Label classifies an hour's suitability. Ordering: poor < ok < good < epic.
type Label string

const (
	LabelPoor Label = "poor"
	LabelOK   Label = "ok"
	LabelGood Label = "good"
	LabelEpic Label = "epic"
)

// Fixed score cut points. Boundaries are inclusive toward the higher label.
const (
	EpicThreshold = 85
	GoodThreshold = 70
	OKThreshold   = 50
)

// LabelFor maps a score to its label.
func LabelFor(score int) Label {
	switch {
	case score >= EpicThreshold:
		return LabelEpic
	case score >= GoodThreshold:
		return LabelGood
	case score >= OKThreshold:
		return LabelOK
	default:
		return LabelPoor
	}
}

// Rank returns the label's position in the poor..epic ordering.
func (l Label) Rank() int {
	switch l {
	case LabelEpic:
		return 3
	case LabelGood:
		return 2
	case LabelOK:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether l is at or above other in the label ordering.
func (l Label) AtLeast(other Label) bool {
	return l.Rank() >= other.Rank()
}

// --------------------------------------------------------------------------
// Samples
// --------------------------------------------------------------------------

// HourlySample is one raw hour of environmental data from the forecast
// provider, optionally enriched with tide height from the tide cache.
// Immutable once produced.
type HourlySample struct {
	Time           time.Time `json:"time"`
	SwellHeight    float64   `json:"swell_height"`    // meters
	SwellDirection float64   `json:"swell_direction"` // degrees, origin bearing
	SwellPeriod    float64   `json:"swell_period"`    // seconds
	WindSpeed      float64   `json:"wind_speed"`      // knots
	WindDirection  float64   `json:"wind_direction"`  // degrees, origin bearing
	WaveHeight     float64   `json:"wave_height"`     // meters
	TideHeight     *float64  `json:"tide_height,omitempty"` // meters above datum
	WaveEnergy     *float64  `json:"wave_energy,omitempty"` // kW/m
}

// ScoredHour is an HourlySample plus its derived score, label, and the top
// reason codes that drove the score. Recomputed whenever the sample changes;
// never cached independently of its source sample.
type ScoredHour struct {
	HourlySample
	Score   int       `json:"score"`
	Label   Label     `json:"label"`
	Reasons []string  `json:"reasons"`
	Wind    WindClass `json:"wind"`
}

// ChartPoint is one (time, score) pair for UI chart series.
type ChartPoint struct {
	Time  time.Time `json:"time"`
	Score int       `json:"score"`
}
