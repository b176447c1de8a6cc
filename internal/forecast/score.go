package forecast

import (
	"math"
	"sort"

	"github.com/swellwatch/swellwatch/internal/spot"
)

// --------------------------------------------------------------------------
// Scoring weights and reason codes
// --------------------------------------------------------------------------

// Fixed factor weights. When the tide term is absent (no tide data or no
// tide preference on the spot) the remaining weights are renormalized.
const (
	weightSwellDirection = 0.30
	weightSwellHeight    = 0.25
	weightWind           = 0.20
	weightSwellPeriod    = 0.15
	weightTide           = 0.10
)

// Reason codes, one favorable and one unfavorable per factor. The scored
// hour carries the top reasonCap codes ranked by absolute weighted
// contribution; that ordering is part of the contract, not incidental.
const (
	ReasonSwellAligned    = "swell_aligned"
	ReasonSwellOffAngle   = "swell_off_angle"
	ReasonSwellSizeIdeal  = "swell_size_ideal"
	ReasonSwellSizeOff    = "swell_size_off"
	ReasonPeriodClean     = "period_clean"
	ReasonPeriodWeak      = "period_weak"
	ReasonWindOffshore    = "wind_offshore"
	ReasonWindCross       = "wind_cross"
	ReasonWindOnshore     = "wind_onshore"
	ReasonTideFavorable   = "tide_favorable"
	ReasonTideUnfavorable = "tide_unfavorable"
)

const reasonCap = 3

// neutralRating is the factor rating that contributes nothing either way.
const neutralRating = 50.0

// --------------------------------------------------------------------------
// Wind classification
// --------------------------------------------------------------------------

// WindClass buckets wind direction relative to a spot's offshore bearing.
type WindClass string

const (
	WindOffshore WindClass = "offshore"
	WindCross    WindClass = "cross"
	WindOnshore  WindClass = "onshore"
)

// ClassifyWind buckets a wind origin bearing against the spot's offshore
// bearing: within 45° is offshore, within 135° is cross, beyond is onshore.
func ClassifyWind(windDir, offshoreDir float64) WindClass {
	d := angularDistance(windDir, offshoreDir)
	switch {
	case d <= 45:
		return WindOffshore
	case d <= 135:
		return WindCross
	default:
		return WindOnshore
	}
}

// --------------------------------------------------------------------------
// Scoring engine
// --------------------------------------------------------------------------

// factor is one weighted scoring term with its chosen reason code.
type factor struct {
	code         string
	contribution float64 // weight * (rating - neutral), signed
}

// Score converts one hourly sample into a scored hour for the given spot.
// Pure and deterministic: no clock, no I/O, no randomness. A sample missing
// tide data never fails - the tide term is dropped and the remaining
// weights renormalized.
func Score(sample HourlySample, profile *spot.Profile) ScoredHour {
	var factors []factor
	var weighted, totalWeight float64

	add := func(weight, rating float64, favorable, unfavorable string) {
		weighted += weight * rating
		totalWeight += weight
		code := favorable
		if rating < neutralRating {
			code = unfavorable
		}
		factors = append(factors, factor{
			code:         code,
			contribution: weight * (rating - neutralRating),
		})
	}

	add(weightSwellDirection,
		directionRating(sample.SwellDirection, profile.SwellDirections),
		ReasonSwellAligned, ReasonSwellOffAngle)

	add(weightSwellHeight,
		rangeRating(sample.SwellHeight, profile.SwellHeightMin, profile.SwellHeightMax),
		ReasonSwellSizeIdeal, ReasonSwellSizeOff)

	windClass := ClassifyWind(sample.WindDirection, profile.OffshoreWindDir)
	add(weightWind,
		windRating(windClass, sample.WindSpeed),
		windReason(windClass), windReason(windClass))

	add(weightSwellPeriod,
		rangeRating(sample.SwellPeriod, profile.SwellPeriodMin, profile.SwellPeriodMax),
		ReasonPeriodClean, ReasonPeriodWeak)

	if sample.TideHeight != nil && profile.WantsTide() {
		add(weightTide,
			rangeRating(*sample.TideHeight, profile.TideIdealMin, profile.TideIdealMax),
			ReasonTideFavorable, ReasonTideUnfavorable)
	}

	score := clampScore(int(math.Round(weighted / totalWeight)))

	return ScoredHour{
		HourlySample: sample,
		Score:        score,
		Label:        LabelFor(score),
		Reasons:      topReasons(factors),
		Wind:         windClass,
	}
}

// topReasons ranks factors by absolute weighted contribution, descending.
// The stable sort preserves factor declaration order on ties.
func topReasons(factors []factor) []string {
	sort.SliceStable(factors, func(i, j int) bool {
		return math.Abs(factors[i].contribution) > math.Abs(factors[j].contribution)
	})
	n := len(factors)
	if n > reasonCap {
		n = reasonCap
	}
	reasons := make([]string, 0, n)
	for _, f := range factors[:n] {
		reasons = append(reasons, f.code)
	}
	return reasons
}

func windReason(class WindClass) string {
	switch class {
	case WindOffshore:
		return ReasonWindOffshore
	case WindCross:
		return ReasonWindCross
	default:
		return ReasonWindOnshore
	}
}

// --------------------------------------------------------------------------
// Factor ratings - each maps raw conditions onto a 0..100 scale
// --------------------------------------------------------------------------

// rangeRating is 100 inside [min, max] and decays linearly outside,
// reaching 0 one full range-width beyond either bound.
func rangeRating(v, min, max float64) float64 {
	width := max - min
	if width <= 0 {
		width = 1
	}
	var overshoot float64
	switch {
	case v < min:
		overshoot = min - v
	case v > max:
		overshoot = v - max
	default:
		return 100
	}
	return clampRating(100 - 100*overshoot/width)
}

// directionRating scores the swell origin against the spot's preferred
// bearings: full marks within 22.5° of any of them, falling to zero at 90°.
func directionRating(dir float64, preferred []float64) float64 {
	if len(preferred) == 0 {
		return neutralRating
	}
	best := 360.0
	for _, p := range preferred {
		if d := angularDistance(dir, p); d < best {
			best = d
		}
	}
	if best <= 22.5 {
		return 100
	}
	return clampRating(100 - (best-22.5)*(100/67.5))
}

// windRating rewards offshore wind and penalizes cross/onshore wind in
// proportion to speed. Anything under 5 kt is near-glassy regardless of
// direction.
func windRating(class WindClass, speed float64) float64 {
	var r float64
	switch class {
	case WindOffshore:
		r = 95
		if speed > 18 {
			r -= (speed - 18) * 3
		}
	case WindCross:
		r = 65 - speed*1.5
	default:
		r = 45 - speed*2.5
	}
	if speed < 5 && r < 75 {
		r = 75
	}
	return clampRating(r)
}

// angularDistance returns the smallest angle between two bearings,
// wrapped at 360°.
func angularDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

func clampRating(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
