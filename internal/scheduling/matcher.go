package scheduling

import (
	"time"

	"github.com/swellwatch/swellwatch/internal/forecast"
)

// Time-of-day bucket boundaries, local hours. Start inclusive, end exclusive.
const (
	morningStart   = 5
	middayStart    = 9
	afternoonStart = 14
	afternoonEnd   = 18
)

// Swell-height bands implying board-style fit, meters.
const (
	longboardMaxHeight  = 1.5
	shortboardMinHeight = 1.0
)

// BucketFor returns the time window containing a local hour, or "" when the
// hour falls outside all buckets.
func BucketFor(localHour int) TimeWindow {
	switch {
	case localHour >= morningStart && localHour < middayStart:
		return Morning
	case localHour >= middayStart && localHour < afternoonStart:
		return Midday
	case localHour >= afternoonStart && localHour < afternoonEnd:
		return Afternoon
	default:
		return ""
	}
}

// Match returns the windows in the scored sequence that qualify for the
// scheduling's preferences: hours are filtered to the selected time buckets
// (evaluated in loc), re-partitioned into windows, then windows failing
// min_score, min_energy, wind preference, or surf style are dropped.
// An empty result means "no good session" - a normal outcome, not an error.
func Match(prefs Preferences, hours []forecast.ScoredHour, loc *time.Location) []forecast.Window {
	selected := make(map[TimeWindow]bool, len(prefs.TimeWindows))
	for _, tw := range prefs.TimeWindows {
		selected[tw] = true
	}

	filtered := make([]forecast.ScoredHour, 0, len(hours))
	for _, h := range hours {
		if selected[BucketFor(h.Time.In(loc).Hour())] {
			filtered = append(filtered, h)
		}
	}

	var out []forecast.Window
	for _, w := range forecast.Analyze(filtered).Windows {
		if qualifies(prefs, w) {
			out = append(out, w)
		}
	}
	return out
}

// NextDayBest returns the single best qualifying window falling on the next
// local calendar day, or nil. The result is meant to overwrite the
// scheduling's cached summary wholesale.
func NextDayBest(prefs Preferences, hours []forecast.ScoredHour, now time.Time, loc *time.Location) *forecast.Window {
	nextDay := now.In(loc).AddDate(0, 0, 1)
	y, m, d := nextDay.Date()

	var tomorrow []forecast.ScoredHour
	for _, h := range hours {
		hy, hm, hd := h.Time.In(loc).Date()
		if hy == y && hm == m && hd == d {
			tomorrow = append(tomorrow, h)
		}
	}

	wins := Match(prefs, tomorrow, loc)
	if len(wins) == 0 {
		return nil
	}
	return &wins[0]
}

func qualifies(prefs Preferences, w forecast.Window) bool {
	if w.AvgScore < prefs.MinScore {
		return false
	}
	if !energyQualifies(prefs.MinEnergy, w) {
		return false
	}
	if !windQualifies(prefs.WindPreference, w) {
		return false
	}
	return styleQualifies(prefs.SurfStyle, w)
}

// energyQualifies checks mean wave energy over the hours that carry energy
// data. Missing energy data degrades to a pass - the provider term is
// optional and must never turn into a hard filter.
func energyQualifies(minEnergy float64, w forecast.Window) bool {
	if minEnergy <= 0 {
		return true
	}
	var sum float64
	n := 0
	for _, h := range w.Hours {
		if h.WaveEnergy != nil {
			sum += *h.WaveEnergy
			n++
		}
	}
	if n == 0 {
		return true
	}
	return sum/float64(n) >= minEnergy
}

// windQualifies checks the window's dominant wind character. "offshore"
// requires offshore to be the most common hourly classification; "light"
// requires the mean wind speed to stay under 8 kt.
func windQualifies(pref WindPreference, w forecast.Window) bool {
	switch pref {
	case AnyWind, "":
		return true
	case PreferLight:
		var sum float64
		for _, h := range w.Hours {
			sum += h.WindSpeed
		}
		return sum/float64(len(w.Hours)) < 8
	default: // PreferOffshore
		offshore := 0
		for _, h := range w.Hours {
			if h.Wind == forecast.WindOffshore {
				offshore++
			}
		}
		return offshore*2 > len(w.Hours)
	}
}

// styleQualifies checks the implied board fit from the window's mean swell
// height: longboards want it under 1.5 m, shortboards over 1.0 m.
func styleQualifies(style SurfStyle, w forecast.Window) bool {
	if style == AnyStyle || style == "" {
		return true
	}
	var sum float64
	for _, h := range w.Hours {
		sum += h.SwellHeight
	}
	mean := sum / float64(len(w.Hours))

	if style == Longboard {
		return mean <= longboardMaxHeight
	}
	return mean >= shortboardMinHeight
}
