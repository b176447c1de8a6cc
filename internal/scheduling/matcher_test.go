package scheduling

import (
	"testing"
	"time"

	"github.com/swellwatch/swellwatch/internal/forecast"
)

func hourAt(day time.Time, localHour, score int) forecast.ScoredHour {
	return forecast.ScoredHour{
		HourlySample: forecast.HourlySample{
			Time: time.Date(day.Year(), day.Month(), day.Day(), localHour, 0, 0, 0, day.Location()),
		},
		Score: score,
		Label: forecast.LabelFor(score),
	}
}

func basePrefs() Preferences {
	return Preferences{
		DaysAhead:      1,
		TimeWindows:    []TimeWindow{Morning, Midday, Afternoon},
		MinScore:       50,
		SurfStyle:      AnyStyle,
		WindPreference: AnyWind,
	}
}

func TestBucketFor(t *testing.T) {
	tests := []struct {
		hour int
		want TimeWindow
	}{
		{4, ""}, {5, Morning}, {8, Morning},
		{9, Midday}, {13, Midday},
		{14, Afternoon}, {17, Afternoon},
		{18, ""}, {23, ""},
	}
	for _, tt := range tests {
		if got := BucketFor(tt.hour); got != tt.want {
			t.Errorf("BucketFor(%d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestMatchMinScoreFiltersWindows(t *testing.T) {
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	hours := []forecast.ScoredHour{
		hourAt(day, 6, 60),
		hourAt(day, 7, 70), // morning window avg 65
		hourAt(day, 10, 80),
		hourAt(day, 11, 90), // midday window avg 85
	}

	prefs := basePrefs()
	prefs.MinScore = 70

	wins := Match(prefs, hours, time.UTC)
	if len(wins) != 1 {
		t.Fatalf("got %d windows, want 1 (avg-65 morning window filtered)", len(wins))
	}
	if wins[0].AvgScore != 85 {
		t.Errorf("surviving window avg = %d, want 85", wins[0].AvgScore)
	}
}

func TestMatchBucketFilteringSplitsRuns(t *testing.T) {
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	// Continuous good conditions 07:00-15:00, but only morning and afternoon
	// buckets selected: the midday hole must split the run in two.
	var hours []forecast.ScoredHour
	for h := 7; h <= 15; h++ {
		hours = append(hours, hourAt(day, h, 75))
	}

	prefs := basePrefs()
	prefs.TimeWindows = []TimeWindow{Morning, Afternoon}

	wins := Match(prefs, hours, time.UTC)
	if len(wins) != 2 {
		t.Fatalf("got %d windows, want 2 (runs must not bridge the midday hole)", len(wins))
	}
}

func TestMatchWindPreferences(t *testing.T) {
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	makeHours := func(windSpeed float64, class forecast.WindClass) []forecast.ScoredHour {
		var out []forecast.ScoredHour
		for h := 6; h <= 8; h++ {
			sh := hourAt(day, h, 80)
			sh.WindSpeed = windSpeed
			sh.Wind = class
			out = append(out, sh)
		}
		return out
	}

	tests := []struct {
		name  string
		pref  WindPreference
		hours []forecast.ScoredHour
		want  int
	}{
		{"light pass", PreferLight, makeHours(5, forecast.WindOnshore), 1},
		{"light fail", PreferLight, makeHours(12, forecast.WindOffshore), 0},
		{"offshore pass", PreferOffshore, makeHours(12, forecast.WindOffshore), 1},
		{"offshore fail", PreferOffshore, makeHours(4, forecast.WindCross), 0},
		{"any wind", AnyWind, makeHours(25, forecast.WindOnshore), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := basePrefs()
			prefs.WindPreference = tt.pref
			if got := len(Match(prefs, tt.hours, time.UTC)); got != tt.want {
				t.Errorf("got %d windows, want %d", got, tt.want)
			}
		})
	}
}

func TestMatchSurfStyle(t *testing.T) {
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	withSwell := func(height float64) []forecast.ScoredHour {
		var out []forecast.ScoredHour
		for h := 6; h <= 8; h++ {
			sh := hourAt(day, h, 80)
			sh.SwellHeight = height
			out = append(out, sh)
		}
		return out
	}

	tests := []struct {
		name   string
		style  SurfStyle
		height float64
		want   int
	}{
		{"longboard small swell", Longboard, 0.9, 1},
		{"longboard overhead", Longboard, 2.2, 0},
		{"shortboard solid swell", Shortboard, 1.8, 1},
		{"shortboard tiny swell", Shortboard, 0.6, 0},
		{"any style tiny swell", AnyStyle, 0.3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := basePrefs()
			prefs.SurfStyle = tt.style
			if got := len(Match(prefs, withSwell(tt.height), time.UTC)); got != tt.want {
				t.Errorf("got %d windows, want %d", got, tt.want)
			}
		})
	}
}

func TestMatchMinEnergy(t *testing.T) {
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	withEnergy := func(energy *float64) []forecast.ScoredHour {
		var out []forecast.ScoredHour
		for h := 6; h <= 8; h++ {
			sh := hourAt(day, h, 80)
			sh.WaveEnergy = energy
			out = append(out, sh)
		}
		return out
	}
	low, high := 5.0, 30.0

	prefs := basePrefs()
	prefs.MinEnergy = 15

	if got := len(Match(prefs, withEnergy(&high), time.UTC)); got != 1 {
		t.Errorf("high energy: got %d windows, want 1", got)
	}
	if got := len(Match(prefs, withEnergy(&low), time.UTC)); got != 0 {
		t.Errorf("low energy: got %d windows, want 0", got)
	}
	// No energy data degrades to a pass.
	if got := len(Match(prefs, withEnergy(nil), time.UTC)); got != 1 {
		t.Errorf("missing energy data: got %d windows, want 1", got)
	}
}

func TestMatchTimezoneBucketsUseLocalHours(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatal(err)
	}
	// 10:00 UTC is 07:00 in Sao Paulo (UTC-3): morning there, midday in UTC.
	h := forecast.ScoredHour{
		HourlySample: forecast.HourlySample{
			Time: time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
		},
		Score: 80,
		Label: forecast.LabelGood,
	}

	prefs := basePrefs()
	prefs.TimeWindows = []TimeWindow{Morning}

	if got := len(Match(prefs, []forecast.ScoredHour{h}, loc)); got != 1 {
		t.Errorf("local-morning hour: got %d windows, want 1", got)
	}
	if got := len(Match(prefs, []forecast.ScoredHour{h}, time.UTC)); got != 0 {
		t.Errorf("UTC-midday hour with morning-only prefs: got %d windows, want 0", got)
	}
}

func TestNextDayBest(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	today := now
	tomorrow := now.AddDate(0, 0, 1)

	hours := []forecast.ScoredHour{
		hourAt(today, 7, 95), // today's epic hour must be ignored
		hourAt(tomorrow, 7, 60),
		hourAt(tomorrow, 10, 80),
	}

	best := NextDayBest(basePrefs(), hours, now, time.UTC)
	if best == nil {
		t.Fatal("got nil, want tomorrow's best window")
	}
	if best.AvgScore != 80 {
		t.Errorf("best avg = %d, want 80 (tomorrow's top window)", best.AvgScore)
	}
	if d := best.Start.Day(); d != tomorrow.Day() {
		t.Errorf("best window on day %d, want %d", d, tomorrow.Day())
	}
}

func TestNextDayBestNoQualifyingWindow(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	tomorrow := now.AddDate(0, 0, 1)

	prefs := basePrefs()
	prefs.MinScore = 90

	hours := []forecast.ScoredHour{hourAt(tomorrow, 7, 60)}
	if best := NextDayBest(prefs, hours, now, time.UTC); best != nil {
		t.Errorf("got %+v, want nil when nothing qualifies", best)
	}
}
