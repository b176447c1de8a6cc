package marine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/swellwatch/swellwatch/internal/spot"
)

const hourlyPayload = `{
	"hourly": {
		"time": ["2026-08-28T06:00", "2026-08-28T07:00"],
		"wave_height": [1.6, 1.7],
		"swell_wave_height": [1.4, 1.5],
		"swell_wave_direction": [140, 145],
		"swell_wave_period": [10, 11],
		"wind_speed_10m": [8, 9],
		"wind_direction_10m": [310, 320]
	}
}`

func TestHourlyForecastParsesParallelArrays(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(hourlyPayload))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 600, nil)
	profile := &spot.Profile{ID: "ipanema", Lat: -22.9874, Lon: -43.2023}

	samples, err := client.HourlyForecast(context.Background(), profile, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}

	s := samples[0]
	if s.SwellHeight != 1.4 || s.SwellDirection != 140 || s.SwellPeriod != 10 {
		t.Errorf("swell fields = %+v", s)
	}
	if s.WindSpeed != 8 || s.WindDirection != 310 || s.WaveHeight != 1.6 {
		t.Errorf("wind/wave fields = %+v", s)
	}
	if s.Time.Hour() != 6 || s.Time.Location().String() != "UTC" {
		t.Errorf("time = %v, want 06:00 UTC", s.Time)
	}

	// Deep-water approximation: 0.49 * 1.4^2 * 10.
	if s.WaveEnergy == nil {
		t.Fatal("WaveEnergy not derived")
	}
	if got, want := *s.WaveEnergy, 0.49*1.4*1.4*10; got < want-0.001 || got > want+0.001 {
		t.Errorf("WaveEnergy = %g, want %g", got, want)
	}

	for _, frag := range []string{"latitude=-22.9874", "forecast_days=2", "wind_speed_unit=kn"} {
		if !strings.Contains(gotQuery, frag) {
			t.Errorf("query %q missing %q", gotQuery, frag)
		}
	}
}

func TestHourlyForecastMissingSwellDataSkipsEnergy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hourly": {"time": ["2026-08-28T06:00"], "swell_wave_height": [0], "swell_wave_period": [0]}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 600, nil)
	samples, err := client.HourlyForecast(context.Background(), &spot.Profile{ID: "x"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if samples[0].WaveEnergy != nil {
		t.Errorf("WaveEnergy = %v for zero swell, want nil", *samples[0].WaveEnergy)
	}
}

func TestHourlyForecastUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 600, nil)
	if _, err := client.HourlyForecast(context.Background(), &spot.Profile{ID: "x"}, 1); err == nil {
		t.Error("want error on non-200 upstream response")
	}
}
