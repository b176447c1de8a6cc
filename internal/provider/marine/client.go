// Package marine is the HTTP client for the upstream marine forecast API
// (Open-Meteo marine endpoint shape: parallel hourly arrays keyed by
// variable name). Requests are rate limited with a token bucket.
package marine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/swellwatch/swellwatch/internal/forecast"
	"github.com/swellwatch/swellwatch/internal/spot"
)

// Client fetches hourly marine forecasts.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a marine forecast client with rate limiting.
func NewClient(baseURL string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// hourlyResponse mirrors the provider's parallel-array hourly payload.
type hourlyResponse struct {
	Hourly struct {
		Time            []string  `json:"time"`
		WaveHeight      []float64 `json:"wave_height"`
		SwellWaveHeight []float64 `json:"swell_wave_height"`
		SwellWaveDir    []float64 `json:"swell_wave_direction"`
		SwellWavePeriod []float64 `json:"swell_wave_period"`
		WindSpeed       []float64 `json:"wind_speed_10m"`
		WindDirection   []float64 `json:"wind_direction_10m"`
	} `json:"hourly"`
}

// HourlyForecast returns raw hourly samples for a spot over the given number
// of days. Wave energy is derived from swell height and period using the
// deep-water approximation P ≈ 0.49·H²·T (kW/m).
func (c *Client) HourlyForecast(ctx context.Context, profile *spot.Profile, days int) ([]forecast.HourlySample, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(profile.Lat, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(profile.Lon, 'f', 4, 64))
	params.Set("hourly", "wave_height,swell_wave_height,swell_wave_direction,swell_wave_period,wind_speed_10m,wind_direction_10m")
	params.Set("forecast_days", strconv.Itoa(days))
	params.Set("wind_speed_unit", "kn")
	params.Set("timezone", "UTC")

	var decoded hourlyResponse
	if err := c.get(ctx, "/marine", params, &decoded); err != nil {
		return nil, err
	}

	h := decoded.Hourly
	samples := make([]forecast.HourlySample, 0, len(h.Time))
	for i, ts := range h.Time {
		t, err := time.Parse("2006-01-02T15:04", ts)
		if err != nil {
			return nil, fmt.Errorf("parse hourly timestamp %q: %w", ts, err)
		}
		s := forecast.HourlySample{Time: t.UTC()}
		if i < len(h.SwellWaveHeight) {
			s.SwellHeight = h.SwellWaveHeight[i]
		}
		if i < len(h.SwellWaveDir) {
			s.SwellDirection = h.SwellWaveDir[i]
		}
		if i < len(h.SwellWavePeriod) {
			s.SwellPeriod = h.SwellWavePeriod[i]
		}
		if i < len(h.WindSpeed) {
			s.WindSpeed = h.WindSpeed[i]
		}
		if i < len(h.WindDirection) {
			s.WindDirection = h.WindDirection[i]
		}
		if i < len(h.WaveHeight) {
			s.WaveHeight = h.WaveHeight[i]
		}
		if s.SwellHeight > 0 && s.SwellPeriod > 0 {
			energy := 0.49 * s.SwellHeight * s.SwellHeight * s.SwellPeriod
			s.WaveEnergy = &energy
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// get performs a rate-limited GET request and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("marine API %s returned %d: %s", path, resp.StatusCode, truncate(body, 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
