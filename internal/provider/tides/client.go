// Package tides is the HTTP client for the upstream tide-extremes API
// (Stormglass endpoint shape: a data array of typed extremes, API key in the
// Authorization header).
package tides

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/swellwatch/swellwatch/internal/spot"
	"github.com/swellwatch/swellwatch/internal/tidecache"
)

// Source tags cache entries written from this client.
const Source = "stormglass"

// Client fetches daily tide extremes.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a tide client with rate limiting.
func NewClient(baseURL, apiKey string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// SourceTag names this upstream for tide cache entry provenance.
func (c *Client) SourceTag() string { return Source }

type extremesResponse struct {
	Data []struct {
		Time   time.Time `json:"time"`
		Height float64   `json:"height"`
		Type   string    `json:"type"` // "high" | "low"
	} `json:"data"`
}

// TideEvents returns the ordered tide extremes for a spot on one calendar
// date (UTC day bounds).
func (c *Client) TideEvents(ctx context.Context, profile *spot.Profile, date time.Time) ([]tidecache.Event, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(profile.Lat, 'f', 4, 64))
	params.Set("lng", strconv.FormatFloat(profile.Lon, 'f', 4, 64))
	params.Set("start", dayStart.Format(time.RFC3339))
	params.Set("end", dayStart.Add(24*time.Hour).Format(time.RFC3339))

	u := c.baseURL + "/tide/extremes/point?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tide request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tide API returned %d", resp.StatusCode)
	}

	var decoded extremesResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode tide response: %w", err)
	}

	events := make([]tidecache.Event, 0, len(decoded.Data))
	for _, d := range decoded.Data {
		events = append(events, tidecache.Event{
			Time:   d.Time.UTC(),
			Type:   strings.ToLower(d.Type),
			Height: d.Height,
		})
	}
	return events, nil
}
