package forecast

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/swellwatch/swellwatch/internal/spot"
	"github.com/swellwatch/swellwatch/internal/tidecache"
)

// Response statuses. "unavailable" carries zero scored hours rather than a
// fabricated score.
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
)

// Provider supplies raw hourly samples for a spot over N days.
type Provider interface {
	HourlyForecast(ctx context.Context, profile *spot.Profile, days int) ([]HourlySample, error)
}

// TideSource supplies tide extremes for a spot on one calendar date.
// SourceTag names the upstream for cache entry provenance.
type TideSource interface {
	TideEvents(ctx context.Context, profile *spot.Profile, date time.Time) ([]tidecache.Event, error)
	SourceTag() string
}

// SpotDirectory resolves spot profiles.
type SpotDirectory interface {
	Get(ctx context.Context, spotID string) (*spot.Profile, error)
	ListByRegion(ctx context.Context, regionID string) ([]*spot.Profile, error)
}

// CacheInfo reports where tide data came from on this request.
type CacheInfo struct {
	Fresh bool `json:"fresh"` // true = live upstream fetch, false = TTL cache
}

// Response is the full forecast surface consumed by the UI.
type Response struct {
	SpotID     string            `json:"spot_id"`
	Days       int               `json:"days"`
	Status     string            `json:"status"`
	Current    *ScoredHour       `json:"current,omitempty"`
	Windows    []Window          `json:"windows"`
	Chart      []ChartPoint      `json:"chart"`
	TideEvents []tidecache.Event `json:"tide_events,omitempty"`
	Cache      CacheInfo         `json:"cache"`
}

// Service wires the forecast provider, tide cache, and scoring into the
// per-spot forecast pipeline. Provider and tide calls are the only I/O and
// are bounded by ioTimeout; a timeout degrades the response instead of
// failing it.
type Service struct {
	provider  Provider
	tideSrc   TideSource
	tideCache *tidecache.Store
	spots     SpotDirectory
	logger    *slog.Logger
	ioTimeout time.Duration

	now func() time.Time // overridable in tests
}

// NewService creates a forecast Service.
func NewService(provider Provider, tideSrc TideSource, tideCache *tidecache.Store, spots SpotDirectory, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		provider:  provider,
		tideSrc:   tideSrc,
		tideCache: tideCache,
		spots:     spots,
		logger:    logger,
		ioTimeout: 15 * time.Second,
		now:       time.Now,
	}
}

// Forecast builds the full response for a spot: scored hours, ranked
// windows, chart series, tide events, and cache provenance.
func (s *Service) Forecast(ctx context.Context, spotID string, days int) (*Response, error) {
	profile, err := s.spots.Get(ctx, spotID)
	if err != nil {
		return nil, err
	}

	resp := &Response{SpotID: spotID, Days: days, Status: StatusOK, Windows: []Window{}, Chart: []ChartPoint{}}

	hours, events, fresh, err := s.scoredHours(ctx, profile, days)
	if err != nil {
		// No data source reachable: explicit unavailable state, zero hours.
		s.logger.Warn("forecast unavailable", "spot", spotID, "error", err)
		resp.Status = StatusUnavailable
		return resp, nil
	}

	analysis := Analyze(hours)
	resp.Windows = analysis.Windows
	resp.Chart = analysis.Chart
	resp.TideEvents = events
	resp.Cache.Fresh = fresh
	resp.Current = currentHour(hours, s.now())
	return resp, nil
}

// ScoredHours returns the scored hourly sequence for a spot, enriched with
// tide heights where tide data is available. Used by the notification
// scheduler as well as Forecast.
func (s *Service) ScoredHours(ctx context.Context, spotID string, days int) ([]ScoredHour, error) {
	profile, err := s.spots.Get(ctx, spotID)
	if err != nil {
		return nil, err
	}
	hours, _, _, err := s.scoredHours(ctx, profile, days)
	return hours, err
}

func (s *Service) scoredHours(ctx context.Context, profile *spot.Profile, days int) ([]ScoredHour, []tidecache.Event, bool, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.ioTimeout)
	defer cancel()

	samples, err := s.provider.HourlyForecast(fetchCtx, profile, days)
	if err != nil {
		return nil, nil, false, err
	}

	events, fresh := s.tideEvents(ctx, profile, days)
	enrichTide(samples, events)

	hours := make([]ScoredHour, 0, len(samples))
	for _, sample := range samples {
		hours = append(hours, Score(sample, profile))
	}
	return hours, events, fresh, nil
}

// tideEvents collects tide extremes for each forecast day, reading through
// the TTL cache. Upstream failure for a day degrades to no tide data for
// that day; scoring continues without the tide term.
func (s *Service) tideEvents(ctx context.Context, profile *spot.Profile, days int) ([]tidecache.Event, bool) {
	var events []tidecache.Event
	fresh := false

	today := s.now().UTC().Truncate(24 * time.Hour)
	for d := 0; d < days; d++ {
		date := today.AddDate(0, 0, d)

		if entry, err := s.tideCache.Get(ctx, profile.ID, date); err == nil {
			events = append(events, entry.Events...)
			continue
		}

		fetchCtx, cancel := context.WithTimeout(ctx, s.ioTimeout)
		dayEvents, err := s.tideSrc.TideEvents(fetchCtx, profile, date)
		cancel()
		if err != nil {
			s.logger.Warn("tide fetch failed, continuing without tide",
				"spot", profile.ID, "date", date.Format("2006-01-02"), "error", err)
			continue
		}

		fresh = true
		if _, err := s.tideCache.Put(ctx, profile.ID, date, dayEvents, s.tideSrc.SourceTag()); err != nil {
			s.logger.Warn("tide cache write failed", "spot", profile.ID, "error", err)
		}
		events = append(events, dayEvents...)
	}
	return events, fresh
}

// enrichTide fills each sample's tide height by cosine interpolation between
// the surrounding tide extremes. Hours outside the covered range stay nil.
func enrichTide(samples []HourlySample, events []tidecache.Event) {
	if len(events) < 2 {
		return
	}
	for i := range samples {
		t := samples[i].Time
		for j := 0; j+1 < len(events); j++ {
			a, b := events[j], events[j+1]
			if t.Before(a.Time) || t.After(b.Time) {
				continue
			}
			span := b.Time.Sub(a.Time).Seconds()
			if span <= 0 {
				break
			}
			frac := t.Sub(a.Time).Seconds() / span
			h := a.Height + (b.Height-a.Height)*(1-math.Cos(math.Pi*frac))/2
			samples[i].TideHeight = &h
			break
		}
	}
}

// currentHour picks the scored hour covering now, falling back to the first
// future hour and then the last known one.
func currentHour(hours []ScoredHour, now time.Time) *ScoredHour {
	if len(hours) == 0 {
		return nil
	}
	for i := range hours {
		if !hours[i].Time.Before(now.Truncate(time.Hour)) {
			return &hours[i]
		}
	}
	return &hours[len(hours)-1]
}
