// Package scheduling models user watches: a target spot or region, the
// user's surf preferences, and notification settings. Preferences and
// settings are explicit value objects validated before persistence, not
// free-form option bags.
package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/swellwatch/swellwatch/internal/forecast"
)

// --------------------------------------------------------------------------
// Enums
// --------------------------------------------------------------------------

// TimeWindow is a fixed time-of-day bucket. Boundaries are not configurable:
// morning 05:00-09:00, midday 09:00-14:00, afternoon 14:00-18:00
// (start inclusive, end exclusive).
type TimeWindow string

const (
	Morning   TimeWindow = "morning"
	Midday    TimeWindow = "midday"
	Afternoon TimeWindow = "afternoon"
)

// SurfStyle constrains matched windows to a board-style swell band.
type SurfStyle string

const (
	Longboard  SurfStyle = "longboard"
	Shortboard SurfStyle = "shortboard"
	AnyStyle   SurfStyle = "any"
)

// WindPreference constrains matched windows by wind character.
type WindPreference string

const (
	PreferOffshore WindPreference = "offshore"
	PreferLight    WindPreference = "light"
	AnyWind        WindPreference = "any"
)

// TargetKind discriminates single-spot and regional schedulings.
type TargetKind string

const (
	TargetSingle   TargetKind = "single"
	TargetRegional TargetKind = "regional"
)

// --------------------------------------------------------------------------
// Value objects
// --------------------------------------------------------------------------

// Preferences is an immutable set of matching criteria owned by a Scheduling.
type Preferences struct {
	DaysAhead      int            `json:"days_ahead"` // 1, 3, or 5
	TimeWindows    []TimeWindow   `json:"time_windows"`
	MinScore       int            `json:"min_score"`
	SurfStyle      SurfStyle      `json:"surf_style"`
	WindPreference WindPreference `json:"wind_preference"`
	MinEnergy      float64        `json:"min_energy"` // kW/m
}

// Validate returns one error per violated constraint, joined.
func (p Preferences) Validate() error {
	var errs []error
	if p.DaysAhead != 1 && p.DaysAhead != 3 && p.DaysAhead != 5 {
		errs = append(errs, fmt.Errorf("days_ahead must be 1, 3, or 5, got %d", p.DaysAhead))
	}
	if len(p.TimeWindows) == 0 {
		errs = append(errs, errors.New("time_windows must not be empty"))
	}
	for _, tw := range p.TimeWindows {
		switch tw {
		case Morning, Midday, Afternoon:
		default:
			errs = append(errs, fmt.Errorf("unknown time window %q", tw))
		}
	}
	if p.MinScore < 0 || p.MinScore > 100 {
		errs = append(errs, fmt.Errorf("min_score must be within 0-100, got %d", p.MinScore))
	}
	switch p.SurfStyle {
	case Longboard, Shortboard, AnyStyle:
	default:
		errs = append(errs, fmt.Errorf("unknown surf_style %q", p.SurfStyle))
	}
	switch p.WindPreference {
	case PreferOffshore, PreferLight, AnyWind:
	default:
		errs = append(errs, fmt.Errorf("unknown wind_preference %q", p.WindPreference))
	}
	if p.MinEnergy < 0 {
		errs = append(errs, fmt.Errorf("min_energy must be >= 0, got %g", p.MinEnergy))
	}
	return errors.Join(errs...)
}

// Settings controls how and when a scheduling notifies. Owned by a Scheduling.
type Settings struct {
	PushEnabled   bool   `json:"push_enabled"`
	AdvanceHours  int    `json:"advance_hours"`
	DailySummary  bool   `json:"daily_summary"`
	SpecialAlerts bool   `json:"special_alerts"`
	FixedTime     string `json:"fixed_time,omitempty"` // "HH:mm", empty = unset
	Timezone      string `json:"timezone,omitempty"`   // IANA name
}

// Validate returns one error per violated constraint, joined.
func (s Settings) Validate() error {
	var errs []error
	if s.AdvanceHours < 0 {
		errs = append(errs, fmt.Errorf("advance_hours must be >= 0, got %d", s.AdvanceHours))
	}
	if s.FixedTime != "" {
		if _, _, err := ParseFixedTime(s.FixedTime); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("unknown timezone %q", s.Timezone))
		}
	}
	return errors.Join(errs...)
}

// ParseFixedTime parses an "HH:mm" wall-clock string.
func ParseFixedTime(v string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, 0, fmt.Errorf("fixed_time must be HH:mm, got %q", v)
	}
	return t.Hour(), t.Minute(), nil
}

// Target identifies what a scheduling watches: one spot, or a region with an
// optional spot subset. One tagged variant instead of parallel code paths -
// matcher and scheduler logic differ only in target resolution.
type Target struct {
	Kind       TargetKind `json:"kind"`
	SpotID     string     `json:"spot_id,omitempty"`
	RegionID   string     `json:"region_id,omitempty"`
	SpotSubset []string   `json:"spot_subset,omitempty"`
}

// Validate returns one error per violated constraint, joined.
func (t Target) Validate() error {
	var errs []error
	switch t.Kind {
	case TargetSingle:
		if t.SpotID == "" {
			errs = append(errs, errors.New("single target requires spot_id"))
		}
	case TargetRegional:
		if t.RegionID == "" {
			errs = append(errs, errors.New("regional target requires region_id"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown target kind %q", t.Kind))
	}
	return errors.Join(errs...)
}

// --------------------------------------------------------------------------
// Scheduling
// --------------------------------------------------------------------------

// Scheduling is a persisted user watch. Soft-disabled via Active=false;
// deleting one never cascades to historical notification records.
type Scheduling struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	Target      Target           `json:"target"`
	Active      bool             `json:"active"`
	Preferences Preferences      `json:"preferences"`
	Settings    Settings         `json:"settings"`
	NextDayBest *forecast.Window `json:"next_day_best,omitempty"` // refreshed asynchronously
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Validate aggregates target, preference, and settings violations.
func (s *Scheduling) Validate() error {
	var errs []error
	if s.UserID == "" {
		errs = append(errs, errors.New("user_id is required"))
	}
	if err := s.Target.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := s.Preferences.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := s.Settings.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves the scheduling's timezone, falling back to the given
// default and then UTC. Never fails: dedupe and wall-clock rules must keep
// working even if a stored zone name goes stale.
func (s *Scheduling) Location(defaultTZ string) *time.Location {
	for _, name := range []string{s.Settings.Timezone, defaultTZ} {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.UTC
}
