// Package notifications evaluates active schedulings on a fixed tick and
// decides, per scheduling, whether to push right now: advance-of-window
// alerts, fixed daily summaries, score-threshold special alerts, fixed-time
// snapshots, and regional comparisons.
//
// Evaluation is idempotent per tick: a dedupe key of (scheduling id,
// notification type, local date) guards every dispatch, scoped to the
// calendar date in the scheduling's timezone, so a user crossing midnight
// boundaries gets exactly one of each type per local day.
package notifications

import (
	"context"
	"time"

	"github.com/swellwatch/swellwatch/internal/forecast"
	"github.com/swellwatch/swellwatch/internal/scheduling"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// summaryHour is the local hour after which the daily summary is due.
	summaryHour = 8

	// specialScoreThreshold triggers special alerts when exceeded.
	specialScoreThreshold = 90

	// Regional comparisons go out after these local hours.
	regionalMorningHour = 6
	regionalEveningHour = 18

	// localDateLayout scopes dedupe keys to a local calendar date.
	localDateLayout = "2006-01-02"
)

// Type identifies a notification rule. Part of the dedupe key.
type Type string

const (
	TypeAdvance      Type = "advance"
	TypeDailySummary Type = "daily_summary"
	TypeSpecial      Type = "special"
	TypeFixedTime    Type = "fixed_time"
	TypeRegionalAM   Type = "regional_comparison_am"
	TypeRegionalPM   Type = "regional_comparison_pm"
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Payload is what gets handed to the Notifier. Building it is where this
// package's responsibility ends; delivery retries belong to the transport.
type Payload struct {
	Type  Type              `json:"type"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Dispatch is one decided notification for a scheduling.
type Dispatch struct {
	Type    Type
	Payload Payload
}

// Result is the outcome of evaluating one scheduling at one tick.
type Result struct {
	Dispatches []Dispatch
	// NextDayBest is the recomputed next-day summary, written back to the
	// scheduling wholesale (nil clears it).
	NextDayBest *forecast.Window
}

// Record is a persisted notification history row. History is never deleted
// when its scheduling goes away.
type Record struct {
	SchedulingID string
	UserID       string
	Type         Type
	Title        string
	Body         string
	Status       string // "sent" | "failed"
	Error        string
	CreatedAt    time.Time
}

// --------------------------------------------------------------------------
// Collaborator contracts
// --------------------------------------------------------------------------

// Notifier delivers a payload to device tokens. Polymorphic over transport;
// retry policy belongs to the implementation's caller.
type Notifier interface {
	Send(ctx context.Context, tokens []string, payload Payload) error
}

// ForecastSource yields scored hours for a spot over N days.
type ForecastSource interface {
	ScoredHours(ctx context.Context, spotID string, days int) ([]forecast.ScoredHour, error)
}

// SchedulingSource lists the schedulings to evaluate each tick.
type SchedulingSource interface {
	ListActive(ctx context.Context) ([]*scheduling.Scheduling, error)
}

// NextDayWriter overwrites a scheduling's cached next-day summary.
type NextDayWriter interface {
	SetNextDayBest(ctx context.Context, schedulingID string, best *forecast.Window) error
}

// TokenSource resolves a user's active device tokens.
type TokenSource interface {
	Tokens(ctx context.Context, userID string) ([]string, error)
}

// DedupeStore persists per-day dispatch markers. MarkSent must be atomic:
// it returns false when the key already existed.
type DedupeStore interface {
	AlreadySent(ctx context.Context, schedulingID string, t Type, localDate string) (bool, error)
	MarkSent(ctx context.Context, schedulingID string, t Type, localDate string) (bool, error)
}

// HistoryStore appends notification history rows.
type HistoryStore interface {
	Record(ctx context.Context, rec *Record) error
}
