package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swellwatch/swellwatch/internal/forecast"
)

// ErrNotFound is returned when a scheduling id does not exist.
var ErrNotFound = errors.New("scheduling not found")

// Store persists schedulings in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const schedulingColumns = `
	id, user_id, target_kind, spot_id, region_id, spot_subset, active,
	days_ahead, time_windows, min_score, surf_style, wind_preference, min_energy,
	push_enabled, advance_hours, daily_summary, special_alerts, fixed_time, timezone,
	next_day_best, created_at, updated_at`

// Create validates and inserts a new scheduling, assigning its id and
// timestamps. The stored value is returned.
func (s *Store) Create(ctx context.Context, sched *Scheduling) (*Scheduling, error) {
	if err := sched.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sched.ID = uuid.NewString()
	sched.CreatedAt = now
	sched.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO schedulings (
			id, user_id, target_kind, spot_id, region_id, spot_subset, active,
			days_ahead, time_windows, min_score, surf_style, wind_preference, min_energy,
			push_enabled, advance_hours, daily_summary, special_alerts, fixed_time, timezone,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
		sched.ID, sched.UserID, sched.Target.Kind, nullable(sched.Target.SpotID),
		nullable(sched.Target.RegionID), sched.Target.SpotSubset, sched.Active,
		sched.Preferences.DaysAhead, timeWindowStrings(sched.Preferences.TimeWindows),
		sched.Preferences.MinScore, sched.Preferences.SurfStyle, sched.Preferences.WindPreference,
		sched.Preferences.MinEnergy, sched.Settings.PushEnabled, sched.Settings.AdvanceHours,
		sched.Settings.DailySummary, sched.Settings.SpecialAlerts,
		nullable(sched.Settings.FixedTime), nullable(sched.Settings.Timezone),
		sched.CreatedAt, sched.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert scheduling: %w", err)
	}
	return sched, nil
}

// Get returns one scheduling by id.
func (s *Store) Get(ctx context.Context, id string) (*Scheduling, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+schedulingColumns+` FROM schedulings WHERE id = $1`, id)
	sched, err := scanScheduling(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get scheduling %s: %w", id, err)
	}
	return sched, nil
}

// ListByUser returns a user's schedulings, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]*Scheduling, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+schedulingColumns+` FROM schedulings WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list schedulings for user %s: %w", userID, err)
	}
	defer rows.Close()
	return scanSchedulings(rows)
}

// ListActive returns every active scheduling, for scheduler tick fan-out.
func (s *Store) ListActive(ctx context.Context) ([]*Scheduling, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+schedulingColumns+` FROM schedulings WHERE active ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list active schedulings: %w", err)
	}
	defer rows.Close()
	return scanSchedulings(rows)
}

// Update validates and overwrites a scheduling's mutable fields.
func (s *Store) Update(ctx context.Context, sched *Scheduling) (*Scheduling, error) {
	if err := sched.Validate(); err != nil {
		return nil, err
	}
	sched.UpdatedAt = time.Now().UTC()

	tag, err := s.pool.Exec(ctx, `
		UPDATE schedulings SET
			target_kind = $2, spot_id = $3, region_id = $4, spot_subset = $5, active = $6,
			days_ahead = $7, time_windows = $8, min_score = $9, surf_style = $10,
			wind_preference = $11, min_energy = $12, push_enabled = $13, advance_hours = $14,
			daily_summary = $15, special_alerts = $16, fixed_time = $17, timezone = $18,
			updated_at = $19
		WHERE id = $1`,
		sched.ID, sched.Target.Kind, nullable(sched.Target.SpotID),
		nullable(sched.Target.RegionID), sched.Target.SpotSubset, sched.Active,
		sched.Preferences.DaysAhead, timeWindowStrings(sched.Preferences.TimeWindows),
		sched.Preferences.MinScore, sched.Preferences.SurfStyle, sched.Preferences.WindPreference,
		sched.Preferences.MinEnergy, sched.Settings.PushEnabled, sched.Settings.AdvanceHours,
		sched.Settings.DailySummary, sched.Settings.SpecialAlerts,
		nullable(sched.Settings.FixedTime), nullable(sched.Settings.Timezone),
		sched.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update scheduling %s: %w", sched.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return sched, nil
}

// Delete removes a scheduling. Historical notification records are kept -
// the notifications table carries no foreign key cascade.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM schedulings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete scheduling %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetNextDayBest overwrites the cached next-day summary wholesale. Pass nil
// to clear it. Last writer wins per scheduling id at row granularity.
func (s *Store) SetNextDayBest(ctx context.Context, id string, best *forecast.Window) error {
	var doc []byte
	if best != nil {
		var err error
		doc, err = json.Marshal(best)
		if err != nil {
			return fmt.Errorf("encode next-day best: %w", err)
		}
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE schedulings SET next_day_best = $2, updated_at = NOW() WHERE id = $1`,
		id, doc)
	if err != nil {
		return fmt.Errorf("set next-day best for %s: %w", id, err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Scanning
// --------------------------------------------------------------------------

func scanSchedulings(rows pgx.Rows) ([]*Scheduling, error) {
	var out []*Scheduling
	for rows.Next() {
		sched, err := scanScheduling(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scheduling: %w", err)
		}
		out = append(out, sched)
	}
	return out, rows.Err()
}

func scanScheduling(row pgx.Row) (*Scheduling, error) {
	var (
		sched      Scheduling
		spotID     *string
		regionID   *string
		fixedTime  *string
		timezone   *string
		windows    []string
		bestDoc    []byte
	)
	err := row.Scan(
		&sched.ID, &sched.UserID, &sched.Target.Kind, &spotID, &regionID,
		&sched.Target.SpotSubset, &sched.Active,
		&sched.Preferences.DaysAhead, &windows, &sched.Preferences.MinScore,
		&sched.Preferences.SurfStyle, &sched.Preferences.WindPreference,
		&sched.Preferences.MinEnergy,
		&sched.Settings.PushEnabled, &sched.Settings.AdvanceHours,
		&sched.Settings.DailySummary, &sched.Settings.SpecialAlerts,
		&fixedTime, &timezone,
		&bestDoc, &sched.CreatedAt, &sched.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	sched.Target.SpotID = deref(spotID)
	sched.Target.RegionID = deref(regionID)
	sched.Settings.FixedTime = deref(fixedTime)
	sched.Settings.Timezone = deref(timezone)

	sched.Preferences.TimeWindows = make([]TimeWindow, len(windows))
	for i, w := range windows {
		sched.Preferences.TimeWindows[i] = TimeWindow(w)
	}

	if len(bestDoc) > 0 {
		var best forecast.Window
		if err := json.Unmarshal(bestDoc, &best); err == nil {
			sched.NextDayBest = &best
		}
	}
	return &sched, nil
}

func timeWindowStrings(tws []TimeWindow) []string {
	out := make([]string, len(tws))
	for i, tw := range tws {
		out[i] = string(tw)
	}
	return out
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
