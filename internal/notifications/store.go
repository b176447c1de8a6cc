package notifications

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// --------------------------------------------------------------------------
// Dedupe store
// --------------------------------------------------------------------------

// PGDedupe persists dispatch markers in notification_dedupe, one row per
// (scheduling, type, local date).
type PGDedupe struct {
	pool *pgxpool.Pool
}

// NewPGDedupe creates a PGDedupe backed by the given pool.
func NewPGDedupe(pool *pgxpool.Pool) *PGDedupe {
	return &PGDedupe{pool: pool}
}

// AlreadySent reports whether the dedupe key exists.
func (d *PGDedupe) AlreadySent(ctx context.Context, schedulingID string, t Type, localDate string) (bool, error) {
	var exists bool
	err := d.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notification_dedupe
			WHERE scheduling_id = $1 AND ntype = $2 AND local_date = $3)`,
		schedulingID, t, localDate).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("dedupe lookup: %w", err)
	}
	return exists, nil
}

// MarkSent records the dedupe key. Returns false when another writer won -
// ON CONFLICT DO NOTHING makes the claim atomic.
func (d *PGDedupe) MarkSent(ctx context.Context, schedulingID string, t Type, localDate string) (bool, error) {
	tag, err := d.pool.Exec(ctx, `
		INSERT INTO notification_dedupe (scheduling_id, ntype, local_date, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (scheduling_id, ntype, local_date) DO NOTHING`,
		schedulingID, t, localDate)
	if err != nil {
		return false, fmt.Errorf("dedupe mark: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// --------------------------------------------------------------------------
// History store
// --------------------------------------------------------------------------

// PGHistory appends rows to the notifications table. Rows reference their
// scheduling by id only; deleting a scheduling keeps its history.
type PGHistory struct {
	pool *pgxpool.Pool
}

// NewPGHistory creates a PGHistory backed by the given pool.
func NewPGHistory(pool *pgxpool.Pool) *PGHistory {
	return &PGHistory{pool: pool}
}

// Record inserts one history row.
func (h *PGHistory) Record(ctx context.Context, rec *Record) error {
	_, err := h.pool.Exec(ctx, `
		INSERT INTO notifications (scheduling_id, user_id, ntype, title, body, status, last_error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.SchedulingID, rec.UserID, rec.Type, rec.Title, rec.Body,
		rec.Status, rec.Error, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification record: %w", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Device store
// --------------------------------------------------------------------------

// DeviceStore registers device tokens and resolves them per user.
type DeviceStore struct {
	pool *pgxpool.Pool
}

// NewDeviceStore creates a DeviceStore backed by the given pool.
func NewDeviceStore(pool *pgxpool.Pool) *DeviceStore {
	return &DeviceStore{pool: pool}
}

// Register upserts a device token for a user, reactivating it if it was
// previously deactivated.
func (d *DeviceStore) Register(ctx context.Context, userID, token string) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO user_devices (user_id, token, is_active, created_at, updated_at)
		VALUES ($1, $2, true, NOW(), NOW())
		ON CONFLICT (token) DO UPDATE
			SET user_id = EXCLUDED.user_id, is_active = true, updated_at = NOW()`,
		userID, token)
	if err != nil {
		return fmt.Errorf("register device: %w", err)
	}
	return nil
}

// Tokens returns a user's active device tokens.
func (d *DeviceStore) Tokens(ctx context.Context, userID string) ([]string, error) {
	rows, err := d.pool.Query(ctx, "user_device_tokens", userID)
	if err != nil {
		return nil, fmt.Errorf("get device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no active tokens for user %s", userID)
	}
	return tokens, rows.Err()
}
