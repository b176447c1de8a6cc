package spot

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a spot or region id does not exist.
var ErrNotFound = errors.New("spot not found")

// Store reads spot profiles and regions from Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Get returns the profile for a spot id.
func (s *Store) Get(ctx context.Context, spotID string) (*Profile, error) {
	row := s.pool.QueryRow(ctx, "spot_by_id", spotID)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get spot %s: %w", spotID, err)
	}
	return p, nil
}

// List returns all spots ordered by name.
func (s *Store) List(ctx context.Context) ([]*Profile, error) {
	rows, err := s.pool.Query(ctx, "spots_all")
	if err != nil {
		return nil, fmt.Errorf("list spots: %w", err)
	}
	defer rows.Close()
	return scanProfiles(rows)
}

// ListByRegion returns all spots in a region ordered by name.
func (s *Store) ListByRegion(ctx context.Context, regionID string) ([]*Profile, error) {
	rows, err := s.pool.Query(ctx, "spots_by_region", regionID)
	if err != nil {
		return nil, fmt.Errorf("list spots in region %s: %w", regionID, err)
	}
	defer rows.Close()
	return scanProfiles(rows)
}

func scanProfiles(rows pgx.Rows) ([]*Profile, error) {
	var out []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spot: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID, &p.Name, &p.RegionID, &p.Timezone, &p.Lat, &p.Lon,
		&p.SwellHeightMin, &p.SwellHeightMax, &p.SwellDirections,
		&p.SwellPeriodMin, &p.SwellPeriodMax, &p.OffshoreWindDir,
		&p.TideIdealMin, &p.TideIdealMax, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
