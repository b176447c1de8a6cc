package tidecache

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is a DocumentStore over a Postgres table holding one JSONB
// document per key. The table (the "collection") comes from configuration,
// so SQL is built once at construction.
type PGStore struct {
	pool    *pgxpool.Pool
	getSQL  string
	putSQL  string
}

// NewPGStore creates a PGStore writing to the named collection table.
func NewPGStore(pool *pgxpool.Pool, collection string) *PGStore {
	return &PGStore{
		pool:   pool,
		getSQL: fmt.Sprintf(`SELECT doc FROM %s WHERE key = $1`, collection),
		putSQL: fmt.Sprintf(`
			INSERT INTO %s (key, doc, updated_at) VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`, collection),
	}
}

// GetDocument returns the raw document for a key.
func (s *PGStore) GetDocument(ctx context.Context, key string) ([]byte, error) {
	var doc []byte
	if err := s.pool.QueryRow(ctx, s.getSQL, key).Scan(&doc); err != nil {
		return nil, fmt.Errorf("get document %s: %w", key, err)
	}
	return doc, nil
}

// PutDocument upserts the whole document for a key. Last writer wins at row
// granularity, which matches the cache's replacement semantics.
func (s *PGStore) PutDocument(ctx context.Context, key string, doc []byte) error {
	if _, err := s.pool.Exec(ctx, s.putSQL, key, doc); err != nil {
		return fmt.Errorf("put document %s: %w", key, err)
	}
	return nil
}
