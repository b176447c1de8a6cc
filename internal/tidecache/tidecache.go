// Package tidecache is a TTL read-through cache for daily tide events,
// keyed by (spot, calendar date) and backed by a persistent document store.
//
// Absence and error are indistinguishable on read: any lookup, decode, or
// expiry condition surfaces as ErrMiss, pushing the caller to re-fetch from
// the upstream tide source. Staleness is checked lazily at read time; no
// eviction sweep is required for correctness.
package tidecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/swellwatch/swellwatch/internal/metrics"
)

// ErrMiss is returned by Get for absent, expired, or unreadable entries.
var ErrMiss = errors.New("tide cache miss")

// Event is a single tide extreme.
type Event struct {
	Time   time.Time `json:"time"`
	Type   string    `json:"type"` // "high" | "low"
	Height float64   `json:"height"`
}

// Entry is a full cached tide document for one (spot, date).
// Entries are immutable once written; a refresh replaces the whole document.
type Entry struct {
	SpotID    string    `json:"spot_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Source    string    `json:"source"`
	Events    []Event   `json:"events"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DocumentStore is the narrow persistence contract the cache needs.
// Puts must replace the whole document atomically.
type DocumentStore interface {
	GetDocument(ctx context.Context, key string) ([]byte, error)
	PutDocument(ctx context.Context, key string, doc []byte) error
}

// Store is the TTL cache. TTL is configuration, not data: changing it
// affects only future puts.
type Store struct {
	docs   DocumentStore
	ttl    time.Duration
	logger *slog.Logger

	now func() time.Time // overridable in tests
}

// New creates a Store with the given TTL.
func New(docs DocumentStore, ttl time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{docs: docs, ttl: ttl, logger: logger, now: time.Now}
}

// Key builds the document key for a spot and calendar date.
func Key(spotID string, date time.Time) string {
	return fmt.Sprintf("%s_%s", spotID, date.Format("2006-01-02"))
}

// Get returns the cached entry for (spotID, date), or ErrMiss. Get never
// surfaces storage or decode errors - they are logged and reported as a
// miss so the caller re-fetches upstream.
func (s *Store) Get(ctx context.Context, spotID string, date time.Time) (*Entry, error) {
	key := Key(spotID, date)

	raw, err := s.docs.GetDocument(ctx, key)
	if err != nil {
		s.logger.Debug("tide cache lookup failed", "key", key, "error", err)
		metrics.TideCacheMisses.Inc()
		return nil, ErrMiss
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		s.logger.Warn("tide cache document unreadable", "key", key, "error", err)
		metrics.TideCacheMisses.Inc()
		return nil, ErrMiss
	}

	// Expired entries are identical to absent ones; the document itself is
	// overwritten opportunistically on the next put for this key.
	if !s.now().Before(entry.ExpiresAt) {
		metrics.TideCacheMisses.Inc()
		return nil, ErrMiss
	}

	metrics.TideCacheHits.Inc()
	return &entry, nil
}

// Put writes a complete replacement entry for (spotID, date) with
// expiresAt = createdAt + TTL. The write is atomic at document granularity,
// so a concurrent reader never observes a half-written entry.
func (s *Store) Put(ctx context.Context, spotID string, date time.Time, events []Event, source string) (*Entry, error) {
	created := s.now()
	entry := &Entry{
		SpotID:    spotID,
		Date:      date.Format("2006-01-02"),
		Source:    source,
		Events:    events,
		CreatedAt: created,
		ExpiresAt: created.Add(s.ttl),
	}

	doc, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encode tide entry: %w", err)
	}
	if err := s.docs.PutDocument(ctx, Key(spotID, date), doc); err != nil {
		return nil, fmt.Errorf("store tide entry: %w", err)
	}
	return entry, nil
}
