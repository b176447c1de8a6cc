package tidecache

import (
	"context"
	"errors"
	"testing"
	"time"
)

// memDocs is an in-memory DocumentStore for tests.
type memDocs struct {
	docs  map[string][]byte
	getFn func(ctx context.Context, key string) ([]byte, error)
	putFn func(ctx context.Context, key string, doc []byte) error
}

func newMemDocs() *memDocs {
	return &memDocs{docs: map[string][]byte{}}
}

func (m *memDocs) GetDocument(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	doc, ok := m.docs[key]
	if !ok {
		return nil, errors.New("no such document")
	}
	return doc, nil
}

func (m *memDocs) PutDocument(ctx context.Context, key string, doc []byte) error {
	if m.putFn != nil {
		return m.putFn(ctx, key, doc)
	}
	m.docs[key] = doc
	return nil
}

var testDate = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

func testEvents() []Event {
	return []Event{
		{Time: testDate.Add(4 * time.Hour), Type: "high", Height: 1.2},
		{Time: testDate.Add(10 * time.Hour), Type: "low", Height: 0.2},
	}
}

func TestKey(t *testing.T) {
	if got := Key("ipanema", testDate); got != "ipanema_2026-08-28" {
		t.Errorf("Key = %q, want ipanema_2026-08-28", got)
	}
}

func TestPutThenGetRoundtrip(t *testing.T) {
	store := New(newMemDocs(), 6*time.Hour, nil)

	put, err := store.Put(context.Background(), "ipanema", testDate, testEvents(), "stormglass")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if want := put.CreatedAt.Add(6 * time.Hour); !put.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want CreatedAt+TTL %v", put.ExpiresAt, want)
	}

	got, err := store.Get(context.Background(), "ipanema", testDate)
	if err != nil {
		t.Fatalf("Get after Put: %v", err)
	}
	if got.SpotID != "ipanema" || got.Date != "2026-08-28" || got.Source != "stormglass" {
		t.Errorf("entry header = %+v", got)
	}
	if len(got.Events) != 2 || got.Events[0].Type != "high" || got.Events[1].Height != 0.2 {
		t.Errorf("events = %+v", got.Events)
	}
}

func TestGetAbsentIsMiss(t *testing.T) {
	store := New(newMemDocs(), time.Hour, nil)
	_, err := store.Get(context.Background(), "ipanema", testDate)
	if !errors.Is(err, ErrMiss) {
		t.Errorf("absent entry: err = %v, want ErrMiss", err)
	}
}

func TestGetExpiredIsMiss(t *testing.T) {
	store := New(newMemDocs(), time.Hour, nil)

	clock := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	if _, err := store.Put(context.Background(), "ipanema", testDate, testEvents(), "stormglass"); err != nil {
		t.Fatal(err)
	}

	// Still fresh one minute before the TTL boundary.
	clock = clock.Add(59 * time.Minute)
	if _, err := store.Get(context.Background(), "ipanema", testDate); err != nil {
		t.Errorf("fresh entry reported miss: %v", err)
	}

	// Exactly at the TTL boundary the entry is expired.
	clock = clock.Add(time.Minute)
	if _, err := store.Get(context.Background(), "ipanema", testDate); !errors.Is(err, ErrMiss) {
		t.Errorf("expired entry: err = %v, want ErrMiss", err)
	}
}

func TestGetUnreadableDocumentIsMiss(t *testing.T) {
	docs := newMemDocs()
	docs.docs["ipanema_2026-08-28"] = []byte("{not json")

	store := New(docs, time.Hour, nil)
	if _, err := store.Get(context.Background(), "ipanema", testDate); !errors.Is(err, ErrMiss) {
		t.Errorf("unreadable entry: err = %v, want ErrMiss", err)
	}
}

func TestGetStorageErrorIsMiss(t *testing.T) {
	docs := newMemDocs()
	docs.getFn = func(ctx context.Context, key string) ([]byte, error) {
		return nil, errors.New("connection refused")
	}

	store := New(docs, time.Hour, nil)
	if _, err := store.Get(context.Background(), "ipanema", testDate); !errors.Is(err, ErrMiss) {
		t.Errorf("storage error: err = %v, want ErrMiss", err)
	}
}

func TestPutStorageErrorSurfaces(t *testing.T) {
	docs := newMemDocs()
	docs.putFn = func(ctx context.Context, key string, doc []byte) error {
		return errors.New("disk full")
	}

	store := New(docs, time.Hour, nil)
	if _, err := store.Put(context.Background(), "ipanema", testDate, testEvents(), "stormglass"); err == nil {
		t.Error("Put must surface storage errors, got nil")
	}
}

func TestPutReplacesWholeDocument(t *testing.T) {
	store := New(newMemDocs(), time.Hour, nil)
	ctx := context.Background()

	if _, err := store.Put(ctx, "ipanema", testDate, testEvents(), "stormglass"); err != nil {
		t.Fatal(err)
	}
	replacement := []Event{{Time: testDate.Add(5 * time.Hour), Type: "high", Height: 1.4}}
	if _, err := store.Put(ctx, "ipanema", testDate, replacement, "noaa"); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "ipanema", testDate)
	if err != nil {
		t.Fatal(err)
	}
	if got.Source != "noaa" || len(got.Events) != 1 {
		t.Errorf("entry after refresh = %+v, want full replacement", got)
	}
}
