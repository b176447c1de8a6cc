package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/swellwatch/swellwatch/internal/forecast"
	"github.com/swellwatch/swellwatch/internal/scheduling"
)

// --------------------------------------------------------------------------
// Mocks
// --------------------------------------------------------------------------

type mockSchedulings struct {
	listActiveFn func(ctx context.Context) ([]*scheduling.Scheduling, error)
}

func (m *mockSchedulings) ListActive(ctx context.Context) ([]*scheduling.Scheduling, error) {
	return m.listActiveFn(ctx)
}

type mockNotifier struct {
	mu     sync.Mutex
	sends  []Payload
	sendFn func(ctx context.Context, tokens []string, payload Payload) error
}

func (m *mockNotifier) Send(ctx context.Context, tokens []string, payload Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendFn != nil {
		if err := m.sendFn(ctx, tokens, payload); err != nil {
			return err
		}
	}
	m.sends = append(m.sends, payload)
	return nil
}

func (m *mockNotifier) sent() []Payload {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Payload, len(m.sends))
	copy(out, m.sends)
	return out
}

type mockTokens struct {
	tokensFn func(ctx context.Context, userID string) ([]string, error)
}

func (m *mockTokens) Tokens(ctx context.Context, userID string) ([]string, error) {
	if m.tokensFn != nil {
		return m.tokensFn(ctx, userID)
	}
	return []string{"device-token"}, nil
}

type mockHistory struct {
	mu      sync.Mutex
	records []*Record
}

func (m *mockHistory) Record(ctx context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *mockHistory) byStatus(status string) []*Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Record
	for _, r := range m.records {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

type mockNextDay struct {
	mu     sync.Mutex
	writes map[string]*forecast.Window
}

func (m *mockNextDay) SetNextDayBest(ctx context.Context, schedulingID string, best *forecast.Window) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writes == nil {
		m.writes = map[string]*forecast.Window{}
	}
	m.writes[schedulingID] = best
	return nil
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

type tickHarness struct {
	scheduler *Scheduler
	evaluator *Evaluator
	notifier  *mockNotifier
	history   *mockHistory
	nextDay   *mockNextDay
	dedupe    *memDedupe
}

// newTickHarness wires a scheduler over one summary-enabled scheduling with
// good morning conditions, sharing one dedupe store across ticks.
func newTickHarness(t *testing.T, scheds []*scheduling.Scheduling, hours []forecast.ScoredHour) *tickHarness {
	t.Helper()

	dedupe := newMemDedupe()
	evaluator := NewEvaluator(
		&mockForecasts{scoredHoursFn: func(ctx context.Context, spotID string, days int) ([]forecast.ScoredHour, error) {
			return hours, nil
		}},
		&mockSpots{},
		dedupe,
		"America/Sao_Paulo",
	)

	notifier := &mockNotifier{}
	history := &mockHistory{}
	nextDay := &mockNextDay{}

	scheduler := NewScheduler(
		&mockSchedulings{listActiveFn: func(ctx context.Context) ([]*scheduling.Scheduling, error) {
			return scheds, nil
		}},
		evaluator, notifier, &mockTokens{}, dedupe, history, nextDay,
		SchedulerConfig{Workers: 2, DefaultTZ: "America/Sao_Paulo"},
		nil,
	)

	return &tickHarness{
		scheduler: scheduler,
		evaluator: evaluator,
		notifier:  notifier,
		history:   history,
		nextDay:   nextDay,
		dedupe:    dedupe,
	}
}

func (h *tickHarness) setClock(now time.Time) {
	h.scheduler.now = func() time.Time { return now }
	h.evaluator.now = func() time.Time { return now }
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

// TestTickDailySummaryExactlyOnce walks the tick clock across the 08:00
// local boundary and checks the summary goes out exactly once that day.
func TestTickDailySummaryExactlyOnce(t *testing.T) {
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, saoPaulo)
	sched := singleSpotScheduling()
	sched.Settings.DailySummary = true

	h := newTickHarness(t, []*scheduling.Scheduling{sched}, goodHours(day, 75))

	ticks := []time.Time{
		time.Date(2026, 8, 28, 7, 55, 0, 0, saoPaulo),
		time.Date(2026, 8, 28, 8, 0, 0, 0, saoPaulo),
		time.Date(2026, 8, 28, 8, 5, 0, 0, saoPaulo),
		time.Date(2026, 8, 28, 8, 10, 0, 0, saoPaulo),
	}
	for _, tick := range ticks {
		h.setClock(tick)
		h.scheduler.Tick(context.Background())
	}

	summaries := 0
	for _, p := range h.notifier.sent() {
		if p.Type == TypeDailySummary {
			summaries++
		}
	}
	if summaries != 1 {
		t.Errorf("sent %d daily summaries across the 08:00 boundary, want exactly 1", summaries)
	}

	// The next local day the summary is due again.
	h.setClock(time.Date(2026, 8, 29, 8, 5, 0, 0, saoPaulo))
	h.scheduler.Tick(context.Background())

	summaries = 0
	for _, p := range h.notifier.sent() {
		if p.Type == TypeDailySummary {
			summaries++
		}
	}
	if summaries != 2 {
		t.Errorf("sent %d summaries over two local days, want 2", summaries)
	}
}

func TestTickRecordsHistoryAndNextDayBest(t *testing.T) {
	today := time.Date(2026, 8, 28, 0, 0, 0, 0, saoPaulo)
	tomorrow := today.AddDate(0, 0, 1)

	sched := singleSpotScheduling()
	sched.Settings.DailySummary = true

	hours := append(goodHours(today, 75), goodHours(tomorrow, 80)...)
	h := newTickHarness(t, []*scheduling.Scheduling{sched}, hours)

	h.setClock(time.Date(2026, 8, 28, 9, 0, 0, 0, saoPaulo))
	h.scheduler.Tick(context.Background())

	sent := h.history.byStatus("sent")
	if len(sent) != 1 {
		t.Fatalf("got %d sent history rows, want 1", len(sent))
	}
	rec := sent[0]
	if rec.SchedulingID != sched.ID || rec.UserID != sched.UserID || rec.Type != TypeDailySummary {
		t.Errorf("history row = %+v", rec)
	}

	best, ok := h.nextDay.writes[sched.ID]
	if !ok {
		t.Fatal("next-day summary was not written back")
	}
	if best == nil || best.AvgScore != 80 {
		t.Errorf("next_day_best = %+v, want tomorrow's avg-80 window", best)
	}
}

func TestTickSendFailureRecordsFailed(t *testing.T) {
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, saoPaulo)
	sched := singleSpotScheduling()
	sched.Settings.DailySummary = true

	h := newTickHarness(t, []*scheduling.Scheduling{sched}, goodHours(day, 75))
	h.notifier.sendFn = func(ctx context.Context, tokens []string, payload Payload) error {
		return errors.New("fcm unavailable")
	}

	h.setClock(time.Date(2026, 8, 28, 9, 0, 0, 0, saoPaulo))
	h.scheduler.Tick(context.Background())

	if failed := h.history.byStatus("failed"); len(failed) != 1 {
		t.Errorf("got %d failed history rows, want 1", len(failed))
	}
	if sent := h.history.byStatus("sent"); len(sent) != 0 {
		t.Errorf("got %d sent history rows, want 0", len(sent))
	}
}

func TestTickMissingTokensRecordsFailed(t *testing.T) {
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, saoPaulo)
	sched := singleSpotScheduling()
	sched.Settings.DailySummary = true

	h := newTickHarness(t, []*scheduling.Scheduling{sched}, goodHours(day, 75))
	h.scheduler.tokens = &mockTokens{tokensFn: func(ctx context.Context, userID string) ([]string, error) {
		return nil, errors.New("no devices registered")
	}}

	h.setClock(time.Date(2026, 8, 28, 9, 0, 0, 0, saoPaulo))
	h.scheduler.Tick(context.Background())

	if got := len(h.notifier.sent()); got != 0 {
		t.Errorf("sent %d notifications without tokens, want 0", got)
	}
	if failed := h.history.byStatus("failed"); len(failed) != 1 {
		t.Errorf("got %d failed history rows, want 1", len(failed))
	}
}

func TestTickOneFailingSchedulingDoesNotBlockOthers(t *testing.T) {
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, saoPaulo)

	healthy := singleSpotScheduling()
	healthy.Settings.DailySummary = true

	broken := singleSpotScheduling()
	broken.ID = "sched-2"
	broken.UserID = "user-2"
	broken.Target.SpotID = "unreachable"
	broken.Settings.DailySummary = true

	dedupe := newMemDedupe()
	evaluator := NewEvaluator(
		&mockForecasts{scoredHoursFn: func(ctx context.Context, spotID string, days int) ([]forecast.ScoredHour, error) {
			if spotID == "unreachable" {
				return nil, errors.New("provider down")
			}
			return goodHours(day, 75), nil
		}},
		&mockSpots{}, dedupe, "America/Sao_Paulo",
	)

	notifier := &mockNotifier{}
	scheduler := NewScheduler(
		&mockSchedulings{listActiveFn: func(ctx context.Context) ([]*scheduling.Scheduling, error) {
			return []*scheduling.Scheduling{broken, healthy}, nil
		}},
		evaluator, notifier, &mockTokens{}, dedupe, &mockHistory{}, &mockNextDay{},
		SchedulerConfig{Workers: 1, DefaultTZ: "America/Sao_Paulo"},
		nil,
	)

	now := time.Date(2026, 8, 28, 9, 0, 0, 0, saoPaulo)
	scheduler.now = func() time.Time { return now }
	evaluator.now = func() time.Time { return now }

	scheduler.Tick(context.Background())

	if got := len(notifier.sent()); got != 1 {
		t.Errorf("healthy scheduling sent %d notifications, want 1", got)
	}
}

func TestTickBudgetAbandonsRemainder(t *testing.T) {
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, saoPaulo)

	var scheds []*scheduling.Scheduling
	for _, id := range []string{"a", "b", "c", "d"} {
		s := singleSpotScheduling()
		s.ID = id
		s.Settings.DailySummary = true
		scheds = append(scheds, s)
	}

	var mu sync.Mutex
	evaluated := 0
	dedupe := newMemDedupe()
	evaluator := NewEvaluator(
		&mockForecasts{scoredHoursFn: func(ctx context.Context, spotID string, days int) ([]forecast.ScoredHour, error) {
			mu.Lock()
			evaluated++
			mu.Unlock()
			time.Sleep(30 * time.Millisecond)
			return goodHours(day, 75), nil
		}},
		&mockSpots{}, dedupe, "America/Sao_Paulo",
	)

	scheduler := NewScheduler(
		&mockSchedulings{listActiveFn: func(ctx context.Context) ([]*scheduling.Scheduling, error) {
			return scheds, nil
		}},
		evaluator, &mockNotifier{}, &mockTokens{}, dedupe, &mockHistory{}, &mockNextDay{},
		SchedulerConfig{Workers: 1, Budget: 50 * time.Millisecond, DefaultTZ: "America/Sao_Paulo"},
		nil,
	)

	now := time.Date(2026, 8, 28, 9, 0, 0, 0, saoPaulo)
	scheduler.now = func() time.Time { return now }
	evaluator.now = func() time.Time { return now }

	scheduler.Tick(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if evaluated >= len(scheds) {
		t.Errorf("evaluated all %d schedulings despite a 50ms budget", evaluated)
	}
}
