package notifications

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/swellwatch/swellwatch/internal/metrics"
	"github.com/swellwatch/swellwatch/internal/scheduling"
)

// Scheduler re-evaluates every active scheduling on a fixed tick.
// Schedulings are fanned out over a bounded worker pool; one scheduling's
// failure never blocks the rest of the batch. A tick that exceeds its
// budget abandons the remainder - late schedulings are simply picked up
// next cycle.
type Scheduler struct {
	schedulings SchedulingSource
	evaluator   *Evaluator
	notifier    Notifier
	tokens      TokenSource
	dedupe      DedupeStore
	history     HistoryStore
	nextDay     NextDayWriter
	logger      *slog.Logger

	interval time.Duration
	budget   time.Duration
	workers  int
	defaultTZ string

	now func() time.Time // overridable in tests
}

// SchedulerConfig bundles Scheduler tuning knobs.
type SchedulerConfig struct {
	Interval  time.Duration
	Budget    time.Duration
	Workers   int
	DefaultTZ string
}

// NewScheduler wires the tick loop's collaborators.
func NewScheduler(
	schedulings SchedulingSource,
	evaluator *Evaluator,
	notifier Notifier,
	tokens TokenSource,
	dedupe DedupeStore,
	history HistoryStore,
	nextDay NextDayWriter,
	cfg SchedulerConfig,
	logger *slog.Logger,
) *Scheduler {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		schedulings: schedulings,
		evaluator:   evaluator,
		notifier:    notifier,
		tokens:      tokens,
		dedupe:      dedupe,
		history:     history,
		nextDay:     nextDay,
		logger:      logger,
		interval:    cfg.Interval,
		budget:      cfg.Budget,
		workers:     cfg.Workers,
		defaultTZ:   cfg.DefaultTZ,
		now:         time.Now,
	}
}

// Run starts the tick loop. Blocks until ctx is cancelled. Intended to be
// called with `go`.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Notification scheduler started",
		"interval", s.interval, "workers", s.workers, "budget", s.budget)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Tick(ctx)
		case <-ctx.Done():
			s.logger.Info("Notification scheduler stopped")
			return
		}
	}
}

// Tick evaluates all active schedulings once. Exported so cmd/swellctl can
// run a single cycle.
func (s *Scheduler) Tick(ctx context.Context) {
	metrics.SchedulerTicks.Inc()
	start := s.now()

	tickCtx := ctx
	var cancel context.CancelFunc
	if s.budget > 0 {
		tickCtx, cancel = context.WithTimeout(ctx, s.budget)
		defer cancel()
	}

	active, err := s.schedulings.ListActive(tickCtx)
	if err != nil {
		s.logger.Error("tick: list active schedulings failed", "error", err)
		return
	}
	if len(active) == 0 {
		return
	}

	workers := s.workers
	if workers > len(active) {
		workers = len(active)
	}

	ch := make(chan *scheduling.Scheduling, len(active))
	for _, sched := range active {
		ch <- sched
	}
	close(ch)

	var wg sync.WaitGroup
	var evaluated, dispatched, failed int64
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sched := range ch {
				if tickCtx.Err() != nil {
					return // budget exhausted; remainder waits for next tick
				}
				n, err := s.evaluateOne(tickCtx, sched)
				mu.Lock()
				evaluated++
				dispatched += int64(n)
				if err != nil {
					failed++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if dispatched > 0 || failed > 0 {
		s.logger.Info("tick complete",
			"schedulings", evaluated, "dispatched", dispatched, "failed", failed,
			"duration", s.now().Sub(start).Round(time.Millisecond))
	}
}

// evaluateOne runs one scheduling's evaluation and dispatch. Returns the
// number of notifications dispatched.
func (s *Scheduler) evaluateOne(ctx context.Context, sched *scheduling.Scheduling) (int, error) {
	res, err := s.evaluator.Evaluate(ctx, sched)
	if err != nil {
		metrics.EvaluationFailures.Inc()
		s.logger.Warn("scheduling evaluation failed, skipping",
			"scheduling_id", sched.ID, "error", err)
		return 0, err
	}

	// Refresh the cached next-day summary wholesale.
	if err := s.nextDay.SetNextDayBest(ctx, sched.ID, res.NextDayBest); err != nil {
		s.logger.Warn("next-day summary write failed", "scheduling_id", sched.ID, "error", err)
	}

	loc := sched.Location(s.defaultTZ)
	localDate := s.now().In(loc).Format(localDateLayout)

	sent := 0
	for _, d := range res.Dispatches {
		// Claim the dedupe key first; losing the claim means another tick
		// (or a racing worker) already dispatched this type today.
		claimed, err := s.dedupe.MarkSent(ctx, sched.ID, d.Type, localDate)
		if err != nil || !claimed {
			continue
		}

		tokens, err := s.tokens.Tokens(ctx, sched.UserID)
		if err != nil {
			s.logger.Warn("no device tokens", "user_id", sched.UserID, "error", err)
			s.record(ctx, sched, d, "failed", "no device tokens")
			continue
		}

		if err := s.notifier.Send(ctx, tokens, d.Payload); err != nil {
			metrics.SendFailures.Inc()
			s.logger.Warn("notification send failed",
				"scheduling_id", sched.ID, "type", d.Type, "error", err)
			s.record(ctx, sched, d, "failed", err.Error())
			continue
		}

		metrics.NotificationsDispatched.WithLabelValues(string(d.Type)).Inc()
		s.record(ctx, sched, d, "sent", "")
		sent++
	}
	return sent, nil
}

func (s *Scheduler) record(ctx context.Context, sched *scheduling.Scheduling, d Dispatch, status, errMsg string) {
	rec := &Record{
		SchedulingID: sched.ID,
		UserID:       sched.UserID,
		Type:         d.Type,
		Title:        d.Payload.Title,
		Body:         d.Payload.Body,
		Status:       status,
		Error:        errMsg,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.history.Record(ctx, rec); err != nil {
		s.logger.Warn("notification history write failed",
			"scheduling_id", sched.ID, "error", err)
	}
}
