package notifications

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/swellwatch/swellwatch/internal/forecast"
	"github.com/swellwatch/swellwatch/internal/scheduling"
)

// Evaluator decides, for one scheduling at one instant, which notifications
// are due. Rules run in fixed priority order and are independent: a
// scheduling can trigger several types in the same local day, but each type
// at most once (dedupe key scheduling id + type + local date).
type Evaluator struct {
	forecasts ForecastSource
	spots     forecast.SpotDirectory
	dedupe    DedupeStore
	defaultTZ string

	now func() time.Time // overridable in tests
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(forecasts ForecastSource, spots forecast.SpotDirectory, dedupe DedupeStore, defaultTZ string) *Evaluator {
	return &Evaluator{
		forecasts: forecasts,
		spots:     spots,
		dedupe:    dedupe,
		defaultTZ: defaultTZ,
		now:       time.Now,
	}
}

// spotHours is one resolved target spot with its scored forecast.
type spotHours struct {
	id    string
	name  string
	hours []forecast.ScoredHour
}

// Evaluate runs all rules for one scheduling. A forecast failure for the
// whole target is an evaluation failure; the caller logs and skips this
// scheduling without affecting the rest of the batch.
func (e *Evaluator) Evaluate(ctx context.Context, sched *scheduling.Scheduling) (*Result, error) {
	loc := sched.Location(e.defaultTZ)
	nowLocal := e.now().In(loc)
	localDate := nowLocal.Format(localDateLayout)

	targets, err := e.resolveTargets(ctx, sched)
	if err != nil {
		return nil, err
	}

	// Pool qualifying windows across all target spots. For a single-spot
	// scheduling that is just the one spot's windows.
	var pooled []forecast.Window
	var allHours []forecast.ScoredHour
	for _, t := range targets {
		pooled = append(pooled, scheduling.Match(sched.Preferences, t.hours, loc)...)
		allHours = append(allHours, t.hours...)
	}
	sort.SliceStable(pooled, func(i, j int) bool { return pooled[i].Start.Before(pooled[j].Start) })

	res := &Result{NextDayBest: scheduling.NextDayBest(sched.Preferences, allHours, nowLocal, loc)}

	// Rules in fixed priority order.
	e.tryAdvance(ctx, sched, pooled, nowLocal, localDate, res)
	e.tryDailySummary(ctx, sched, pooled, nowLocal, localDate, loc, res)
	e.trySpecial(ctx, sched, targets, localDate, res)
	e.tryFixedTime(ctx, sched, targets, nowLocal, localDate, res)
	e.tryRegional(ctx, sched, targets, nowLocal, localDate, res)

	return res, nil
}

// resolveTargets expands the scheduling target into spots with forecasts.
// Individual spot failures degrade; only a fully unreachable target fails.
func (e *Evaluator) resolveTargets(ctx context.Context, sched *scheduling.Scheduling) ([]spotHours, error) {
	var ids []string
	switch sched.Target.Kind {
	case scheduling.TargetRegional:
		profiles, err := e.spots.ListByRegion(ctx, sched.Target.RegionID)
		if err != nil {
			return nil, fmt.Errorf("resolve region %s: %w", sched.Target.RegionID, err)
		}
		subset := make(map[string]bool, len(sched.Target.SpotSubset))
		for _, id := range sched.Target.SpotSubset {
			subset[id] = true
		}
		for _, p := range profiles {
			if len(subset) == 0 || subset[p.ID] {
				ids = append(ids, p.ID)
			}
		}
	default:
		ids = []string{sched.Target.SpotID}
	}

	var targets []spotHours
	var lastErr error
	for _, id := range ids {
		hours, err := e.forecasts.ScoredHours(ctx, id, sched.Preferences.DaysAhead)
		if err != nil {
			lastErr = err
			continue
		}
		name := id
		if p, err := e.spots.Get(ctx, id); err == nil {
			name = p.Name
		}
		targets = append(targets, spotHours{id: id, name: name, hours: hours})
	}
	if len(targets) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("no forecast for any target spot: %w", lastErr)
		}
		return nil, fmt.Errorf("scheduling %s resolves to no spots", sched.ID)
	}
	return targets, nil
}

// --------------------------------------------------------------------------
// Rules
// --------------------------------------------------------------------------

// tryAdvance fires when a qualifying window starts within advance_hours.
func (e *Evaluator) tryAdvance(ctx context.Context, sched *scheduling.Scheduling, wins []forecast.Window, nowLocal time.Time, localDate string, res *Result) {
	if !sched.Settings.PushEnabled || sched.Settings.AdvanceHours <= 0 {
		return
	}
	horizon := nowLocal.Add(time.Duration(sched.Settings.AdvanceHours) * time.Hour)
	for _, w := range wins {
		start := w.Start.In(nowLocal.Location())
		if start.After(nowLocal) && !start.After(horizon) {
			if e.due(ctx, sched.ID, TypeAdvance, localDate) {
				res.Dispatches = append(res.Dispatches, Dispatch{
					Type: TypeAdvance,
					Payload: Payload{
						Type:  TypeAdvance,
						Title: "Session coming up",
						Body: fmt.Sprintf("A %d-scored window starts at %s.",
							w.AvgScore, start.Format("15:04")),
						Data: map[string]string{
							"window_start": w.Start.Format(time.RFC3339),
							"avg_score":    strconv.Itoa(w.AvgScore),
						},
					},
				})
			}
			return
		}
	}
}

// tryDailySummary fires on the first tick at or after 08:00 local.
func (e *Evaluator) tryDailySummary(ctx context.Context, sched *scheduling.Scheduling, wins []forecast.Window, nowLocal time.Time, localDate string, loc *time.Location, res *Result) {
	if !sched.Settings.DailySummary || nowLocal.Hour() < summaryHour {
		return
	}
	if !e.due(ctx, sched.ID, TypeDailySummary, localDate) {
		return
	}

	y, m, d := nowLocal.Date()
	var today []forecast.Window
	for _, w := range wins {
		wy, wm, wd := w.Start.In(loc).Date()
		if wy == y && wm == m && wd == d {
			today = append(today, w)
		}
	}
	sort.SliceStable(today, func(i, j int) bool { return today[i].AvgScore > today[j].AvgScore })

	payload := Payload{Type: TypeDailySummary, Title: "Today's surf"}
	if len(today) == 0 {
		// "No good session" is a normal outcome and still gets a summary.
		payload.Body = "No good session today - conditions don't meet your preferences."
	} else {
		best := today[0]
		payload.Body = fmt.Sprintf("%d window(s) today. Best: %s-%s, score %d.",
			len(today),
			best.Start.In(loc).Format("15:04"), best.End.In(loc).Format("15:04"),
			best.AvgScore)
		payload.Data = map[string]string{"window_count": strconv.Itoa(len(today))}
	}
	res.Dispatches = append(res.Dispatches, Dispatch{Type: TypeDailySummary, Payload: payload})
}

// trySpecial fires when any scored hour for the target crosses the special
// threshold, independent of time-window filtering.
func (e *Evaluator) trySpecial(ctx context.Context, sched *scheduling.Scheduling, targets []spotHours, localDate string, res *Result) {
	if !sched.Settings.SpecialAlerts {
		return
	}
	for _, t := range targets {
		for _, h := range t.hours {
			if h.Score > specialScoreThreshold {
				if e.due(ctx, sched.ID, TypeSpecial, localDate) {
					res.Dispatches = append(res.Dispatches, Dispatch{
						Type: TypeSpecial,
						Payload: Payload{
							Type:  TypeSpecial,
							Title: "Epic conditions alert",
							Body: fmt.Sprintf("%s hits score %d at %s.",
								t.name, h.Score, h.Time.Format("Mon 15:04")),
							Data: map[string]string{
								"spot_id": t.id,
								"score":   strconv.Itoa(h.Score),
								"time":    h.Time.Format(time.RFC3339),
							},
						},
					})
				}
				return
			}
		}
	}
}

// tryFixedTime fires on the first tick at or after the configured HH:mm
// local wall-clock time. Wall-clock crossing is authoritative across DST.
func (e *Evaluator) tryFixedTime(ctx context.Context, sched *scheduling.Scheduling, targets []spotHours, nowLocal time.Time, localDate string, res *Result) {
	if sched.Settings.FixedTime == "" {
		return
	}
	hour, minute, err := scheduling.ParseFixedTime(sched.Settings.FixedTime)
	if err != nil {
		return // rejected at validation; stale rows just never fire
	}
	target := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), hour, minute, 0, 0, nowLocal.Location())
	if nowLocal.Before(target) {
		return
	}
	if !e.due(ctx, sched.ID, TypeFixedTime, localDate) {
		return
	}
	res.Dispatches = append(res.Dispatches, Dispatch{
		Type:    TypeFixedTime,
		Payload: snapshotPayload(TypeFixedTime, "Surf check", targets, nowLocal, len(targets)),
	})
}

// tryRegional fires the 06:00 and 18:00 local comparisons for regional
// schedulings: all region spots ranked by current score, top 3.
func (e *Evaluator) tryRegional(ctx context.Context, sched *scheduling.Scheduling, targets []spotHours, nowLocal time.Time, localDate string, res *Result) {
	if sched.Target.Kind != scheduling.TargetRegional {
		return
	}
	slots := []struct {
		t    Type
		hour int
	}{
		{TypeRegionalAM, regionalMorningHour},
		{TypeRegionalPM, regionalEveningHour},
	}
	for _, slot := range slots {
		if nowLocal.Hour() < slot.hour {
			continue
		}
		if !e.due(ctx, sched.ID, slot.t, localDate) {
			continue
		}
		res.Dispatches = append(res.Dispatches, Dispatch{
			Type:    slot.t,
			Payload: snapshotPayload(slot.t, "Regional surf ranking", targets, nowLocal, 3),
		})
	}
}

// due reports whether a (scheduling, type, local date) dispatch hasn't
// happened yet. Lookup failures suppress the dispatch: better one missed
// notification than duplicates.
func (e *Evaluator) due(ctx context.Context, schedulingID string, t Type, localDate string) bool {
	sent, err := e.dedupe.AlreadySent(ctx, schedulingID, t, localDate)
	return err == nil && !sent
}

// snapshotPayload ranks target spots by current score and formats the top n.
func snapshotPayload(t Type, title string, targets []spotHours, nowLocal time.Time, n int) Payload {
	type ranked struct {
		name  string
		score int
	}
	rank := make([]ranked, 0, len(targets))
	for _, tg := range targets {
		if cur := currentScore(tg.hours, nowLocal); cur >= 0 {
			rank = append(rank, ranked{name: tg.name, score: cur})
		}
	}
	sort.SliceStable(rank, func(i, j int) bool { return rank[i].score > rank[j].score })
	if len(rank) > n {
		rank = rank[:n]
	}

	body := "No forecast data right now."
	if len(rank) > 0 {
		body = ""
		for i, r := range rank {
			if i > 0 {
				body += " · "
			}
			body += fmt.Sprintf("%s %d", r.name, r.score)
		}
	}
	return Payload{Type: t, Title: title, Body: body}
}

// currentScore returns the score of the hour covering now, or -1.
func currentScore(hours []forecast.ScoredHour, now time.Time) int {
	for _, h := range hours {
		if !h.Time.Before(now.UTC().Truncate(time.Hour)) {
			return h.Score
		}
	}
	if len(hours) > 0 {
		return hours[len(hours)-1].Score
	}
	return -1
}
