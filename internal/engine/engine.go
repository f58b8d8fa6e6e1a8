// Package engine implements the detection pipeline: normalize raw feed
// events into canonical matches, derive vig-free fair probabilities from a
// reference book, flag +EV quotes and cross-book arbitrages, gate repeat
// alerts and capture closing lines.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/otso2008/OddsBot/internal/feed"
	"github.com/otso2008/OddsBot/internal/pkg/config"
	"github.com/otso2008/OddsBot/internal/pkg/metrics"
	"github.com/otso2008/OddsBot/internal/pkg/models"
	"github.com/otso2008/OddsBot/internal/pkg/notify"
	"github.com/otso2008/OddsBot/internal/pkg/storage"
)

// CycleStats summarizes one completed cycle.
type CycleStats struct {
	Events          int
	Matches         int
	Skipped         map[SkipReason]int
	EVAll           int
	EVHigh          int
	Arbs            int
	EVAlerts        int
	ArbAlerts       int
	ClosingCaptured int
	ClosingEvals    int
	Duration        time.Duration
}

// Engine wires the pipeline stages together and runs them on an interval.
// Storage and cache are optional; detection and alerting work without them.
type Engine struct {
	cfg        *config.Config
	providers  []feed.Provider
	store      storage.Store
	cache      *storage.SnapshotCache
	dispatcher *notify.Dispatcher

	normalizer *Normalizer
	fairModel  *FairModel
	ev         *EVDetector
	arb        *ArbDetector
	evGate     *AlertGate
	arbGate    *AlertGate
	closing    *ClosingTracker

	mu        sync.Mutex
	lastCycle time.Time
}

func New(cfg *config.Config, providers []feed.Provider, store storage.Store, cache *storage.SnapshotCache, dispatcher *notify.Dispatcher) *Engine {
	eng := cfg.Engine
	return &Engine{
		cfg:        cfg,
		providers:  providers,
		store:      store,
		cache:      cache,
		dispatcher: dispatcher,
		normalizer: NewNormalizer(),
		fairModel:  NewFairModel(eng.ReferenceBooks),
		ev:         NewEVDetector(eng.EVHorizon.Duration, eng.MinEVPercent, eng.HighEVPercent),
		arb:        NewArbDetector(eng.MinArbROIPercent, eng.ArbTotalStake),
		evGate:     NewAlertGate(eng.EVAlertThreshold),
		arbGate:    NewAlertGate(eng.ArbAlertThreshold),
		closing:    NewClosingTracker(eng.ClosingWindow.Duration),
	}
}

// Run executes one cycle immediately, then repeats on the configured
// interval until the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	interval := e.cfg.Engine.Interval.Duration
	slog.Info("Engine started",
		"interval", interval,
		"sports", len(e.cfg.Engine.Sports),
		"providers", len(e.providers),
		"reference_books", e.cfg.Engine.ReferenceBooks,
	)

	e.RunCycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Engine stopped")
			return nil
		case <-ticker.C:
			e.RunCycle(ctx)
		}
	}
}

// RunCycle executes one full pipeline pass. Failures in any stage are
// logged and counted; nothing here terminates the process.
func (e *Engine) RunCycle(ctx context.Context) (stats CycleStats) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			metrics.StageErrors.WithLabelValues("cycle").Inc()
			slog.Error("Cycle panicked", "panic", r)
		}
	}()

	events := feed.FetchAll(ctx, e.providers, e.cfg.Engine.Sports, e.cfg.Feeds.Timeout.Duration)
	stats.Events = len(events)

	res := e.normalizer.Normalize(events)
	stats.Matches = len(res.Matches)
	stats.Skipped = res.Skipped
	for reason, count := range res.Skipped {
		metrics.SkippedEvents.WithLabelValues(string(reason)).Add(float64(count))
	}

	// Gate entries for matches that kicked off since the last cycle can
	// never alert again; sweep them before this cycle's gating.
	now := time.Now()
	e.evGate.EvictStarted(now)
	e.arbGate.EvictStarted(now)

	sheet := e.fairModel.Compute(res.Matches)
	evAll, evHigh := e.ev.Detect(res.Matches, sheet)
	arbs := e.arb.Detect(res.Matches)
	stats.EVAll = len(evAll)
	stats.EVHigh = len(evHigh)
	stats.Arbs = len(arbs)

	stats.EVAlerts, stats.ArbAlerts = e.sendAlerts(ctx, evAll, arbs)

	closingQuotes := e.closing.Capture(res.Matches, sheet)
	stats.ClosingCaptured = len(closingQuotes)

	e.persist(ctx, res.Matches, sheet, evAll, evHigh, arbs, closingQuotes)
	stats.ClosingEvals = e.evaluateClosing(ctx, now)
	e.cacheSnapshot(ctx, res.Matches, stats)

	stats.Duration = time.Since(start)
	metrics.ObserveCycle(start, stats.Matches, stats.EVAll, stats.Arbs)
	metrics.ClosingCaptured.Add(float64(stats.ClosingCaptured))

	e.mu.Lock()
	e.lastCycle = time.Now()
	e.mu.Unlock()

	slog.Info("Cycle complete",
		"duration", stats.Duration.Round(time.Millisecond),
		"events", stats.Events,
		"matches", stats.Matches,
		"ev_opportunities", stats.EVAll,
		"ev_high", stats.EVHigh,
		"arbs", stats.Arbs,
		"ev_alerts", stats.EVAlerts,
		"arb_alerts", stats.ArbAlerts,
		"closing_captured", stats.ClosingCaptured,
		"gate_size", e.evGate.Size()+e.arbGate.Size(),
	)
	return stats
}

// sendAlerts pushes gated opportunities to every channel. EV gating is per
// outcome, so several books on the same outcome share one baseline;
// arbitrage gating is per market.
func (e *Engine) sendAlerts(ctx context.Context, evs []models.EVOpportunity, arbs []models.ArbitrageOpportunity) (evAlerts, arbAlerts int) {
	if e.dispatcher == nil || e.dispatcher.Channels() == 0 {
		return 0, 0
	}

	for i := range evs {
		opp := &evs[i]
		if !e.evGate.ShouldAlert(opp.Key(), opp.EVPercent) {
			continue
		}
		evAlerts++
		metrics.AlertsSent.WithLabelValues(notify.KindEV).Inc()
		e.dispatcher.Dispatch(ctx, notify.FormatEV(*opp))
	}

	for i := range arbs {
		arb := &arbs[i]
		if !e.arbGate.ShouldAlert(arb.Key(), arb.ROIPercent) {
			continue
		}
		arbAlerts++
		metrics.AlertsSent.WithLabelValues(notify.KindArb).Inc()
		e.dispatcher.Dispatch(ctx, notify.FormatArb(*arb))
	}
	return evAlerts, arbAlerts
}

// persist writes the cycle's results. Storage failures are logged and
// counted but never stop the cycle; detection already happened in memory.
func (e *Engine) persist(ctx context.Context, matches map[string]*models.Match, sheet FairSheet,
	evAll, evHigh []models.EVOpportunity, arbs []models.ArbitrageOpportunity, closingQuotes []models.ClosingQuote) {
	if e.store == nil {
		return
	}

	if err := e.store.SaveMatches(ctx, SortedMatches(matches)); err != nil {
		e.persistError("matches", err)
	}
	if err := e.store.SaveFairQuotes(ctx, sheet.Quotes(matches)); err != nil {
		e.persistError("fair_quotes", err)
	}
	if err := e.store.SaveEVOpportunities(ctx, evAll, false); err != nil {
		e.persistError("ev_results", err)
	}
	if err := e.store.SaveEVOpportunities(ctx, evHigh, true); err != nil {
		e.persistError("ev_high_results", err)
	}
	if err := e.store.SaveArbOpportunities(ctx, arbs); err != nil {
		e.persistError("arb_results", err)
	}
	if err := e.store.SaveClosingQuotes(ctx, closingQuotes); err != nil {
		e.persistError("closing_odds", err)
	}
}

func (e *Engine) persistError(stage string, err error) {
	metrics.StageErrors.WithLabelValues("persist_" + stage).Inc()
	slog.Error("Persistence failed", "stage", stage, "error", err)
}

// evaluateClosing grades stored high-value picks whose match has kicked
// off against their captured closing quotes.
func (e *Engine) evaluateClosing(ctx context.Context, now time.Time) int {
	if e.store == nil {
		return 0
	}

	pending, err := e.store.PendingClosingEvals(ctx, now)
	if err != nil {
		metrics.StageErrors.WithLabelValues("closing_eval").Inc()
		slog.Error("Failed to load pending closing evals", "error", err)
		return 0
	}
	if len(pending) == 0 {
		return 0
	}

	evals := make([]models.ClosingEval, 0, len(pending))
	for _, p := range pending {
		evals = append(evals, e.closing.Evaluate(p.EV, p.Closing))
	}
	if err := e.store.SaveClosingEvals(ctx, evals); err != nil {
		metrics.StageErrors.WithLabelValues("closing_eval").Inc()
		slog.Error("Failed to save closing evals", "error", err)
		return 0
	}

	beat := 0
	for _, eval := range evals {
		if eval.BeatClosing {
			beat++
		}
	}
	slog.Info("Closing lines evaluated", "evaluated", len(evals), "beat_closing", beat)
	return len(evals)
}

func (e *Engine) cacheSnapshot(ctx context.Context, matches map[string]*models.Match, stats CycleStats) {
	if e.cache == nil {
		return
	}

	ttl := 2 * e.cfg.Engine.Interval.Duration
	if err := e.cache.StoreSnapshot(ctx, matches, ttl); err != nil {
		metrics.StageErrors.WithLabelValues("cache_snapshot").Inc()
		slog.Error("Failed to cache snapshot", "error", err)
		return
	}
	info := storage.CycleInfo{
		CompletedAt: time.Now().UTC(),
		Matches:     stats.Matches,
		EVCount:     stats.EVAll,
		ArbCount:    stats.Arbs,
	}
	if err := e.cache.StoreCycleInfo(ctx, info, ttl); err != nil {
		slog.Error("Failed to cache cycle info", "error", err)
	}
}

// Healthy reports whether a cycle completed recently. Used by the metrics
// server's readiness endpoint.
func (e *Engine) Healthy(ctx context.Context) error {
	e.mu.Lock()
	last := e.lastCycle
	e.mu.Unlock()

	if last.IsZero() {
		return fmt.Errorf("no cycle completed yet")
	}
	if stale := time.Since(last); stale > 3*e.cfg.Engine.Interval.Duration {
		return fmt.Errorf("last cycle %s ago", stale.Round(time.Second))
	}
	return nil
}
