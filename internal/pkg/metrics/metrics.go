package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Counters and gauges for the odds cycle. Registered once at package load;
// every binary that imports this package and serves /metrics exposes them.
var (
	CyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oddsbot_cycles_total",
		Help: "Completed odds cycles",
	})
	CycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "oddsbot_cycle_duration_seconds",
		Help:    "Wall time of a full fetch+compute+persist cycle",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})
	FetchedEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oddsbot_fetched_events_total",
		Help: "Raw events fetched per provider",
	}, []string{"provider"})
	FeedErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oddsbot_feed_errors_total",
		Help: "Fetch/parse failures per provider",
	}, []string{"provider"})
	SkippedEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oddsbot_skipped_events_total",
		Help: "Events dropped during normalization, by reason",
	}, []string{"reason"})
	MatchesTracked = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "oddsbot_matches_tracked",
		Help: "Matches in the latest snapshot",
	})
	EVOpportunities = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "oddsbot_ev_opportunities",
		Help: "Positive-EV bets found in the latest cycle",
	})
	ArbOpportunities = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "oddsbot_arb_opportunities",
		Help: "Arbitrage opportunities found in the latest cycle",
	})
	AlertsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oddsbot_alerts_sent_total",
		Help: "Alerts passed through the gate, by kind",
	}, []string{"kind"})
	StageErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oddsbot_stage_errors_total",
		Help: "Cycle errors by stage",
	}, []string{"stage"})
	ClosingCaptured = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oddsbot_closing_quotes_captured_total",
		Help: "Closing reference quotes captured near kickoff",
	})
)

func init() {
	prometheus.MustRegister(
		CyclesTotal,
		CycleDuration,
		FetchedEvents,
		FeedErrors,
		SkippedEvents,
		MatchesTracked,
		EVOpportunities,
		ArbOpportunities,
		AlertsSent,
		StageErrors,
		ClosingCaptured,
	)
}

// ObserveCycle records one finished cycle.
func ObserveCycle(start time.Time, matches, evs, arbs int) {
	CyclesTotal.Inc()
	CycleDuration.Observe(time.Since(start).Seconds())
	MatchesTracked.Set(float64(matches))
	EVOpportunities.Set(float64(evs))
	ArbOpportunities.Set(float64(arbs))
}
