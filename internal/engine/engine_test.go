package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/otso2008/OddsBot/internal/feed"
	"github.com/otso2008/OddsBot/internal/pkg/config"
	"github.com/otso2008/OddsBot/internal/pkg/models"
	"github.com/otso2008/OddsBot/internal/pkg/notify"
	"github.com/otso2008/OddsBot/internal/pkg/storage"
)

type stubProvider struct {
	name   string
	events map[string][]feed.Event
	err    error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Fetch(_ context.Context, sport string) ([]feed.Event, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.events[sport], nil
}

type stubStore struct {
	matches    int
	fairQuotes int
	evGeneral  int
	evHigh     int
	arbs       int
	closing    int
	evals      []models.ClosingEval
	pending    []storage.PendingEval
	failSaves  bool
}

func (s *stubStore) SaveMatches(_ context.Context, matches []*models.Match) error {
	if s.failSaves {
		return errors.New("save failed")
	}
	s.matches += len(matches)
	return nil
}

func (s *stubStore) SaveFairQuotes(_ context.Context, rows []models.FairQuote) error {
	if s.failSaves {
		return errors.New("save failed")
	}
	s.fairQuotes += len(rows)
	return nil
}

func (s *stubStore) SaveEVOpportunities(_ context.Context, opps []models.EVOpportunity, highValue bool) error {
	if s.failSaves {
		return errors.New("save failed")
	}
	if highValue {
		s.evHigh += len(opps)
	} else {
		s.evGeneral += len(opps)
	}
	return nil
}

func (s *stubStore) SaveArbOpportunities(_ context.Context, arbs []models.ArbitrageOpportunity) error {
	if s.failSaves {
		return errors.New("save failed")
	}
	s.arbs += len(arbs)
	return nil
}

func (s *stubStore) SaveClosingQuotes(_ context.Context, quotes []models.ClosingQuote) error {
	if s.failSaves {
		return errors.New("save failed")
	}
	s.closing += len(quotes)
	return nil
}

func (s *stubStore) PendingClosingEvals(_ context.Context, _ time.Time) ([]storage.PendingEval, error) {
	return s.pending, nil
}

func (s *stubStore) SaveClosingEvals(_ context.Context, evals []models.ClosingEval) error {
	s.evals = append(s.evals, evals...)
	return nil
}

func (s *stubStore) ListMatches(_ context.Context, _ string, _, _ int) ([]storage.MatchRecord, error) {
	return nil, nil
}

func (s *stubStore) ListOdds(_ context.Context, _ string) ([]storage.OddsRecord, error) {
	return nil, nil
}

func (s *stubStore) ListFairQuotes(_ context.Context, _ string) ([]storage.StoredFair, error) {
	return nil, nil
}

func (s *stubStore) ListEVOpportunities(_ context.Context, _ float64, _, _ int) ([]storage.StoredEV, error) {
	return nil, nil
}

func (s *stubStore) ListArbOpportunities(_ context.Context, _ float64, _, _ int) ([]storage.StoredArb, error) {
	return nil, nil
}

func (s *stubStore) Ping(_ context.Context) error { return nil }

func (s *stubStore) Close() error { return nil }

type recordingNotifier struct {
	sent []notify.Alert
}

func (r *recordingNotifier) Name() string { return "recording" }

func (r *recordingNotifier) Send(_ context.Context, alert notify.Alert) error {
	r.sent = append(r.sent, alert)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Engine: config.EngineConfig{
			Interval:          config.Duration{Duration: 600 * time.Second},
			EVHorizon:         config.Duration{Duration: 48 * time.Hour},
			MinEVPercent:      3.0,
			HighEVPercent:     5.0,
			MinArbROIPercent:  0.5,
			ArbTotalStake:     100,
			EVAlertThreshold:  0.5,
			ArbAlertThreshold: 0.5,
			ClosingWindow:     config.Duration{Duration: 20 * time.Minute},
			ReferenceBooks:    []string{"Pinnacle"},
			Sports:            []string{"soccer_epl"},
		},
		Feeds: config.FeedsConfig{
			Timeout: config.Duration{Duration: 5 * time.Second},
		},
	}
}

// Pinnacle quotes a fair coin (2.00/2.00), Betsson hangs 2.20 on the home
// side: a 10% EV bet on home and, paired with Pinnacle's away price, a
// two-legged arbitrage.
func stubEvent(start time.Time) feed.Event {
	return feed.Event{
		Sport:     "soccer_epl",
		Home:      "Arsenal",
		Away:      "Chelsea",
		StartTime: start,
		Bookmakers: []feed.BookmakerOdds{
			{Name: "Pinnacle", Markets: []feed.Market{{Key: feed.MarketKeyH2H, Outcomes: []feed.Outcome{
				{Name: "Arsenal", Price: 2.00},
				{Name: "Chelsea", Price: 2.00},
			}}}},
			{Name: "Betsson", Markets: []feed.Market{{Key: feed.MarketKeyH2H, Outcomes: []feed.Outcome{
				{Name: "Arsenal", Price: 2.20},
				{Name: "Chelsea", Price: 1.70},
			}}}},
		},
	}
}

func TestRunCycleDetectsPersistsAndAlerts(t *testing.T) {
	start := time.Now().Add(6 * time.Hour).UTC().Truncate(time.Second)
	provider := &stubProvider{
		name:   "stub",
		events: map[string][]feed.Event{"soccer_epl": {stubEvent(start)}},
	}
	store := &stubStore{}
	recorder := &recordingNotifier{}
	eng := New(testConfig(), []feed.Provider{provider}, store, nil, notify.NewDispatcher(recorder))

	if err := eng.Healthy(context.Background()); err == nil {
		t.Error("Healthy() before any cycle = nil, want error")
	}

	stats := eng.RunCycle(context.Background())

	if stats.Events != 1 || stats.Matches != 1 {
		t.Fatalf("stats events/matches = %d/%d, want 1/1", stats.Events, stats.Matches)
	}
	if stats.EVAll != 1 || stats.EVHigh != 1 {
		t.Errorf("stats EV all/high = %d/%d, want 1/1", stats.EVAll, stats.EVHigh)
	}
	if stats.Arbs != 1 {
		t.Errorf("stats.Arbs = %d, want 1", stats.Arbs)
	}
	if stats.EVAlerts != 1 || stats.ArbAlerts != 1 {
		t.Errorf("stats alerts ev/arb = %d/%d, want 1/1", stats.EVAlerts, stats.ArbAlerts)
	}
	if stats.ClosingCaptured != 0 {
		t.Errorf("stats.ClosingCaptured = %d, want 0 for a match six hours out", stats.ClosingCaptured)
	}

	if store.matches != 1 || store.fairQuotes != 2 {
		t.Errorf("store matches/fairQuotes = %d/%d, want 1/2", store.matches, store.fairQuotes)
	}
	if store.evGeneral != 1 || store.evHigh != 1 || store.arbs != 1 {
		t.Errorf("store ev/evHigh/arbs = %d/%d/%d, want 1/1/1", store.evGeneral, store.evHigh, store.arbs)
	}
	if len(recorder.sent) != 2 {
		t.Fatalf("notifier received %d alerts, want 2", len(recorder.sent))
	}
	kinds := map[string]int{}
	for _, a := range recorder.sent {
		kinds[a.Kind]++
	}
	if kinds[notify.KindEV] != 1 || kinds[notify.KindArb] != 1 {
		t.Errorf("alert kinds = %v, want one ev and one arb", kinds)
	}

	if err := eng.Healthy(context.Background()); err != nil {
		t.Errorf("Healthy() after a cycle = %v, want nil", err)
	}

	// Same odds next cycle: both gates hold their baselines, nothing re-alerts.
	stats = eng.RunCycle(context.Background())
	if stats.EVAlerts != 0 || stats.ArbAlerts != 0 {
		t.Errorf("repeat cycle alerts ev/arb = %d/%d, want 0/0", stats.EVAlerts, stats.ArbAlerts)
	}
	if len(recorder.sent) != 2 {
		t.Errorf("notifier received %d alerts after repeat cycle, want still 2", len(recorder.sent))
	}
}

func TestRunCycleCapturesAndEvaluatesClosing(t *testing.T) {
	start := time.Now().Add(10 * time.Minute).UTC().Truncate(time.Second)
	provider := &stubProvider{
		name:   "stub",
		events: map[string][]feed.Event{"soccer_epl": {stubEvent(start)}},
	}
	matchKey := models.MatchKey("soccer_epl", "Arsenal", "Chelsea", start)
	store := &stubStore{
		pending: []storage.PendingEval{{
			EV: models.EVOpportunity{
				MatchKey:    matchKey,
				MarketCode:  models.MarketH2H,
				Outcome:     models.OutcomeHome,
				Bookmaker:   "Betsson",
				OfferedOdds: 2.20,
				EVPercent:   10.0,
			},
			Closing: models.ClosingQuote{
				MatchKey:   matchKey,
				MarketCode: models.MarketH2H,
				Outcome:    models.OutcomeHome,
				Bookmaker:  "Pinnacle",
				Odds:       2.00,
				NoVigOdds:  2.00,
			},
		}},
	}

	eng := New(testConfig(), []feed.Provider{provider}, store, nil, nil)
	stats := eng.RunCycle(context.Background())

	if stats.ClosingCaptured != 2 {
		t.Errorf("stats.ClosingCaptured = %d, want both h2h outcomes", stats.ClosingCaptured)
	}
	if store.closing != 2 {
		t.Errorf("store.closing = %d, want 2", store.closing)
	}
	if stats.ClosingEvals != 1 || len(store.evals) != 1 {
		t.Fatalf("closing evals = %d stored %d, want 1/1", stats.ClosingEvals, len(store.evals))
	}
	eval := store.evals[0]
	if !eval.BeatClosing {
		t.Errorf("eval.BeatClosing = false, want true for 2.20 against a 2.00 close")
	}
	if eval.Bookmaker != "Betsson" || eval.ClosingNoVig != 2.00 {
		t.Errorf("eval = %+v, want Betsson graded against 2.00", eval)
	}
}

func TestRunCycleTolerantOfFailures(t *testing.T) {
	start := time.Now().Add(6 * time.Hour).UTC().Truncate(time.Second)
	good := &stubProvider{
		name:   "good",
		events: map[string][]feed.Event{"soccer_epl": {stubEvent(start)}},
	}
	bad := &stubProvider{name: "bad", err: errors.New("upstream down")}
	store := &stubStore{failSaves: true}

	eng := New(testConfig(), []feed.Provider{good, bad}, store, nil, nil)
	stats := eng.RunCycle(context.Background())

	if stats.Events != 1 {
		t.Errorf("stats.Events = %d, want the good provider's event only", stats.Events)
	}
	if stats.EVAll != 1 || stats.Arbs != 1 {
		t.Errorf("stats ev/arbs = %d/%d, want detection despite storage failures", stats.EVAll, stats.Arbs)
	}
	if stats.EVAlerts != 0 || stats.ArbAlerts != 0 {
		t.Errorf("stats alerts = %d/%d, want none without a dispatcher", stats.EVAlerts, stats.ArbAlerts)
	}
}
