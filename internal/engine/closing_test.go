package engine

import (
	"testing"
	"time"

	"github.com/otso2008/OddsBot/internal/pkg/models"
)

func fixedClosingTracker(now time.Time, window time.Duration) *ClosingTracker {
	tr := NewClosingTracker(window)
	tr.now = func() time.Time { return now }
	return tr
}

func TestClosingCaptureWindow(t *testing.T) {
	now := time.Date(2025, 3, 1, 17, 50, 0, 0, time.UTC)

	quotes := models.MarketQuotes{
		"Pinnacle": {models.OutcomeHome: 1.90, models.OutcomeAway: 2.00},
	}
	soon := h2hMatch(now.Add(10*time.Minute), quotes)
	later := &models.Match{
		Key:       models.MatchKey("soccer_epl", "Leeds", "Everton", now.Add(2*time.Hour)),
		Sport:     "soccer_epl",
		Home:      "Leeds",
		Away:      "Everton",
		StartTime: now.Add(2 * time.Hour),
		Markets:   map[string]models.MarketQuotes{models.MarketH2H: quotes},
	}
	matches := map[string]*models.Match{soon.Key: soon, later.Key: later}
	sheet := NewFairModel([]string{"Pinnacle"}).Compute(matches)

	captured := fixedClosingTracker(now, 20*time.Minute).Capture(matches, sheet)
	if len(captured) != 2 {
		t.Fatalf("captured = %d rows, want 2 (one per outcome of the imminent match)", len(captured))
	}
	for _, q := range captured {
		if q.MatchKey != soon.Key {
			t.Errorf("captured %s, want only the imminent match", q.MatchKey)
		}
		if q.Bookmaker != "Pinnacle" {
			t.Errorf("bookmaker = %s, want the reference book", q.Bookmaker)
		}
		if !q.CapturedAt.Equal(now) {
			t.Errorf("captured_at = %v, want %v", q.CapturedAt, now)
		}
	}

	// no_vig = odds * inv_sum under proportional devigging.
	inv := 1/1.90 + 1/2.00
	wantNoVig := map[string]float64{
		models.OutcomeHome: inv * 1.90,
		models.OutcomeAway: inv * 2.00,
	}
	for _, q := range captured {
		if want := wantNoVig[q.Outcome]; !closeTo(q.NoVigOdds, want, 1e-9) {
			t.Errorf("no_vig[%s] = %v, want %v", q.Outcome, q.NoVigOdds, want)
		}
	}
}

func TestClosingEvaluate(t *testing.T) {
	now := time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC)
	tr := fixedClosingTracker(now, 20*time.Minute)

	ev := models.EVOpportunity{
		MatchKey:    "soccer_epl|arsenal|chelsea|2025-03-01T18:00:00Z",
		MarketCode:  models.MarketH2H,
		Outcome:     models.OutcomeHome,
		Bookmaker:   "Betsson",
		OfferedOdds: 2.20,
		EVPercent:   6.2,
	}
	closing := models.ClosingQuote{
		MatchKey:   ev.MatchKey,
		MarketCode: ev.MarketCode,
		Outcome:    ev.Outcome,
		Bookmaker:  "Pinnacle",
		Odds:       2.00,
		NoVigOdds:  2.07,
	}

	eval := tr.Evaluate(ev, closing)
	if !eval.BeatClosing {
		t.Error("2.20 against a 2.07 close should beat it")
	}
	if eval.ClosingNoVig != 2.07 || eval.OfferedOdds != 2.20 {
		t.Errorf("eval = %+v, want closing fields carried over", eval)
	}
	if !eval.EvaluatedAt.Equal(now) {
		t.Errorf("evaluated_at = %v, want %v", eval.EvaluatedAt, now)
	}

	closing.NoVigOdds = 2.35
	if eval := tr.Evaluate(ev, closing); eval.BeatClosing {
		t.Error("2.20 against a 2.35 close should not beat it")
	}
}
