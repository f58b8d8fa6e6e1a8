package engine

import (
	"testing"
	"time"

	"github.com/otso2008/OddsBot/internal/pkg/models"
)

func fixedEVDetector(now time.Time, horizon time.Duration, minEV, highEV float64) *EVDetector {
	d := NewEVDetector(horizon, minEV, highEV)
	d.now = func() time.Time { return now }
	return d
}

func TestDetectEVAgainstFairBaseline(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(6 * time.Hour)

	match := h2hMatch(start, models.MarketQuotes{
		"Pinnacle": {
			models.OutcomeHome: 2.00,
			models.OutcomeDraw: 3.50,
			models.OutcomeAway: 4.00,
		},
		"Betsson": {
			models.OutcomeHome: 2.20,
			models.OutcomeDraw: 3.40,
			models.OutcomeAway: 3.90,
		},
	})
	matches := map[string]*models.Match{match.Key: match}
	sheet := NewFairModel([]string{"Pinnacle"}).Compute(matches)

	all, high := fixedEVDetector(now, 48*time.Hour, 3.0, 5.0).Detect(matches, sheet)

	// fair(home) = 14/29; 2.20 offered -> (14/29*2.2-1)*100 = 6.2069%.
	// Every other quote, the reference's own included, sits below 3%.
	if len(all) != 1 {
		t.Fatalf("all = %d opportunities, want 1: %+v", len(all), all)
	}
	opp := all[0]
	if opp.Bookmaker != "Betsson" || opp.Outcome != models.OutcomeHome {
		t.Errorf("got %s/%s, want Betsson/home", opp.Bookmaker, opp.Outcome)
	}
	if !closeTo(opp.EVPercent, (14.0/29.0*2.2-1)*100, 1e-9) {
		t.Errorf("ev = %v, want %v", opp.EVPercent, (14.0/29.0*2.2-1)*100)
	}
	if opp.ReferenceBook != "Pinnacle" {
		t.Errorf("reference = %s, want Pinnacle", opp.ReferenceBook)
	}
	if !closeTo(opp.ReferenceOdds, 29.0/14.0, 1e-9) {
		t.Errorf("reference odds = %v, want %v", opp.ReferenceOdds, 29.0/14.0)
	}

	// 6.2% clears the high bar too.
	if len(high) != 1 || high[0].Bookmaker != "Betsson" {
		t.Errorf("high = %+v, want the Betsson quote", high)
	}
}

func TestDetectEVHorizon(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	quotes := models.MarketQuotes{
		"Pinnacle": {models.OutcomeHome: 2.00, models.OutcomeAway: 2.00},
		"Betsson":  {models.OutcomeHome: 2.30, models.OutcomeAway: 1.70},
	}
	farFuture := h2hMatch(now.Add(72*time.Hour), quotes)
	inWindow := &models.Match{
		Key:       models.MatchKey("soccer_epl", "Leeds", "Everton", now.Add(6*time.Hour)),
		Sport:     "soccer_epl",
		Home:      "Leeds",
		Away:      "Everton",
		StartTime: now.Add(6 * time.Hour),
		Markets:   map[string]models.MarketQuotes{models.MarketH2H: quotes},
	}
	matches := map[string]*models.Match{
		farFuture.Key: farFuture,
		inWindow.Key:  inWindow,
	}
	sheet := NewFairModel([]string{"Pinnacle"}).Compute(matches)

	all, _ := fixedEVDetector(now, 48*time.Hour, 3.0, 5.0).Detect(matches, sheet)
	if len(all) != 1 {
		t.Fatalf("all = %d opportunities, want 1", len(all))
	}
	if all[0].MatchKey != inWindow.Key {
		t.Errorf("opportunity for %s, want the in-window match", all[0].MatchKey)
	}
}

func TestDetectEVThresholdBoundary(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(6 * time.Hour)

	// Reference 2.00/2.00 -> fair 0.5 each, margin zero.
	match := h2hMatch(start, models.MarketQuotes{
		"Pinnacle": {models.OutcomeHome: 2.00, models.OutcomeAway: 2.00},
		"AboveBar": {models.OutcomeHome: 2.06, models.OutcomeAway: 1.90},
		"BelowBar": {models.OutcomeHome: 2.05, models.OutcomeAway: 1.90},
	})
	matches := map[string]*models.Match{match.Key: match}
	sheet := NewFairModel([]string{"Pinnacle"}).Compute(matches)

	all, _ := fixedEVDetector(now, 48*time.Hour, 3.0, 5.0).Detect(matches, sheet)
	if len(all) != 1 {
		t.Fatalf("all = %d opportunities, want 1: %+v", len(all), all)
	}
	if all[0].Bookmaker != "AboveBar" {
		t.Errorf("bookmaker = %s, want AboveBar (2.5%% sits below the bar)", all[0].Bookmaker)
	}
}

func TestDetectEVHighKeepsBestPerOutcome(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(6 * time.Hour)

	match := h2hMatch(start, models.MarketQuotes{
		"Pinnacle": {models.OutcomeHome: 2.00, models.OutcomeAway: 2.00},
		"Betsson":  {models.OutcomeHome: 2.12, models.OutcomeAway: 1.80},
		"Coolbet":  {models.OutcomeHome: 2.16, models.OutcomeAway: 1.80},
	})
	matches := map[string]*models.Match{match.Key: match}
	sheet := NewFairModel([]string{"Pinnacle"}).Compute(matches)

	all, high := fixedEVDetector(now, 48*time.Hour, 3.0, 5.0).Detect(matches, sheet)
	if len(all) != 2 {
		t.Fatalf("all = %d opportunities, want 2", len(all))
	}
	if len(high) != 1 {
		t.Fatalf("high = %d opportunities, want 1", len(high))
	}
	if high[0].Bookmaker != "Coolbet" || !closeTo(high[0].EVPercent, 8.0, 1e-9) {
		t.Errorf("high best = %s at %v%%, want Coolbet at 8%%", high[0].Bookmaker, high[0].EVPercent)
	}
}

func TestDetectEVHighTieKeepsFirstSeen(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(6 * time.Hour)

	match := h2hMatch(start, models.MarketQuotes{
		"Pinnacle": {models.OutcomeHome: 2.00, models.OutcomeAway: 2.00},
		"Alpha":    {models.OutcomeHome: 2.14, models.OutcomeAway: 1.80},
		"Zeta":     {models.OutcomeHome: 2.14, models.OutcomeAway: 1.80},
	})
	matches := map[string]*models.Match{match.Key: match}
	sheet := NewFairModel([]string{"Pinnacle"}).Compute(matches)

	_, high := fixedEVDetector(now, 48*time.Hour, 3.0, 5.0).Detect(matches, sheet)
	if len(high) != 1 {
		t.Fatalf("high = %d opportunities, want 1", len(high))
	}
	// Books scan in sorted order, so Alpha is seen first and keeps the slot.
	if high[0].Bookmaker != "Alpha" {
		t.Errorf("tie went to %s, want Alpha", high[0].Bookmaker)
	}
}
