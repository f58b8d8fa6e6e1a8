package engine

import (
	"time"

	"github.com/otso2008/OddsBot/internal/pkg/models"
)

// ClosingTracker snapshots the reference book's vig-free prices shortly
// before kickoff and grades earlier high-value picks against them once the
// match has started. A pick "beats the close" when the odds it was flagged
// at exceed the closing no-vig price, the usual proxy for a bet that had
// real edge rather than noise.
type ClosingTracker struct {
	window time.Duration
	now    func() time.Time
}

func NewClosingTracker(window time.Duration) *ClosingTracker {
	return &ClosingTracker{window: window, now: time.Now}
}

// Capture returns closing candidates for every fair-modelled market of
// matches starting within the capture window. Persistence keeps the first
// row per outcome, so the earliest capture inside the window stands as the
// closing price.
func (t *ClosingTracker) Capture(matches map[string]*models.Match, sheet FairSheet) []models.ClosingQuote {
	now := t.now()
	deadline := now.Add(t.window)

	var out []models.ClosingQuote
	for _, match := range SortedMatches(matches) {
		if match.StartTime.After(deadline) {
			continue
		}
		markets := sheet[match.Key]
		if markets == nil {
			continue
		}
		for _, code := range sortedMarketCodes(match.Markets) {
			fair, ok := markets[code]
			if !ok {
				continue
			}
			for _, outcome := range sortedOutcomes(fair.Fair) {
				out = append(out, models.ClosingQuote{
					MatchKey:   match.Key,
					MarketCode: code,
					Outcome:    outcome,
					Bookmaker:  fair.ReferenceBook,
					Odds:       fair.RefOdds[outcome],
					NoVigOdds:  fair.NoVigOdds(outcome),
					CapturedAt: now,
				})
			}
		}
	}
	return out
}

// Evaluate grades one high-value pick against the captured closing price
// for the same outcome.
func (t *ClosingTracker) Evaluate(ev models.EVOpportunity, closing models.ClosingQuote) models.ClosingEval {
	return models.ClosingEval{
		MatchKey:     ev.MatchKey,
		MarketCode:   ev.MarketCode,
		Outcome:      ev.Outcome,
		Bookmaker:    ev.Bookmaker,
		OfferedOdds:  ev.OfferedOdds,
		EVPercent:    ev.EVPercent,
		ClosingNoVig: closing.NoVigOdds,
		BeatClosing:  ev.OfferedOdds > closing.NoVigOdds,
		EvaluatedAt:  t.now(),
	}
}
