package engine

import (
	"sort"

	"github.com/otso2008/OddsBot/internal/pkg/models"
)

// ArbDetector finds markets where the best price per outcome across all
// bookmakers sums to a combined implied probability below 1.
type ArbDetector struct {
	minROI     float64
	totalStake float64
}

func NewArbDetector(minROI, totalStake float64) *ArbDetector {
	return &ArbDetector{minROI: minROI, totalStake: totalStake}
}

type bestPrice struct {
	book string
	odds float64
}

// Detect scans every market of every match. Outcomes are the union across
// books; a market needs at least two covered outcomes to qualify. Stakes
// are split so every leg pays out total_stake / inv_sum exactly.
func (d *ArbDetector) Detect(matches map[string]*models.Match) []models.ArbitrageOpportunity {
	var out []models.ArbitrageOpportunity

	for _, match := range SortedMatches(matches) {
		for _, code := range sortedMarketCodes(match.Markets) {
			quotes := match.Markets[code]

			best := make(map[string]bestPrice)
			for _, book := range sortedBooks(quotes) {
				entry := quotes[book]
				for _, outcome := range sortedOutcomes(entry) {
					odds := entry[outcome]
					// Strictly greater replaces; equal odds keep the
					// first-seen book.
					if cur, ok := best[outcome]; !ok || odds > cur.odds {
						best[outcome] = bestPrice{book: book, odds: odds}
					}
				}
			}
			if len(best) < 2 {
				continue
			}

			invSum := 0.0
			for _, bp := range best {
				invSum += 1 / bp.odds
			}
			if invSum >= 1 {
				continue
			}
			roi := (1/invSum - 1) * 100
			if roi < d.minROI {
				continue
			}

			legs := make([]models.ArbLeg, 0, len(best))
			for _, outcome := range sortedOutcomeSet(best) {
				bp := best[outcome]
				legs = append(legs, models.ArbLeg{
					Outcome:   outcome,
					Bookmaker: bp.book,
					Odds:      bp.odds,
					Stake:     d.totalStake / (bp.odds * invSum),
				})
			}

			arb := models.ArbitrageOpportunity{
				MatchKey:   match.Key,
				MatchName:  match.Name(),
				Sport:      match.Sport,
				StartTime:  match.StartTime,
				MarketCode: code,
				Legs:       legs,
				InvSum:     invSum,
				ROIPercent: roi,
				TotalStake: d.totalStake,
			}
			arb.Profit = arb.Payout() - arb.TotalStake
			out = append(out, arb)
		}
	}
	return out
}

func sortedOutcomeSet(best map[string]bestPrice) []string {
	outcomes := make([]string, 0, len(best))
	for outcome := range best {
		outcomes = append(outcomes, outcome)
	}
	sort.Strings(outcomes)
	return outcomes
}
