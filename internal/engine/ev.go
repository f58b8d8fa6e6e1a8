package engine

import (
	"sort"
	"time"

	"github.com/otso2008/OddsBot/internal/pkg/models"
)

// EVDetector scans every bookmaker quote against the fair sheet and keeps
// quotes priced above the vig-free probability.
type EVDetector struct {
	horizon time.Duration
	minEV   float64
	highEV  float64
	now     func() time.Time
}

func NewEVDetector(horizon time.Duration, minEV, highEV float64) *EVDetector {
	return &EVDetector{
		horizon: horizon,
		minEV:   minEV,
		highEV:  highEV,
		now:     time.Now,
	}
}

// Detect returns every opportunity at or above the minimum edge, plus the
// best-per-outcome subset at or above the high-value threshold. Only
// matches starting within the horizon are scanned; the reference book's own
// quote is scanned too and lands near zero by construction.
func (d *EVDetector) Detect(matches map[string]*models.Match, sheet FairSheet) (all, high []models.EVOpportunity) {
	now := d.now()
	cutoff := now.Add(d.horizon)

	bestByKey := make(map[string]models.EVOpportunity)

	for _, match := range SortedMatches(matches) {
		if match.StartTime.After(cutoff) || !match.StartTime.After(now) {
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
			quotes := match.Markets[code]
			for _, book := range sortedBooks(quotes) {
				entry := quotes[book]
				for _, outcome := range sortedOutcomes(entry) {
					prob, ok := fair.Fair[outcome]
					if !ok || prob <= 0 {
						continue
					}
					odds := entry[outcome]
					ev := (prob*odds - 1) * 100
					if ev < d.minEV {
						continue
					}

					opp := models.EVOpportunity{
						MatchKey:        match.Key,
						MatchName:       match.Name(),
						Sport:           match.Sport,
						StartTime:       match.StartTime,
						MarketCode:      code,
						Outcome:         outcome,
						Bookmaker:       book,
						OfferedOdds:     odds,
						ReferenceBook:   fair.ReferenceBook,
						ReferenceOdds:   fair.NoVigOdds(outcome),
						FairProbability: prob,
						EVPercent:       ev,
					}
					all = append(all, opp)

					if ev < d.highEV {
						continue
					}
					// Strictly greater replaces; on equal edge the
					// first-seen book keeps the slot.
					if cur, seen := bestByKey[opp.Key()]; !seen || ev > cur.EVPercent {
						bestByKey[opp.Key()] = opp
					}
				}
			}
		}
	}

	keys := make([]string, 0, len(bestByKey))
	for k := range bestByKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		high = append(high, bestByKey[k])
	}
	return all, high
}
