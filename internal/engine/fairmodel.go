package engine

import (
	"sort"

	"github.com/otso2008/OddsBot/internal/pkg/models"
)

// MarketFair is the no-vig model for one market, derived from exactly one
// reference bookmaker. Fair probabilities sum to 1 across outcomes.
type MarketFair struct {
	ReferenceBook string
	InvSum        float64
	Margin        float64
	Fair          map[string]float64 // outcome -> fair probability
	RefOdds       map[string]float64 // outcome -> reference's offered odds
}

// NoVigOdds returns the vig-free price for one outcome, 0 when the outcome
// is not part of the model.
func (f MarketFair) NoVigOdds(outcome string) float64 {
	p := f.Fair[outcome]
	if p <= 0 {
		return 0
	}
	return 1 / p
}

// FairSheet indexes fair models by match key, then market code.
type FairSheet map[string]map[string]MarketFair

// FairModel strips bookmaker margin out of reference quotes. Reference
// books are tried in preference order per market; the first one quoting the
// market wins, so a market can fall back to a secondary reference while
// another market of the same match uses the primary.
type FairModel struct {
	refBooks []string
}

func NewFairModel(referenceBooks []string) *FairModel {
	return &FairModel{refBooks: referenceBooks}
}

// Compute derives fair models for every market that a reference book quotes
// with at least two outcomes. Markets without reference coverage are left
// out of the sheet entirely.
func (f *FairModel) Compute(matches map[string]*models.Match) FairSheet {
	sheet := make(FairSheet)
	for key, match := range matches {
		for code, quotes := range match.Markets {
			fair, ok := f.devig(quotes)
			if !ok {
				continue
			}
			if sheet[key] == nil {
				sheet[key] = make(map[string]MarketFair)
			}
			sheet[key][code] = fair
		}
	}
	return sheet
}

func (f *FairModel) devig(quotes models.MarketQuotes) (MarketFair, bool) {
	for _, book := range f.refBooks {
		entry, ok := quotes[book]
		if !ok || len(entry) < 2 {
			continue
		}

		invSum := 0.0
		usable := true
		for _, odds := range entry {
			if odds <= 1.0 {
				usable = false
				break
			}
			invSum += 1 / odds
		}
		if !usable || invSum <= 0 {
			continue
		}

		fair := MarketFair{
			ReferenceBook: book,
			InvSum:        invSum,
			Margin:        invSum - 1,
			Fair:          make(map[string]float64, len(entry)),
			RefOdds:       make(map[string]float64, len(entry)),
		}
		for outcome, odds := range entry {
			fair.Fair[outcome] = (1 / odds) / invSum
			fair.RefOdds[outcome] = odds
		}
		return fair, true
	}
	return MarketFair{}, false
}

// Quotes flattens the sheet into per-outcome rows for persistence, in
// deterministic match/market/outcome order.
func (sheet FairSheet) Quotes(matches map[string]*models.Match) []models.FairQuote {
	var out []models.FairQuote
	for _, match := range SortedMatches(matches) {
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
				out = append(out, models.FairQuote{
					MatchKey:        match.Key,
					MatchName:       match.Name(),
					MarketCode:      code,
					Outcome:         outcome,
					ReferenceBook:   fair.ReferenceBook,
					FairProbability: fair.Fair[outcome],
					NoVigOdds:       fair.NoVigOdds(outcome),
					Margin:          fair.Margin,
				})
			}
		}
	}
	return out
}

func sortedMarketCodes(markets map[string]models.MarketQuotes) []string {
	codes := make([]string, 0, len(markets))
	for code := range markets {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func sortedBooks(quotes map[string]models.OutcomeOdds) []string {
	books := make([]string, 0, len(quotes))
	for book := range quotes {
		books = append(books, book)
	}
	sort.Strings(books)
	return books
}

func sortedOutcomes(entry map[string]float64) []string {
	outcomes := make([]string, 0, len(entry))
	for outcome := range entry {
		outcomes = append(outcomes, outcome)
	}
	sort.Strings(outcomes)
	return outcomes
}
