package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/otso2008/OddsBot/internal/feed"
	"github.com/otso2008/OddsBot/internal/pkg/models"
)

// badBookmakers are filtered out entirely: books known for stale feeds,
// geo-restrictions, or limits that make their prices unplayable.
var badBookmakers = map[string]bool{
	"1xBet":            true,
	"BetUS":            true,
	"MyBookie.ag":      true,
	"Bovada":           true,
	"BetOnline.ag":     true,
	"LowVig.ag":        true,
	"GTbets":           true,
	"SportsBetting.ag": true,
	"BetRivers":        true,
	"SportsBet":        true,
	"Codere":           true,
	"Codere (IT)":      true,
	"PMU (FR)":         true,
	"Everygame":        true,
	"Suprabets":        true,
}

// unibetAliases collapse to one canonical identity, otherwise regional
// variants of the same operator would be compared against each other as if
// they were independent books.
var unibetAliases = map[string]bool{
	"Unibet":      true,
	"Unibet (SE)": true,
	"Unibet (NL)": true,
	"Unibet (FR)": true,
	"Unibet (DK)": true,
	"Unibet (FI)": true,
	"Unibet (NO)": true,
}

const canonicalUnibet = "Unibet"

// SkipReason tags why a raw event was dropped during normalization; counts
// per reason are reported instead of silently swallowing entries.
type SkipReason string

const (
	SkipMissingTeams SkipReason = "missing_teams"
	SkipMissingStart SkipReason = "missing_start"
	SkipPastStart    SkipReason = "past_start"
	SkipNoMarkets    SkipReason = "no_markets"
)

// NormalizeResult is the per-cycle snapshot: canonical matches keyed by
// match key, plus drop counts by reason.
type NormalizeResult struct {
	Matches map[string]*models.Match
	Skipped map[SkipReason]int
}

// Normalizer merges raw feed events into canonical matches with uniform
// market codes and outcome labels. Pure transform: same input, same output;
// the clock only feeds the past-event filter.
type Normalizer struct {
	now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

func (n *Normalizer) Normalize(events []feed.Event) NormalizeResult {
	res := NormalizeResult{
		Matches: make(map[string]*models.Match),
		Skipped: make(map[SkipReason]int),
	}
	now := n.now()

	for _, ev := range events {
		home := strings.TrimSpace(ev.Home)
		away := strings.TrimSpace(ev.Away)
		if home == "" || away == "" {
			res.Skipped[SkipMissingTeams]++
			continue
		}
		if ev.StartTime.IsZero() {
			res.Skipped[SkipMissingStart]++
			continue
		}
		if !ev.StartTime.After(now) {
			res.Skipped[SkipPastStart]++
			continue
		}

		key := models.MatchKey(ev.Sport, home, away, ev.StartTime)
		match, ok := res.Matches[key]
		if !ok {
			match = &models.Match{
				Key:       key,
				Sport:     ev.Sport,
				Home:      home,
				Away:      away,
				StartTime: ev.StartTime.UTC(),
				Markets:   make(map[string]models.MarketQuotes),
			}
			res.Matches[key] = match
		}

		for _, book := range ev.Bookmakers {
			rawName := strings.TrimSpace(book.Name)
			if rawName == "" || badBookmakers[rawName] {
				continue
			}
			name := normalizeBookmakerName(rawName)

			for _, m := range book.Markets {
				switch m.Key {
				case feed.MarketKeyH2H:
					addH2H(match, name, m, home, away)
				case feed.MarketKeyTotals:
					addTotals(match, name, m)
				case feed.MarketKeySpreads:
					addSpreads(match, name, m, home, away)
				}
			}
		}
	}

	for key, match := range res.Matches {
		pruneIncompleteTotals(match)
		if len(match.Markets) == 0 {
			delete(res.Matches, key)
			res.Skipped[SkipNoMarkets]++
		}
	}

	return res
}

func normalizeBookmakerName(name string) string {
	if unibetAliases[name] {
		return canonicalUnibet
	}
	return name
}

// addH2H stores a head-to-head quote under semantic outcome labels. Both
// the home and away price must be present; draw is optional (two-way
// sports have none).
func addH2H(match *models.Match, book string, m feed.Market, home, away string) {
	prices := make(map[string]float64, len(m.Outcomes))
	for _, o := range m.Outcomes {
		if o.Price <= 0 {
			continue
		}
		prices[strings.TrimSpace(o.Name)] = o.Price
	}

	homeOdds, hasHome := prices[home]
	awayOdds, hasAway := prices[away]
	if !hasHome || !hasAway {
		return
	}

	entry := models.OutcomeOdds{
		models.OutcomeHome: homeOdds,
		models.OutcomeAway: awayOdds,
	}
	if draw, ok := prices["Draw"]; ok {
		entry[models.OutcomeDraw] = draw
	}
	setMarketEntry(match, models.MarketH2H, book, entry)
}

// addTotals groups over/under prices by the canonical half-point line. Sides
// accumulate across feeds for the same book; completeness is enforced in a
// final sweep once everything is merged.
func addTotals(match *models.Match, book string, m feed.Market) {
	for _, o := range m.Outcomes {
		if o.Price <= 0 || o.Point == nil {
			continue
		}
		var side string
		lower := strings.ToLower(o.Name)
		switch {
		case strings.Contains(lower, "over"):
			side = models.OutcomeOver
		case strings.Contains(lower, "under"):
			side = models.OutcomeUnder
		default:
			continue
		}

		code := models.TotalsCode(models.CanonicalTotalsLine(*o.Point))
		quotes := match.Markets[code]
		if quotes == nil {
			quotes = make(models.MarketQuotes)
			match.Markets[code] = quotes
		}
		entry := quotes[book]
		if entry == nil {
			entry = make(models.OutcomeOdds)
			quotes[book] = entry
		}
		entry[side] = o.Price
	}
}

// addSpreads keys each handicap line by the home side's signed raw point.
// No rounding, so alternates stay distinct, and outcome labels (team names)
// are kept verbatim. An away-only quote still maps to the same code via the
// negated point.
func addSpreads(match *models.Match, book string, m feed.Market, home, away string) {
	for _, o := range m.Outcomes {
		if o.Price <= 0 || o.Point == nil {
			continue
		}

		name := strings.TrimSpace(o.Name)
		var homePoint float64
		switch name {
		case home:
			homePoint = *o.Point
		case away:
			homePoint = -*o.Point
		default:
			continue
		}

		code := models.SpreadsCode(homePoint)
		quotes := match.Markets[code]
		if quotes == nil {
			quotes = make(models.MarketQuotes)
			match.Markets[code] = quotes
		}
		entry := quotes[book]
		if entry == nil {
			entry = make(models.OutcomeOdds)
			quotes[book] = entry
		}
		entry[name] = o.Price
	}
}

func setMarketEntry(match *models.Match, code, book string, entry models.OutcomeOdds) {
	quotes := match.Markets[code]
	if quotes == nil {
		quotes = make(models.MarketQuotes)
		match.Markets[code] = quotes
	}
	quotes[book] = entry
}

// pruneIncompleteTotals drops totals entries where a book quotes only one
// side of a line, then removes markets left without any book.
func pruneIncompleteTotals(match *models.Match) {
	for code, quotes := range match.Markets {
		if !models.IsTotalsCode(code) {
			continue
		}
		for book, entry := range quotes {
			_, hasOver := entry[models.OutcomeOver]
			_, hasUnder := entry[models.OutcomeUnder]
			if !hasOver || !hasUnder {
				delete(quotes, book)
			}
		}
		if len(quotes) == 0 {
			delete(match.Markets, code)
		}
	}
}

// SortedMatches returns the snapshot's matches in deterministic key order.
func SortedMatches(matches map[string]*models.Match) []*models.Match {
	keys := make([]string, 0, len(matches))
	for k := range matches {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*models.Match, 0, len(keys))
	for _, k := range keys {
		out = append(out, matches[k])
	}
	return out
}
