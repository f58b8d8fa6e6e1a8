package models

import "time"

// OutcomeOdds maps an outcome label to the decimal odds a bookmaker offers
// for it. Labels are semantic for head-to-head and totals markets ("home",
// "away", "draw", "over", "under") and verbatim team names for spread markets.
type OutcomeOdds map[string]float64

// MarketQuotes holds one market's quotes keyed by canonical bookmaker name.
type MarketQuotes map[string]OutcomeOdds

// Match is one sporting event with every usable quote collected in a cycle.
// It is rebuilt from scratch each cycle and never mutated incrementally.
type Match struct {
	Key       string                  `json:"key"`
	Sport     string                  `json:"sport"`
	Home      string                  `json:"home"`
	Away      string                  `json:"away"`
	StartTime time.Time               `json:"start_time"`
	Markets   map[string]MarketQuotes `json:"markets"`
}

// Name returns the display name, e.g. "Arsenal vs Chelsea".
func (m *Match) Name() string {
	return m.Home + " vs " + m.Away
}

// League extracts the league part of a sport key ("soccer_epl" -> "epl").
// Returns "" when the sport key has no league suffix.
func (m *Match) League() string {
	for i := 0; i < len(m.Sport); i++ {
		if m.Sport[i] == '_' {
			return m.Sport[i+1:]
		}
	}
	return ""
}
