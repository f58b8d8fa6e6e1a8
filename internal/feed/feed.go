// Package feed defines the provider interface and the raw odds shapes
// shared by all feed clients. Providers return events in a single wire
// format regardless of the upstream API; everything downstream works on
// canonical matches built from these.
package feed

import (
	"context"
	"time"
)

// Outcome is one priced selection inside a market.
type Outcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point,omitempty"` // totals line or handicap, nil for h2h
}

// Market is one market quoted by one bookmaker for one event.
type Market struct {
	Key      string    `json:"key"` // h2h, totals, spreads
	Outcomes []Outcome `json:"outcomes"`
}

// BookmakerOdds is everything a single bookmaker quotes for one event.
type BookmakerOdds struct {
	Name    string   `json:"name"`
	Markets []Market `json:"markets"`
}

// Event is a single fixture with per-bookmaker quotes, as fetched.
// Sport is the canonical sport key the event was requested under.
type Event struct {
	Sport      string          `json:"sport"`
	Home       string          `json:"home"`
	Away       string          `json:"away"`
	StartTime  time.Time       `json:"start_time"`
	Bookmakers []BookmakerOdds `json:"bookmakers"`
}

// Market keys used on the wire. Feed clients translate whatever their
// upstream calls these into one of the three.
const (
	MarketKeyH2H     = "h2h"
	MarketKeyTotals  = "totals"
	MarketKeySpreads = "spreads"
)

// Provider is a single odds source. Fetch returns the events it currently
// quotes for the given sport key; a provider that does not cover the sport
// returns an empty slice and no error.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, sport string) ([]Event, error)
}
