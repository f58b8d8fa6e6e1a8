package storage

import (
	"context"
	"time"

	"github.com/otso2008/OddsBot/internal/pkg/models"
)

// MatchRecord is one persisted match row.
type MatchRecord struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Sport     string    `json:"sport"`
	Home      string    `json:"home"`
	Away      string    `json:"away"`
	StartTime time.Time `json:"start_time"`
	CreatedAt time.Time `json:"created_at"`
}

// OddsRecord is one bookmaker quote as currently stored.
type OddsRecord struct {
	MatchKey   string    `json:"match_key"`
	Bookmaker  string    `json:"bookmaker"`
	MarketCode string    `json:"market_code"`
	Outcome    string    `json:"outcome"`
	Odds       float64   `json:"odds"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// StoredFair is a persisted fair quote with its computation time.
type StoredFair struct {
	models.FairQuote
	ComputedAt time.Time `json:"computed_at"`
}

// StoredEV is a persisted EV opportunity with detection metadata.
type StoredEV struct {
	models.EVOpportunity
	HighValue  bool      `json:"high_value"`
	DetectedAt time.Time `json:"detected_at"`
}

// StoredArb is a persisted arbitrage opportunity with detection metadata.
type StoredArb struct {
	models.ArbitrageOpportunity
	DetectedAt time.Time `json:"detected_at"`
}

// PendingEval pairs a high-value pick with the captured closing quote for
// the same outcome, ready to be graded after kickoff.
type PendingEval struct {
	EV      models.EVOpportunity
	Closing models.ClosingQuote
}

// Store persists cycle results. Implementations must tolerate repeated
// writes of the same cycle: current odds upsert, closing quotes keep the
// first row, everything else appends.
type Store interface {
	// SaveMatches upserts match rows and the current odds of every quote,
	// appending each quote to the odds history as well.
	SaveMatches(ctx context.Context, matches []*models.Match) error

	// SaveFairQuotes appends the cycle's fair probabilities.
	SaveFairQuotes(ctx context.Context, rows []models.FairQuote) error

	// SaveEVOpportunities appends detected EV bets. High-value rows are
	// flagged so closing evaluation can find them later.
	SaveEVOpportunities(ctx context.Context, opps []models.EVOpportunity, highValue bool) error

	// SaveArbOpportunities appends detected arbitrages.
	SaveArbOpportunities(ctx context.Context, arbs []models.ArbitrageOpportunity) error

	// SaveClosingQuotes stores pre-kickoff reference prices. The first row
	// per (match, market, outcome) wins; later captures are ignored.
	SaveClosingQuotes(ctx context.Context, quotes []models.ClosingQuote) error

	// PendingClosingEvals returns high-value picks whose match has started,
	// paired with their closing quote, that have not been graded yet.
	PendingClosingEvals(ctx context.Context, now time.Time) ([]PendingEval, error)

	// SaveClosingEvals stores grading results.
	SaveClosingEvals(ctx context.Context, evals []models.ClosingEval) error

	// ListMatches returns upcoming matches, optionally filtered by sport.
	ListMatches(ctx context.Context, sport string, limit, offset int) ([]MatchRecord, error)

	// ListOdds returns the current quotes for one match.
	ListOdds(ctx context.Context, matchKey string) ([]OddsRecord, error)

	// ListFairQuotes returns the latest fair probabilities for one match.
	ListFairQuotes(ctx context.Context, matchKey string) ([]StoredFair, error)

	// ListEVOpportunities returns recent EV bets, newest first.
	ListEVOpportunities(ctx context.Context, minEV float64, limit, offset int) ([]StoredEV, error)

	// ListArbOpportunities returns recent arbitrages, newest first.
	ListArbOpportunities(ctx context.Context, minROI float64, limit, offset int) ([]StoredArb, error)

	// Ping verifies backend connectivity, used by health endpoints.
	Ping(ctx context.Context) error

	Close() error
}
