package models

import "time"

// FairQuote is one vig-free outcome price derived from a single reference
// bookmaker's quote. For a given match+market+reference the fair
// probabilities over all outcomes sum to 1 by construction.
type FairQuote struct {
	MatchKey        string  `json:"match_key"`
	MatchName       string  `json:"match_name"`
	MarketCode      string  `json:"market_code"`
	Outcome         string  `json:"outcome"`
	ReferenceBook   string  `json:"reference_book"`
	FairProbability float64 `json:"fair_probability"`
	NoVigOdds       float64 `json:"no_vig_odds"`
	Margin          float64 `json:"margin"`
}

// EVOpportunity is a single quote priced above the fair baseline.
// EVPercent = (fair_probability * offered_odds - 1) * 100.
type EVOpportunity struct {
	MatchKey        string    `json:"match_key"`
	MatchName       string    `json:"match_name"`
	Sport           string    `json:"sport"`
	StartTime       time.Time `json:"start_time"`
	MarketCode      string    `json:"market_code"`
	Outcome         string    `json:"outcome"`
	Bookmaker       string    `json:"bookmaker"`
	OfferedOdds     float64   `json:"offered_odds"`
	ReferenceBook   string    `json:"reference_book"`
	ReferenceOdds   float64   `json:"reference_odds"` // reference book's no-vig odds
	FairProbability float64   `json:"fair_probability"`
	EVPercent       float64   `json:"ev_percent"`
}

// Key identifies the opportunity for alert gating and best-per-key selection.
func (e *EVOpportunity) Key() string {
	return e.MatchKey + "|" + e.MarketCode + "|" + e.Outcome
}

// ArbLeg is one side of an arbitrage: the best-priced bookmaker for one
// outcome and the stake allocated to it.
type ArbLeg struct {
	Outcome   string  `json:"outcome"`
	Bookmaker string  `json:"bookmaker"`
	Odds      float64 `json:"odds"`
	Stake     float64 `json:"stake"`
}

// ArbitrageOpportunity is a set of simultaneous bets across bookmakers whose
// combined payout is guaranteed regardless of result:
// stake[o] * odds[o] == total_stake / inv_sum for every leg.
type ArbitrageOpportunity struct {
	MatchKey   string    `json:"match_key"`
	MatchName  string    `json:"match_name"`
	Sport      string    `json:"sport"`
	StartTime  time.Time `json:"start_time"`
	MarketCode string    `json:"market_code"`
	Legs       []ArbLeg  `json:"legs"`
	InvSum     float64   `json:"inv_sum"`
	ROIPercent float64   `json:"roi_percent"`
	Profit     float64   `json:"profit"`
	TotalStake float64   `json:"total_stake"`
}

// Key identifies the opportunity for alert gating. Arbitrage is gated per
// market, not per outcome.
func (a *ArbitrageOpportunity) Key() string {
	return a.MatchKey + "|" + a.MarketCode
}

// Payout returns the guaranteed payout on any outcome.
func (a *ArbitrageOpportunity) Payout() float64 {
	if a.InvSum == 0 {
		return 0
	}
	return a.TotalStake / a.InvSum
}

// ClosingQuote is the reference book's last observed pre-kickoff price for
// one outcome, captured shortly before the match starts.
type ClosingQuote struct {
	MatchKey   string    `json:"match_key"`
	MarketCode string    `json:"market_code"`
	Outcome    string    `json:"outcome"`
	Bookmaker  string    `json:"bookmaker"`
	Odds       float64   `json:"odds"`
	NoVigOdds  float64   `json:"no_vig_odds"`
	CapturedAt time.Time `json:"captured_at"`
}

// ClosingEval compares the best detected EV quote against the closing line:
// a bet "beats the close" when its odds exceed the closing no-vig odds.
type ClosingEval struct {
	MatchKey     string    `json:"match_key"`
	MarketCode   string    `json:"market_code"`
	Outcome      string    `json:"outcome"`
	Bookmaker    string    `json:"bookmaker"`
	OfferedOdds  float64   `json:"offered_odds"`
	EVPercent    float64   `json:"ev_percent"`
	ClosingNoVig float64   `json:"closing_no_vig"`
	BeatClosing  bool      `json:"beat_closing"`
	EvaluatedAt  time.Time `json:"evaluated_at"`
}
