package coolbet

// Wire structures for the Coolbet sportsbook gateway. Odds arrive as plain
// decimals; result_key tells the side without string-matching team names.

type MatchListResponse struct {
	Matches []Match `json:"matches"`
}

type Match struct {
	ID           int64    `json:"id"`
	SportSlug    string   `json:"sport_category"`
	LeagueName   string   `json:"league_name"`
	HomeTeamName string   `json:"home_team_name"`
	AwayTeamName string   `json:"away_team_name"`
	MatchStart   string   `json:"match_start"`
	Status       string   `json:"status"` // OPEN, LIVE, CLOSED
	Markets      []Market `json:"markets"`
}

type Market struct {
	ID       int64     `json:"id"`
	ViewType string    `json:"view_type"` // 1x2, winner, totals, handicap
	TypeName string    `json:"market_type_name"`
	Line     float64   `json:"line"`
	Outcomes []Outcome `json:"outcomes"`
}

type Outcome struct {
	ID        int64   `json:"id"`
	ResultKey string  `json:"result_key"` // HOME, DRAW, AWAY, OVER, UNDER
	Name      string  `json:"name"`
	Odds      float64 `json:"odds"`
}
