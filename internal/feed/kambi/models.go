package kambi

// Wire structures for the Kambi offering API (listView endpoints). The same
// API serves every Kambi white-label book; only the brand segment of the URL
// changes. Odds and lines come in thousandths: 2100 means 2.10.

type ListViewResponse struct {
	Events []EventWrapper `json:"events"`
}

type EventWrapper struct {
	Event     Event      `json:"event"`
	BetOffers []BetOffer `json:"betOffers"`
}

type Event struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	HomeName string `json:"homeName"`
	AwayName string `json:"awayName"`
	Start    string `json:"start"`
	Sport    string `json:"sport"`
	State    string `json:"state"` // NOT_STARTED or STARTED
}

type BetOffer struct {
	ID           int64        `json:"id"`
	BetOfferType BetOfferType `json:"betOfferType"`
	Criterion    Criterion    `json:"criterion"`
	Outcomes     []Outcome    `json:"outcomes"`
}

type BetOfferType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Criterion struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

type Outcome struct {
	ID          int64  `json:"id"`
	Label       string `json:"label"`
	Type        string `json:"type"` // OT_ONE, OT_CROSS, OT_TWO, OT_OVER, OT_UNDER
	Odds        int64  `json:"odds"` // milli-odds
	Line        *int64 `json:"line,omitempty"`
	Participant string `json:"participant,omitempty"`
	Status      string `json:"status"`
}

// Bet offer type IDs used by the offering API.
const (
	betOfferHandicap  = 1
	betOfferMatch     = 2
	betOfferOverUnder = 6
)
