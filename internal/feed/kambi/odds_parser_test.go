package kambi

import (
	"encoding/json"
	"testing"
	"time"
)

const listViewFixture = `{
  "events": [
    {
      "event": {
        "id": 1020758465,
        "name": "HJK - KuPS",
        "homeName": "HJK",
        "awayName": "KuPS",
        "start": "2026-06-10T16:00:00Z",
        "sport": "FOOTBALL",
        "state": "NOT_STARTED"
      },
      "betOffers": [
        {
          "id": 1,
          "betOfferType": {"id": 2, "name": "Match"},
          "criterion": {"id": 1001159858, "label": "Full Time"},
          "outcomes": [
            {"id": 11, "label": "1", "type": "OT_ONE", "odds": 2150, "status": "OPEN"},
            {"id": 12, "label": "X", "type": "OT_CROSS", "odds": 3400, "status": "OPEN"},
            {"id": 13, "label": "2", "type": "OT_TWO", "odds": 3100, "status": "OPEN"}
          ]
        },
        {
          "id": 2,
          "betOfferType": {"id": 6, "name": "Over/Under"},
          "criterion": {"id": 1001159926, "label": "Total Goals"},
          "outcomes": [
            {"id": 21, "label": "Over", "type": "OT_OVER", "odds": 1900, "line": 2500, "status": "OPEN"},
            {"id": 22, "label": "Under", "type": "OT_UNDER", "odds": 1920, "line": 2500, "status": "OPEN"},
            {"id": 23, "label": "Over", "type": "OT_OVER", "odds": 1050, "line": 500, "status": "SUSPENDED"}
          ]
        },
        {
          "id": 3,
          "betOfferType": {"id": 1, "name": "Handicap"},
          "criterion": {"id": 1001159911, "label": "Handicap"},
          "outcomes": [
            {"id": 31, "label": "1", "type": "OT_ONE", "odds": 2050, "line": -500, "status": "OPEN"},
            {"id": 32, "label": "2", "type": "OT_TWO", "odds": 1800, "line": 500, "status": "OPEN"}
          ]
        }
      ]
    }
  ]
}`

func TestEventToFeed(t *testing.T) {
	var resp ListViewResponse
	if err := json.Unmarshal([]byte(listViewFixture), &resp); err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}
	if len(resp.Events) != 1 {
		t.Fatalf("fixture events = %d, want 1", len(resp.Events))
	}

	ev, ok := EventToFeed(resp.Events[0], "Unibet (SE)", "soccer_finland_veikkausliiga")
	if !ok {
		t.Fatal("EventToFeed returned ok = false")
	}

	if ev.Home != "HJK" || ev.Away != "KuPS" {
		t.Errorf("teams = %q/%q, want HJK/KuPS", ev.Home, ev.Away)
	}
	want := time.Date(2026, 6, 10, 16, 0, 0, 0, time.UTC)
	if !ev.StartTime.Equal(want) {
		t.Errorf("StartTime = %v, want %v", ev.StartTime, want)
	}
	if len(ev.Bookmakers) != 1 || ev.Bookmakers[0].Name != "Unibet (SE)" {
		t.Fatalf("Bookmakers = %+v", ev.Bookmakers)
	}

	markets := ev.Bookmakers[0].Markets
	if len(markets) != 3 {
		t.Fatalf("markets = %d, want 3", len(markets))
	}

	h2h := markets[0]
	if h2h.Key != "h2h" || len(h2h.Outcomes) != 3 {
		t.Fatalf("h2h = %+v", h2h)
	}
	if h2h.Outcomes[0].Name != "HJK" || h2h.Outcomes[0].Price != 2.15 {
		t.Errorf("h2h home = %+v, want HJK @ 2.15", h2h.Outcomes[0])
	}
	if h2h.Outcomes[1].Name != "Draw" || h2h.Outcomes[1].Price != 3.4 {
		t.Errorf("h2h draw = %+v, want Draw @ 3.4", h2h.Outcomes[1])
	}
	if h2h.Outcomes[2].Name != "KuPS" || h2h.Outcomes[2].Price != 3.1 {
		t.Errorf("h2h away = %+v, want KuPS @ 3.1", h2h.Outcomes[2])
	}

	totals := markets[1]
	if totals.Key != "totals" {
		t.Errorf("markets[1].Key = %q, want totals", totals.Key)
	}
	// the suspended alternate line must be dropped
	if len(totals.Outcomes) != 2 {
		t.Fatalf("totals outcomes = %+v, want 2", totals.Outcomes)
	}
	if totals.Outcomes[0].Point == nil || *totals.Outcomes[0].Point != 2.5 {
		t.Errorf("totals point = %v, want 2.5", totals.Outcomes[0].Point)
	}
	if totals.Outcomes[0].Price != 1.9 {
		t.Errorf("totals over price = %v, want 1.9", totals.Outcomes[0].Price)
	}

	spreads := markets[2]
	if spreads.Key != "spreads" || len(spreads.Outcomes) != 2 {
		t.Fatalf("spreads = %+v", spreads)
	}
	if spreads.Outcomes[0].Name != "HJK" || *spreads.Outcomes[0].Point != -0.5 {
		t.Errorf("spreads home = %+v, want HJK at -0.5", spreads.Outcomes[0])
	}
	if spreads.Outcomes[1].Name != "KuPS" || *spreads.Outcomes[1].Point != 0.5 {
		t.Errorf("spreads away = %+v, want KuPS at 0.5", spreads.Outcomes[1])
	}
}

func TestEventToFeedRejectsLive(t *testing.T) {
	w := EventWrapper{Event: Event{
		HomeName: "HJK", AwayName: "KuPS",
		Start: "2026-06-10T16:00:00Z", State: "STARTED",
	}}
	if _, ok := EventToFeed(w, "Unibet (SE)", "soccer_finland_veikkausliiga"); ok {
		t.Error("EventToFeed accepted a live event")
	}
}

func TestEventToFeedRejectsMissingTeams(t *testing.T) {
	w := EventWrapper{Event: Event{
		HomeName: "HJK",
		Start:    "2026-06-10T16:00:00Z", State: "NOT_STARTED",
	}}
	if _, ok := EventToFeed(w, "Unibet (SE)", "soccer_finland_veikkausliiga"); ok {
		t.Error("EventToFeed accepted an event without an away team")
	}
}

func TestEventToFeedRejectsBadStart(t *testing.T) {
	w := EventWrapper{Event: Event{
		HomeName: "HJK", AwayName: "KuPS",
		Start: "tomorrow", State: "NOT_STARTED",
	}}
	if _, ok := EventToFeed(w, "Unibet (SE)", "soccer_finland_veikkausliiga"); ok {
		t.Error("EventToFeed accepted an unparseable start time")
	}
}
