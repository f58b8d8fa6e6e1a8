package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/otso2008/OddsBot/internal/pkg/models"
)

func TestFormatEV(t *testing.T) {
	opp := models.EVOpportunity{
		MatchName:       "Arsenal vs Chelsea",
		StartTime:       time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC),
		MarketCode:      "h2h",
		Outcome:         "home",
		Bookmaker:       "Betsson",
		OfferedOdds:     2.2,
		ReferenceBook:   "Pinnacle",
		FairProbability: 0.4828,
		EVPercent:       6.2069,
	}

	alert := FormatEV(opp)
	if alert.Kind != KindEV {
		t.Errorf("kind = %s, want %s", alert.Kind, KindEV)
	}
	if alert.Subject != "EV Alert: +6.21% Arsenal vs Chelsea" {
		t.Errorf("subject = %q", alert.Subject)
	}

	wantTelegram := "🔥 <b>+6.21% EV</b>\n" +
		"Arsenal vs Chelsea\n" +
		"Market: h2h – home\n" +
		"Book: Betsson @ 2.2\n" +
		"Reference: Pinnacle (p=0.483)\n" +
		"Start: 2025-03-01 18:00 UTC"
	if alert.Telegram != wantTelegram {
		t.Errorf("telegram message:\ngot  %q\nwant %q", alert.Telegram, wantTelegram)
	}

	if !strings.HasPrefix(alert.Email, "+6.21% EV\nMatch: Arsenal vs Chelsea\n") {
		t.Errorf("email body = %q", alert.Email)
	}
}

func TestFormatArb(t *testing.T) {
	arb := models.ArbitrageOpportunity{
		MatchName:  "Arsenal vs Chelsea",
		StartTime:  time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC),
		MarketCode: "h2h",
		Legs: []models.ArbLeg{
			{Outcome: "away", Bookmaker: "BookY", Odds: 2.05, Stake: 50.603},
			{Outcome: "home", Bookmaker: "BookX", Odds: 2.1, Stake: 49.398},
		},
		InvSum:     0.963995354,
		ROIPercent: 3.735,
		TotalStake: 100,
	}

	alert := FormatArb(arb)
	if alert.Kind != KindArb {
		t.Errorf("kind = %s, want %s", alert.Kind, KindArb)
	}
	if alert.Subject != "Arbitrage Alert: Arsenal vs Chelsea" {
		t.Errorf("subject = %q", alert.Subject)
	}

	wantTelegram := "🟢 <b>Arbitrage Opportunity</b>\n" +
		"Arsenal vs Chelsea\n" +
		"Market: h2h\n" +
		"Books: BookY, BookX\n" +
		"ROI: 3.73%\n" +
		"Stake 100.00 pays 103.73\n" +
		"Start: 2025-03-01 18:00 UTC\n" +
		"away: BookY @ 2.05, stake 50.60\n" +
		"home: BookX @ 2.1, stake 49.40"
	if alert.Telegram != wantTelegram {
		t.Errorf("telegram message:\ngot  %q\nwant %q", alert.Telegram, wantTelegram)
	}
	if !strings.Contains(alert.Email, "ROI: 3.73%") {
		t.Errorf("email body = %q", alert.Email)
	}
}

func TestFormatArbDedupesBooks(t *testing.T) {
	arb := models.ArbitrageOpportunity{
		MatchName:  "Tappara vs HIFK",
		MarketCode: "over_under_5_5",
		Legs: []models.ArbLeg{
			{Outcome: "over", Bookmaker: "Coolbet", Odds: 2.10, Stake: 50},
			{Outcome: "under", Bookmaker: "Coolbet", Odds: 2.10, Stake: 50},
		},
		ROIPercent: 2.0,
	}

	alert := FormatArb(arb)
	if !strings.Contains(alert.Telegram, "Books: Coolbet\n") {
		t.Errorf("books line not deduped: %q", alert.Telegram)
	}
}

type fakeNotifier struct {
	name string
	err  error
	sent []Alert
}

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) Send(ctx context.Context, alert Alert) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, alert)
	return nil
}

func TestDispatcherIsolatesFailures(t *testing.T) {
	failing := &fakeNotifier{name: "telegram", err: errors.New("queue full")}
	working := &fakeNotifier{name: "email"}
	d := NewDispatcher(failing, working)

	sent := d.Dispatch(context.Background(), Alert{Kind: KindEV, Subject: "test"})
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}
	if len(working.sent) != 1 {
		t.Errorf("working channel got %d alerts, want 1", len(working.sent))
	}
}
