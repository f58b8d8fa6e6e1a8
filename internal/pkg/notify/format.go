package notify

import (
	"fmt"
	"strings"

	"github.com/otso2008/OddsBot/internal/pkg/models"
)

const startTimeLayout = "2006-01-02 15:04 UTC"

// FormatEV renders one EV opportunity for all channels.
func FormatEV(opp models.EVOpportunity) Alert {
	start := opp.StartTime.UTC().Format(startTimeLayout)

	telegram := fmt.Sprintf(
		"🔥 <b>+%.2f%% EV</b>\n%s\nMarket: %s – %s\nBook: %s @ %v\nReference: %s (p=%.3f)\nStart: %s",
		opp.EVPercent, opp.MatchName, opp.MarketCode, opp.Outcome,
		opp.Bookmaker, opp.OfferedOdds,
		opp.ReferenceBook, opp.FairProbability, start,
	)
	email := fmt.Sprintf(
		"+%.2f%% EV\nMatch: %s\nMarket: %s – %s\nBook: %s @ %v\nReference: %s (p=%.3f)\nStart: %s",
		opp.EVPercent, opp.MatchName, opp.MarketCode, opp.Outcome,
		opp.Bookmaker, opp.OfferedOdds,
		opp.ReferenceBook, opp.FairProbability, start,
	)

	return Alert{
		Kind:     KindEV,
		Subject:  fmt.Sprintf("EV Alert: +%.2f%% %s", opp.EVPercent, opp.MatchName),
		Telegram: telegram,
		Email:    email,
	}
}

// FormatArb renders one arbitrage opportunity for all channels. The detail
// block lists the stake split per leg.
func FormatArb(arb models.ArbitrageOpportunity) Alert {
	start := arb.StartTime.UTC().Format(startTimeLayout)
	books := legBooks(arb.Legs)
	details := legDetails(arb.Legs)

	telegram := fmt.Sprintf(
		"🟢 <b>Arbitrage Opportunity</b>\n%s\nMarket: %s\nBooks: %s\nROI: %.2f%%\nStake %.2f pays %.2f\nStart: %s\n%s",
		arb.MatchName, arb.MarketCode, books, arb.ROIPercent, arb.TotalStake, arb.Payout(), start, details,
	)
	email := fmt.Sprintf(
		"Arbitrage Opportunity\nMatch: %s\nMarket: %s\nBooks: %s\nROI: %.2f%%\nStake %.2f pays %.2f\nStart: %s\nDetails:\n%s",
		arb.MatchName, arb.MarketCode, books, arb.ROIPercent, arb.TotalStake, arb.Payout(), start, details,
	)

	return Alert{
		Kind:     KindArb,
		Subject:  fmt.Sprintf("Arbitrage Alert: %s", arb.MatchName),
		Telegram: telegram,
		Email:    email,
	}
}

// legBooks joins the distinct bookmakers of the legs in leg order.
func legBooks(legs []models.ArbLeg) string {
	seen := make(map[string]bool, len(legs))
	var books []string
	for _, leg := range legs {
		if seen[leg.Bookmaker] {
			continue
		}
		seen[leg.Bookmaker] = true
		books = append(books, leg.Bookmaker)
	}
	return strings.Join(books, ", ")
}

func legDetails(legs []models.ArbLeg) string {
	lines := make([]string, 0, len(legs))
	for _, leg := range legs {
		lines = append(lines, fmt.Sprintf("%s: %s @ %v, stake %.2f", leg.Outcome, leg.Bookmaker, leg.Odds, leg.Stake))
	}
	return strings.Join(lines, "\n")
}
