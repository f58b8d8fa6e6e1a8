package coolbet

import (
	"strings"
	"time"

	"github.com/otso2008/OddsBot/internal/feed"
)

const bookmakerName = "Coolbet"

// MatchToFeed converts one Coolbet match into the shared feed shape.
// Result keys drive the mapping; 1x2 and winner outcomes get the actual
// team names so they line up with what other feeds call the same fixture.
func MatchToFeed(m Match, sport string) (feed.Event, bool) {
	home := strings.TrimSpace(m.HomeTeamName)
	away := strings.TrimSpace(m.AwayTeamName)
	if home == "" || away == "" {
		return feed.Event{}, false
	}
	if m.Status != "" && m.Status != "OPEN" {
		return feed.Event{}, false
	}

	start, err := time.Parse(time.RFC3339, m.MatchStart)
	if err != nil {
		return feed.Event{}, false
	}

	out := feed.Event{
		Sport:     sport,
		Home:      home,
		Away:      away,
		StartTime: start.UTC(),
	}

	book := feed.BookmakerOdds{Name: bookmakerName}
	for _, market := range m.Markets {
		var fm feed.Market
		switch market.ViewType {
		case "1x2", "winner":
			fm = buildWinnerMarket(market, home, away)
		case "totals":
			fm = buildTotalsMarket(market)
		case "handicap":
			fm = buildHandicapMarket(market, home, away)
		default:
			continue
		}
		if len(fm.Outcomes) > 0 {
			book.Markets = append(book.Markets, fm)
		}
	}
	if len(book.Markets) > 0 {
		out.Bookmakers = append(out.Bookmakers, book)
	}
	return out, true
}

func buildWinnerMarket(m Market, home, away string) feed.Market {
	fm := feed.Market{Key: feed.MarketKeyH2H}
	for _, o := range m.Outcomes {
		if o.Odds <= 1.0 {
			continue
		}
		var name string
		switch o.ResultKey {
		case "HOME":
			name = home
		case "AWAY":
			name = away
		case "DRAW":
			name = "Draw"
		default:
			continue
		}
		fm.Outcomes = append(fm.Outcomes, feed.Outcome{Name: name, Price: o.Odds})
	}
	return fm
}

func buildTotalsMarket(m Market) feed.Market {
	fm := feed.Market{Key: feed.MarketKeyTotals}
	for _, o := range m.Outcomes {
		if o.Odds <= 1.0 {
			continue
		}
		var name string
		switch o.ResultKey {
		case "OVER":
			name = "Over"
		case "UNDER":
			name = "Under"
		default:
			continue
		}
		point := m.Line
		fm.Outcomes = append(fm.Outcomes, feed.Outcome{Name: name, Price: o.Odds, Point: &point})
	}
	return fm
}

// buildHandicapMarket quotes the market line from the home side; the away
// outcome gets the negated line.
func buildHandicapMarket(m Market, home, away string) feed.Market {
	fm := feed.Market{Key: feed.MarketKeySpreads}
	for _, o := range m.Outcomes {
		if o.Odds <= 1.0 {
			continue
		}
		var name string
		var point float64
		switch o.ResultKey {
		case "HOME":
			name = home
			point = m.Line
		case "AWAY":
			name = away
			point = -m.Line
		default:
			continue
		}
		p := point
		fm.Outcomes = append(fm.Outcomes, feed.Outcome{Name: name, Price: o.Odds, Point: &p})
	}
	return fm
}
