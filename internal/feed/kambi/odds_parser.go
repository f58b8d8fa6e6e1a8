package kambi

import (
	"strings"
	"time"

	"github.com/otso2008/OddsBot/internal/feed"
)

// EventToFeed converts one Kambi list-view event into the shared feed shape,
// quoted under the given bookmaker name. Returns false for live or broken
// events. Team names always come from homeName/awayName so they match what
// other feeds report for the same fixture.
func EventToFeed(w EventWrapper, bookName, sport string) (feed.Event, bool) {
	ev := w.Event
	home := strings.TrimSpace(ev.HomeName)
	away := strings.TrimSpace(ev.AwayName)
	if home == "" || away == "" {
		return feed.Event{}, false
	}
	if ev.State != "" && ev.State != "NOT_STARTED" {
		return feed.Event{}, false
	}

	start, err := time.Parse(time.RFC3339, ev.Start)
	if err != nil {
		return feed.Event{}, false
	}

	out := feed.Event{
		Sport:     sport,
		Home:      home,
		Away:      away,
		StartTime: start.UTC(),
	}

	book := feed.BookmakerOdds{Name: bookName}
	for _, offer := range w.BetOffers {
		var market feed.Market
		switch offer.BetOfferType.ID {
		case betOfferMatch:
			market = buildMatchMarket(offer, home, away)
		case betOfferOverUnder:
			market = buildTotalsMarket(offer)
		case betOfferHandicap:
			market = buildHandicapMarket(offer, home, away)
		default:
			continue
		}
		if len(market.Outcomes) > 0 {
			book.Markets = append(book.Markets, market)
		}
	}
	if len(book.Markets) > 0 {
		out.Bookmakers = append(out.Bookmakers, book)
	}
	return out, true
}

func buildMatchMarket(offer BetOffer, home, away string) feed.Market {
	m := feed.Market{Key: feed.MarketKeyH2H}
	for _, o := range offer.Outcomes {
		if !outcomeOpen(o) {
			continue
		}
		var name string
		switch o.Type {
		case "OT_ONE":
			name = home
		case "OT_TWO":
			name = away
		case "OT_CROSS":
			name = "Draw"
		default:
			continue
		}
		m.Outcomes = append(m.Outcomes, feed.Outcome{Name: name, Price: milliOdds(o.Odds)})
	}
	return m
}

func buildTotalsMarket(offer BetOffer) feed.Market {
	m := feed.Market{Key: feed.MarketKeyTotals}
	for _, o := range offer.Outcomes {
		if !outcomeOpen(o) || o.Line == nil {
			continue
		}
		var name string
		switch o.Type {
		case "OT_OVER":
			name = "Over"
		case "OT_UNDER":
			name = "Under"
		default:
			continue
		}
		point := milliLine(*o.Line)
		m.Outcomes = append(m.Outcomes, feed.Outcome{Name: name, Price: milliOdds(o.Odds), Point: &point})
	}
	return m
}

// buildHandicapMarket maps outcome "1"/"2" to the home/away team name.
// Each handicap outcome carries its own signed line; outcomes without one
// are skipped.
func buildHandicapMarket(offer BetOffer, home, away string) feed.Market {
	m := feed.Market{Key: feed.MarketKeySpreads}
	for _, o := range offer.Outcomes {
		if !outcomeOpen(o) || o.Line == nil {
			continue
		}

		var name string
		switch o.Type {
		case "OT_ONE":
			name = home
		case "OT_TWO":
			name = away
		default:
			continue
		}

		point := milliLine(*o.Line)
		m.Outcomes = append(m.Outcomes, feed.Outcome{Name: name, Price: milliOdds(o.Odds), Point: &point})
	}
	return m
}

func outcomeOpen(o Outcome) bool {
	return (o.Status == "" || o.Status == "OPEN") && o.Odds > 1000
}

func milliOdds(v int64) float64 {
	return float64(v) / 1000.0
}

func milliLine(v int64) float64 {
	return float64(v) / 1000.0
}
