package oddsapi

import (
	"context"
	"fmt"
	"time"

	"github.com/otso2008/OddsBot/internal/feed"
	"github.com/otso2008/OddsBot/internal/pkg/config"
)

const providerName = "oddsapi"

func init() {
	feed.Register(providerName, func(cfg *config.Config) feed.Provider {
		return NewProvider(cfg)
	})
}

// Provider aggregates dozens of bookmakers through The Odds API, which is
// why it is the default feed: one request per sport covers the whole book
// list including the sharp reference prices.
type Provider struct {
	client *Client
}

func NewProvider(cfg *config.Config) *Provider {
	return &Provider{
		client: NewClient(
			cfg.Feeds.OddsAPI.BaseURL,
			cfg.Feeds.OddsAPI.APIKey,
			cfg.Feeds.OddsAPI.Regions,
			cfg.Feeds.OddsAPI.Markets,
			cfg.Feeds.Timeout.Duration,
		),
	}
}

func (p *Provider) Name() string { return providerName }

func (p *Provider) Fetch(ctx context.Context, sport string) ([]feed.Event, error) {
	odds, err := p.client.GetOdds(ctx, sport)
	if err != nil {
		return nil, fmt.Errorf("fetch odds: %w", err)
	}
	fixtures, err := p.client.GetEvents(ctx, sport)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	return convertEvents(mergeFixtures(odds, fixtures), sport), nil
}

// mergeFixtures appends fixtures missing from the odds payload so they stay
// visible (and countable) downstream before any book quotes them.
func mergeFixtures(odds, fixtures []Event) []Event {
	seen := make(map[string]bool, len(odds))
	for _, e := range odds {
		seen[e.ID] = true
	}
	merged := odds
	for _, e := range fixtures {
		if !seen[e.ID] {
			merged = append(merged, e)
		}
	}
	return merged
}

func convertEvents(events []Event, sport string) []feed.Event {
	out := make([]feed.Event, 0, len(events))
	for _, e := range events {
		fe := feed.Event{
			Sport: sport,
			Home:  e.HomeTeam,
			Away:  e.AwayTeam,
		}
		if ts, err := time.Parse(time.RFC3339, e.CommenceTime); err == nil {
			fe.StartTime = ts.UTC()
		}

		for _, b := range e.Bookmakers {
			name := b.Title
			if name == "" {
				name = b.Key
			}
			bo := feed.BookmakerOdds{Name: name}
			for _, m := range b.Markets {
				key, ok := canonicalMarketKey(m.Key)
				if !ok {
					continue
				}
				fm := feed.Market{Key: key}
				for _, o := range m.Outcomes {
					if o.Price <= 0 {
						continue
					}
					fm.Outcomes = append(fm.Outcomes, feed.Outcome{
						Name:  o.Name,
						Price: o.Price,
						Point: o.Point,
					})
				}
				if len(fm.Outcomes) > 0 {
					bo.Markets = append(bo.Markets, fm)
				}
			}
			if len(bo.Markets) > 0 {
				fe.Bookmakers = append(fe.Bookmakers, bo)
			}
		}
		out = append(out, fe)
	}
	return out
}

// canonicalMarketKey maps upstream market keys onto the three wire keys.
// Team totals are excluded: keyed by line alone they would collide with
// match totals.
func canonicalMarketKey(key string) (string, bool) {
	switch key {
	case "h2h", "h2h_3_way":
		return feed.MarketKeyH2H, true
	case "totals", "alternate_totals":
		return feed.MarketKeyTotals, true
	case "spreads", "alternate_spreads":
		return feed.MarketKeySpreads, true
	default:
		return "", false
	}
}
