package kambi

import (
	"context"
	"fmt"

	"github.com/otso2008/OddsBot/internal/feed"
	"github.com/otso2008/OddsBot/internal/pkg/config"
)

const providerName = "kambi"

func init() {
	feed.Register(providerName, func(cfg *config.Config) feed.Provider {
		return NewProvider(cfg)
	})
}

// sportPaths maps canonical sport keys onto Kambi list-view paths. Sports
// missing here are simply not covered by this provider.
var sportPaths = map[string]string{
	"soccer_epl":                     "football/england/premier_league",
	"soccer_uefa_champs_league":      "football/champions_league",
	"soccer_uefa_europa_league":      "football/europa_league",
	"soccer_spain_la_liga":           "football/spain/la_liga",
	"soccer_germany_bundesliga":      "football/germany/bundesliga",
	"soccer_italy_serie_a":           "football/italy/serie_a",
	"soccer_france_ligue_one":        "football/france/ligue_1",
	"soccer_netherlands_eredivisie":  "football/netherlands/eredivisie",
	"soccer_portugal_primeira_liga":  "football/portugal/primeira_liga",
	"soccer_usa_mls":                 "football/usa/mls",
	"soccer_finland_veikkausliiga":   "football/finland/veikkausliiga",
	"americanfootball_nfl":           "american_football/nfl",
	"basketball_nba":                 "basketball/nba",
	"basketball_euroleague":          "basketball/euroleague",
	"baseball_mlb":                   "baseball/mlb",
	"icehockey_nhl":                  "ice_hockey/nhl",
	"icehockey_liiga":                "ice_hockey/finland/liiga",
	"icehockey_sweden_hockey_league": "ice_hockey/sweden/shl",
	"mma_mixed_martial_arts":         "ufc_mma",
}

// brandNames maps Kambi brand codes to the bookmaker names the rest of the
// pipeline knows. Unknown brands fall back to the code itself.
var brandNames = map[string]string{
	"ubse": "Unibet (SE)",
	"ubnl": "Unibet (NL)",
	"ubfi": "Unibet (FI)",
	"ub":   "Unibet",
	"paf":  "Paf",
}

type Provider struct {
	client *Client
	brands []string
}

func NewProvider(cfg *config.Config) *Provider {
	brands := cfg.Feeds.Kambi.Brands
	if len(brands) == 0 {
		brands = []string{"ubse"}
	}
	return &Provider{
		client: NewClient(cfg.Feeds.Kambi.BaseURL, cfg.Feeds.UserAgent, cfg.Feeds.Timeout.Duration),
		brands: brands,
	}
}

func (p *Provider) Name() string { return providerName }

// Fetch polls every configured brand for the sport. Each brand contributes
// its own bookmaker quotes; fixtures are merged downstream by match key.
func (p *Provider) Fetch(ctx context.Context, sport string) ([]feed.Event, error) {
	path, ok := sportPaths[sport]
	if !ok {
		return nil, nil
	}

	var events []feed.Event
	for _, brand := range p.brands {
		resp, err := p.client.GetListView(ctx, brand, path)
		if err != nil {
			return nil, fmt.Errorf("list view for brand %s: %w", brand, err)
		}

		bookName := brandNames[brand]
		if bookName == "" {
			bookName = brand
		}
		for _, w := range resp.Events {
			if ev, ok := EventToFeed(w, bookName, sport); ok {
				events = append(events, ev)
			}
		}
	}
	return events, nil
}
