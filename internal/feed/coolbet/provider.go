package coolbet

import (
	"context"
	"fmt"
	"strings"

	"github.com/otso2008/OddsBot/internal/feed"
	"github.com/otso2008/OddsBot/internal/pkg/config"
)

const providerName = "coolbet"

func init() {
	feed.Register(providerName, func(cfg *config.Config) feed.Provider {
		return NewProvider(cfg)
	})
}

// sportSlugs maps canonical sport keys onto Coolbet sport categories. A
// whole category is fetched in one request, so several sport keys share a
// slug and filtering happens on the league name.
var sportSlugs = map[string]string{
	"soccer_epl":                     "football",
	"soccer_uefa_champs_league":      "football",
	"soccer_uefa_europa_league":      "football",
	"soccer_spain_la_liga":           "football",
	"soccer_germany_bundesliga":      "football",
	"soccer_italy_serie_a":           "football",
	"soccer_france_ligue_one":        "football",
	"soccer_netherlands_eredivisie":  "football",
	"soccer_portugal_primeira_liga":  "football",
	"soccer_usa_mls":                 "football",
	"soccer_finland_veikkausliiga":   "football",
	"americanfootball_nfl":           "american-football",
	"basketball_nba":                 "basketball",
	"basketball_euroleague":          "basketball",
	"baseball_mlb":                   "baseball",
	"icehockey_nhl":                  "ice-hockey",
	"icehockey_liiga":                "ice-hockey",
	"icehockey_sweden_hockey_league": "ice-hockey",
	"mma_mixed_martial_arts":         "mma",
}

// leagueFilters narrows a shared sport category down to one sport key.
// Matching is a case-insensitive substring test on the league name.
var leagueFilters = map[string][]string{
	"soccer_epl":                     {"premier league"},
	"soccer_uefa_champs_league":      {"champions league"},
	"soccer_uefa_europa_league":      {"europa league"},
	"soccer_spain_la_liga":           {"la liga", "laliga"},
	"soccer_germany_bundesliga":      {"bundesliga"},
	"soccer_italy_serie_a":           {"serie a"},
	"soccer_france_ligue_one":        {"ligue 1"},
	"soccer_netherlands_eredivisie":  {"eredivisie"},
	"soccer_portugal_primeira_liga":  {"primeira liga", "liga portugal"},
	"soccer_usa_mls":                 {"mls", "major league soccer"},
	"soccer_finland_veikkausliiga":   {"veikkausliiga"},
	"americanfootball_nfl":           {"nfl"},
	"basketball_nba":                 {"nba"},
	"basketball_euroleague":          {"euroleague"},
	"baseball_mlb":                   {"mlb"},
	"icehockey_nhl":                  {"nhl"},
	"icehockey_liiga":                {"liiga"},
	"icehockey_sweden_hockey_league": {"shl"},
	"mma_mixed_martial_arts":         {"ufc", "mma"},
}

type Provider struct {
	client *Client
}

func NewProvider(cfg *config.Config) *Provider {
	return &Provider{
		client: NewClient(
			cfg.Feeds.Coolbet.BaseURL,
			cfg.Feeds.Coolbet.MirrorURL,
			cfg.Feeds.UserAgent,
			cfg.Feeds.Timeout.Duration,
		),
	}
}

func (p *Provider) Name() string { return providerName }

func (p *Provider) Fetch(ctx context.Context, sport string) ([]feed.Event, error) {
	slug, ok := sportSlugs[sport]
	if !ok {
		return nil, nil
	}

	matches, err := p.client.GetPrematch(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("prematch for %s: %w", slug, err)
	}

	var events []feed.Event
	for _, m := range matches {
		if !leagueMatches(sport, m.LeagueName) {
			continue
		}
		if ev, ok := MatchToFeed(m, sport); ok {
			events = append(events, ev)
		}
	}
	return events, nil
}

func leagueMatches(sport, leagueName string) bool {
	filters := leagueFilters[sport]
	if len(filters) == 0 {
		return true
	}
	lower := strings.ToLower(leagueName)
	for _, f := range filters {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}
