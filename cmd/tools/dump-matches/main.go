// dump-matches runs one fetch-and-normalize pass and prints the canonical
// matches, either as a summary or as full JSON (to stdout or a file).
// Useful for checking how raw feed events collapse into matches before
// letting the engine loose on them.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/otso2008/OddsBot/internal/engine"
	"github.com/otso2008/OddsBot/internal/feed"
	_ "github.com/otso2008/OddsBot/internal/feed/all"
	"github.com/otso2008/OddsBot/internal/pkg/config"
	"github.com/otso2008/OddsBot/internal/pkg/models"
)

func main() {
	_ = godotenv.Load()

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "configs/production.yaml"
	}

	var configPath, sport, outPath string
	var asJSON, withFair bool
	flag.StringVar(&configPath, "config", defaultConfig, "Path to config file")
	flag.StringVar(&sport, "sport", "", "Fetch a single sport key instead of the configured list")
	flag.BoolVar(&asJSON, "json", false, "Print full matches as JSON")
	flag.StringVar(&outPath, "out", "", "Write matches and skip summary as JSON to this file")
	flag.BoolVar(&withFair, "fair", false, "Also print fair probabilities from the reference book")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	providers, err := feed.SelectProviders(cfg)
	if err != nil {
		log.Fatalf("Failed to select providers: %v", err)
	}

	sports := cfg.Engine.Sports
	if sport != "" {
		sports = []string{sport}
	}

	ctx := context.Background()
	events := feed.FetchAll(ctx, providers, sports, cfg.Feeds.Timeout.Duration)
	res := engine.NewNormalizer().Normalize(events)

	if asJSON || outPath != "" {
		dump := struct {
			Events  int                       `json:"events"`
			Matches map[string]*models.Match  `json:"matches"`
			Skipped map[engine.SkipReason]int `json:"skipped,omitempty"`
		}{len(events), res.Matches, res.Skipped}

		if outPath != "" {
			data, err := json.MarshalIndent(dump, "", "  ")
			if err != nil {
				log.Fatalf("Failed to encode matches: %v", err)
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				log.Fatalf("Failed to write %s: %v", outPath, err)
			}
			fmt.Printf("Wrote %d matches to %s\n", len(res.Matches), outPath)
			return
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(dump); err != nil {
			log.Fatalf("Failed to encode matches: %v", err)
		}
		return
	}

	matches := engine.SortedMatches(res.Matches)
	fmt.Printf("%d events -> %d matches\n\n", len(events), len(matches))
	for _, m := range matches {
		books := map[string]bool{}
		for _, quotes := range m.Markets {
			for book := range quotes {
				books[book] = true
			}
		}
		fmt.Printf("%-60s %2d markets %2d books  %s\n",
			m.Name(), len(m.Markets), len(books), m.StartTime.Format("2006-01-02 15:04"))
	}

	if len(res.Skipped) > 0 {
		fmt.Println("\nSkipped events:")
		for reason, count := range res.Skipped {
			fmt.Printf("    %-15s %d\n", reason, count)
		}
	}

	if withFair {
		sheet := engine.NewFairModel(cfg.Engine.ReferenceBooks).Compute(res.Matches)
		quotes := sheet.Quotes(res.Matches)
		fmt.Printf("\n%d fair quotes:\n", len(quotes))
		for _, q := range quotes {
			fmt.Printf("    %-40s %-15s %-6s p=%.4f no-vig %.3f (%s, margin %.2f%%)\n",
				q.MatchName, q.MarketCode, q.Outcome, q.FairProbability, q.NoVigOdds,
				q.ReferenceBook, q.Margin*100)
		}
	}
}
