// check-feeds fetches one sport from every enabled provider and prints what
// came back. Run it after changing feed credentials or base URLs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/otso2008/OddsBot/internal/feed"
	_ "github.com/otso2008/OddsBot/internal/feed/all"
	"github.com/otso2008/OddsBot/internal/pkg/config"
)

func main() {
	_ = godotenv.Load()

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "configs/production.yaml"
	}

	var configPath, sport string
	flag.StringVar(&configPath, "config", defaultConfig, "Path to config file")
	flag.StringVar(&sport, "sport", "soccer_epl", "Sport key to fetch")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	providers, err := feed.SelectProviders(cfg)
	if err != nil {
		log.Fatalf("Failed to select providers: %v", err)
	}
	if len(providers) == 0 {
		log.Fatalf("No feed providers enabled")
	}

	fmt.Printf("Fetching %q from %d provider(s)...\n\n", sport, len(providers))

	for _, p := range providers {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Feeds.Timeout.Duration)
		start := time.Now()
		events, err := p.Fetch(ctx, sport)
		cancel()

		if err != nil {
			fmt.Printf("%-10s ERROR: %v\n", p.Name(), err)
			continue
		}

		books := map[string]int{}
		markets := 0
		for _, ev := range events {
			for _, b := range ev.Bookmakers {
				books[b.Name]++
				markets += len(b.Markets)
			}
		}
		fmt.Printf("%-10s %3d events, %2d bookmakers, %4d markets in %v\n",
			p.Name(), len(events), len(books), markets, time.Since(start).Round(time.Millisecond))
		for name, count := range books {
			fmt.Printf("    %-20s %d events\n", name, count)
		}
	}
}
