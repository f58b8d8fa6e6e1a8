// Command prune-history deletes old rows from the append-only history
// tables (odds history, fair probabilities, EV and arb results). Matches,
// current odds and closing-line tables are never touched.
//
// Usage:
//
//	prune-history -config configs/production.yaml -keep 720h
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/otso2008/OddsBot/internal/pkg/config"
	"github.com/otso2008/OddsBot/internal/pkg/storage"
)

func main() {
	_ = godotenv.Load()

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "configs/production.yaml"
	}

	configPath := flag.String("config", defaultConfig, "path to config file")
	keep := flag.Duration("keep", 720*time.Hour, "retention window, rows older than now-keep are deleted")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Postgres.DSN == "" {
		log.Fatalf("postgres.dsn is required")
	}

	store, err := storage.NewPostgresStore(&cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer store.Close()

	cutoff := time.Now().Add(-*keep)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	deleted, err := store.PruneHistory(ctx, cutoff)
	if err != nil {
		log.Fatalf("Prune failed after %d rows: %v", deleted, err)
	}

	fmt.Printf("Deleted %d history rows older than %s (%s)\n",
		deleted, keep.String(), cutoff.UTC().Format(time.RFC3339))
}
