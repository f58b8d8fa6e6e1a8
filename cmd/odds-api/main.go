package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/otso2008/OddsBot/internal/api"
	"github.com/otso2008/OddsBot/internal/pkg/config"
	"github.com/otso2008/OddsBot/internal/pkg/logging"
	"github.com/otso2008/OddsBot/internal/pkg/storage"
)

const defaultConfigPath = "configs/production.yaml"

func main() {
	_ = godotenv.Load()

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	var configPath string
	flag.StringVar(&configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if _, err := logging.SetupLogger(&cfg.Logging, "odds-api"); err != nil {
		log.Printf("Warning: failed to setup logging: %v, continuing with default logger", err)
	}

	if cfg.Postgres.DSN == "" {
		log.Fatalf("Postgres DSN is required for the API server")
	}
	store, err := storage.NewPostgresStore(&cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Failed to close PostgreSQL storage", "error", err)
		}
	}()

	var cache api.SnapshotSource
	if cfg.Redis.Enabled {
		snapshots, err := storage.NewSnapshotCache(&cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer func() {
			if err := snapshots.Close(); err != nil {
				slog.Error("Failed to close Redis connection", "error", err)
			}
		}()
		cache = snapshots
	} else {
		slog.Warn("Redis disabled, /v1/matches/current will be unavailable")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received shutdown signal, stopping API server...")
		cancel()
	}()

	srv := api.NewServer(cfg, store, cache)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("API server failed: %v", err)
	}
}
