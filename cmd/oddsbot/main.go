package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/otso2008/OddsBot/internal/engine"
	"github.com/otso2008/OddsBot/internal/feed"
	_ "github.com/otso2008/OddsBot/internal/feed/all"
	"github.com/otso2008/OddsBot/internal/pkg/config"
	"github.com/otso2008/OddsBot/internal/pkg/logging"
	"github.com/otso2008/OddsBot/internal/pkg/metrics"
	"github.com/otso2008/OddsBot/internal/pkg/notify"
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
	var runFor time.Duration
	flag.StringVar(&configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.DurationVar(&runFor, "run-for", 0, "Auto-stop after duration (e.g. 10s, 1m). 0 = run until SIGINT/SIGTERM")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if _, err := logging.SetupLogger(&cfg.Logging, "oddsbot"); err != nil {
		log.Printf("Warning: failed to setup logging: %v, continuing with default logger", err)
	}
	slog.Info("Starting odds engine", "config", configPath)

	var store storage.Store
	if cfg.Postgres.DSN != "" {
		pg, err := storage.NewPostgresStore(&cfg.Postgres)
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL storage: %v", err)
		}
		defer func() {
			if err := pg.Close(); err != nil {
				slog.Error("Failed to close PostgreSQL storage", "error", err)
			}
		}()
		store = pg
	} else {
		slog.Warn("Postgres DSN not configured, results will not be persisted")
	}

	var cache *storage.SnapshotCache
	if cfg.Redis.Enabled {
		cache, err = storage.NewSnapshotCache(&cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				slog.Error("Failed to close Redis connection", "error", err)
			}
		}()
	}

	dispatcher, telegram := buildNotifiers(cfg)
	defer telegram.Stop()

	providers, err := feed.SelectProviders(cfg)
	if err != nil {
		log.Fatalf("Failed to select feed providers: %v", err)
	}
	if len(providers) == 0 {
		log.Fatalf("No feed providers enabled")
	}

	eng := engine.New(cfg, providers, store, cache, dispatcher)

	ctx, cancel := createContext(runFor)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal, stopping engine...", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	metricsSrv := metrics.StartServer(cfg.Metrics.Port, eng.Healthy)
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()
	slog.Info("Metrics server listening", "port", cfg.Metrics.Port)

	if err := eng.Run(ctx); err != nil {
		slog.Error("Engine failed", "error", err)
		telegram.Stop()
		log.Fatalf("Engine failed: %v", err)
	}

	slog.Info("Odds engine stopped")
}

func createContext(runFor time.Duration) (context.Context, context.CancelFunc) {
	if runFor > 0 {
		return context.WithTimeout(context.Background(), runFor)
	}
	return context.WithCancel(context.Background())
}

// buildNotifiers assembles the alert channels the config enables. A channel
// that fails to initialize is logged and skipped; the engine runs without it.
func buildNotifiers(cfg *config.Config) (*notify.Dispatcher, *notify.TelegramNotifier) {
	var notifiers []notify.Notifier
	var telegram *notify.TelegramNotifier

	if cfg.Telegram.BotToken != "" && len(cfg.Telegram.ChatIDs) > 0 {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatIDs)
		if err != nil {
			slog.Error("Failed to initialize Telegram notifier, continuing without it", "error", err)
		} else {
			telegram = tg
			notifiers = append(notifiers, tg)
			slog.Info("Telegram alerts enabled", "chats", len(cfg.Telegram.ChatIDs))
		}
	}

	if cfg.Email.Enabled {
		em, err := notify.NewEmailNotifier(&cfg.Email)
		if err != nil {
			slog.Error("Failed to initialize email notifier, continuing without it", "error", err)
		} else {
			notifiers = append(notifiers, em)
			slog.Info("Email alerts enabled", "recipients", len(cfg.Email.To))
		}
	}

	if len(notifiers) == 0 {
		slog.Warn("No alert channels configured, opportunities will only be logged and stored")
	}
	return notify.NewDispatcher(notifiers...), telegram
}
