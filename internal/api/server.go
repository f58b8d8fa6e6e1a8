// Package api serves the read-only HTTP API over stored results: matches,
// current odds, fair probabilities, EV and arbitrage opportunities, plus the
// live snapshot of the last cycle from Redis.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/otso2008/OddsBot/internal/pkg/config"
	"github.com/otso2008/OddsBot/internal/pkg/models"
	"github.com/otso2008/OddsBot/internal/pkg/storage"
)

// SnapshotSource reads the last cycle's normalized matches without touching
// Postgres. *storage.SnapshotCache satisfies it.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (map[string]*models.Match, error)
	CycleInfo(ctx context.Context) (storage.CycleInfo, error)
}

// Server is the HTTP API. Store is required; the snapshot source is optional
// and only backs /v1/matches/current.
type Server struct {
	cfg     *config.Config
	store   storage.Store
	cache   SnapshotSource
	router  chi.Router
	limiter *rateLimiter
}

func NewServer(cfg *config.Config, store storage.Store, cache SnapshotSource) *Server {
	s := &Server{
		cfg:     cfg,
		store:   store,
		cache:   cache,
		limiter: newRateLimiter(cfg.API.RateLimitPerMinute),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins(cfg.API.CORSOrigins),
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.requireAPIKey)
		r.Use(s.rateLimit)

		r.Get("/matches", s.handleMatches)
		r.Get("/matches/current", s.handleCurrentMatches)
		r.Get("/odds", s.handleOdds)
		r.Get("/fair", s.handleFairQuotes)
		r.Get("/ev", s.handleEVOpportunities)
		r.Get("/arbs", s.handleArbOpportunities)
	})

	s.router = r
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.API.Port),
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.API.ReadHeaderTimeout.Duration,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server started", "port", s.cfg.API.Port, "auth", len(s.cfg.API.APIKeys) > 0)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("api server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown failed: %w", err)
	}
	slog.Info("API server stopped")
	return nil
}

func corsOrigins(configured []string) []string {
	if len(configured) == 0 {
		return []string{"*"}
	}
	return configured
}
