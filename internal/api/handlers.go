package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const maxPageSize = 500

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			respondError(w, http.StatusServiceUnavailable, "database unhealthy", err)
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// handleMatches lists stored upcoming matches.
// Query params: sport, limit, offset.
func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sport := r.URL.Query().Get("sport")
	limit := pageLimit(r, 100)
	offset := pageOffset(r)

	matches, err := s.store.ListMatches(ctx, sport, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve matches", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
		"count":   len(matches),
		"limit":   limit,
		"offset":  offset,
	})
}

// handleCurrentMatches serves the last cycle's normalized snapshot straight
// from Redis, including every bookmaker's quotes per market.
func (s *Server) handleCurrentMatches(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		respondError(w, http.StatusServiceUnavailable, "snapshot cache disabled", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	snapshot, err := s.cache.Snapshot(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read snapshot", err)
		return
	}
	if len(snapshot) == 0 {
		respondError(w, http.StatusNotFound, "no snapshot captured yet", nil)
		return
	}

	info, err := s.cache.CycleInfo(ctx)
	if err != nil {
		slog.Error("Failed to read cycle info", "error", err)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"last_cycle": info,
		"matches":    snapshot,
		"count":      len(snapshot),
	})
}

// handleOdds lists the current quotes for one match.
// Query params: match_key (required).
func (s *Server) handleOdds(w http.ResponseWriter, r *http.Request) {
	matchKey := r.URL.Query().Get("match_key")
	if matchKey == "" {
		respondError(w, http.StatusBadRequest, "match_key is required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	odds, err := s.store.ListOdds(ctx, matchKey)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve odds", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"match_key": matchKey,
		"odds":      odds,
		"count":     len(odds),
	})
}

// handleFairQuotes lists the latest fair probabilities for one match.
// Query params: match_key (required).
func (s *Server) handleFairQuotes(w http.ResponseWriter, r *http.Request) {
	matchKey := r.URL.Query().Get("match_key")
	if matchKey == "" {
		respondError(w, http.StatusBadRequest, "match_key is required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	fair, err := s.store.ListFairQuotes(ctx, matchKey)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve fair quotes", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"match_key": matchKey,
		"fair":      fair,
		"count":     len(fair),
	})
}

// handleEVOpportunities lists recent EV bets, newest first.
// Query params: min_ev, limit, offset.
func (s *Server) handleEVOpportunities(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	minEV := parseFloatParam(r, "min_ev", 0)
	limit := pageLimit(r, 100)
	offset := pageOffset(r)

	opps, err := s.store.ListEVOpportunities(ctx, minEV, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve EV opportunities", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"opportunities": opps,
		"count":         len(opps),
		"min_ev":        minEV,
		"limit":         limit,
		"offset":        offset,
	})
}

// handleArbOpportunities lists recent arbitrages, newest first.
// Query params: min_roi, limit, offset.
func (s *Server) handleArbOpportunities(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	minROI := parseFloatParam(r, "min_roi", 0)
	limit := pageLimit(r, 100)
	offset := pageOffset(r)

	arbs, err := s.store.ListArbOpportunities(ctx, minROI, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve arbitrages", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"arbitrages": arbs,
		"count":      len(arbs),
		"min_roi":    minROI,
		"limit":      limit,
		"offset":     offset,
	})
}

func pageLimit(r *http.Request, defaultValue int) int {
	limit := parseIntParam(r, "limit", defaultValue)
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if limit < 1 {
		limit = defaultValue
	}
	return limit
}

func pageOffset(r *http.Request) int {
	offset := parseIntParam(r, "offset", 0)
	if offset < 0 {
		return 0
	}
	return offset
}

func parseIntParam(r *http.Request, param string, defaultValue int) int {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseFloatParam(r *http.Request, param string, defaultValue float64) float64 {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		slog.Error("API request failed", "message", message, "error", err)
	}
	respondJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
