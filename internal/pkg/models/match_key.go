package models

import (
	"strings"
	"time"
)

// MatchKey builds a stable cross-bookmaker match identifier.
//
// IMPORTANT: this assumes team names are in the same language/format across
// feeds (all feed clients poll in English). Multi-sport, so the sport key is
// part of the identity. Format: sport|home|away|time.
func MatchKey(sport, home, away string, startTime time.Time) string {
	// Use exact time without rounding
	ts := "unknown-time"
	if !startTime.IsZero() {
		ts = startTime.UTC().Format(time.RFC3339)
	}

	return normalizeKeyPart(sport) + "|" + normalizeKeyPart(home) + "|" + normalizeKeyPart(away) + "|" + ts
}

func normalizeKeyPart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	// The key uses "|" as a separator, so strip it from the parts themselves.
	s = strings.ReplaceAll(s, "/", " ")
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "|", " ")
	s = strings.Join(strings.Fields(s), " ")
	return s
}
