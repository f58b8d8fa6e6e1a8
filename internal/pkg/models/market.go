package models

import (
	"math"
	"strconv"
	"strings"
)

// Market codes identify one market instance, not just a market type: totals
// and spreads embed their line in the code so the same line from different
// feeds compares equal.
const (
	MarketH2H = "h2h"

	totalsCodePrefix  = "over_under_"
	spreadsCodePrefix = "spreads_"
)

// Semantic outcome labels for head-to-head and totals markets.
const (
	OutcomeHome  = "home"
	OutcomeAway  = "away"
	OutcomeDraw  = "draw"
	OutcomeOver  = "over"
	OutcomeUnder = "under"
)

// CanonicalTotalsLine rounds a totals line to the nearest half point, so
// quarter lines from Asian-style feeds (2.25, 2.75) land on the same grid as
// everyone else's and cross-bookmaker comparison stays possible.
func CanonicalTotalsLine(line float64) float64 {
	return math.Round(line*2) / 2
}

// TotalsCode returns the market code for a totals market at the given line
// after canonical rounding, e.g. 2.5 -> "over_under_2_5".
func TotalsCode(line float64) string {
	return totalsCodePrefix + formatLine(CanonicalTotalsLine(line))
}

// SpreadsCode returns the market code for a spread market. The point is the
// home side's signed handicap, kept exactly as quoted (no rounding),
// e.g. -6.5 -> "spreads_-6_5".
func SpreadsCode(homePoint float64) string {
	return spreadsCodePrefix + formatLine(homePoint)
}

// IsTotalsCode reports whether code identifies a totals market instance.
func IsTotalsCode(code string) bool {
	return strings.HasPrefix(code, totalsCodePrefix)
}

// IsSpreadsCode reports whether code identifies a spread market instance.
func IsSpreadsCode(code string) bool {
	return strings.HasPrefix(code, spreadsCodePrefix)
}

// formatLine renders a line without trailing zeros and with "_" instead of
// "." so it can live inside a market code: 2.5 -> "2_5", 3 -> "3".
func formatLine(line float64) string {
	s := strconv.FormatFloat(line, 'f', -1, 64)
	return strings.ReplaceAll(s, ".", "_")
}
