package engine

import (
	"math"
	"strings"
	"sync"
	"time"
)

// AlertGate suppresses repeat notifications for the same opportunity until
// its value moves by at least the configured number of percentage points in
// either direction. Keys carry the match key as prefix, so entries for
// matches that have kicked off can be dropped without extra bookkeeping.
type AlertGate struct {
	threshold float64

	mu   sync.Mutex
	last map[string]float64
}

func NewAlertGate(threshold float64) *AlertGate {
	return &AlertGate{
		threshold: threshold,
		last:      make(map[string]float64),
	}
}

// ShouldAlert reports whether the value at key warrants a new alert and
// records it when it does. First sighting always alerts; afterwards the
// absolute move since the last alerted value must reach the threshold.
func (g *AlertGate) ShouldAlert(key string, percent float64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, seen := g.last[key]
	if seen && math.Abs(percent-last) < g.threshold {
		return false
	}
	g.last[key] = percent
	return true
}

// EvictStarted drops entries whose match has kicked off. The start time is
// the fourth field of the match key; unparseable keys are dropped too so
// they cannot pin memory forever.
func (g *AlertGate) EvictStarted(now time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	evicted := 0
	for key := range g.last {
		start, ok := keyStartTime(key)
		if ok && start.After(now) {
			continue
		}
		delete(g.last, key)
		evicted++
	}
	return evicted
}

// Size returns the number of tracked opportunities.
func (g *AlertGate) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.last)
}

func keyStartTime(key string) (time.Time, bool) {
	parts := strings.Split(key, "|")
	if len(parts) < 4 {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, parts[3])
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
