package engine

import (
	"testing"
	"time"
)

func TestAlertGateThreshold(t *testing.T) {
	gate := NewAlertGate(0.5)
	key := "soccer_epl|arsenal|chelsea|2025-03-01T18:00:00Z|h2h|home"

	if !gate.ShouldAlert(key, 4.0) {
		t.Fatal("first sighting must alert")
	}
	if gate.ShouldAlert(key, 4.3) {
		t.Error("0.3 move should be suppressed")
	}
	// Baseline is the last alerted value, not the last observed one.
	if !gate.ShouldAlert(key, 4.6) {
		t.Error("0.6 move from 4.0 should alert")
	}
	if gate.ShouldAlert(key, 4.6) {
		t.Error("unchanged value should be suppressed")
	}
}

func TestAlertGateDownwardMove(t *testing.T) {
	gate := NewAlertGate(0.5)
	key := "soccer_epl|arsenal|chelsea|2025-03-01T18:00:00Z|h2h"

	if !gate.ShouldAlert(key, 3.0) {
		t.Fatal("first sighting must alert")
	}
	if !gate.ShouldAlert(key, 2.4) {
		t.Error("drop of 0.6 should alert")
	}
	if gate.ShouldAlert(key, 2.1) {
		t.Error("drop of 0.3 from new baseline should be suppressed")
	}
}

func TestAlertGateIndependentKeys(t *testing.T) {
	gate := NewAlertGate(0.5)

	if !gate.ShouldAlert("a|b|c|2025-03-01T18:00:00Z|h2h|home", 4.0) {
		t.Error("first key must alert")
	}
	if !gate.ShouldAlert("a|b|c|2025-03-01T18:00:00Z|h2h|away", 4.0) {
		t.Error("second key must alert independently")
	}
	if gate.Size() != 2 {
		t.Errorf("size = %d, want 2", gate.Size())
	}
}

func TestAlertGateEvictStarted(t *testing.T) {
	gate := NewAlertGate(0.5)
	now := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

	started := "soccer_epl|arsenal|chelsea|2025-03-01T15:00:00Z|h2h|home"
	upcoming := "soccer_epl|leeds|everton|2025-03-01T20:00:00Z|h2h|home"
	malformed := "not-a-real-key"

	gate.ShouldAlert(started, 4.0)
	gate.ShouldAlert(upcoming, 3.5)
	gate.ShouldAlert(malformed, 2.0)

	if evicted := gate.EvictStarted(now); evicted != 2 {
		t.Errorf("evicted = %d, want 2", evicted)
	}
	if gate.Size() != 1 {
		t.Errorf("size = %d, want 1", gate.Size())
	}
	// The surviving key keeps its baseline.
	if gate.ShouldAlert(upcoming, 3.6) {
		t.Error("surviving key should keep its gating state")
	}
	// The evicted key behaves like a first sighting again.
	if !gate.ShouldAlert(started, 4.0) {
		t.Error("evicted key should alert as new")
	}
}
