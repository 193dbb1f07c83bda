package alerts

import (
	"context"
	"testing"
	"time"

	"ev-dashboard/internal/analysis"
	"ev-dashboard/internal/ledger"
)

func TestCheckCooldownSuppresses(t *testing.T) {
	n := NewNotifier(1*time.Second, 0.02)

	// First call should not suppress
	if n.checkCooldown("test-key") {
		t.Error("first call should not be suppressed")
	}

	// Immediate second call should suppress
	if !n.checkCooldown("test-key") {
		t.Error("second call within cooldown should be suppressed")
	}
}

func TestCheckCooldownExpires(t *testing.T) {
	n := NewNotifier(10*time.Millisecond, 0.02)

	if n.checkCooldown("test-key") {
		t.Error("first call should not be suppressed")
	}

	time.Sleep(15 * time.Millisecond)

	if n.checkCooldown("test-key") {
		t.Error("call after cooldown should not be suppressed")
	}
}

func TestCheckCooldownDifferentKeys(t *testing.T) {
	n := NewNotifier(1*time.Second, 0.02)

	if n.checkCooldown("key-a") {
		t.Error("first call for key-a should not be suppressed")
	}

	// Different key should not be suppressed
	if n.checkCooldown("key-b") {
		t.Error("first call for key-b should not be suppressed")
	}

	// Same key should be suppressed
	if !n.checkCooldown("key-a") {
		t.Error("second call for key-a should be suppressed")
	}
}

func TestAlertValueBetCooldown(t *testing.T) {
	n := NewNotifier(1*time.Second, 0.02)

	edge, err := analysis.ComputeEdge(0.55, 2.20)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := analysis.RecommendStake(analysis.FractionalKelly{Fraction: 0.25}, 0.55, 2.20, 5000)
	if err != nil {
		t.Fatal(err)
	}

	if !n.AlertValueBet("Lakers ML", edge, rec) {
		t.Error("first value alert should be emitted")
	}
	if n.AlertValueBet("Lakers ML", edge, rec) {
		t.Error("second alert within cooldown should be suppressed")
	}
}

func TestAlertValueBetThreshold(t *testing.T) {
	n := NewNotifier(1*time.Second, 0.05)

	// EV = 0.52*2.0 - 1 = 0.04, below threshold
	edge, err := analysis.ComputeEdge(0.52, 2.0)
	if err != nil {
		t.Fatal(err)
	}
	if n.AlertValueBet("Celtics ML", edge, analysis.Recommendation{}) {
		t.Error("edge below threshold should not alert")
	}

	noValue, err := analysis.ComputeEdge(0.40, 2.0)
	if err != nil {
		t.Fatal(err)
	}
	n.SetThreshold(0)
	if n.AlertValueBet("Knicks ML", noValue, analysis.Recommendation{}) {
		t.Error("negative edge should never alert")
	}
	if !n.AlertValueBet("Celtics ML", edge, analysis.Recommendation{}) {
		t.Error("edge above lowered threshold should alert")
	}
}

func TestPublishSettled(t *testing.T) {
	n := NewNotifier(time.Second, 0)
	ev := ledger.Event{
		Type: ledger.EventSettled,
		Bet:  ledger.Bet{ID: "01HX", Selection: "Lakers", Status: ledger.StatusLost, Stake: 10, ProfitLoss: -10},
	}
	if err := n.Publish(context.Background(), ev); err != nil {
		t.Errorf("Publish returned %v", err)
	}
	if err := n.Publish(context.Background(), ledger.Event{Type: ledger.EventPlaced}); err != nil {
		t.Errorf("Publish returned %v", err)
	}
}

func TestCleanupOldAlerts(t *testing.T) {
	n := NewNotifier(1*time.Hour, 0.02)

	// Manually insert an old alert
	n.mu.Lock()
	n.lastAlerts["old-key"] = time.Now().Add(-2 * time.Hour)
	n.lastAlerts["fresh-key"] = time.Now()
	n.mu.Unlock()

	n.CleanupOldAlerts()

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.lastAlerts["old-key"]; ok {
		t.Error("old alert should have been cleaned up")
	}
	if _, ok := n.lastAlerts["fresh-key"]; !ok {
		t.Error("fresh alert should not have been cleaned up")
	}
}
