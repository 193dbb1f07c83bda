package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"ev-dashboard/internal/analysis"
	"ev-dashboard/internal/ledger"
)

// Notifier handles alert notifications
type Notifier struct {
	mu         sync.Mutex
	lastAlerts map[string]time.Time // Dedupe alerts
	cooldown   time.Duration        // Minimum time between same alerts
	threshold  float64              // Minimum EV worth an alert
}

// NewNotifier creates a new notifier
func NewNotifier(cooldown time.Duration, threshold float64) *Notifier {
	return &Notifier{
		lastAlerts: make(map[string]time.Time),
		cooldown:   cooldown,
		threshold:  threshold,
	}
}

// SetThreshold changes the minimum EV for value alerts.
func (n *Notifier) SetThreshold(threshold float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.threshold = threshold
}

// checkCooldown records key and reports whether an alert for it was already
// sent within the cooldown.
func (n *Notifier) checkCooldown(key string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if lastTime, ok := n.lastAlerts[key]; ok {
		if time.Since(lastTime) < n.cooldown {
			return true
		}
	}
	n.lastAlerts[key] = time.Now()
	return false
}

// AlertValueBet logs a +EV line for a value bet at or above the threshold.
// It reports whether an alert was emitted.
func (n *Notifier) AlertValueBet(label string, edge analysis.Edge, rec analysis.Recommendation) bool {
	n.mu.Lock()
	threshold := n.threshold
	n.mu.Unlock()

	if !edge.IsValue() || edge.EV < threshold {
		return false
	}

	key := fmt.Sprintf("value-%s-%.3f", strings.ToLower(label), edge.Odds)
	if n.checkCooldown(key) {
		return false
	}

	slog.Info(fmt.Sprintf("+EV: %s @ %.2f", label, edge.Odds),
		"prob", fmt.Sprintf("%.1f%%", edge.Probability*100),
		"implied", fmt.Sprintf("%.1f%%", edge.Implied*100),
		"ev", fmt.Sprintf("%.2f%%", edge.EV*100),
		"policy", rec.Policy,
		"stake", fmt.Sprintf("%.2f", rec.Amount),
		"clamped", rec.Clamped,
	)
	return true
}

// Publish logs settled bets. It implements ledger.EventSink.
func (n *Notifier) Publish(_ context.Context, ev ledger.Event) error {
	if ev.Type != ledger.EventSettled {
		return nil
	}

	b := ev.Bet
	level := slog.LevelInfo
	if b.Status == ledger.StatusLost {
		level = slog.LevelWarn
	}
	slog.Log(context.Background(), level, fmt.Sprintf("SETTLED: %s %s", b.Selection, strings.ToUpper(string(b.Status))),
		"id", b.ID,
		"match", b.Match,
		"stake", fmt.Sprintf("%.2f", b.Stake),
		"odds", b.Odds,
		"pl", fmt.Sprintf("%+.2f", b.ProfitLoss),
	)
	return nil
}

// LogError logs an error
func (n *Notifier) LogError(context string, err error) {
	slog.Error("Error", "context", context, "error", err)
}

// LogStartup logs server startup
func (n *Notifier) LogStartup(config string) {
	slog.Info("Server started |" + config)
}

// CleanupOldAlerts removes stale alert records
func (n *Notifier) CleanupOldAlerts() {
	n.mu.Lock()
	defer n.mu.Unlock()
	cutoff := time.Now().Add(-1 * time.Hour)
	for key, t := range n.lastAlerts {
		if t.Before(cutoff) {
			delete(n.lastAlerts, key)
		}
	}
}

// RunCleanup calls CleanupOldAlerts every interval until ctx is done.
func (n *Notifier) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.CleanupOldAlerts()
		}
	}
}
