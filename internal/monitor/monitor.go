// Package monitor ties the cost explorer, projection, and notification
// channels together into a single periodic check.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/costwatch/costwatch/internal/costs"
	"github.com/costwatch/costwatch/internal/notify"
)

// Provides month-to-date spend.
type CostSource interface {
	MonthToDate(ctx context.Context, now time.Time) (float64, error)
}

// Runs cost checks and sends alerts when the projection crosses the
// threshold.
type Monitor struct {
	Source    CostSource
	Notifiers []notify.Notifier
	Threshold float64            // Projected monthly cost (USD) that triggers alerts.
	Health    *notify.Healthcheck // Optional liveness ping, sent after every run.

	// Clock override for tests. Nil uses time.Now.
	Now func() time.Time
}

// Performs one cost check.
//
// A failed cost query is logged and treated as zero spend so the schedule
// keeps running; this mirrors a monitor that must stay alive through
// transient API trouble. The healthcheck ping is sent whether or not the
// threshold fired, and its failure is logged only. The returned error
// reflects notification delivery problems.
func (m *Monitor) RunOnce(ctx context.Context) error {
	now := m.now()

	cost, err := m.Source.MonthToDate(ctx, now)
	if err != nil {
		slog.Error("failed to retrieve AWS costs", "error", err)
		cost = 0
	}

	p := costs.Project(cost, now)

	slog.Info("cost check",
		"current", fmt.Sprintf("%.2f", p.Cost),
		"projected", fmt.Sprintf("%.2f", p.Projected),
		"remaining", fmt.Sprintf("%.2f", p.Remaining),
		"threshold", fmt.Sprintf("%.2f", m.Threshold),
	)

	var notifyErr error
	if p.Projected > m.Threshold {
		message := fmt.Sprintf(
			"ATTENTION! Projected end-of-month AWS costs of %.2f USD exceeds %.2f USD!",
			p.Projected, m.Threshold,
		)
		notifyErr = notify.Fanout(ctx, m.Notifiers, message)
	} else {
		slog.Info("no threshold exceeded")
	}

	if m.Health != nil {
		if err := m.Health.Ping(ctx); err != nil {
			slog.Error("failed to send health check signal", "error", err)
		}
	}

	return notifyErr
}

// Returns the current time, honoring the test override.
func (m *Monitor) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}
