package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/costwatch/costwatch/internal/notify"
)

type fakeSource struct {
	cost float64
	err  error
}

func (f *fakeSource) MonthToDate(ctx context.Context, now time.Time) (float64, error) {
	return f.cost, f.err
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) Name() string { return "fake" }

func (f *fakeNotifier) Notify(ctx context.Context, message string) error {
	f.sent = append(f.sent, message)
	return f.err
}

// Mid-June: 15 of 30 days elapsed, so projection doubles the spend.
var midJune = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testMonitor(source *fakeSource, n *fakeNotifier, threshold float64) *Monitor {
	return &Monitor{
		Source:    source,
		Notifiers: []notify.Notifier{n},
		Threshold: threshold,
		Now:       func() time.Time { return midJune },
	}
}

func TestRunOnceBelowThreshold(t *testing.T) {
	n := &fakeNotifier{}
	m := testMonitor(&fakeSource{cost: 50}, n, 200) // projects to 100

	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(n.sent) != 0 {
		t.Fatalf("alert sent below threshold: %v", n.sent)
	}
}

func TestRunOnceAboveThreshold(t *testing.T) {
	n := &fakeNotifier{}
	m := testMonitor(&fakeSource{cost: 150}, n, 200) // projects to 300

	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(n.sent) != 1 {
		t.Fatalf("sent = %v, want one alert", n.sent)
	}
	want := "ATTENTION! Projected end-of-month AWS costs of 300.00 USD exceeds 200.00 USD!"
	if n.sent[0] != want {
		t.Fatalf("message = %q, want %q", n.sent[0], want)
	}
}

func TestRunOnceSourceErrorTreatedAsZero(t *testing.T) {
	n := &fakeNotifier{}
	m := testMonitor(&fakeSource{err: errors.New("throttled")}, n, 200)

	// A failed query must not abort the run or fire an alert.
	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(n.sent) != 0 {
		t.Fatalf("alert sent on failed query: %v", n.sent)
	}
}

func TestRunOnceNotifyErrorReturned(t *testing.T) {
	n := &fakeNotifier{err: errors.New("unreachable")}
	m := testMonitor(&fakeSource{cost: 150}, n, 200)

	if err := m.RunOnce(context.Background()); !errors.Is(err, notify.ErrNotify) {
		t.Fatalf("err = %v, want ErrNotify", err)
	}
}

func TestRunOnceAtThresholdDoesNotAlert(t *testing.T) {
	n := &fakeNotifier{}
	m := testMonitor(&fakeSource{cost: 100}, n, 200) // projects to exactly 200

	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(n.sent) != 0 {
		t.Fatalf("alert sent at threshold: %v", n.sent)
	}
}
