// Package schedule runs a function on a fixed interval.
package schedule

import (
	"context"
	"time"
)

// Runs fn immediately and then on every interval tick until the context is
// cancelled.
//
// Runs do not overlap: a run that outlasts the interval delays the next
// tick's run rather than racing it.
func Every(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) {
	fn(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
