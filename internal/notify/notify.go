// Package notify delivers threshold alerts and liveness signals.
//
// Three channels are supported: Discord webhooks, Gotify, and ntfy. Fanout
// sends to every configured channel and reports per-channel failures
// without stopping early, so one unreachable service never silences the
// others.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Timeout applied to every outbound notification request.
const requestTimeout = 10 * time.Second

// Delivers an alert message to a single channel.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, message string) error
}

var ErrNotify = errors.New("notification failed")

// Sends the message to every notifier.
//
// Failures are logged per channel and joined into the returned error. All
// notifiers are attempted regardless of earlier failures.
func Fanout(ctx context.Context, notifiers []Notifier, message string) error {
	var errs []error

	for _, n := range notifiers {
		if err := n.Notify(ctx, message); err != nil {
			slog.Error("notification failed", "channel", n.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
			continue
		}
		slog.Info("notification sent", "channel", n.Name())
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrNotify, errors.Join(errs...))
	}
	return nil
}

// Returns the shared HTTP client for notification requests.
func httpClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// Checks an HTTP response for a failure status.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: unexpected status %s", ErrNotify, resp.Status)
	}
	return nil
}
