package notify

import (
	"context"
	"fmt"
	"net/http"
)

// Signals liveness to a healthchecks endpoint.
type Healthcheck struct {
	url    string
	client *http.Client
}

// Creates a healthcheck pinger for the given URL.
func NewHealthcheck(url string) *Healthcheck {
	return &Healthcheck{
		url:    url,
		client: httpClient(),
	}
}

// Sends the liveness signal.
//
// A missed ping is how the healthchecks service detects a dead monitor, so
// callers should log ping failures but keep running.
func (h *Healthcheck) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotify, err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotify, err)
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}
