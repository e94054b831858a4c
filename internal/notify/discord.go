package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Sends alerts to a Discord webhook.
type Discord struct {
	webhookURL string
	client     *http.Client
}

// Creates a Discord notifier for the given webhook URL.
func NewDiscord(webhookURL string) *Discord {
	return &Discord{
		webhookURL: webhookURL,
		client:     httpClient(),
	}
}

// Returns the channel name.
func (d *Discord) Name() string {
	return "discord"
}

// Posts the message as webhook content.
func (d *Discord) Notify(ctx context.Context, message string) error {
	payload, err := json.Marshal(map[string]string{
		"content": message,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotify, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotify, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotify, err)
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}
