package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Message priority for Gotify alerts.
const gotifyPriority = 5

// Sends alerts to a Gotify server.
type Gotify struct {
	host   string
	token  string
	client *http.Client
}

// Creates a Gotify notifier for the given server and application token.
func NewGotify(host, token string) *Gotify {
	return &Gotify{
		host:   strings.TrimRight(host, "/"),
		token:  token,
		client: httpClient(),
	}
}

// Returns the channel name.
func (g *Gotify) Name() string {
	return "gotify"
}

// Posts the message to the server's message endpoint.
func (g *Gotify) Notify(ctx context.Context, message string) error {
	payload, err := json.Marshal(map[string]any{
		"message":  message,
		"priority": gotifyPriority,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotify, err)
	}

	endpoint := g.host + "/message?token=" + url.QueryEscape(g.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotify, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotify, err)
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}
