package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Sends alerts to an ntfy topic.
type Ntfy struct {
	topicURL string
	token    string
	client   *http.Client
}

// Creates an ntfy notifier for the given server, topic, and access token.
//
// An empty token sends unauthenticated, which public topics allow.
func NewNtfy(server, topic, token string) *Ntfy {
	return &Ntfy{
		topicURL: strings.TrimRight(server, "/") + "/" + topic,
		token:    token,
		client:   httpClient(),
	}
}

// Returns the channel name.
func (n *Ntfy) Name() string {
	return "ntfy"
}

// Posts the message as the request body to the topic URL.
func (n *Ntfy) Notify(ctx context.Context, message string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.topicURL, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotify, err)
	}
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotify, err)
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}
