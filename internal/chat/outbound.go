// Package chat adapts the bot's Transport interface onto a webhook-based
// chat relay: inbound events arrive as HTTP posts, outbound messages go to
// the relay's callback URL. The relay owns the actual bot-API session.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mealtrace/mealtrace-bot/internal/bot"
)

// OutboundTransport sends messages through the relay callback.
type OutboundTransport struct {
	callbackURL string
	token       string
	client      *http.Client
}

// Ensure OutboundTransport implements bot.Transport
var _ bot.Transport = (*OutboundTransport)(nil)

// NewOutboundTransport creates a transport posting to the given callback
// URL, authenticated with the shared token.
func NewOutboundTransport(callbackURL, token string) *OutboundTransport {
	return &OutboundTransport{
		callbackURL: callbackURL,
		token:       token,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

type sendRequest struct {
	Scope   string `json:"scope"`
	Text    string `json:"text"`
	ReplyTo string `json:"reply_to,omitempty"`
}

type editRequest struct {
	Scope     string `json:"scope"`
	MessageID string `json:"message_id"`
	Text      string `json:"text"`
}

// Send posts a new message and returns the id the relay assigned.
func (t *OutboundTransport) Send(ctx context.Context, scope, text, replyTo string) (string, error) {
	body, err := t.post(ctx, t.callbackURL+"/send", sendRequest{Scope: scope, Text: text, ReplyTo: replyTo})
	if err != nil {
		return "", err
	}

	var resp struct {
		MessageID string `json:"message_id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode send response: %w", err)
	}
	if resp.MessageID == "" {
		return "", fmt.Errorf("relay returned no message id")
	}
	return resp.MessageID, nil
}

// Edit rewrites a previously sent message.
func (t *OutboundTransport) Edit(ctx context.Context, scope, messageID, newText string) error {
	_, err := t.post(ctx, t.callbackURL+"/edit", editRequest{Scope: scope, MessageID: messageID, Text: newText})
	return err
}

func (t *OutboundTransport) post(ctx context.Context, url string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.token)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach chat relay: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read relay response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relay returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
