package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Canned replies returned in place of an upstream message.
const (
	ReplyReceived     = "Message received."
	ReplyAcknowledged = "I've received your request."
	ReplyTunnelWarn   = "Connection blocked by the tunnel's browser warning page. Open the webhook URL in a browser once to accept it, or use a production URL."
	FriendlyError     = "Sorry some error has occurred on our side"
)

// ErrEmptyURL is returned by NewClient when no webhook URL is configured.
var ErrEmptyURL = errors.New("webhook: url required")

// StatusError reports a non-2xx reply from the automation webhook.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook: server error %d", e.StatusCode)
}

// Payload is the request body the automation workflow expects.
type Payload struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// Config describes how to reach the automation webhook.
type Config struct {
	URL     string
	Timeout time.Duration
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client posts free-text prompts to the automation webhook and unwraps its reply.
type Client struct {
	url    string
	http   *http.Client
	tracer trace.Tracer
}

// NewClient validates the configuration and returns a ready-to-use client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, ErrEmptyURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 45 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		url:    strings.TrimSpace(cfg.URL),
		http:   httpClient,
		tracer: otel.Tracer("booking.internal.webhook"),
	}, nil
}

// NewSessionID returns an opaque identifier that lets the workflow keep per-visitor memory.
func NewSessionID() string {
	return "sess_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// Send posts the payload and returns the reply text. Transport failures and
// non-2xx responses are returned as errors; every other reply becomes text.
func (c *Client) Send(ctx context.Context, payload Payload) (string, error) {
	ctx, span := c.tracer.Start(ctx, "webhook.send")
	defer span.End()
	span.SetAttributes(attribute.String("session_id", payload.SessionID))

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("webhook: failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("webhook: request build failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("webhook: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("webhook: read response failed: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	text := string(data)

	// Tunnels on free tiers answer with an HTML interstitial instead of proxying.
	if strings.Contains(text, "ngrok-skip-browser-warning") || strings.Contains(text, "<!DOCTYPE html>") {
		return ReplyTunnelWarn, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(text)}
		span.RecordError(err)
		return "", err
	}
	return UnwrapReply(text), nil
}

// replyFields lists, in priority order, the fields a workflow may put its answer in.
var replyFields = []string{"output", "response", "text", "message"}

// UnwrapReply extracts the human-readable reply from a raw webhook body.
func UnwrapReply(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ReplyReceived
	}

	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return raw
	}

	switch v := decoded.(type) {
	case []any:
		if len(v) > 0 {
			if obj, ok := v[0].(map[string]any); ok {
				if s, ok := pickField(obj); ok {
					return s
				}
			}
		}
	case map[string]any:
		if s, ok := pickField(v); ok {
			return s
		}
	case string:
		return v
	}
	return ReplyAcknowledged
}

func pickField(obj map[string]any) (string, bool) {
	for _, field := range replyFields {
		switch val := obj[field].(type) {
		case string:
			if val != "" {
				return val, true
			}
		case nil:
		default:
			// Non-string values are returned as JSON.
			if data, err := json.Marshal(val); err == nil {
				return string(data), true
			}
		}
	}
	return "", false
}
