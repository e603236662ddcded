package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wolfman30/booking-assistant/internal/availability"
	"github.com/wolfman30/booking-assistant/internal/observability/metrics"
	"github.com/wolfman30/booking-assistant/internal/webhook"
	"github.com/wolfman30/booking-assistant/pkg/logging"
)

const maxMessageLen = 2000

// ErrEmptyMessage is returned when the visitor sends only whitespace.
var ErrEmptyMessage = errors.New("chat: message required")

// Sender delivers a prompt to the automation webhook.
type Sender interface {
	Send(ctx context.Context, payload webhook.Payload) (string, error)
}

// Reply is what the widget renders for one visitor message.
type Reply struct {
	SessionID string   `json:"sessionId"`
	Text      string   `json:"reply"`
	Times     []string `json:"times"`
	Failed    bool     `json:"failed,omitempty"`
}

// Service relays free-form chat through the automation webhook.
type Service struct {
	sender      Sender
	transcripts *TranscriptStore
	metrics     *metrics.BookingMetrics
	logger      *logging.Logger
}

// NewService builds a chat relay. transcripts and m may be nil.
func NewService(sender Sender, transcripts *TranscriptStore, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if sender == nil {
		panic("chat: sender cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{sender: sender, transcripts: transcripts, metrics: m, logger: logger}
}

// Send relays text and returns the reply with every time it mentions.
// Upstream failures produce a friendly reply, not an error.
func (s *Service) Send(ctx context.Context, sessionID, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}
	if len(text) > maxMessageLen {
		text = text[:maxMessageLen]
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = webhook.NewSessionID()
	}
	log := s.logger.With("session_id", sessionID)

	s.appendTranscript(ctx, sessionID, Message{Role: RoleUser, Text: text})

	started := time.Now()
	raw, err := s.sender.Send(ctx, webhook.Payload{SessionID: sessionID, Message: text})
	status := "ok"
	reply := Reply{SessionID: sessionID}
	if err != nil {
		status = "error"
		log.Warn("chat relay failed", "error", err)
		reply.Text = webhook.FriendlyError
		reply.Times = []string{}
		reply.Failed = true
	} else {
		reply.Text = raw
		reply.Times = availability.ExtractMentionedSlots(raw)
	}
	s.metrics.ObserveWebhook("chat", status, time.Since(started).Seconds())

	s.appendTranscript(ctx, sessionID, Message{Role: RoleAssistant, Text: reply.Text, Times: reply.Times, Failed: reply.Failed})
	return reply, nil
}

// History returns the most recent limit messages of a session, oldest first.
func (s *Service) History(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("chat: sessionID required")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.transcripts.List(ctx, sessionID, int64(limit))
}

func (s *Service) appendTranscript(ctx context.Context, sessionID string, msg Message) {
	if err := s.transcripts.Append(ctx, sessionID, msg); err != nil {
		s.logger.Warn("failed to store chat transcript", "session_id", sessionID, "error", err)
	}
}
