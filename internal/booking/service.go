package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/booking-assistant/internal/availability"
	"github.com/wolfman30/booking-assistant/internal/notify"
	"github.com/wolfman30/booking-assistant/internal/observability/metrics"
	"github.com/wolfman30/booking-assistant/internal/site"
	"github.com/wolfman30/booking-assistant/internal/webhook"
	"github.com/wolfman30/booking-assistant/pkg/logging"
)

const dateLayout = "2006-01-02"

// Messages shown to visitors when the upstream reply is not usable as-is.
const (
	MsgNoSlots         = "No slots available for this date."
	MsgConnectionError = "Connection error. Please try again."
	maxInlineReplyLen  = 100
)

var (
	// ErrInvalidRequest wraps validation failures on availability and booking requests.
	ErrInvalidRequest = errors.New("booking: invalid request")
	// ErrClinicClosed is returned when a booking targets a closed day.
	ErrClinicClosed = errors.New("booking: clinic closed on requested date")
	// ErrUpstream wraps failures reaching the automation webhook.
	ErrUpstream = errors.New("booking: upstream unavailable")
)

// Sender delivers a prompt to the automation webhook.
type Sender interface {
	Send(ctx context.Context, payload webhook.Payload) (string, error)
}

// Notifier is told about confirmed bookings.
type Notifier interface {
	NotifyBooked(ctx context.Context, notice notify.BookingNotice) error
}

// AvailabilityRequest asks which slots are free on a date (YYYY-MM-DD).
type AvailabilityRequest struct {
	SessionID string `json:"sessionId"`
	Date      string `json:"date"`
}

// AvailabilityResponse is the interpreted availability for one day.
type AvailabilityResponse struct {
	SessionID    string                  `json:"sessionId"`
	Date         string                  `json:"date"`
	Slots        []string                `json:"slots"`
	Categories   availability.Categories `json:"categories"`
	Closed       bool                    `json:"closed"`
	Cached       bool                    `json:"cached"`
	FallbackUsed bool                    `json:"fallbackUsed"`
	Message      string                  `json:"message,omitempty"`
}

// BookingRequest is the booking form submitted by a visitor.
type BookingRequest struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Service   string `json:"service"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Notes     string `json:"notes"`
}

// BookingResult carries the classified outcome and the message to show.
type BookingResult struct {
	SessionID string               `json:"sessionId"`
	Outcome   availability.Outcome `json:"outcome"`
	Message   string               `json:"message"`
	Date      string               `json:"date"`
	Time      string               `json:"time"`
}

// Options holds the optional collaborators of a Service.
type Options struct {
	Cache      AvailabilityCache
	AttemptLog AttemptLog
	Notifier   Notifier
	Metrics    *metrics.BookingMetrics
	Now        func() time.Time
}

// Service checks availability and books appointments through the automation webhook.
type Service struct {
	variant  site.Variant
	sender   Sender
	cache    AvailabilityCache
	attempts AttemptLog
	notifier Notifier
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

func NewService(variant site.Variant, sender Sender, logger *logging.Logger, opts Options) *Service {
	if sender == nil {
		panic("booking: sender cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	attempts := opts.AttemptLog
	if attempts == nil {
		attempts = NopAttemptLog{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		variant:  variant,
		sender:   sender,
		cache:    opts.Cache,
		attempts: attempts,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		logger:   logger,
		tracer:   otel.Tracer("booking.internal.booking"),
		now:      now,
	}
}

// Variant returns the site variant this service books for.
func (s *Service) Variant() site.Variant {
	return s.variant
}

// CheckAvailability asks the upstream agent for a day's availability and interprets the reply.
func (s *Service) CheckAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResponse, error) {
	ctx, span := s.tracer.Start(ctx, "booking.check_availability")
	defer span.End()

	day, err := time.Parse(dateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidRequest)
	}
	date := day.Format(dateLayout)
	span.SetAttributes(attribute.String("date", date))

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = webhook.NewSessionID()
	}
	resp := &AvailabilityResponse{SessionID: sessionID, Date: date, Slots: []string{}}

	if s.variant.IsClosed(day) {
		resp.Closed = true
		resp.Categories = availability.Categorize(nil)
		resp.Message = s.variant.ClosedMessage(day)
		return resp, nil
	}

	if slots, ok := s.cachedSlots(ctx, date); ok {
		resp.Slots = slots
		resp.Cached = true
		resp.Categories = availability.Categorize(slots)
		return resp, nil
	}

	reply, err := s.send(ctx, "availability", webhook.Payload{
		SessionID: sessionID,
		Message:   availabilityPrompt(date, s.variant.PromptSlotList()),
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	extraction := availability.Extract(reply)
	resp.Slots = extraction.Strings()
	resp.FallbackUsed = extraction.FallbackUsed
	resp.Categories = availability.Categorize(resp.Slots)
	s.metrics.ObserveExtraction(extraction.State.String(), extraction.FallbackUsed, len(resp.Slots))
	s.logger.Info("availability interpreted",
		"session_id", sessionID,
		"date", date,
		"slots", len(resp.Slots),
		"state", extraction.State.String(),
		"fallback", extraction.FallbackUsed,
	)

	if len(resp.Slots) == 0 {
		resp.Message = MsgNoSlots
		if len(reply) <= maxInlineReplyLen {
			resp.Message = reply
		}
		return resp, nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, date, resp.Slots); err != nil {
			s.logger.Warn("failed to cache availability", "date", date, "error", err)
		}
	}
	return resp, nil
}

// Book submits the booking form upstream and classifies the reply. A reply
// that never arrives yields Outcome Unknown rather than an error.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	ctx, span := s.tracer.Start(ctx, "booking.book")
	defer span.End()

	normalized, day, err := s.validateBooking(req)
	if err != nil {
		return nil, err
	}
	if s.variant.IsClosed(day) {
		return nil, ErrClinicClosed
	}
	if normalized.SessionID == "" {
		normalized.SessionID = webhook.NewSessionID()
	}
	span.SetAttributes(attribute.String("date", normalized.Date), attribute.String("time", normalized.Time))

	result := &BookingResult{
		SessionID: normalized.SessionID,
		Date:      normalized.Date,
		Time:      normalized.Time,
	}

	reply, err := s.send(ctx, "booking", webhook.Payload{
		SessionID: normalized.SessionID,
		Message:   bookingPrompt(normalized),
	})
	if err != nil {
		span.RecordError(err)
		s.logger.Error("booking request failed", "session_id", normalized.SessionID, "error", err)
		result.Outcome = availability.Unknown
		result.Message = MsgConnectionError
	} else {
		result.Outcome = availability.ClassifyBookingOutcome(reply)
		result.Message = reply
	}
	s.metrics.ObserveOutcome(result.Outcome.String())

	s.recordAttempt(ctx, normalized, result)

	if result.Outcome == availability.Success {
		if s.cache != nil {
			if err := s.cache.Invalidate(ctx, normalized.Date); err != nil {
				s.logger.Warn("failed to invalidate availability", "date", normalized.Date, "error", err)
			}
		}
		if s.notifier != nil {
			err := s.notifier.NotifyBooked(ctx, notify.BookingNotice{
				ClinicName:   s.variant.ClinicName,
				PatientName:  normalized.Name,
				PatientPhone: normalized.Phone,
				PatientEmail: normalized.Email,
				Service:      normalized.Service,
				Date:         normalized.Date,
				Time:         normalized.Time,
				Notes:        normalized.Notes,
				Reply:        reply,
			})
			if err != nil {
				s.logger.Warn("front desk notification failed", "session_id", normalized.SessionID, "error", err)
			}
		}
	}

	s.logger.Info("booking classified",
		"session_id", normalized.SessionID,
		"date", normalized.Date,
		"time", normalized.Time,
		"outcome", result.Outcome.String(),
	)
	return result, nil
}

// Attempts lists the recorded booking attempts for a session, newest first.
func (s *Service) Attempts(ctx context.Context, sessionID string, limit int) ([]Attempt, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session id required", ErrInvalidRequest)
	}
	return s.attempts.ListBySession(ctx, sessionID, limit)
}

func (s *Service) validateBooking(req BookingRequest) (BookingRequest, time.Time, error) {
	req.SessionID = strings.TrimSpace(req.SessionID)
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)
	req.Service = strings.TrimSpace(req.Service)
	req.Notes = strings.TrimSpace(req.Notes)

	var missing []string
	if req.Name == "" {
		missing = append(missing, "name")
	}
	if req.Phone == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(req.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(req.Time) == "" {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		return req, time.Time{}, fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}

	day, err := time.Parse(dateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return req, time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidRequest)
	}
	req.Date = day.Format(dateLayout)

	slot, ok := availability.NormalizeString(req.Time)
	if !ok {
		return req, time.Time{}, fmt.Errorf("%w: unrecognized time %q", ErrInvalidRequest, req.Time)
	}
	req.Time = slot

	if req.Service == "" && len(s.variant.Services) > 0 {
		req.Service = s.variant.Services[0]
	}
	return req, day, nil
}

func (s *Service) cachedSlots(ctx context.Context, date string) ([]string, bool) {
	if s.cache == nil {
		return nil, false
	}
	slots, ok, err := s.cache.Get(ctx, date)
	if err != nil {
		s.logger.Warn("availability cache lookup failed", "date", date, "error", err)
		return nil, false
	}
	s.metrics.ObserveCache(ok)
	return slots, ok
}

func (s *Service) send(ctx context.Context, purpose string, payload webhook.Payload) (string, error) {
	start := time.Now()
	reply, err := s.sender.Send(ctx, payload)
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.ObserveWebhook(purpose, status, time.Since(start).Seconds())
	return reply, err
}

func (s *Service) recordAttempt(ctx context.Context, req BookingRequest, result *BookingResult) {
	err := s.attempts.Record(ctx, Attempt{
		ID:        uuid.NewString(),
		SessionID: req.SessionID,
		Variant:   s.variant.Key,
		Service:   req.Service,
		Date:      req.Date,
		Time:      req.Time,
		Outcome:   result.Outcome.String(),
		Reply:     result.Message,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Warn("failed to record booking attempt", "session_id", req.SessionID, "error", err)
	}
}
