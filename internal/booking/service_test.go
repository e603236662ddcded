package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/booking-assistant/internal/availability"
	"github.com/wolfman30/booking-assistant/internal/notify"
	"github.com/wolfman30/booking-assistant/internal/observability/metrics"
	"github.com/wolfman30/booking-assistant/internal/site"
	"github.com/wolfman30/booking-assistant/internal/webhook"
)

type fakeSender struct {
	replies  []string
	err      error
	payloads []webhook.Payload
}

func (f *fakeSender) Send(ctx context.Context, payload webhook.Payload) (string, error) {
	f.payloads = append(f.payloads, payload)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

type memoryAttemptLog struct {
	attempts []Attempt
}

func (m *memoryAttemptLog) Record(ctx context.Context, a Attempt) error {
	m.attempts = append(m.attempts, a)
	return nil
}

func (m *memoryAttemptLog) ListBySession(ctx context.Context, sessionID string, limit int) ([]Attempt, error) {
	var out []Attempt
	for _, a := range m.attempts {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

type recordingNotifier struct {
	notices []notify.BookingNotice
}

func (r *recordingNotifier) NotifyBooked(ctx context.Context, n notify.BookingNotice) error {
	r.notices = append(r.notices, n)
	return nil
}

func dentalVariant(t *testing.T) site.Variant {
	t.Helper()
	v, err := site.Lookup("dental")
	require.NoError(t, err)
	return v
}

func newTestCache(t *testing.T) (*RedisAvailabilityCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisAvailabilityCache(client, "dental", time.Minute), mr
}

// 2025-03-10 is a Monday; 2025-03-09 is a Sunday.
const (
	openDay   = "2025-03-10"
	closedDay = "2025-03-09"
)

func TestCheckAvailability_InterpretsStructuredReply(t *testing.T) {
	sender := &fakeSender{replies: []string{
		"09:00 AM - AVAILABLE\n09:30 AM - BOOKED\n01:00 PM - AVAILABLE\n05:30 PM - AVAILABLE",
	}}
	cache, mr := newTestCache(t)
	svc := NewService(dentalVariant(t), sender, nil, Options{
		Cache:   cache,
		Metrics: metrics.NewBookingMetrics(prometheus.NewRegistry()),
	})

	resp, err := svc.CheckAvailability(context.Background(), AvailabilityRequest{SessionID: "sess_a", Date: openDay})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00 AM", "01:00 PM", "05:30 PM"}, resp.Slots)
	assert.Equal(t, []string{"09:00 AM"}, resp.Categories.Morning)
	assert.Equal(t, []string{"01:00 PM"}, resp.Categories.Afternoon)
	assert.Equal(t, []string{"05:30 PM"}, resp.Categories.Evening)
	assert.False(t, resp.Cached)
	assert.Empty(t, resp.Message)

	require.Len(t, sender.payloads, 1)
	assert.Equal(t, "sess_a", sender.payloads[0].SessionID)
	assert.Contains(t, sender.payloads[0].Message, "slots on 2025-03-10 at 09:00 AM, 09:30 AM")
	assert.Contains(t, sender.payloads[0].Message, `"HH:MM AM/PM - AVAILABLE"`)
	assert.True(t, mr.Exists("availability:dental:2025-03-10"))

	again, err := svc.CheckAvailability(context.Background(), AvailabilityRequest{SessionID: "sess_a", Date: openDay})
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, resp.Slots, again.Slots)
	assert.Len(t, sender.payloads, 1, "cached result must not call upstream")
}

func TestCheckAvailability_ClosedDay(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(dentalVariant(t), sender, nil, Options{})

	resp, err := svc.CheckAvailability(context.Background(), AvailabilityRequest{Date: closedDay})
	require.NoError(t, err)
	assert.True(t, resp.Closed)
	assert.Empty(t, resp.Slots)
	assert.Equal(t, "The clinic is closed on Sundays. Please select a different date.", resp.Message)
	assert.Empty(t, sender.payloads)
	assert.True(t, strings.HasPrefix(resp.SessionID, "sess_"))
}

func TestCheckAvailability_EmptyReplyMessages(t *testing.T) {
	long := strings.Repeat("We are fully booked that day. ", 5)
	sender := &fakeSender{replies: []string{"Sorry, we're fully booked.", long}}
	svc := NewService(dentalVariant(t), sender, nil, Options{})

	short, err := svc.CheckAvailability(context.Background(), AvailabilityRequest{Date: openDay})
	require.NoError(t, err)
	assert.Empty(t, short.Slots)
	assert.Equal(t, "Sorry, we're fully booked.", short.Message)

	verbose, err := svc.CheckAvailability(context.Background(), AvailabilityRequest{Date: openDay})
	require.NoError(t, err)
	assert.Equal(t, MsgNoSlots, verbose.Message)
}

func TestCheckAvailability_FallbackList(t *testing.T) {
	sender := &fakeSender{replies: []string{"We have openings at 9:00 AM, 10:30 AM, and 2:00 PM"}}
	svc := NewService(dentalVariant(t), sender, nil, Options{})

	resp, err := svc.CheckAvailability(context.Background(), AvailabilityRequest{Date: openDay})
	require.NoError(t, err)
	assert.True(t, resp.FallbackUsed)
	assert.Equal(t, []string{"09:00 AM", "10:30 AM", "02:00 PM"}, resp.Slots)
}

func TestCheckAvailability_Errors(t *testing.T) {
	svc := NewService(dentalVariant(t), &fakeSender{err: errors.New("dial tcp: refused")}, nil, Options{})

	_, err := svc.CheckAvailability(context.Background(), AvailabilityRequest{Date: "next tuesday"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.CheckAvailability(context.Background(), AvailabilityRequest{Date: openDay})
	assert.ErrorIs(t, err, ErrUpstream)
}

func validBooking() BookingRequest {
	return BookingRequest{
		SessionID: "sess_b",
		Name:      "Jane Doe",
		Phone:     "555-0100",
		Email:     "jane@example.com",
		Date:      openDay,
		Time:      "2:00 pm",
		Notes:     "first visit",
	}
}

func TestBook_Success(t *testing.T) {
	sender := &fakeSender{replies: []string{"BOOKING_SUCCESS Your appointment is confirmed for 02:00 PM."}}
	cache, mr := newTestCache(t)
	require.NoError(t, cache.Set(context.Background(), openDay, []string{"02:00 PM"}))
	log := &memoryAttemptLog{}
	notifier := &recordingNotifier{}
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	svc := NewService(dentalVariant(t), sender, nil, Options{
		Cache:      cache,
		AttemptLog: log,
		Notifier:   notifier,
		Now:        func() time.Time { return fixed },
	})

	res, err := svc.Book(context.Background(), validBooking())
	require.NoError(t, err)
	assert.Equal(t, availability.Success, res.Outcome)
	assert.Equal(t, "02:00 PM", res.Time)
	assert.Contains(t, res.Message, "BOOKING_SUCCESS")

	require.Len(t, sender.payloads, 1)
	prompt := sender.payloads[0].Message
	assert.Contains(t, prompt, "Service: New Patient Special")
	assert.Contains(t, prompt, "Time: 02:00 PM")
	assert.Contains(t, prompt, `start your response strictly with: "BOOKING_FAILURE"`)

	assert.False(t, mr.Exists("availability:dental:2025-03-10"), "successful booking invalidates the day")
	require.Len(t, log.attempts, 1)
	assert.Equal(t, "success", log.attempts[0].Outcome)
	assert.Equal(t, fixed, log.attempts[0].CreatedAt)
	require.Len(t, notifier.notices, 1)
	assert.Equal(t, "Jane Doe", notifier.notices[0].PatientName)
}

func TestBook_FailureKeepsCache(t *testing.T) {
	sender := &fakeSender{replies: []string{"Unfortunately that slot is taken, please try again."}}
	cache, mr := newTestCache(t)
	require.NoError(t, cache.Set(context.Background(), openDay, []string{"02:00 PM"}))
	notifier := &recordingNotifier{}
	svc := NewService(dentalVariant(t), sender, nil, Options{Cache: cache, Notifier: notifier})

	res, err := svc.Book(context.Background(), validBooking())
	require.NoError(t, err)
	assert.Equal(t, availability.Failure, res.Outcome)
	assert.True(t, mr.Exists("availability:dental:2025-03-10"))
	assert.Empty(t, notifier.notices)
}

func TestBook_TransportFailureIsUnknown(t *testing.T) {
	log := &memoryAttemptLog{}
	svc := NewService(dentalVariant(t), &fakeSender{err: errors.New("timeout")}, nil, Options{AttemptLog: log})

	res, err := svc.Book(context.Background(), validBooking())
	require.NoError(t, err)
	assert.Equal(t, availability.Unknown, res.Outcome)
	assert.Equal(t, MsgConnectionError, res.Message)
	require.Len(t, log.attempts, 1)
	assert.Equal(t, "unknown", log.attempts[0].Outcome)

	attempts, err := svc.Attempts(context.Background(), "sess_b", 10)
	require.NoError(t, err)
	assert.Len(t, attempts, 1)
}

func TestBook_Validation(t *testing.T) {
	svc := NewService(dentalVariant(t), &fakeSender{}, nil, Options{})

	tests := []struct {
		name   string
		mutate func(*BookingRequest)
		want   error
	}{
		{name: "missing name", mutate: func(r *BookingRequest) { r.Name = " " }, want: ErrInvalidRequest},
		{name: "missing time", mutate: func(r *BookingRequest) { r.Time = "" }, want: ErrInvalidRequest},
		{name: "bad date", mutate: func(r *BookingRequest) { r.Date = "10/03/2025" }, want: ErrInvalidRequest},
		{name: "bad time", mutate: func(r *BookingRequest) { r.Time = "after lunch" }, want: ErrInvalidRequest},
		{name: "closed day", mutate: func(r *BookingRequest) { r.Date = closedDay }, want: ErrClinicClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validBooking()
			tt.mutate(&req)
			_, err := svc.Book(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := svc.Attempts(context.Background(), "", 5)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
