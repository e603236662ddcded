package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/booking-assistant/internal/booking"
	"github.com/wolfman30/booking-assistant/internal/chat"
	"github.com/wolfman30/booking-assistant/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/booking-assistant/internal/http/middleware"
	"github.com/wolfman30/booking-assistant/internal/observability/metrics"
	"github.com/wolfman30/booking-assistant/internal/site"
	"github.com/wolfman30/booking-assistant/internal/suggestions"
	"github.com/wolfman30/booking-assistant/internal/webhook"
	"github.com/wolfman30/booking-assistant/pkg/logging"
)

type cannedSender struct {
	reply string
}

func (s *cannedSender) Send(ctx context.Context, payload webhook.Payload) (string, error) {
	return s.reply, nil
}

func newTestRouter(t *testing.T, reply string, limiter *httpmiddleware.RateLimiter) http.Handler {
	t.Helper()

	logger := logging.New("error", logging.WithWriter(io.Discard))
	variant, err := site.Lookup("dental")
	if err != nil {
		t.Fatalf("lookup variant: %v", err)
	}
	reg := prometheus.NewRegistry()
	m := metrics.NewBookingMetrics(reg)
	sender := &cannedSender{reply: reply}

	bookingSvc := booking.NewService(variant, sender, logger, booking.Options{Metrics: m})
	chatSvc := chat.NewService(sender, nil, m, logger)

	return New(&Config{
		Logger:             logger,
		Booking:            handlers.NewBookingHandler(bookingSvc, logger),
		Chat:               handlers.NewChatHandler(chatSvc, logger),
		Suggestions:        handlers.NewSuggestionsHandler(suggestions.NewGenerator(nil, variant, logger)),
		Interpret:          handlers.NewInterpretHandler(m),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: []string{"https://clinic.example"},
		RateLimiter:        limiter,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.10:4000"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, "", nil)
	rr := do(t, router, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterAvailabilityRoundTrip(t *testing.T) {
	router := newTestRouter(t, "10:00 AM: AVAILABLE\n9:00 AM: AVAILABLE\n11:00 AM: UNAVAILABLE", nil)
	rr := do(t, router, http.MethodPost, "/api/availability", `{"sessionId":"sess_r","date":"2025-03-10"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp booking.AvailabilityResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := strings.Join(resp.Slots, ","); got != "09:00 AM,10:00 AM" {
		t.Fatalf("unexpected slots %q", got)
	}

	metricsRR := do(t, router, http.MethodGet, "/metrics", "")
	if !strings.Contains(metricsRR.Body.String(), "booking_") {
		t.Fatalf("expected booking metrics to be exposed")
	}
}

func TestRouterInterpretOutcome(t *testing.T) {
	router := newTestRouter(t, "", nil)
	rr := do(t, router, http.MethodPost, "/api/interpret/outcome", `{"text":"Your appointment is confirmed!"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"success"`) {
		t.Fatalf("expected success outcome, got %s", rr.Body.String())
	}
}

func TestRouterRateLimitsAPI(t *testing.T) {
	router := newTestRouter(t, "Hi there", httpmiddleware.NewRateLimiter(0.001, 1))

	if rr := do(t, router, http.MethodPost, "/api/chat", `{"message":"hello"}`); rr.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rr.Code)
	}
	if rr := do(t, router, http.MethodPost, "/api/chat", `{"message":"hello"}`); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", rr.Code)
	}
	if rr := do(t, router, http.MethodPost, "/api/interpret/slots", `{"text":"9:00 AM"}`); rr.Code != http.StatusOK {
		t.Fatalf("interpret routes are not limited, got %d", rr.Code)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(t, "", nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://clinic.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "https://clinic.example" {
		t.Fatalf("missing allow-origin header")
	}
}
