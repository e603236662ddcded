package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/booking-assistant/internal/booking"
	"github.com/wolfman30/booking-assistant/pkg/logging"
)

// BookingService is the subset of booking.Service the HTTP layer needs.
type BookingService interface {
	CheckAvailability(ctx context.Context, req booking.AvailabilityRequest) (*booking.AvailabilityResponse, error)
	Book(ctx context.Context, req booking.BookingRequest) (*booking.BookingResult, error)
	Attempts(ctx context.Context, sessionID string, limit int) ([]booking.Attempt, error)
}

// BookingHandler serves availability checks and booking submissions.
type BookingHandler struct {
	svc    BookingService
	logger *logging.Logger
}

func NewBookingHandler(svc BookingService, logger *logging.Logger) *BookingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{svc: svc, logger: logger}
}

// Availability handles POST /api/availability.
func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	var req booking.AvailabilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.svc.CheckAvailability(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, "availability check failed", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Book handles POST /api/bookings.
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req booking.BookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.svc.Book(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, "booking failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// AttemptsResponse lists recorded booking attempts for a session.
type AttemptsResponse struct {
	SessionID string            `json:"sessionId"`
	Attempts  []booking.Attempt `json:"attempts"`
}

// Attempts handles GET /api/bookings/{sessionID}/attempts.
func (h *BookingHandler) Attempts(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	attempts, err := h.svc.Attempts(r.Context(), sessionID, limit)
	if err != nil {
		h.writeServiceError(w, "listing attempts failed", err)
		return
	}
	if attempts == nil {
		attempts = []booking.Attempt{}
	}
	writeJSON(w, http.StatusOK, AttemptsResponse{SessionID: sessionID, Attempts: attempts})
}

func (h *BookingHandler) writeServiceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, booking.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrClinicClosed):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, booking.ErrUpstream):
		h.logger.Warn(msg, "error", err)
		writeError(w, http.StatusBadGateway, booking.MsgConnectionError)
	default:
		h.logger.Error(msg, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
