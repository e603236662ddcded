package handlers

import (
	"net/http"

	"github.com/wolfman30/booking-assistant/internal/availability"
	"github.com/wolfman30/booking-assistant/internal/observability/metrics"
)

// InterpretHandler exposes the availability interpreter for raw upstream text.
type InterpretHandler struct {
	metrics *metrics.BookingMetrics
}

func NewInterpretHandler(m *metrics.BookingMetrics) *InterpretHandler {
	return &InterpretHandler{metrics: m}
}

type InterpretRequest struct {
	Text string `json:"text"`
}

type SlotsResponse struct {
	Slots        []string                `json:"slots"`
	Categories   availability.Categories `json:"categories"`
	State        string                  `json:"state"`
	FallbackUsed bool                    `json:"fallbackUsed"`
}

type OutcomeResponse struct {
	Outcome availability.Outcome `json:"outcome"`
}

// Slots handles POST /api/interpret/slots.
func (h *InterpretHandler) Slots(w http.ResponseWriter, r *http.Request) {
	var req InterpretRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ex := availability.Extract(req.Text)
	slots := ex.Strings()
	h.metrics.ObserveExtraction(ex.State.String(), ex.FallbackUsed, len(slots))
	writeJSON(w, http.StatusOK, SlotsResponse{
		Slots:        slots,
		Categories:   availability.Categorize(slots),
		State:        ex.State.String(),
		FallbackUsed: ex.FallbackUsed,
	})
}

// Outcome handles POST /api/interpret/outcome.
func (h *InterpretHandler) Outcome(w http.ResponseWriter, r *http.Request) {
	var req InterpretRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, OutcomeResponse{Outcome: availability.ClassifyBookingOutcome(req.Text)})
}
