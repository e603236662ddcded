package handlers

import (
	"context"
	"net/http"

	"github.com/wolfman30/booking-assistant/internal/suggestions"
)

// Suggester produces quick replies for a bot message.
type Suggester interface {
	Suggest(ctx context.Context, botMessage string, fallback []suggestions.QuickReply) []suggestions.QuickReply
}

type SuggestionsHandler struct {
	gen Suggester
}

func NewSuggestionsHandler(gen Suggester) *SuggestionsHandler {
	return &SuggestionsHandler{gen: gen}
}

type SuggestionsRequest struct {
	Message  string                   `json:"message"`
	Fallback []suggestions.QuickReply `json:"fallback"`
}

type SuggestionsResponse struct {
	Suggestions []suggestions.QuickReply `json:"suggestions"`
}

// Suggest handles POST /api/suggestions. It never fails once the body decodes.
func (h *SuggestionsHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out := h.gen.Suggest(r.Context(), req.Message, req.Fallback)
	if out == nil {
		out = []suggestions.QuickReply{}
	}
	writeJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: out})
}
