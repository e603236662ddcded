package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/booking-assistant/internal/chat"
	"github.com/wolfman30/booking-assistant/pkg/logging"
)

// ChatService relays visitor messages and returns stored transcripts.
type ChatService interface {
	Send(ctx context.Context, sessionID, text string) (chat.Reply, error)
	History(ctx context.Context, sessionID string, limit int) ([]chat.Message, error)
}

type ChatHandler struct {
	svc    ChatService
	logger *logging.Logger
}

func NewChatHandler(svc ChatService, logger *logging.Logger) *ChatHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{svc: svc, logger: logger}
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// Send handles POST /api/chat.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SessionID == "" {
		req.SessionID = r.Header.Get("X-Session-Id")
	}
	reply, err := h.svc.Send(r.Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("chat relay failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// HistoryResponse is the body of GET /api/chat/{sessionID}/history.
type HistoryResponse struct {
	SessionID string         `json:"sessionId"`
	Messages  []chat.Message `json:"messages"`
}

// History handles GET /api/chat/{sessionID}/history.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	msgs, err := h.svc.History(r.Context(), sessionID, limit)
	if err != nil {
		h.logger.Error("chat history failed", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{SessionID: sessionID, Messages: msgs})
}
