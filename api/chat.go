package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/zynfvr/sih2/internal/answer"
)

// maxChatBodyBytes bounds the request body size.
const maxChatBodyBytes = 64 * 1024

// ChatRequest is the POST /api/chat request body.
// SessionID is optional; a missing one starts a new session.
type ChatRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	Question  string `json:"question"`
}

// ChatResponse is the POST /api/chat response body. SessionID echoes the
// session so the client can continue the conversation.
type ChatResponse struct {
	SessionID string `json:"sessionId"`
	Answer    string `json:"answer"`
}

// ChatHandler handles the chat endpoint.
type ChatHandler struct {
	svc    *answer.Service
	logger *slog.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(svc *answer.Service, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.handleChat)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.handleClearSession)
}

// handleChat answers one question. Status codes:
//
//	400 empty or malformed request
//	504 model timed out
//	502 any other pipeline failure
func (h *ChatHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "empty_question", "question is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ans, err := h.svc.Answer(r.Context(), sessionID, req.Question)
	if err != nil {
		h.logger.Error("chat request failed", "session_id", sessionID, "error", err)
		switch {
		case errors.Is(err, answer.ErrEmptyQuestion):
			writeError(w, http.StatusBadRequest, "empty_question", "question is required")
		case errors.Is(err, answer.ErrGenerateTimeout):
			writeError(w, http.StatusGatewayTimeout, "model_timeout", "the model took too long to answer")
		default:
			writeError(w, http.StatusBadGateway, "generation_failed", "failed to generate an answer")
		}
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{SessionID: sessionID, Answer: ans})
}

// handleClearSession drops the in-memory context for a session.
func (h *ChatHandler) handleClearSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_session", "session id is required")
		return
	}
	h.svc.ClearSession(id)
	w.WriteHeader(http.StatusNoContent)
}
