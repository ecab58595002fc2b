// File: internal/handlers/chat_handler.go
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-llamachat/internal/dtos"
	"github.com/iyunix/go-llamachat/internal/services"
	"github.com/iyunix/go-llamachat/internal/services/chat"
)

type ChatHandler struct {
	chat   chat.ResponseProvider
	logger services.Logger
}

func NewChatHandler(cs chat.ResponseProvider, logger services.Logger) *ChatHandler {
	return &ChatHandler{chat: cs, logger: logger}
}

func (h *ChatHandler) readMessage(w http.ResponseWriter, r *http.Request) (uint, uint, string, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return 0, 0, "", false
	}
	threadID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "Thread not found", chat.CodeThreadNotFound, http.StatusNotFound)
		return 0, 0, "", false
	}
	var req dtos.MessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "Invalid JSON", "invalid_json", http.StatusBadRequest)
		return 0, 0, "", false
	}
	return userID, threadID, req.Message, true
}

// GetResponse answers with the complete bot reply as {"response": ...}.
func (h *ChatHandler) GetResponse(w http.ResponseWriter, r *http.Request) {
	userID, threadID, message, ok := h.readMessage(w, r)
	if !ok {
		return
	}

	reply, err := h.chat.Reply(r.Context(), userID, threadID, message)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, dtos.ChatResponse{Response: reply})
}

// StreamResponse writes fragments as plain text, flushing after each one.
// Validation and ownership failures are reported before any body is sent.
func (h *ChatHandler) StreamResponse(w http.ResponseWriter, r *http.Request) {
	userID, threadID, message, ok := h.readMessage(w, r)
	if !ok {
		return
	}

	session, err := h.chat.StartStream(r.Context(), userID, threadID, message)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	header := w.Header()
	header.Set("Content-Type", "text/plain; charset=utf-8")
	header.Set("Cache-Control", "no-cache")
	header.Set("X-Accel-Buffering", "no")
	header.Set("X-Stream-ID", session.ID)
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	flush := func() error {
		if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return err
		}
		return nil
	}
	if err := flush(); err != nil {
		session.Cancel()
	}

	stop := context.AfterFunc(r.Context(), func() { session.Cancel() })
	defer stop()

	h.chat.RunStream(r.Context(), session, func(fragment string) error {
		if _, err := io.WriteString(w, fragment); err != nil {
			return err
		}
		return flush()
	})
}

// CancelStream stops a running stream owned by the caller.
func (h *ChatHandler) CancelStream(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.chat.CancelStream(userID, mux.Vars(r)["stream_id"]); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, dtos.StatusResponse{Status: "Stream cancelled"})
}
