package handlers

import (
	"fmt"
	"net/http"

	"github.com/iyunix/go-llamachat/internal/dtos"
	"github.com/iyunix/go-llamachat/internal/render"
	"github.com/iyunix/go-llamachat/internal/services"
	"github.com/iyunix/go-llamachat/internal/services/chat"
)

type ThreadHandler struct {
	threads  chat.ThreadProvider
	markdown *render.Markdown
	logger   services.Logger
}

func NewThreadHandler(tp chat.ThreadProvider, markdown *render.Markdown, logger services.Logger) *ThreadHandler {
	return &ThreadHandler{threads: tp, markdown: markdown, logger: logger}
}

// threadID resolves the {id} path segment, answering 404 for malformed IDs.
func threadID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, "Thread not found", chat.CodeThreadNotFound, http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func (h *ThreadHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	threads, err := h.threads.ListThreads(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, dtos.ToThreadList(threads))
}

func (h *ThreadHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	t, err := h.threads.CreateThread(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, dtos.CreateThreadResponse{ThreadID: t.ID})
}

// Messages returns the thread transcript oldest first. With ?format=html
// each message also carries rendered markdown.
func (h *ThreadHandler) Messages(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := threadID(w, r)
	if !ok {
		return
	}

	messages, err := h.threads.ListMessages(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	withHTML := r.URL.Query().Get("format") == "html"
	out := dtos.MessageListResponse{Messages: make([]dtos.MessageResponse, 0, len(messages))}
	for _, m := range messages {
		resp := dtos.ToMessageResponse(m)
		if withHTML {
			html, err := h.markdown.ToHTML(m.Content)
			if err != nil {
				h.logger.Warn("markdown render failed", "message_id", m.ID, "error", err)
			} else {
				resp.HTML = html
			}
		}
		out.Messages = append(out.Messages, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ThreadHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := threadID(w, r)
	if !ok {
		return
	}
	var req dtos.TitleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "Invalid JSON", "invalid_json", http.StatusBadRequest)
		return
	}

	if _, err := h.threads.RenameThread(r.Context(), userID, id, req.Title); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, dtos.StatusResponse{Status: "Title updated successfully"})
}

func (h *ThreadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := threadID(w, r)
	if !ok {
		return
	}
	if err := h.threads.DeleteThread(r.Context(), userID, id); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, dtos.StatusResponse{Status: "Thread deleted successfully"})
}

func (h *ThreadHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	count, err := h.threads.DeleteAllThreads(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, dtos.StatusResponse{Status: fmt.Sprintf("Successfully deleted %d threads", count)})
}
