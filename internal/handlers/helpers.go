// File: internal/handlers/helpers.go
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-llamachat/internal/middleware"
	"github.com/iyunix/go-llamachat/internal/services"
	"github.com/iyunix/go-llamachat/internal/services/chat"
)

var errInvalidID = errors.New("invalid id")

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError sends {"error": message, "code": code}.
func writeError(w http.ResponseWriter, message, code string, status int) {
	writeJSON(w, status, map[string]string{"error": message, "code": code})
}

// writeServiceError maps chat service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger services.Logger) {
	var chatErr *chat.ChatError
	if errors.As(err, &chatErr) {
		switch chatErr.Type {
		case chat.ErrTypeValidation:
			writeError(w, chatErr.Message, chatErr.Code, http.StatusBadRequest)
			return
		case chat.ErrTypeNotFound:
			writeError(w, chatErr.Message, chatErr.Code, http.StatusNotFound)
			return
		}
	}
	logger.Error("request failed",
		"request_id", middleware.RequestIDFromContext(r.Context()),
		"path", r.URL.Path,
		"error", err)
	writeError(w, "Internal server error", "internal_error", http.StatusInternalServerError)
}

const maxBodyBytes = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
// The body is read to EOF so the server starts watching the connection for a
// client hang-up.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return err
	}
	if len(data) > maxBodyBytes {
		return errBodyTooLarge
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func pathID(r *http.Request, key string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[key], 10, 32)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

// requireUser returns the authenticated user or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (uint, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Authentication required", "unauthorized", http.StatusUnauthorized)
	}
	return userID, ok
}
