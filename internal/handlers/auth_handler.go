// File: internal/handlers/auth_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/iyunix/go-llamachat/internal/auth"
	"github.com/iyunix/go-llamachat/internal/dtos"
	"github.com/iyunix/go-llamachat/internal/middleware"
	"github.com/iyunix/go-llamachat/internal/services"
	"github.com/iyunix/go-llamachat/internal/services/user_services"
)

// AuthHandler holds the dependencies for account handlers.
type AuthHandler struct {
	auth         *user_services.AuthService
	secureCookie bool
	logger       services.Logger
}

func NewAuthHandler(authService *user_services.AuthService, secureCookie bool, logger services.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, secureCookie: secureCookie, logger: logger}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "Invalid JSON", "invalid_json", http.StatusBadRequest)
		return
	}

	u, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		var vErr *user_services.ValidationError
		switch {
		case errors.As(err, &vErr):
			writeError(w, vErr.Error(), "invalid_"+vErr.Field, http.StatusBadRequest)
		case errors.Is(err, user_services.ErrUserExists):
			writeError(w, "Username or email already exists", "user_exists", http.StatusBadRequest)
		default:
			h.logger.Error("registration failed", "error", err)
			writeError(w, "Internal server error", "internal_error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, dtos.ToUserResponse(u))
}

// Login sets the session cookie and also returns the token for API clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "Invalid JSON", "invalid_json", http.StatusBadRequest)
		return
	}

	u, token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, user_services.ErrInvalidCredentials) {
			writeError(w, "Invalid credentials", "invalid_credentials", http.StatusUnauthorized)
			return
		}
		h.logger.Error("login failed", "error", err)
		writeError(w, "Internal server error", "internal_error", http.StatusInternalServerError)
		return
	}

	middleware.SetAuthCookie(w, token, auth.TokenTTL, h.secureCookie)
	writeJSON(w, http.StatusOK, dtos.LoginResponseDTO{Token: token, User: dtos.ToUserResponse(u)})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearAuthCookie(w)
	writeJSON(w, http.StatusOK, dtos.StatusResponse{Status: "Logged out"})
}

// Status reports whether the request carries a valid session. It never fails.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie(middleware.AuthCookieName); err == nil {
		token = c.Value
	}
	userID, err := h.auth.ValidateJWTToken(token)
	if err != nil {
		writeJSON(w, http.StatusOK, dtos.AuthStatusDTO{Authenticated: false})
		return
	}
	u, err := h.auth.GetUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusOK, dtos.AuthStatusDTO{Authenticated: false})
		return
	}
	resp := dtos.ToUserResponse(u)
	writeJSON(w, http.StatusOK, dtos.AuthStatusDTO{Authenticated: true, User: &resp})
}

// DeleteAccount removes the caller's account and everything it owns.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.auth.DeleteAccount(r.Context(), userID); err != nil {
		h.logger.Error("account deletion failed", "user_id", userID, "error", err)
		writeError(w, "Internal server error", "internal_error", http.StatusInternalServerError)
		return
	}
	middleware.ClearAuthCookie(w)
	writeJSON(w, http.StatusOK, dtos.StatusResponse{Status: "Account deleted"})
}
