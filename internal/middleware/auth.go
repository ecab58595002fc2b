package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/iyunix/go-llamachat/internal/services"
)

const AuthCookieName = "auth_token"

// TokenValidator resolves a session token to a user ID.
type TokenValidator interface {
	ValidateJWTToken(token string) (uint, error)
}

// NewJWTMiddleware accepts the token from the auth_token cookie or an
// Authorization: Bearer header. Unauthenticated requests get a 401 JSON body.
func NewJWTMiddleware(validator TokenValidator, logger services.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := tokenFromRequest(r)
			if token == "" {
				logger.Debug("missing auth token", "path", r.URL.Path)
				writeJSONError(w, http.StatusUnauthorized, "Authentication required", "unauthorized")
				return
			}

			userID, err := validator.ValidateJWTToken(token)
			if err != nil {
				logger.Warn("invalid auth token", "path", r.URL.Path, "error", err)
				if fromCookie {
					ClearAuthCookie(w)
				}
				writeJSONError(w, http.StatusUnauthorized, "Authentication required", "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(AuthCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token), false
		}
	}
	return "", false
}

// SetAuthCookie stores a session token for browser clients.
func SetAuthCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAuthCookie expires the session cookie.
func ClearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
