// File: internal/middleware/recovery.go
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/iyunix/go-llamachat/internal/services"
)

// RecoverPanic turns a handler panic into a 500 JSON response.
func RecoverPanic(logger services.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic recovered",
						"path", r.URL.Path,
						"panic", err,
						"stack", string(debug.Stack()),
					)
					w.Header().Set("Connection", "close")
					writeJSONError(w, http.StatusInternalServerError, "Something went wrong on our end.", "internal_error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
