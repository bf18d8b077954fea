package middleware_http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"product-api/internal/logger"
)

// APIKeyHeader carries the shared secret on every request.
const APIKeyHeader = "x-api-key"

// APIKey rejects any request whose x-api-key header is missing or differs
// from secret. No path is exempt.
func APIKey(secret string) Middleware {
	want := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(APIKeyHeader)
			if got == "" || len(want) == 0 || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				logger.Warn(r.Context(), "Authentication failed",
					slog.String("http.method", r.Method),
					slog.String("http.path", r.URL.Path),
					slog.String("http.remote_addr", r.RemoteAddr),
					slog.Bool("key_present", got != ""),
				)
				writeMessage(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
