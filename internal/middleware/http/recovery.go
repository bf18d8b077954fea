package middleware_http

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"product-api/internal/logger"
)

// Recovery turns a panic into the generic 500 body. The panic value and
// stack are logged only.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error(r.Context(), "Panic recovered",
					slog.String("error", fmt.Sprint(rec)),
					slog.String("stack", string(debug.Stack())),
					slog.String("http.method", r.Method),
					slog.String("http.path", r.URL.Path),
				)
				writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
