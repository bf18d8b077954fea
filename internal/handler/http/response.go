package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"product-api/internal/logger"
	"product-api/internal/model"
)

const (
	msgNotFound            = "Product not found"
	msgInvalidProduct      = "Invalid product data"
	msgMissingSearchTerm   = "Name query required"
	msgInternalServerError = "Internal Server Error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Message: msg})
}

// writeServiceError maps expected outcomes to their status. Anything else is
// logged and answered with a bare 500 so internals never reach the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrInvalidID):
		writeMessage(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, model.ErrInvalidProduct):
		writeMessage(w, http.StatusBadRequest, msgInvalidProduct)
	case errors.Is(err, model.ErrMissingSearchTerm):
		writeMessage(w, http.StatusBadRequest, msgMissingSearchTerm)
	default:
		logger.Error(r.Context(), "Request failed",
			slog.String("error", err.Error()),
			slog.String("http.method", r.Method),
			slog.String("http.path", r.URL.Path),
		)
		writeMessage(w, http.StatusInternalServerError, msgInternalServerError)
	}
}
