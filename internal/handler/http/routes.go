package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes wires the product API. mux matches in registration order,
// so the literal /search and /stats paths must stay ahead of /{id}.
func (h *ProductHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.Root).Methods(http.MethodGet)

	api := router.PathPrefix("/api/products").Subrouter()
	api.HandleFunc("", h.List).Methods(http.MethodGet)
	api.HandleFunc("", h.Create).Methods(http.MethodPost)
	api.HandleFunc("/search", h.Search).Methods(http.MethodGet)
	api.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)
	api.HandleFunc("/{id}", h.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/{id}", h.Update).Methods(http.MethodPut)
	api.HandleFunc("/{id}", h.Delete).Methods(http.MethodDelete)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not Found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
}
