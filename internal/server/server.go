package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"product-api/internal/config"
	handler "product-api/internal/handler/http"
	"product-api/internal/logger"
	middleware_http "product-api/internal/middleware/http"

	"github.com/gorilla/mux"
)

// Server is the public HTTP surface of the product API.
type Server struct {
	http   *http.Server
	router *mux.Router
}

// New builds the router and wraps it in the middleware chain. Authentication
// sits outside the router so every path, known or not, is checked first, and
// ahead of request logging so rejected bodies are never read.
func New(cfg *config.Config, products handler.ProductService, validator handler.PayloadValidator) *Server {
	router := mux.NewRouter()
	handler.NewProductHandler(products, validator).RegisterRoutes(router)

	chain := middleware_http.Chain(
		middleware_http.Recovery(),
		middleware_http.RequestID(),
		middleware_http.Metrics(router),
		middleware_http.APIKey(cfg.APIKey),
		middleware_http.TraceMiddleware(),
	)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:         ":" + cfg.AppPort,
			Handler:      chain(router),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) Addr() string {
	return s.http.Addr
}

// Start blocks until the server stops. A graceful shutdown is not an error.
func (s *Server) Start() error {
	logger.Info(context.Background(), "HTTP server running", slog.String("addr", s.http.Addr))

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Close drops open connections immediately.
func (s *Server) Close() error {
	return s.http.Close()
}
