package grpc

import (
	"context"
	"log/slog"
	"time"

	"product-api/internal/logger"
	"product-api/internal/service"

	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// MongoService is the health service name reporting the database alone. The
// empty name reports the server as a whole.
const MongoService = "mongo"

type HealthChecker interface {
	Check(ctx context.Context) service.HealthStatus
}

// HealthHandler serves grpc.health.v1.Health and keeps its statuses in step
// with HealthChecker.
type HealthHandler struct {
	server   *health.Server
	checker  HealthChecker
	interval time.Duration
}

var GrpcHealthHandlerTracer = otel.Tracer("GrpcHealthHandler")

func NewHealthHandler(checker HealthChecker, interval time.Duration) *HealthHandler {
	return &HealthHandler{
		server:   health.NewServer(),
		checker:  checker,
		interval: interval,
	}
}

func (h *HealthHandler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// Refresh runs one check and publishes the result.
func (h *HealthHandler) Refresh(ctx context.Context) service.HealthStatus {
	ctx, span := GrpcHealthHandlerTracer.Start(ctx, "GrpcHealthHandler.Refresh")
	defer span.End()

	status := h.checker.Check(ctx)

	serving := healthpb.HealthCheckResponse_SERVING
	if !status.Healthy() {
		serving = healthpb.HealthCheckResponse_NOT_SERVING
		logger.Warn(ctx, "Health degraded", slog.String("mongo", status.Mongo))
	}
	h.server.SetServingStatus("", serving)
	h.server.SetServingStatus(MongoService, serving)

	return status
}

// Run refreshes immediately and then every interval until ctx is done, after
// which every service reports NOT_SERVING.
func (h *HealthHandler) Run(ctx context.Context) {
	h.Refresh(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Refresh(ctx)
		}
	}
}
