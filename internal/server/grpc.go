package server

import (
	grpchandler "product-api/internal/handler/grpc"
	middleware_grpc "product-api/internal/middleware/grpc"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

// NewGRPCServer builds the gRPC server carrying the health service and
// reflection. The API key does not apply here.
func NewGRPCServer(healthHandler *grpchandler.HealthHandler) *grpc.Server {
	s := grpc.NewServer(
		grpc.UnaryInterceptor(middleware_grpc.UnaryTracingInterceptor()),
	)
	healthHandler.Register(s)
	reflection.Register(s)
	return s
}
