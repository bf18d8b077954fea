package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"product-api/internal/config"
	"product-api/internal/database"
	grpchandler "product-api/internal/handler/grpc"
	"product-api/internal/logger"
	"product-api/internal/repository"
	"product-api/internal/server"
	"product-api/internal/service"
	"product-api/internal/telemetry"
	"product-api/internal/validator"
	"product-api/internal/version"

	"google.golang.org/grpc"
)

const healthInterval = 10 * time.Second

func main() {
	globalCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(globalCtx); err != nil {
		logger.Error(context.Background(), "Server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(globalCtx context.Context) error {
	cfg, err := config.Load(logger.Instance())
	if err != nil {
		return err
	}
	logger.SetRemote(cfg.RemoteLogHttpURI, cfg.AppName)

	logger.Info(globalCtx, cfg.AppName,
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
		slog.Bool("gracefulShutdown", cfg.IsProduction()),
	)

	// Initialize telemetry (OpenTelemetry + Pyroscope)
	shutdownTelemetry, err := telemetry.Init(globalCtx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Error(context.Background(), "Error shutting down telemetry", slog.String("error", err.Error()))
		}
	}()

	// Connect to MongoDB
	db, err := database.Connect(globalCtx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			logger.Error(context.Background(), "Error disconnecting MongoDB", slog.String("error", err.Error()))
		}
	}()

	// Wiring
	productRepo := repository.NewProductRepository(db.Database, cfg.MongoCollection)
	productService := service.NewProductService(productRepo)
	httpServer := server.New(cfg, productService, validator.New())

	errCh := make(chan error, 3)
	go func() {
		if err := httpServer.Start(); err != nil {
			errCh <- err
		}
	}()

	var metricsServer *http.Server
	if cfg.MetricsPort != "" {
		metricsServer = server.NewMetricsServer(cfg.MetricsPort)
		go func() {
			logger.Info(globalCtx, "Metrics server running", slog.String("addr", metricsServer.Addr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	var grpcServer *grpc.Server
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			return err
		}

		healthHandler := grpchandler.NewHealthHandler(service.NewHealthService(db.Client), healthInterval)
		go healthHandler.Run(globalCtx)

		grpcServer = server.NewGRPCServer(healthHandler)
		go func() {
			logger.Info(globalCtx, "gRPC health server running", slog.String("port", cfg.GRPCPort))
			if err := grpcServer.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	// Wait for shutdown signal or a listener failure
	select {
	case <-globalCtx.Done():
	case err := <-errCh:
		logger.Error(globalCtx, "Listener failed, shutting down", slog.String("error", err.Error()))
	}

	if !cfg.IsProduction() {
		logger.Info(globalCtx, "Received shutdown signal, exiting immediately")
		_ = httpServer.Close()
		if metricsServer != nil {
			_ = metricsServer.Close()
		}
		if grpcServer != nil {
			grpcServer.Stop()
		}
		return nil
	}

	logger.Info(globalCtx, "Shutting down servers", slog.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "HTTP server forced to shutdown", slog.String("error", err.Error()))
	}
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	logger.Info(shutdownCtx, "Servers exited cleanly")
	return nil
}
