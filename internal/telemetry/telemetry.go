package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"product-api/internal/config"
	"product-api/internal/logger"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"github.com/grafana/pyroscope-go"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

const (
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout"
	ExporterNone   = "none"
)

var pyroLogrus = func() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	return l
}()

// ShutdownFunc flushes pending spans and stops the profiler.
type ShutdownFunc func(ctx context.Context) error

// Init installs the global tracer provider and propagators and starts the
// Pyroscope agent when a profiling endpoint is configured. Spans go to OTLP
// when REMOTE_TRACE_RPC_URI is set, otherwise to stdout when TRACE_STDOUT is
// on, otherwise nowhere (ids are still generated for log correlation).
func Init(ctx context.Context, cfg *config.Config) (ShutdownFunc, error) {
	exp, kind, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", kind, err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.AppName),
			attribute.String("env", cfg.Env),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	opts := []trace.TracerProviderOption{trace.WithResource(res)}
	if exp != nil {
		opts = append(opts, trace.WithBatcher(exp))
	}
	tp := trace.NewTracerProvider(opts...)

	otel.SetTracerProvider(otelpyroscope.NewTracerProvider(tp))
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info(ctx, "OpenTelemetry Tracer initialized", slog.String("exporter", kind))

	var profiler *pyroscope.Profiler
	if cfg.RemoteProfilingHttpURI != "" {
		profiler, err = pyroscope.Start(pyroscope.Config{
			ApplicationName: cfg.AppName,
			ServerAddress:   cfg.RemoteProfilingHttpURI,
			Logger:          pyroLogrus,
			Tags:            map[string]string{"env": cfg.Env},
		})
		if err != nil {
			logger.Error(ctx, "Pyroscope failed to start", slog.String("error", err.Error()))
		} else {
			logger.Info(ctx, "Pyroscope started successfully")
		}
	}

	return func(ctx context.Context) error {
		var errs []error
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer provider: %w", err))
		}
		if profiler != nil {
			if err := profiler.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("stop profiler: %w", err))
			}
		}
		return errors.Join(errs...)
	}, nil
}

func newExporter(ctx context.Context, cfg *config.Config) (trace.SpanExporter, string, error) {
	switch {
	case cfg.RemoteTraceRpcURI != "":
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(cfg.RemoteTraceRpcURI),
			otlptracegrpc.WithCompressor("gzip"),
		)
		return exp, ExporterOTLP, err
	case cfg.TraceStdout:
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		return exp, ExporterStdout, err
	default:
		return nil, ExporterNone, nil
	}
}
