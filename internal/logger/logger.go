package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"go.opentelemetry.io/otel/trace"
)

var (
	instance *slog.Logger
	once     sync.Once

	hostname     string
	hostnameOnce sync.Once
)

// Instance returns the process-wide JSON logger writing to stdout.
func Instance() *slog.Logger {
	once.Do(func() {
		instance = newJSON(os.Stdout)
	})

	return instance
}

// SetOutput replaces the writer of the shared logger. Tests use it to keep
// output quiet or to inspect entries.
func SetOutput(w io.Writer) {
	once.Do(func() {})
	instance = newJSON(w)
}

func newJSON(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Hostname is resolved once and attached to every traced entry.
func Hostname() string {
	hostnameOnce.Do(func() {
		h, err := os.Hostname()
		if err != nil {
			h = "unknown"
		}
		hostname = h
	})

	return hostname
}

func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	enriched := enrich(ctx, attrs...)
	Instance().LogAttrs(ctx, slog.LevelInfo, msg, enriched...)
	sendLog("info", msg, enriched)
}

func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	enriched := enrich(ctx, attrs...)
	Instance().LogAttrs(ctx, slog.LevelWarn, msg, enriched...)
	sendLog("warn", msg, enriched)
}

func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	enriched := enrich(ctx, attrs...)
	Instance().LogAttrs(ctx, slog.LevelError, msg, enriched...)
	sendLog("error", msg, enriched)
}

func enrich(ctx context.Context, attrs ...slog.Attr) []slog.Attr {
	if ctx == nil {
		return attrs
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
			slog.String("hostname", Hostname()),
		)
	}

	return attrs
}
