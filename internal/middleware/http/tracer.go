package middleware_http

import (
	"bytes"
	"net/http"
	"time"

	"product-api/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("HttpMiddleware")

// ResponseWriter records the status code and keeps a copy of the body, up to
// logger.MaxBodyLogged, for the response log entry.
type ResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
	buf         bytes.Buffer
}

func newResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *ResponseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *ResponseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)

	if room := logger.MaxBodyLogged - rw.buf.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		rw.buf.Write(b[:room])
	}
	return n, err
}

func (rw *ResponseWriter) StatusCode() int {
	return rw.statusCode
}

// TraceMiddleware starts a server span per request (continuing an inbound
// trace when present), exposes the trace id as X-Trace-ID and logs the
// request and the response with status and latency.
func TraceMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.Path),
				),
			)
			defer span.End()

			r = r.WithContext(ctx)
			logger.Info(ctx, "HTTP", logger.LogHTTPRequest(r, "incoming::request")...)

			rw := newResponseWriter(w)
			rw.Header().Set("X-Trace-ID", span.SpanContext().TraceID().String())

			start := time.Now()
			next.ServeHTTP(rw, r)
			duration := time.Since(start)

			span.SetAttributes(attribute.Int("http.status_code", rw.statusCode))
			switch {
			case rw.statusCode >= 500:
				span.SetStatus(codes.Error, "internal server error")
			case rw.statusCode >= 400:
				span.SetStatus(codes.Error, "client error")
			default:
				span.SetStatus(codes.Ok, "")
			}

			logger.Info(ctx, "HTTP", logger.LogHTTPResponse(r, rw.Header(), rw.statusCode, rw.buf.Bytes(), duration, "incoming::response")...)
		})
	}
}
