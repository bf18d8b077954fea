package logger

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

var allowedMD = map[string]bool{
	"content-type":  true,
	"user-agent":    true,
	"x-request-id":  true,
	"x-trace-id":    true,
	"traceparent":   true,
	"x-api-key":     true,
	"authorization": true,
}

// MetadataAttrs converts gRPC metadata into grpc.header.* attributes.
func MetadataAttrs(md metadata.MD) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(md))
	for k, vs := range md {
		lower := strings.ToLower(k)
		if !allowedMD[lower] {
			continue
		}
		v := strings.Join(vs, ", ")
		if maskedHeaders[lower] {
			v = "***"
		}
		attrs = append(attrs, slog.String("grpc.header."+lower, v))
	}
	return attrs
}

// msgAttrs flattens a protobuf message through its JSON form. Other values
// are stringified.
func msgAttrs(prefix string, m any) []slog.Attr {
	if m == nil {
		return nil
	}
	if pm, ok := m.(proto.Message); ok {
		if b, err := protojson.Marshal(pm); err == nil {
			return jsonAttrs(prefix, b)
		}
	}
	return []slog.Attr{slog.String(prefix, redactIfNeeded(fmt.Sprintf("%v", m)))}
}

// LogGRPCRequest builds attributes for a unary call. fullMethod has the form
// "/package.Service/Method".
func LogGRPCRequest(fullMethod string, md metadata.MD, req any, direction string) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("grpc.direction", direction),
		slog.String("grpc.method", fullMethod),
	}
	attrs = append(attrs, MetadataAttrs(md)...)
	return append(attrs, msgAttrs("grpc.request", req)...)
}

func LogGRPCResponse(fullMethod string, code codes.Code, resp any, duration time.Duration, direction string) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("grpc.direction", direction),
		slog.String("grpc.method", fullMethod),
		slog.String("grpc.code", code.String()),
		slog.Int64("grpc.duration_ms", duration.Milliseconds()),
	}
	return append(attrs, msgAttrs("grpc.response", resp)...)
}
