package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"product-api/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var HttpClientTracer = otel.Tracer("HttpClient")

// APIError is a non-2xx answer from the server. Message is the server's
// {"message": ...} text, or the raw body when it is not JSON.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// HTTPClient sends JSON requests relative to a base URL with a set of default
// headers, propagating the caller's trace.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	headers map[string]string
}

type RequestOptions struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: make(map[string]string),
	}
}

func (c *HTTPClient) SetDefaultHeader(key, value string) {
	c.headers[key] = value
}

// Do performs the request and decodes a 2xx body into result. A *string
// result receives the raw body. Non-2xx statuses return *APIError.
func (c *HTTPClient) Do(ctx context.Context, opts RequestOptions, result any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	fullURL := c.buildURL(opts.Path, opts.Query)

	var bodyReader io.Reader
	if opts.Body != nil {
		b, err := encodeBody(opts.Body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	ctx, span := HttpClientTracer.Start(ctx, "HttpClient "+opts.Method+" "+opts.Path,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, opts.Method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	req.Header.Set("X-Trace-ID", span.SpanContext().TraceID().String())
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Info(ctx, "HttpClient", logger.LogHTTPRequest(req, "outgoing::request")...)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		logger.Error(ctx, "HttpClient request failed", slog.String("error", err.Error()))
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	logger.Info(ctx, "HttpClient", logger.LogHTTPResponse(req, resp.Header, resp.StatusCode, rawBody, time.Since(start), "outgoing::response")...)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		span.SetStatus(codes.Error, resp.Status)
		return newAPIError(resp.StatusCode, rawBody)
	}

	return decodeBody(rawBody, result)
}

func (c *HTTPClient) buildURL(path string, query url.Values) string {
	fullURL := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	return fullURL
}

func encodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case io.Reader:
		return io.ReadAll(v)
	default:
		return json.Marshal(body)
	}
}

func decodeBody(raw []byte, result any) error {
	if result == nil || len(raw) == 0 {
		return nil
	}
	if s, ok := result.(*string); ok {
		*s = string(raw)
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newAPIError(status int, raw []byte) *APIError {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return &APIError{StatusCode: status, Message: body.Message}
	}
	return &APIError{StatusCode: status, Message: strings.TrimSpace(string(raw))}
}
