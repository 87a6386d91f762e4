// Package apiclient builds the shared resty client every backend-facing
// client rides on: base URL handling, request ids, latency logging, error
// decoding, and the session-expiry hook.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"resty.dev/v3"

	"github.com/expertchat/expertchat/internal/infrastructure/logger"
	"github.com/expertchat/expertchat/internal/utils/apperrors"
	"github.com/expertchat/expertchat/internal/utils/idgen"
)

type requestIDKey struct{}
type startsAtKey struct{}
type spanKey struct{}

// Client wraps a resty client against one backend base URL.
type Client struct {
	http    *resty.Client
	baseURL string
	name    string
	tracer  trace.Tracer

	mu             sync.Mutex
	onUnauthorized func()
}

// New returns a client for the given backend. clientName tags log lines and
// span names so multiple clients stay distinguishable.
func New(clientName, baseURL string, timeout time.Duration) *Client {
	c := &Client{
		baseURL: normalizeBaseURL(baseURL),
		name:    clientName,
		tracer:  otel.Tracer("expertchat/apiclient"),
	}

	httpClient := resty.New().SetTimeout(timeout)
	httpClient.AddRequestMiddleware(func(_ *resty.Client, r *resty.Request) error {
		requestID := idgen.RequestID()
		r.SetHeader("X-Request-ID", requestID)

		ctx, span := c.tracer.Start(r.Context(), fmt.Sprintf("%s %s", clientName, r.URL),
			trace.WithSpanKind(trace.SpanKindClient))
		ctx = context.WithValue(ctx, requestIDKey{}, requestID)
		ctx = context.WithValue(ctx, startsAtKey{}, time.Now())
		ctx = context.WithValue(ctx, spanKey{}, span)
		r.SetContext(ctx)
		return nil
	})
	httpClient.AddResponseMiddleware(func(_ *resty.Client, r *resty.Response) error {
		log := logger.GetLogger()
		ctx := r.Request.Context()
		requestID, _ := ctx.Value(requestIDKey{}).(string)
		startTime, _ := ctx.Value(startsAtKey{}).(time.Time)
		latency := time.Since(startTime)

		if span, ok := ctx.Value(spanKey{}).(trace.Span); ok {
			span.SetAttributes(
				attribute.Int("http.status_code", r.StatusCode()),
				attribute.String("http.method", r.Request.Method),
			)
			if r.IsError() {
				span.SetStatus(codes.Error, http.StatusText(r.StatusCode()))
			}
			span.End()
		}

		log.Debug().
			Str("request_id", requestID).
			Str("client", clientName).
			Int("status", r.StatusCode()).
			Str("method", r.Request.Method).
			Str("url", r.Request.URL).
			Dur("latency", latency).
			Msg("HTTP client request")
		return nil
	})

	c.http = httpClient
	return c
}

// OnUnauthorized registers the hook fired when a request that carried a
// bearer token comes back 401. Unauthenticated calls (login itself) never
// trigger it.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

// R prepares a request with the given context. The token is attached as a
// bearer header when non-empty.
func (c *Client) R(ctx context.Context, accessToken string) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if strings.TrimSpace(accessToken) != "" {
		req.SetHeader("Authorization", fmt.Sprintf("Bearer %s", accessToken))
	}
	return req
}

// Endpoint joins path onto the base URL.
func (c *Client) Endpoint(path string) string {
	if path == "" {
		return c.baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if c.baseURL == "" {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return c.baseURL + path
	}
	return c.baseURL + "/" + path
}

// detailBody matches the backend's error envelope.
type detailBody struct {
	Detail json.RawMessage `json:"detail"`
}

// ErrorFrom maps a non-2xx response to the error taxonomy, pulling the
// server's detail text out of the body when present. A 401 on a request that
// carried a bearer token also fires the unauthorized hook.
func (c *Client) ErrorFrom(resp *resty.Response, message string) error {
	if resp == nil {
		return apperrors.New(apperrors.LayerTransport, apperrors.KindNetwork, message, nil)
	}

	detail := decodeDetail(resp.Bytes())
	err := apperrors.FromStatus(apperrors.LayerTransport, resp.StatusCode(), detail)
	err.Message = fmt.Sprintf("%s: %s", message, err.Message)

	if resp.StatusCode() == http.StatusUnauthorized && resp.Request.Header.Get("Authorization") != "" {
		c.mu.Lock()
		fn := c.onUnauthorized
		c.mu.Unlock()
		if fn != nil {
			fn()
		}
	}
	return err
}

// WrapTransport classifies a transport-level failure (DNS, refused
// connection, timeout) that never produced a response.
func (c *Client) WrapTransport(err error, message string) error {
	return apperrors.New(apperrors.LayerTransport, apperrors.KindNetwork, message, err)
}

// decodeDetail extracts the "detail" field from an error body. Detail may be
// a string or any JSON value; non-string values are kept as compact JSON.
func decodeDetail(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	var envelope detailBody
	if jsonErr := json.Unmarshal(body, &envelope); jsonErr != nil || len(envelope.Detail) == 0 {
		return trimmed
	}
	var s string
	if json.Unmarshal(envelope.Detail, &s) == nil {
		return s
	}
	return string(envelope.Detail)
}

// ParseTimestamp accepts RFC 3339 and the naive isoformat some backends emit
// without a zone suffix. Unparseable values fall back to the zero time.
func ParseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func normalizeBaseURL(base string) string {
	trimmed := strings.TrimSpace(base)
	trimmed = strings.TrimRight(trimmed, "/")
	return trimmed
}
