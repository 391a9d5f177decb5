// Package trigger issues the bare POST requests that start remote jobs.
package trigger

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/flemzord/cronbot/internal/trigger"

// maxDrainBytes bounds how much of an ignored response body is read so the
// connection can be reused.
const maxDrainBytes = 64 << 10

// Poster is the capability the job runner depends on.
type Poster interface {
	Post(ctx context.Context, url string) (int, error)
}

// Client posts to job endpoints with an optional bearer secret.
type Client struct {
	secret string
	http   *http.Client
	tracer trace.Tracer
}

// Compile-time interface guard.
var _ Poster = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets an overall request timeout. Zero keeps the transport
// defaults, which impose none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Transport: c.http.Transport, Timeout: d}
		}
	}
}

// WithTracerProvider sets the provider used for request spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewClient creates a Client. An empty secret disables the Authorization header.
func NewClient(secret string, opts ...Option) *Client {
	c := &Client{
		secret: secret,
		http:   &http.Client{},
		tracer: otel.GetTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post sends an empty-bodied JSON POST to url and returns the response status
// code. Every status code counts as a completed request; only transport
// failures are returned as errors. There is no retry.
func (c *Client) Post(ctx context.Context, url string) (int, error) {
	ctx, span := c.tracer.Start(ctx, "trigger.post",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("url.full", url)),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, http.NoBody)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return 0, fmt.Errorf("trigger: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set("Authorization", "Bearer "+c.secret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return 0, fmt.Errorf("trigger: POST %s: %w", url, err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	_ = resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	return resp.StatusCode, nil
}
