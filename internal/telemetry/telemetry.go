// Package telemetry configures OpenTelemetry tracing for the process.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config selects the tracing backend.
type Config struct {
	// Endpoint is an OTLP/HTTP collector URL. Empty disables export.
	Endpoint    string
	ServiceName string
	Version     string
	Logger      *slog.Logger
}

// Provider owns the process tracer provider.
type Provider struct {
	tp       trace.TracerProvider
	shutdown func(context.Context) error
}

// Setup builds a tracer provider and installs it as the global provider.
// Without an endpoint the provider is a no-op.
func Setup(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "cronbot"
	}

	if cfg.Endpoint == "" {
		p := &Provider{
			tp:       noop.NewTracerProvider(),
			shutdown: func(context.Context) error { return nil },
		}
		otel.SetTracerProvider(p.tp)
		return p, nil
	}

	endpoint, err := tracesURL(cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create OTLP exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.Version),
	)
	sdk := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(sdk)
	cfg.Logger.Info("telemetry: tracing enabled", "endpoint", endpoint)

	return &Provider{tp: sdk, shutdown: sdk.Shutdown}, nil
}

// tracesURL treats a bare collector address the way the OTLP environment
// variable does: as a base URL that receives the /v1/traces path.
func tracesURL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("telemetry: endpoint must be an http(s) URL, got %q", endpoint)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/v1/traces"
	}
	return u.String(), nil
}

// TracerProvider returns the configured provider.
func (p *Provider) TracerProvider() trace.TracerProvider {
	return p.tp
}

// Stop flushes pending spans and releases the exporter.
func (p *Provider) Stop(ctx context.Context) error {
	if err := p.shutdown(ctx); err != nil {
		return fmt.Errorf("telemetry: shutdown: %w", err)
	}
	return nil
}
