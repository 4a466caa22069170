package exporters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"

	defaultTimeout = 10 * time.Second
)

// OTLPConfig points the exporter at a collector.
type OTLPConfig struct {
	// Endpoint is the collector address, "localhost:4317" for gRPC or "localhost:4318" for HTTP.
	// Empty drops spans in process.
	Endpoint string
	Protocol string
	Insecure bool
	Headers  map[string]string
	Timeout  time.Duration
}

// NewExporter returns the span exporter for config.
func NewExporter(ctx context.Context, config OTLPConfig) (sdktrace.SpanExporter, error) {
	if config.Endpoint == "" {
		return &ConsoleExporter{}, nil
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	switch strings.ToLower(config.Protocol) {
	case "", ProtocolGRPC:
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(config.Endpoint),
			otlptracegrpc.WithTimeout(config.Timeout),
			otlptracegrpc.WithHeaders(config.Headers),
		}
		if config.Insecure {
			opts = append(opts,
				otlptracegrpc.WithInsecure(),
				otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
			)
		}
		return otlptracegrpc.New(ctx, opts...)
	case ProtocolHTTP:
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(config.Endpoint),
			otlptracehttp.WithTimeout(config.Timeout),
			otlptracehttp.WithHeaders(config.Headers),
		}
		if config.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q, use %q or %q", config.Protocol, ProtocolGRPC, ProtocolHTTP)
	}
}
