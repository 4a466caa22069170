package tracing

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/renning22/fmcp/pkg/tracing/exporters"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ProviderConfig selects how spans leave the process. An empty Endpoint keeps
// spans in-process via the console exporter.
type ProviderConfig struct {
	ServiceName string
	Endpoint    string
	Protocol    string
	Insecure    bool
}

// Provider owns the SDK tracer provider and plugs into startup as a dependency.
type Provider struct {
	config   ProviderConfig
	logger   ectologger.Logger
	provider *sdktrace.TracerProvider
}

func NewProvider(config ProviderConfig, logger ectologger.Logger) *Provider {
	return &Provider{config: config, logger: logger}
}

func (p *Provider) GetName() string {
	return "tracing"
}

func (p *Provider) DependsOn() []string {
	return nil
}

func (p *Provider) Start(ctx context.Context) error {
	exporter, err := exporters.NewExporter(ctx, exporters.OTLPConfig{
		Endpoint: p.config.Endpoint,
		Protocol: p.config.Protocol,
		Insecure: p.config.Insecure,
	})
	if err != nil {
		return err
	}

	p.provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", p.config.ServiceName))),
	)

	otel.SetTracerProvider(p.provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	SetTracer(p.provider.Tracer(p.config.ServiceName))

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"endpoint": p.config.Endpoint,
		"protocol": p.config.Protocol,
	}).Info("tracer provider started")
	return nil
}

func (p *Provider) Stop(ctx context.Context) error {
	if p.provider == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.provider.Shutdown(ctx)
}
