package tracing

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderStartStop(t *testing.T) {
	ctx := context.Background()
	provider := NewProvider(ProviderConfig{ServiceName: "fmcp-test"}, ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))
	assert.Equal(t, "tracing", provider.GetName())

	require.NoError(t, provider.Start(ctx))
	t.Cleanup(func() { SetTracer(nil) })

	spanCtx, span := StartSpan(ctx, "test")
	assert.NotEmpty(t, GetTraceID(spanCtx))
	assert.NotEmpty(t, GetSpanID(spanCtx))
	span.End()

	require.NoError(t, provider.Stop(ctx))
}

func TestStartSpanWithoutTracer(t *testing.T) {
	SetTracer(nil)

	ctx, span := StartSpan(context.Background(), "noop")
	defer span.End()

	assert.Empty(t, GetTraceID(ctx))
}
