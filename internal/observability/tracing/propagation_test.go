package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func sampledContext(t *testing.T) (context.Context, trace.SpanContext) {
	t.Helper()

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})

	return trace.ContextWithSpanContext(context.Background(), sc), sc
}

func TestMapRoundTrip(t *testing.T) {
	SetupPropagator()
	ctx, sc := sampledContext(t)

	carrier := InjectToMap(ctx)
	require.Contains(t, carrier, "traceparent")

	got := trace.SpanContextFromContext(ExtractFromMap(context.Background(), carrier))
	assert.Equal(t, sc.TraceID(), got.TraceID())
	assert.Equal(t, sc.SpanID(), got.SpanID())
	assert.True(t, got.IsRemote())
}

func TestExtractFromEmptyMap(t *testing.T) {
	SetupPropagator()

	ctx := ExtractFromMap(context.Background(), nil)

	assert.False(t, trace.SpanContextFromContext(ctx).IsValid())
}

func TestHTTPRoundTrip(t *testing.T) {
	SetupPropagator()
	ctx, sc := sampledContext(t)

	req := httptest.NewRequest(http.MethodPost, "/hook", nil)
	InjectToHTTPRequest(ctx, req)

	got := trace.SpanContextFromContext(ExtractFromHTTPRequest(context.Background(), req))
	assert.Equal(t, sc.TraceID(), got.TraceID())
}
