package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/KasumiMercury/gauchoride-api/internal/observability/tracing"
	"github.com/KasumiMercury/gauchoride-api/internal/sysinfo"
)

func TestAnnouncePayloadCarriesInfoAndTrace(t *testing.T) {
	tracing.SetupPropagator()

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	info := sysinfo.SystemInfo{
		StartQtrYYYYQ: "20231",
		EndQtrYYYYQ:   "20234",
		CommitID:      "abc1234",
		CommitMessage: "release",
	}

	data, err := NewAnnouncePayload(ctx, info).Marshal()
	require.NoError(t, err)

	got, err := UnmarshalAnnouncePayload(data)
	require.NoError(t, err)

	assert.Equal(t, info, got.SystemInfo)
	assert.False(t, got.CreatedAt.IsZero())

	restored := trace.SpanContextFromContext(tracing.ExtractFromMap(context.Background(), got.TraceCarrier))
	assert.Equal(t, traceID, restored.TraceID())
}

func TestUnmarshalAnnouncePayloadRejectsGarbage(t *testing.T) {
	_, err := UnmarshalAnnouncePayload([]byte("{"))

	assert.Error(t, err)
}

func TestAnnounceTaskID(t *testing.T) {
	assert.Equal(t, "deploy-announce-abc1234", announceTaskID("abc1234"))
}
