package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/gauchoride-api/internal/observability/logging"
)

func TestInitWithExporterDisabled(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_DISABLED", "true")

	ctx := context.Background()
	obs, err := Init(ctx, Config{
		ServiceInfo:   logging.ServiceInfo{Name: "gauchoride-api", Version: "test"},
		Environment:   logging.EnvDev,
		DefaultModule: logging.ModuleAPI,
	})
	require.NoError(t, err)

	assert.NotNil(t, obs.Logger())
	assert.NotNil(t, obs.HTTPMetrics())
	assert.NoError(t, obs.Shutdown(ctx))
}

func TestInitRequiresTraceEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_DISABLED", "false")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	_, err := Init(context.Background(), Config{})

	assert.Error(t, err)
}
