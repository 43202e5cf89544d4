package main

import (
	"context"
	"os"

	"github.com/KasumiMercury/gauchoride-api/internal/observability"
	"github.com/KasumiMercury/gauchoride-api/internal/observability/logging"
)

func initObservability(ctx context.Context, revision string) (*observability.Resources, error) {
	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "gauchoride-api"
	}

	env := logging.EnvDev
	if e := os.Getenv("ENV"); e != "" {
		env = logging.Environment(e)
	}

	return observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:     serviceName,
			Version:  Version,
			Revision: revision,
		},
		Environment:   env,
		SamplingRate:  1.0,
		DefaultModule: logging.ModuleAPI,
	})
}
