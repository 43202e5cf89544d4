package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/KasumiMercury/gauchoride-api/internal/observability/logging"
	"github.com/KasumiMercury/gauchoride-api/internal/observability/metrics"
	"github.com/KasumiMercury/gauchoride-api/internal/observability/tracing"
)

type Config struct {
	ServiceInfo   logging.ServiceInfo
	Environment   logging.Environment
	SamplingRate  float64 // 1.0 = always sample
	DefaultModule logging.Module
}

type Resources struct {
	logger         *slog.Logger
	tracerProvider *tracing.Provider
	meterProvider  *metrics.Provider
	httpMetrics    *metrics.HTTPMetrics
}

func Init(ctx context.Context, cfg Config) (*Resources, error) {
	// default sampling rate
	if cfg.SamplingRate == 0 {
		cfg.SamplingRate = 1.0
	}

	tracing.SetupPropagator()

	tp, err := tracing.NewProvider(ctx, tracing.Config{
		ServiceName:    cfg.ServiceInfo.Name,
		ServiceVersion: cfg.ServiceInfo.Version,
		Environment:    string(cfg.Environment),
		SamplingRate:   cfg.SamplingRate,
	})
	if err != nil {
		return nil, err
	}

	tp.SetGlobalProvider()

	mp, err := metrics.NewProvider(ctx, metrics.Config{
		ServiceName:    cfg.ServiceInfo.Name,
		ServiceVersion: cfg.ServiceInfo.Version,
		Environment:    string(cfg.Environment),
	})
	if err != nil {
		return nil, errors.Join(err, tp.Shutdown(ctx))
	}

	mp.SetGlobalProvider()

	httpMetrics, err := metrics.NewHTTPMetrics(mp.MeterProvider())
	if err != nil {
		return nil, errors.Join(err, mp.Shutdown(ctx), tp.Shutdown(ctx))
	}

	return &Resources{
		logger:         NewLogger(os.Stdout, cfg),
		tracerProvider: tp,
		meterProvider:  mp,
		httpMetrics:    httpMetrics,
	}, nil
}

func (r *Resources) Logger() *slog.Logger {
	return r.logger
}

func (r *Resources) HTTPMetrics() *metrics.HTTPMetrics {
	return r.httpMetrics
}

// Shutdown flushes metrics before traces and reports every failure.
func (r *Resources) Shutdown(ctx context.Context) error {
	var errs []error

	if r.meterProvider != nil {
		if err := r.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if r.tracerProvider != nil {
		if err := r.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func NewLogger(w io.Writer, cfg Config) *slog.Logger {
	handler := logging.NewHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}, logging.HandlerConfig{
		ServiceInfo:   cfg.ServiceInfo,
		Environment:   cfg.Environment,
		DefaultModule: cfg.DefaultModule,
	})

	return slog.New(handler)
}
