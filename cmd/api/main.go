package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/KasumiMercury/gauchoride-api/internal/api"
	"github.com/KasumiMercury/gauchoride-api/internal/config"
	"github.com/KasumiMercury/gauchoride-api/internal/health"
	"github.com/KasumiMercury/gauchoride-api/internal/queue"
	"github.com/KasumiMercury/gauchoride-api/internal/reqlog"
	"github.com/KasumiMercury/gauchoride-api/internal/sysinfo"
)

// Version is set via ldflags at build time
var Version = "dev"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))

		return err
	}

	for _, warning := range cfg.Warnings() {
		slog.Warn("configuration warning", slog.String("warning", warning))
	}

	info := sysinfo.FromConfig(cfg)

	obs, err := initObservability(ctx, info.CommitID)
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))

		return err
	}

	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	var pinger health.Pinger
	if cfg.DeployAnnounceEnabled {
		client := queue.NewClient(cfg)
		defer client.Close()

		pinger = client
		announce(ctx, client, info)
	}

	stoplist := reqlog.NewStoplist(cfg.RequestLogStoplist...)

	server, err := api.NewServer(cfg, api.Deps{
		SystemInfo:  sysinfo.NewProvider(info),
		Checker:     health.NewChecker(pinger, Version, info.CommitID),
		ReqLogger:   reqlog.New(obs.Logger(), stoplist),
		HTTPMetrics: obs.HTTPMetrics(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to build server", slog.String("error", err.Error()))

		return err
	}

	slog.InfoContext(ctx, "starting api server",
		slog.String("event", "api.start"),
		slog.String("addr", server.Addr()),
		slog.String("version", Version),
		slog.String("commit_id", info.CommitID),
		slog.Any("request_log_stoplist", cfg.RequestLogStoplist),
		slog.Int("request_log_stoplist_size", stoplist.Len()),
		slog.Bool("frontend_proxy", cfg.FrontendProxyURL != ""),
	)

	go func() {
		<-ctx.Done()

		slog.InfoContext(ctx, "shutdown signal received, shutting down api server...",
			slog.String("event", "api.shutdown.start"),
		)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("api shutdown error", slog.String("error", err.Error()))
		}
	}()

	if err := server.ListenAndServe(); err != nil {
		slog.ErrorContext(ctx, "api server exited with error",
			slog.String("event", "api.exit.fail"),
			slog.String("error", err.Error()),
		)

		return err
	}

	slog.InfoContext(ctx, "api server stopped",
		slog.String("event", "api.stop"),
	)

	return nil
}

// announce queues the deploy announcement. Failures are logged and never
// block startup.
func announce(ctx context.Context, client *queue.Client, info sysinfo.SystemInfo) {
	taskInfo, err := client.EnqueueAnnouncement(ctx, info)
	switch {
	case errors.Is(err, asynq.ErrTaskIDConflict):
		slog.InfoContext(ctx, "deploy already announced",
			slog.String("event", "announce.enqueue.skip"),
			slog.String("commit_id", info.CommitID),
		)
	case err != nil:
		slog.WarnContext(ctx, "failed to enqueue deploy announcement",
			slog.String("event", "announce.enqueue.fail"),
			slog.String("error", err.Error()),
		)
	default:
		slog.InfoContext(ctx, "deploy announcement queued",
			slog.String("event", "announce.enqueue"),
			slog.String("task.id", taskInfo.ID),
			slog.String("queue", taskInfo.Queue),
		)
	}
}
