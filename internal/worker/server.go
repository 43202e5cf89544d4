package worker

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/hibiken/asynq"

	"github.com/KasumiMercury/gauchoride-api/internal/config"
	"github.com/KasumiMercury/gauchoride-api/internal/queue"
)

type Server struct {
	server  *asynq.Server
	handler *AnnounceHandler
}

func NewServer(cfg *config.Config) *Server {
	srv := asynq.NewServer(
		queue.RedisOpt(cfg),
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues: map[string]int{
				cfg.QueueName: 1,
			},
			RetryDelayFunc: retryDelay,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				slog.ErrorContext(ctx, "task failed",
					slog.String("event", "task.fail"),
					slog.String("task.type", task.Type()),
					slog.Int("retry", retried),
					slog.Int("max_retry", maxRetry),
					slog.String("error", err.Error()),
				)
			}),
		},
	)

	return &Server{
		server:  srv,
		handler: NewAnnounceHandler(cfg.TargetEndpoint, cfg.RequestTimeout),
	}
}

// retryDelay backs off exponentially from 10s.
func retryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	return time.Duration(math.Pow(2, float64(n))) * 10 * time.Second
}

func (s *Server) Run() error {
	mux := asynq.NewServeMux()
	mux.Handle(queue.TaskTypeDeployAnnounce, s.handler)
	return s.server.Run(mux)
}

func (s *Server) Shutdown() {
	s.server.Shutdown()
}
