package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/KasumiMercury/gauchoride-api/internal/config"
	"github.com/KasumiMercury/gauchoride-api/internal/sysinfo"
)

// announceRetention keeps finished announcements around so a restart of
// the same commit does not announce it twice.
const announceRetention = 24 * time.Hour

type Client struct {
	client     *asynq.Client
	queueName  string
	retryCount int
}

func NewClient(cfg *config.Config) *Client {
	client := asynq.NewClient(RedisOpt(cfg))
	return &Client{
		client:     client,
		queueName:  cfg.QueueName,
		retryCount: cfg.RetryCount,
	}
}

func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Ping() error {
	return c.client.Ping()
}

// EnqueueAnnouncement queues a deploy announcement for info. Announcements
// for a known commit are deduplicated; asynq.ErrTaskIDConflict is returned
// when the commit was already queued.
func (c *Client) EnqueueAnnouncement(ctx context.Context, info sysinfo.SystemInfo) (*asynq.TaskInfo, error) {
	data, err := NewAnnouncePayload(ctx, info).Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	task := asynq.NewTask(TaskTypeDeployAnnounce, data)

	opts := []asynq.Option{
		asynq.Queue(c.queueName),
		asynq.MaxRetry(c.retryCount),
	}

	if info.CommitID != "" {
		opts = append(opts,
			asynq.TaskID(announceTaskID(info.CommitID)),
			asynq.Retention(announceRetention),
		)
	}

	return c.client.EnqueueContext(ctx, task, opts...)
}

func announceTaskID(commitID string) string {
	return "deploy-announce-" + commitID
}
