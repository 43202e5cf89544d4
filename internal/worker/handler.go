package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"

	"github.com/KasumiMercury/gauchoride-api/internal/observability/logging"
	"github.com/KasumiMercury/gauchoride-api/internal/observability/tracing"
	"github.com/KasumiMercury/gauchoride-api/internal/queue"
)

const maxLoggedBodyBytes = 1024

// AnnounceHandler posts deploy announcements to a webhook.
type AnnounceHandler struct {
	targetEndpoint string
	httpClient     *http.Client
}

func NewAnnounceHandler(targetEndpoint string, timeout time.Duration) *AnnounceHandler {
	return &AnnounceHandler{
		targetEndpoint: targetEndpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ProcessTask delivers one announcement. Client errors and malformed
// payloads are not retried; transport and server errors are.
func (h *AnnounceHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	ctx = logging.WithModule(ctx, logging.ModuleAnnounce)

	payload, err := queue.UnmarshalAnnouncePayload(t.Payload())
	if err != nil {
		slog.ErrorContext(ctx, "failed to unmarshal payload",
			slog.String("event", "announce.payload.invalid"),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	ctx = tracing.ExtractFromMap(ctx, payload.TraceCarrier)

	body, err := json.Marshal(payload.SystemInfo)
	if err != nil {
		return fmt.Errorf("marshal system info: %w: %w", err, asynq.SkipRetry)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.targetEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w: %w", err, asynq.SkipRetry)
	}
	req.Header.Set("Content-Type", "application/json")
	tracing.InjectToHTTPRequest(ctx, req)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "announce request failed",
			slog.String("event", "announce.send.fail"),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBodyBytes))

	attrs := []slog.Attr{
		slog.Int("status", resp.StatusCode),
		slog.String("commit_id", payload.SystemInfo.CommitID),
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		slog.LogAttrs(ctx, slog.LevelInfo, "deploy announced",
			append(attrs, slog.String("event", "announce.send"))...)
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		slog.LogAttrs(ctx, slog.LevelWarn, "announce rejected (no retry)",
			append(attrs, slog.String("event", "announce.send.reject"), slog.String("body", string(respBody)))...)
		return fmt.Errorf("client error %d: %w", resp.StatusCode, asynq.SkipRetry)
	default:
		slog.LogAttrs(ctx, slog.LevelWarn, "announce failed (will retry)",
			append(attrs, slog.String("event", "announce.send.fail"), slog.String("body", string(respBody)))...)
		return fmt.Errorf("server error %d", resp.StatusCode)
	}
}
