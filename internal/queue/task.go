package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/KasumiMercury/gauchoride-api/internal/observability/tracing"
	"github.com/KasumiMercury/gauchoride-api/internal/sysinfo"
)

const TaskTypeDeployAnnounce = "deploy:announce"

// AnnouncePayload is the body of a deploy:announce task.
type AnnouncePayload struct {
	SystemInfo   sysinfo.SystemInfo `json:"system_info"`
	TraceCarrier map[string]string  `json:"trace_carrier,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

func NewAnnouncePayload(ctx context.Context, info sysinfo.SystemInfo) *AnnouncePayload {
	return &AnnouncePayload{
		SystemInfo:   info,
		TraceCarrier: tracing.InjectToMap(ctx),
		CreatedAt:    time.Now(),
	}
}

func (p *AnnouncePayload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

func UnmarshalAnnouncePayload(data []byte) (*AnnouncePayload, error) {
	var p AnnouncePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
