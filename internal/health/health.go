package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"connectrpc.com/grpchealth"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult is the outcome of probing one dependency.
type CheckResult struct {
	Status    Status `json:"status"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

type HealthStatus struct {
	Status   Status                 `json:"status"`
	Version  string                 `json:"version,omitempty"`
	Revision string                 `json:"revision,omitempty"`
	Checks   map[string]CheckResult `json:"checks,omitempty"`
}

// Pinger is satisfied by the announcement queue client.
type Pinger interface {
	Ping() error
}

// Checker reports service health. Dependencies that are not configured
// are left out of the report.
type Checker struct {
	queue    Pinger
	version  string
	revision string
}

func NewChecker(queue Pinger, version, revision string) *Checker {
	return &Checker{
		queue:    queue,
		version:  version,
		revision: revision,
	}
}

func (c *Checker) Check(_ context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:   StatusHealthy,
		Version:  c.version,
		Revision: c.revision,
		Checks:   make(map[string]CheckResult),
	}

	if c.queue != nil {
		start := time.Now()
		if err := c.queue.Ping(); err != nil {
			status.Status = StatusUnhealthy
			status.Checks["redis"] = CheckResult{
				Status: StatusUnhealthy,
				Error:  err.Error(),
			}
		} else {
			status.Checks["redis"] = CheckResult{
				Status:    StatusHealthy,
				LatencyMs: time.Since(start).Milliseconds(),
			}
		}
	}

	return status
}

func (c *Checker) IsHealthy(ctx context.Context) bool {
	return c.Check(ctx).Status == StatusHealthy
}

// LiveHandler answers liveness probes without touching dependencies.
func (c *Checker) LiveHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ReadyHandler answers readiness probes, 503 when a dependency is down.
func (c *Checker) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	status := c.Check(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if status.Status != StatusHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(status)
}

// GRPCChecker adapts Checker to the gRPC health checking protocol.
type GRPCChecker struct {
	checker *Checker
}

func NewGRPCChecker(checker *Checker) *GRPCChecker {
	return &GRPCChecker{checker: checker}
}

func (g *GRPCChecker) Check(ctx context.Context, _ *grpchealth.CheckRequest) (*grpchealth.CheckResponse, error) {
	if g.checker.IsHealthy(ctx) {
		return &grpchealth.CheckResponse{
			Status: grpchealth.StatusServing,
		}, nil
	}
	return &grpchealth.CheckResponse{
		Status: grpchealth.StatusNotServing,
	}, nil
}
