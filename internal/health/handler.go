// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

const checkTimeout = 5 * time.Second

// Pinger is satisfied by the database and redis wrappers in core.
type Pinger interface {
	Ping(ctx context.Context) error
}

type namedCheck struct {
	name   string
	target Pinger
}

type Handler struct {
	checks   []namedCheck
	started  time.Time
	shutdown atomic.Bool
}

func NewHandler(db, redis Pinger) *Handler {
	return &Handler{
		checks: []namedCheck{
			{name: "database", target: db},
			{name: "redis", target: redis},
		},
		started: time.Now(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

// Liveness answers whether the process is up. It never touches
// dependencies; a dead database must not get the pod restarted.
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		h.write(w, http.StatusServiceUnavailable, LivenessResponse{
			Status: "shutting_down",
		})
		return
	}

	h.write(w, http.StatusOK, LivenessResponse{
		Status: "ok",
		Uptime: time.Since(h.started).Round(time.Second).String(),
	})
}

// Readiness pings every dependency concurrently and reports per-check
// results. Any failing check makes the whole endpoint 503.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		h.write(w, http.StatusServiceUnavailable, ReadinessResponse{
			Status: "shutting_down",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	results := make([]CheckResult, len(h.checks))

	var wg sync.WaitGroup
	for i, check := range h.checks {
		wg.Add(1)
		go func(i int, check namedCheck) {
			defer wg.Done()
			results[i] = h.runCheck(ctx, check)
		}(i, check)
	}
	wg.Wait()

	status := "ok"
	statusCode := http.StatusOK
	for _, res := range results {
		if !res.Healthy {
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
			break
		}
	}

	h.write(w, statusCode, ReadinessResponse{
		Status: status,
		Checks: results,
	})
}

func (h *Handler) runCheck(ctx context.Context, check namedCheck) CheckResult {
	result := CheckResult{Name: check.name, Healthy: true}

	if check.target == nil {
		result.Healthy = false
		result.Message = "not configured"
		return result
	}

	start := time.Now()
	err := check.target.Ping(ctx)
	result.Latency = time.Since(start).String()

	if err != nil {
		result.Healthy = false
		result.Message = "ping failed"
	}

	return result
}

// SetShutdown flips both endpoints to 503 so load balancers drain the
// instance before it stops accepting connections.
func (h *Handler) SetShutdown(shutdown bool) {
	h.shutdown.Store(shutdown)
}

func (h *Handler) write(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response
	_ = json.NewEncoder(w).Encode(data)
}

type LivenessResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime,omitempty"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []CheckResult `json:"checks,omitempty"`
}

type CheckResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
