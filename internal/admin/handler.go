// AngelaMos | 2026
// handler.go

package admin

import (
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/driveready/driveready-api/internal/core"
)

// Handler serves operational statistics for administrators. It reads pool
// and runtime counters only; nothing here mutates state.
type Handler struct {
	db      *core.Database
	redis   *core.Redis
	started time.Time
}

func NewHandler(db *core.Database, redis *core.Redis) *Handler {
	return &Handler{
		db:      db,
		redis:   redis,
		started: time.Now(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/stats", h.Overview)
		r.Get("/stats/db", h.DatabaseStats)
		r.Get("/stats/redis", h.RedisStats)
		r.Get("/stats/runtime", h.RuntimeStats)
	})
}

// Overview combines connectivity checks with all three stat groups.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	out := overview{
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Database:      dependency{Healthy: h.db.Ping(ctx) == nil, Stats: h.databaseStats()},
		Redis:         dependency{Healthy: h.redis.Ping(ctx) == nil, Stats: h.redisStats()},
		Runtime:       h.runtimeStats(),
	}

	core.OK(w, out)
}

func (h *Handler) DatabaseStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.databaseStats())
}

func (h *Handler) RedisStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.redisStats())
}

func (h *Handler) RuntimeStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.runtimeStats())
}

func (h *Handler) databaseStats() map[string]any {
	s := h.db.Stats()
	return map[string]any{
		"max_open":            s.MaxOpenConnections,
		"open":                s.OpenConnections,
		"in_use":              s.InUse,
		"idle":                s.Idle,
		"wait_count":          s.WaitCount,
		"wait_duration":       s.WaitDuration.String(),
		"max_idle_closed":     s.MaxIdleClosed,
		"max_lifetime_closed": s.MaxLifetimeClosed,
	}
}

func (h *Handler) redisStats() map[string]any {
	s := h.redis.PoolStats()
	return map[string]any{
		"hits":        s.Hits,
		"misses":      s.Misses,
		"timeouts":    s.Timeouts,
		"total_conns": s.TotalConns,
		"idle_conns":  s.IdleConns,
		"stale_conns": s.StaleConns,
	}
}

func (h *Handler) runtimeStats() runtimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return runtimeStats{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		CPUs:       runtime.NumCPU(),
		HeapAlloc:  mem.HeapAlloc,
		HeapSys:    mem.HeapSys,
		GCRuns:     mem.NumGC,
		LastGC:     time.Unix(0, int64(mem.LastGC)).UTC(),
	}
}

type overview struct {
	UptimeSeconds int64        `json:"uptime_seconds"`
	Database      dependency   `json:"database"`
	Redis         dependency   `json:"redis"`
	Runtime       runtimeStats `json:"runtime"`
}

type dependency struct {
	Healthy bool           `json:"healthy"`
	Stats   map[string]any `json:"stats"`
}

type runtimeStats struct {
	GoVersion  string    `json:"go_version"`
	Goroutines int       `json:"goroutines"`
	CPUs       int       `json:"cpus"`
	HeapAlloc  uint64    `json:"heap_alloc_bytes"`
	HeapSys    uint64    `json:"heap_sys_bytes"`
	GCRuns     uint32    `json:"gc_runs"`
	LastGC     time.Time `json:"last_gc"`
}
