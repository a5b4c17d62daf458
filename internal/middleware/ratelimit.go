// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures a sliding-window limiter backed by redis.
// When FailOpen is set, redis outages degrade to an in-process token
// bucket instead of rejecting traffic.
type RateLimitConfig struct {
	Limit    redis_rate.Limit
	KeyFunc  func(*http.Request) string
	FailOpen bool
}

type RateLimiter struct {
	redis    *redis_rate.Limiter
	fallback *memoryLimiter
	cfg      RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}

	return &RateLimiter{
		redis:    redis_rate.NewLimiter(rdb),
		fallback: newMemoryLimiter(),
		cfg:      cfg,
	}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.cfg.KeyFunc(r)

		res, err := rl.redis.Allow(r.Context(), key, rl.cfg.Limit)
		if err != nil {
			if !rl.cfg.FailOpen {
				http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
				return
			}
			slog.Warn("rate limiter degraded to local fallback",
				"error", err,
				"key", key,
			)
			res = rl.fallback.allow(key, rl.cfg.Limit)
		}

		writeLimitHeaders(w, res, rl.cfg.Limit)

		if res.Allowed == 0 {
			writeLimitExceeded(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// KeyByIP buckets requests by client address, trusting proxy headers
// when present.
func KeyByIP(r *http.Request) string {
	return "ratelimit:ip:" + clientIP(r)
}

// KeyByIPAndPath scopes the window to a route, for endpoints that need a
// tighter budget than the global per-IP limit (login, password reset).
func KeyByIPAndPath(r *http.Request) string {
	return KeyByIP(r) + ":path:" + normalizeEndpoint(r.URL.Path)
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		return strings.TrimSpace(hops[len(hops)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// normalizeEndpoint collapses path parameters so /users/<uuid> and
// /users/<other-uuid> share one bucket.
func normalizeEndpoint(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if looksLikeID(seg) {
			segments[i] = "{id}"
		}
	}
	return "/" + strings.Join(segments, "/")
}

func looksLikeID(s string) bool {
	if len(s) == 36 && s[8] == '-' && s[13] == '-' && s[18] == '-' && s[23] == '-' {
		return true
	}
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func writeLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(
		time.Now().Add(res.ResetAfter).Unix(), 10))
}

func writeLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := max(int(res.RetryAfter.Seconds()), 1)

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": fmt.Sprintf(
			"Rate limit exceeded. Retry after %d seconds.",
			retryAfter,
		),
	})
}

// memoryLimiter is the process-local degradation path. Buckets are
// pruned whenever the map grows past a threshold, so no background
// goroutine is needed.
type memoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*memoryBucket
}

type memoryBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const (
	memoryBucketTTL   = 10 * time.Minute
	memoryPruneAtSize = 4096
)

func newMemoryLimiter() *memoryLimiter {
	return &memoryLimiter{buckets: make(map[string]*memoryBucket)}
}

func (m *memoryLimiter) allow(key string, limit redis_rate.Limit) *redis_rate.Result {
	perSecond := float64(limit.Rate) / limit.Period.Seconds()
	now := time.Now()

	m.mu.Lock()
	b, ok := m.buckets[key]
	if !ok {
		if len(m.buckets) >= memoryPruneAtSize {
			m.prune(now)
		}
		b = &memoryBucket{
			limiter: rate.NewLimiter(rate.Limit(perSecond), limit.Burst),
		}
		m.buckets[key] = b
	}
	b.lastSeen = now
	allowed := b.limiter.Allow()
	remaining := max(int(b.limiter.Tokens()), 0)
	m.mu.Unlock()

	interval := time.Duration(float64(time.Second) / perSecond)

	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  remaining,
		RetryAfter: -1,
		ResetAfter: interval,
	}
	if allowed {
		res.Allowed = 1
	} else {
		res.RetryAfter = interval
	}
	return res
}

// prune drops stale buckets; caller holds the lock.
func (m *memoryLimiter) prune(now time.Time) {
	cutoff := now.Add(-memoryBucketTTL)
	for key, b := range m.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(m.buckets, key)
		}
	}
}

// RoleLimitConfig is the per-minute quota applied to one role.
type RoleLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
}

var DefaultRoleLimits = map[string]RoleLimitConfig{
	"student":    {RequestsPerMinute: 120, BurstSize: 20},
	"instructor": {RequestsPerMinute: 600, BurstSize: 100},
	"admin":      {RequestsPerMinute: 1200, BurstSize: 200},
}

// RoleRateLimiter applies per-user quotas scaled by the authenticated
// account's role. Must run after Authenticator so the role is in context.
// Unknown or missing roles get the student quota.
func RoleRateLimiter(
	rdb *redis.Client,
	limits map[string]RoleLimitConfig,
) func(http.Handler) http.Handler {
	limiter := redis_rate.NewLimiter(rdb)
	fallback := newMemoryLimiter()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := GetUserRole(r.Context())
			quota, ok := limits[role]
			if !ok {
				role = "student"
				quota = limits[role]
			}

			limit := redis_rate.Limit{
				Rate:   quota.RequestsPerMinute,
				Burst:  quota.BurstSize,
				Period: time.Minute,
			}
			key := "ratelimit:user:" + GetUserID(r.Context())

			res, err := limiter.Allow(r.Context(), key, limit)
			if err != nil {
				res = fallback.allow(key, limit)
			}

			w.Header().Set("X-RateLimit-Role", role)
			writeLimitHeaders(w, res, limit)

			if res.Allowed == 0 {
				writeLimitExceeded(w, res)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func PerMinute(requests, burst int) redis_rate.Limit {
	return redis_rate.Limit{
		Rate:   requests,
		Burst:  burst,
		Period: time.Minute,
	}
}
