// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(testRedis(t), RateLimitConfig{
		Limit: PerMinute(10, 10),
	})
	h := rl.Handler(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.RemoteAddr = "10.0.0.1:50000"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimiter_RejectsOverLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(testRedis(t), RateLimitConfig{
		Limit: redis_rate.Limit{Rate: 2, Burst: 2, Period: time.Minute},
	})
	h := rl.Handler(okHandler())

	var last *httptest.ResponseRecorder
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
		req.RemoteAddr = "10.0.0.2:50000"
		last = httptest.NewRecorder()
		h.ServeHTTP(last, req)
	}

	require.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
	assert.Contains(t, last.Body.String(), `"success":false`)
}

func TestRateLimiter_SeparateClientsSeparateBuckets(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(testRedis(t), RateLimitConfig{
		Limit: redis_rate.Limit{Rate: 1, Burst: 1, Period: time.Minute},
	})
	h := rl.Handler(okHandler())

	first := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	first.RemoteAddr = "10.0.0.3:50000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	second := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	second.RemoteAddr = "10.0.0.4:50000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_FailOpenFallsBackWhenRedisDown(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	rl := NewRateLimiter(client, RateLimitConfig{
		Limit:    PerMinute(10, 10),
		FailOpen: true,
	})
	h := rl.Handler(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.RemoteAddr = "10.0.0.5:50000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_FailClosedReturns503WhenRedisDown(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	rl := NewRateLimiter(client, RateLimitConfig{
		Limit: PerMinute(10, 10),
	})
	h := rl.Handler(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.RemoteAddr = "10.0.0.6:50000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr",
			remoteAddr: "192.0.2.1:50000",
			want:       "192.0.2.1",
		},
		{
			name:       "forwarded-for takes last hop",
			remoteAddr: "192.0.2.1:50000",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.9, 203.0.113.7"},
			want:       "203.0.113.7",
		},
		{
			name:       "real-ip",
			remoteAddr: "192.0.2.1:50000",
			headers:    map[string]string{"X-Real-IP": "198.51.100.4"},
			want:       "198.51.100.4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"/v1/auth/login", "/v1/auth/login"},
		{"/v1/users/550e8400-e29b-41d4-a716-446655440000", "/v1/users/{id}"},
		{"/v1/users/12345", "/v1/users/{id}"},
		{"/v1/users/12345/results", "/v1/users/{id}/results"},
		{"/", "/"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeEndpoint(tt.path), tt.path)
	}
}

func TestRoleRateLimiter_QuotaByRole(t *testing.T) {
	t.Parallel()

	limits := map[string]RoleLimitConfig{
		"student": {RequestsPerMinute: 1, BurstSize: 1},
		"admin":   {RequestsPerMinute: 100, BurstSize: 100},
	}
	mw := RoleRateLimiter(testRedis(t), limits)
	h := mw(okHandler())

	asRole := func(userID, roleName string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
		ctx := context.WithValue(req.Context(), UserIDKey, userID)
		ctx = context.WithValue(ctx, UserRoleKey, roleName)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req.WithContext(ctx))
		return rec
	}

	// Student quota of one: second request rejected.
	require.Equal(t, http.StatusOK, asRole("student-1", "student").Code)
	rec := asRole("student-1", "student")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "student", rec.Header().Get("X-RateLimit-Role"))

	// Admin quota is independent and far larger.
	for range 5 {
		assert.Equal(t, http.StatusOK, asRole("admin-1", "admin").Code)
	}
}

func TestRoleRateLimiter_UnknownRoleGetsStudentQuota(t *testing.T) {
	t.Parallel()

	limits := map[string]RoleLimitConfig{
		"student": {RequestsPerMinute: 1, BurstSize: 1},
	}
	mw := RoleRateLimiter(testRedis(t), limits)
	h := mw(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	ctx := context.WithValue(req.Context(), UserIDKey, "user-x")
	ctx = context.WithValue(ctx, UserRoleKey, "visitor")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "student", rec.Header().Get("X-RateLimit-Role"))
}
