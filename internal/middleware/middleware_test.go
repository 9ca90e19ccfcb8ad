package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datara/scholarhub/internal/audit"
	"github.com/datara/scholarhub/internal/auth"
	"github.com/datara/scholarhub/internal/metrics"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestAuthenticate(t *testing.T) {
	tm := auth.NewTokenManager("secret", time.Hour)
	token, _, err := tm.Generate("SCH12345678", auth.RoleScholar, "org", "s@example.org")
	require.NoError(t, err)

	var seen *auth.Claims
	h := Authenticate(tm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusNoContent},
		{"lowercase scheme", "bearer " + token, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	require.NotNil(t, seen)
	assert.Equal(t, "SCH12345678", seen.SubjectID)
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(auth.RoleAdmin)(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithClaims(req.Context(), &auth.Claims{Role: auth.RoleScholar}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Forbidden"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithClaims(req.Context(), &auth.Claims{Role: auth.RoleAdmin}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMemoryLimiter(t *testing.T) {
	l := NewMemoryLimiter()
	now := time.Now()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "k", 2, time.Minute))
	assert.True(t, l.Allow(ctx, "k", 2, time.Minute))
	assert.False(t, l.Allow(ctx, "k", 2, time.Minute))
	assert.True(t, l.Allow(ctx, "other", 2, time.Minute))

	now = now.Add(2 * time.Minute)
	assert.True(t, l.Allow(ctx, "k", 2, time.Minute))
}

func TestRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	l := NewRedisLimiter(client, "rl:")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "login:1.2.3.4", 3, time.Minute))
	}
	assert.False(t, l.Allow(ctx, "login:1.2.3.4", 3, time.Minute))
	assert.True(t, mr.Exists("rl:login:1.2.3.4"))

	mr.FastForward(2 * time.Minute)
	assert.True(t, l.Allow(ctx, "login:1.2.3.4", 3, time.Minute))

	// Fails open when redis goes away.
	mr.Close()
	assert.True(t, l.Allow(ctx, "login:1.2.3.4", 1, time.Minute))

	var nilLimiter *RedisLimiter
	assert.True(t, nilLimiter.Allow(ctx, "k", 1, time.Minute))
	assert.Nil(t, NewRedisLimiter(nil, ""))
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(NewMemoryLimiter(), "test_bucket", ClientIP, 1, time.Minute)(http.HandlerFunc(okHandler))
	before := testutil.ToFloat64(metrics.RateLimited.WithLabelValues("test_bucket"))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimited.WithLabelValues("test_bucket")))

	req.RemoteAddr = "10.0.0.2:5555"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequestMeta(t *testing.T) {
	var meta audit.RequestMeta
	h := chimw.RequestID(RequestMeta(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta = audit.MetaFromContext(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:1234"
	req.Header.Set("User-Agent", "test-agent")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.NotEmpty(t, meta.RequestID)
	assert.Equal(t, "192.0.2.10", meta.ClientIP)
	assert.Equal(t, "test-agent", meta.UserAgent)
}

func TestMetrics(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/things/{id}", okHandler)

	before := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/things/{id}", "204"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things/42", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/things/{id}", "204")))
}
