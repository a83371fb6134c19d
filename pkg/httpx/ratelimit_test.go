package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/webtemplate/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
		require.Equal(t, "203.0.113.1", httpx.IPKeyExtractor(req))
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", httpx.IPKeyExtractor(req))
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	extractor := httpx.CompositeKeyExtractor(":", httpx.SubjectKeyExtractor, httpx.IPKeyExtractor)
	require.Equal(t, "192.168.1.1", extractor(req), "skips empty subject")

	req = req.WithContext(httpx.WithSubject(req.Context(), "alice"))
	require.Equal(t, "alice:192.168.1.1", extractor(req))
}

func TestMemoryLimiter_LoginPolicy(t *testing.T) {
	h := httpx.RateLimitByIP(httpx.NewMemoryLimiter(httpx.LoginLimit))(okHandler())

	for i := range 5 {
		require.Equal(t, http.StatusOK, hit(h, "192.168.1.1:1").Code, "request %d should succeed", i+1)
	}

	rec := hit(h, "192.168.1.1:1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
	require.JSONEq(t, `{"detail":"Too many requests"}`, rec.Body.String())

	// Other callers are unaffected.
	require.Equal(t, http.StatusOK, hit(h, "192.168.1.2:1").Code)
}

func TestMemoryLimiter_Burst(t *testing.T) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 10, Window: time.Second, Burst: 5}
	h := httpx.RateLimitByIP(httpx.NewMemoryLimiter(cfg))(okHandler())

	for i := range 5 {
		require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1").Code, "burst request %d should succeed", i+1)
	}
	require.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:1").Code)
}

func TestRateLimit_EmptyKeyAllowed(t *testing.T) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
	mw := httpx.RateLimitMiddleware(httpx.NewMemoryLimiter(cfg), func(*http.Request) string { return "" })
	h := mw(okHandler())

	for range 3 {
		require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1").Code)
	}
}

func TestParseRateLimitFromEnv(t *testing.T) {
	t.Setenv("RATELIMIT_LOGIN_REQUESTS", "1000")
	t.Setenv("RATELIMIT_LOGIN_WINDOW_SEC", "30")
	t.Setenv("RATELIMIT_LOGIN_BURST", "-4")

	cfg := httpx.ParseRateLimitFromEnv("LOGIN", httpx.LoginLimit)
	require.Equal(t, 1000, cfg.RequestsPerWindow)
	require.Equal(t, 30*time.Second, cfg.Window)
	require.Equal(t, httpx.LoginLimit.Burst, cfg.Burst, "invalid values are ignored")
}

func TestRateLimitProfiles(t *testing.T) {
	for name, cfg := range map[string]httpx.RateLimitConfig{
		"login":    httpx.LoginLimit,
		"moderate": httpx.ModerateLimit,
		"lenient":  httpx.LenientLimit,
	} {
		t.Run(name, func(t *testing.T) {
			require.Positive(t, cfg.RequestsPerWindow)
			require.Positive(t, cfg.Window)
			require.Positive(t, cfg.Burst)
		})
	}
	require.Equal(t, 5, httpx.LoginLimit.RequestsPerWindow)
	require.Equal(t, time.Minute, httpx.LoginLimit.Window)
}

func BenchmarkRateLimitMiddleware(b *testing.B) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 1_000_000, Window: time.Minute, Burst: 1000}
	h := httpx.RateLimitByIP(httpx.NewMemoryLimiter(cfg))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	b.ResetTimer()
	for b.Loop() {
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
}
