package httpx_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/webtemplate/pkg/httpx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	mr, rdb := newRedis(t)
	l := httpx.NewRedisLimiter(rdb, "rl:login:", httpx.LoginLimit)

	for i := range 5 {
		d, err := l.Allow(t.Context(), "1.2.3.4")
		require.NoError(t, err)
		require.True(t, d.Allowed, "attempt %d", i+1)
	}

	d, err := l.Allow(t.Context(), "1.2.3.4")
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Greater(t, d.RetryAfter, time.Duration(0))
	require.LessOrEqual(t, d.RetryAfter, time.Minute)

	// A different caller has its own window.
	d, err = l.Allow(t.Context(), "5.6.7.8")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	// Window rolls over.
	mr.FastForward(61 * time.Second)
	d, err = l.Allow(t.Context(), "1.2.3.4")
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestRedisLimiter_SharedAcrossInstances(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute}
	a := httpx.RateLimitByIP(httpx.NewRedisLimiter(rdb, "rl:", cfg))(okHandler())
	b := httpx.RateLimitByIP(httpx.NewRedisLimiter(rdb, "rl:", cfg))(okHandler())

	require.Equal(t, http.StatusOK, hit(a, "9.9.9.9:1").Code)
	require.Equal(t, http.StatusOK, hit(b, "9.9.9.9:1").Code)
	require.Equal(t, http.StatusTooManyRequests, hit(a, "9.9.9.9:1").Code)
	require.Equal(t, http.StatusTooManyRequests, hit(b, "9.9.9.9:1").Code)
}

func TestRedisLimiter_Unavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	l := httpx.NewRedisLimiter(rdb, "rl:", httpx.LoginLimit)
	mr.Close()

	_, err = l.Allow(t.Context(), "1.2.3.4")
	require.ErrorIs(t, err, httpx.ErrLimiterUnavailable)
	require.Error(t, l.Ping(t.Context()))

	// The middleware fails open so an outage does not lock everyone out.
	h := httpx.RateLimitByIP(l)(okHandler())
	require.Equal(t, http.StatusOK, hit(h, "1.2.3.4:1").Code)
}
