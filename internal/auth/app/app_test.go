package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("DATABASE_FILE", filepath.Join(dir, "app.db"))
	t.Setenv("PEPPER_FILE", filepath.Join(dir, "pepper"))
	t.Setenv("LOG_LEVEL", "error")
	return LoadConfig()
}

func TestNewServesHealth(t *testing.T) {
	application, err := New(t.Context(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Nil(t, application.googleService, "google routes stay off without a client id")
}

func TestNewWithRedisLoginLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.RedisURL = "redis://" + mr.Addr()

	application, err := New(t.Context(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })
	require.NotNil(t, application.redis)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	for range 5 {
		resp, err := http.Post(srv.URL+"/login", "application/json",
			strings.NewReader(`{"username":"nobody","password":"wrong-password"}`))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp, err := http.Post(srv.URL+"/login", "application/json",
		strings.NewReader(`{"username":"nobody","password":"wrong-password"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	keys := mr.Keys()
	require.NotEmpty(t, keys)
	require.True(t, strings.HasPrefix(keys[0], loginLimiterPrefix))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseDriver = "mysql"

	_, err := New(t.Context(), cfg)
	require.ErrorContains(t, err, "invalid configuration")
}
