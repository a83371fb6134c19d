package jwtx_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/webtemplate/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type googleFixture struct {
	key     *rsa.PrivateKey
	kid     string
	server  *httptest.Server
	fetches atomic.Int32
	fail    atomic.Bool
}

func newGoogleFixture(t *testing.T) *googleFixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	f := &googleFixture{key: key, kid: "kid-1"}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.fetches.Add(1)
		if f.fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(jwtx.JWKS{Keys: []jwtx.JWK{jwtx.NewRSAJWK(f.kid, &key.PublicKey)}})
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *googleFixture) verifier(now time.Time) *jwtx.GoogleVerifier {
	v := jwtx.NewGoogleVerifier("client-123.apps.googleusercontent.com")
	v.CertsURL = f.server.URL
	v.HTTPClient = f.server.Client()
	v.Now = func() time.Time { return now }
	return v
}

func (f *googleFixture) sign(t *testing.T, kid string, claims jwtx.GoogleClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	s, err := tok.SignedString(f.key)
	require.NoError(t, err)
	return s
}

func googleClaims(now time.Time) jwtx.GoogleClaims {
	return jwtx.GoogleClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://accounts.google.com",
			Subject:   "1234567890",
			Audience:  jwt.ClaimStrings{"client-123.apps.googleusercontent.com"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Email:         "alice@example.com",
		EmailVerified: true,
	}
}

func TestGoogleVerifier(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	f := newGoogleFixture(t)

	t.Run("valid token", func(t *testing.T) {
		v := f.verifier(now)
		claims, err := v.Verify(t.Context(), f.sign(t, f.kid, googleClaims(now)))
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", claims.Email)
		require.True(t, v.Ready())
	})

	t.Run("bare issuer accepted", func(t *testing.T) {
		c := googleClaims(now)
		c.Issuer = "accounts.google.com"
		_, err := f.verifier(now).Verify(t.Context(), f.sign(t, f.kid, c))
		require.NoError(t, err)
	})

	rejects := map[string]func(c *jwtx.GoogleClaims){
		"wrong audience": func(c *jwtx.GoogleClaims) { c.Audience = jwt.ClaimStrings{"someone-else"} },
		"wrong issuer":   func(c *jwtx.GoogleClaims) { c.Issuer = "https://evil.example" },
		"expired":        func(c *jwtx.GoogleClaims) { c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute)) },
		"missing email":  func(c *jwtx.GoogleClaims) { c.Email = "" },
	}
	for name, mutate := range rejects {
		t.Run(name, func(t *testing.T) {
			c := googleClaims(now)
			mutate(&c)
			_, err := f.verifier(now).Verify(t.Context(), f.sign(t, f.kid, c))
			require.ErrorIs(t, err, jwtx.ErrInvalidToken)
		})
	}

	t.Run("unknown kid", func(t *testing.T) {
		_, err := f.verifier(now).Verify(t.Context(), f.sign(t, "kid-unknown", googleClaims(now)))
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})

	t.Run("foreign signing key", func(t *testing.T) {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, googleClaims(now))
		tok.Header["kid"] = f.kid
		s, err := tok.SignedString(other)
		require.NoError(t, err)

		_, err = f.verifier(now).Verify(t.Context(), s)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := f.verifier(now).Verify(t.Context(), "garbage")
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})
}

func TestGoogleVerifier_CachesKeys(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	f := newGoogleFixture(t)
	v := f.verifier(now)

	for range 3 {
		_, err := v.Verify(t.Context(), f.sign(t, f.kid, googleClaims(now)))
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), f.fetches.Load())
}

func TestGoogleVerifier_FetchFailure(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	f := newGoogleFixture(t)
	f.fail.Store(true)

	_, err := f.verifier(now).Verify(t.Context(), f.sign(t, f.kid, googleClaims(now)))
	require.ErrorIs(t, err, jwtx.ErrFetchKeys)
	require.NotErrorIs(t, err, jwtx.ErrInvalidToken)
}
