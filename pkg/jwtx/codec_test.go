package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/webtemplate/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newCodec(t *testing.T, c *clock) *jwtx.Codec {
	t.Helper()
	codec, err := jwtx.NewCodec(jwtx.CodecConfig{
		Secret:     "test-secret",
		Issuer:     "webtemplate",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		Now:        c.Now,
	})
	require.NoError(t, err)
	return codec
}

func TestNewCodec(t *testing.T) {
	_, err := jwtx.NewCodec(jwtx.CodecConfig{})
	require.Error(t, err)

	codec, err := jwtx.NewCodec(jwtx.CodecConfig{Secret: "s"})
	require.NoError(t, err)
	require.Equal(t, jwtx.DefaultAccessTokenTTL, codec.TTL(jwtx.Access))
	require.Equal(t, jwtx.DefaultRefreshTokenTTL, codec.TTL(jwtx.Refresh))
}

func TestCodec_RoundTrip(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	codec := newCodec(t, c)

	token, err := codec.Issue("alice", jwtx.Access)
	require.NoError(t, err)

	claims, err := codec.Decode(token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, c.t.Add(30*time.Minute), claims.Expiry())
	require.NotEmpty(t, claims.ID)
}

func TestCodec_Expiry(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	codec := newCodec(t, c)

	token, err := codec.IssueTTL("alice", time.Minute)
	require.NoError(t, err)

	c.t = c.t.Add(59 * time.Second)
	_, err = codec.Decode(token)
	require.NoError(t, err, "valid before ttl elapses")

	c.t = c.t.Add(2 * time.Second)
	claims, err := codec.Decode(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken, "invalid after ttl")
	require.Empty(t, claims.Subject)
}

func TestCodec_RefreshOutlivesAccess(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	codec := newCodec(t, c)

	access, err := codec.Issue("alice", jwtx.Access)
	require.NoError(t, err)
	refresh, err := codec.Issue("alice", jwtx.Refresh)
	require.NoError(t, err)
	require.NotEqual(t, access, refresh)

	c.t = c.t.Add(time.Hour)
	_, err = codec.Decode(access)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	_, err = codec.Decode(refresh)
	require.NoError(t, err)
}

func TestCodec_DistinctTokensSameInstant(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	codec := newCodec(t, c)

	a, err := codec.Issue("alice", jwtx.Access)
	require.NoError(t, err)
	b, err := codec.Issue("alice", jwtx.Access)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestCodec_SingleByteTamper(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	codec := newCodec(t, c)

	token, err := codec.Issue("alice", jwtx.Access)
	require.NoError(t, err)

	// The final character is skipped: its low bits are base64 padding and
	// flipping them may decode to the same signature bytes.
	for i := 0; i < len(token)-1; i++ {
		if token[i] == '.' {
			continue
		}
		replacement := byte('A')
		if token[i] == 'A' {
			replacement = 'B'
		}
		tampered := token[:i] + string(replacement) + token[i+1:]

		_, err := codec.Decode(tampered)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken, "position %d", i)
	}
}

func TestCodec_Rejects(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	codec := newCodec(t, c)

	other, err := jwtx.NewCodec(jwtx.CodecConfig{Secret: "other-secret", Issuer: "webtemplate", Now: c.Now})
	require.NoError(t, err)
	foreign, err := other.Issue("alice", jwtx.Access)
	require.NoError(t, err)

	wrongIssuer, err := jwtx.NewCodec(jwtx.CodecConfig{Secret: "test-secret", Issuer: "elsewhere", Now: c.Now})
	require.NoError(t, err)
	elsewhere, err := wrongIssuer.Issue("alice", jwtx.Access)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice",
		Issuer:    "webtemplate",
		ExpiresAt: jwt.NewNumericDate(c.t.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "alice",
		Issuer:  "webtemplate",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"empty":          "",
		"garbage":        "not.a.token",
		"two segments":   "abc.def",
		"other secret":   foreign,
		"wrong issuer":   elsewhere,
		"alg none":       unsigned,
		"missing expiry": noExpiry,
		"whitespace":     " " + strings.Repeat("x", 10),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Decode(token)
			require.ErrorIs(t, err, jwtx.ErrInvalidToken)
		})
	}
}
