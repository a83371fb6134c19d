package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		length int
	}{
		{"128-bit token", TokenSize128, 22},
		{"256-bit token", TokenSize256, 43},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.Len(t, token, tt.length)

			token2, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, token, token2, "tokens should be unique")
		})
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
	require.Panics(t, func() { MustGenerateToken(0) })
}

func TestSignedToken(t *testing.T) {
	secret := []byte("csrf-secret")
	signed := SignToken(secret, "nonce123")

	require.True(t, VerifySignedToken(secret, signed))

	t.Run("other secret", func(t *testing.T) {
		require.False(t, VerifySignedToken([]byte("other"), signed))
	})

	t.Run("tampered value", func(t *testing.T) {
		require.False(t, VerifySignedToken(secret, "nonce124"+signed[len("nonce123"):]))
	})

	t.Run("malformed", func(t *testing.T) {
		for _, s := range []string{"", "nodot", ".mac", "value."} {
			require.False(t, VerifySignedToken(secret, s), s)
		}
	})
}
