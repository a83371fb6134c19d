package cryptox

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// Token sizes in bytes before encoding.
const (
	TokenSize128 = 16 // 22 chars base64url
	TokenSize256 = 32 // 43 chars base64url
)

// GenerateToken returns size random bytes encoded as unpadded base64url.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// MustGenerateToken is like GenerateToken but panics on error.
func MustGenerateToken(size int) string {
	token, err := GenerateToken(size)
	if err != nil {
		panic(fmt.Sprintf("cryptox: failed to generate token: %v", err))
	}
	return token
}

// SignToken returns "value.mac" where mac is HMAC-SHA256(secret, value).
func SignToken(secret []byte, value string) string {
	return value + "." + tokenMAC(secret, value)
}

// VerifySignedToken reports whether signed was produced by SignToken with the
// same secret.
func VerifySignedToken(secret []byte, signed string) bool {
	value, mac, ok := strings.Cut(signed, ".")
	if !ok || value == "" || mac == "" {
		return false
	}
	return hmac.Equal([]byte(mac), []byte(tokenMAC(secret, value)))
}

func tokenMAC(secret []byte, value string) string {
	m := hmac.New(sha256.New, secret)
	m.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(m.Sum(nil))
}
