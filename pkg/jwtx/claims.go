package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultAccessTokenTTL  = 30 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Kind selects the lifetime of a session token. It is not written into the
// token: access and refresh tokens differ only by expiry and by the cookie
// that carries them.
type Kind int

const (
	Access Kind = iota
	Refresh
)

func (k Kind) String() string {
	if k == Refresh {
		return "refresh"
	}
	return "access"
}

// Claims is the payload of a session token.
type Claims struct {
	jwt.RegisteredClaims
}

// Expiry returns the exp claim, or the zero time when absent.
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// GoogleClaims is the subset of a Google ID token we rely on.
type GoogleClaims struct {
	jwt.RegisteredClaims

	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name,omitempty"`
}
