package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/webtemplate/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

type CodecConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Codec signs and verifies HS256 session tokens.
type Codec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewCodec(cfg CodecConfig) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwtx: empty signing secret")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTokenTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Codec{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        cfg.Now,
	}, nil
}

// TTL returns the configured lifetime for kind.
func (c *Codec) TTL(kind Kind) time.Duration {
	if kind == Refresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

// Issue mints a token for subject with the lifetime configured for kind.
func (c *Codec) Issue(subject string, kind Kind) (string, error) {
	return c.IssueTTL(subject, c.TTL(kind))
}

// IssueTTL mints a token for subject that expires after ttl.
func (c *Codec) IssueTTL(subject string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.NewAt(now).String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Decode verifies signature, issuer and expiry in one step. Any failure yields
// an error wrapping ErrInvalidToken and zero Claims.
func (c *Codec) Decode(token string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var claims Claims
	parsed, err := jwt.NewParser(opts...).ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
