package jwtx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const GoogleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

var googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

const (
	keyRefreshInterval = time.Hour
	minRefetchInterval = time.Minute
)

// GoogleVerifier checks Google-issued ID tokens: RS256 signature against the
// published certificates, audience equal to the configured client id, a Google
// issuer, and expiry.
type GoogleVerifier struct {
	ClientID   string
	CertsURL   string
	Issuers    []string
	HTTPClient *http.Client
	Now        func() time.Time

	keys      *KeySet
	mu        sync.Mutex
	fetchedAt time.Time
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		ClientID:   clientID,
		CertsURL:   GoogleCertsURL,
		Issuers:    googleIssuers,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
		Now:        time.Now,
		keys:       NewKeySet(),
	}
}

// Verify validates raw and returns its claims. Rejections wrap ErrInvalidToken;
// a certificate download failure wraps ErrFetchKeys instead.
func (v *GoogleVerifier) Verify(ctx context.Context, raw string) (GoogleClaims, error) {
	if v.ClientID == "" {
		return GoogleClaims{}, errors.New("jwtx: google client id not configured")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.ClientID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)

	var claims GoogleClaims
	_, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: missing kid", ErrUnknownKID)
		}
		return v.key(ctx, kid)
	})
	if err != nil {
		if errors.Is(err, ErrFetchKeys) {
			return GoogleClaims{}, err
		}
		return GoogleClaims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !slices.Contains(v.Issuers, claims.Issuer) {
		return GoogleClaims{}, fmt.Errorf("%w: %w", ErrInvalidToken, ErrIssuer)
	}
	if claims.Email == "" {
		return GoogleClaims{}, fmt.Errorf("%w: %w: missing email", ErrInvalidToken, ErrInvalidClaim)
	}
	return claims, nil
}

// key resolves kid, refreshing the cached certificates when they are stale or
// when an unknown kid shows up (Google rotates keys).
func (v *GoogleVerifier) key(ctx context.Context, kid string) (any, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	if v.fetchedAt.IsZero() || now.Sub(v.fetchedAt) > keyRefreshInterval {
		if err := v.refresh(ctx, now); err != nil {
			return nil, err
		}
	}

	pub, err := v.keys.Get(kid)
	if errors.Is(err, ErrNoKey) && now.Sub(v.fetchedAt) > minRefetchInterval {
		if err := v.refresh(ctx, now); err != nil {
			return nil, err
		}
		pub, err = v.keys.Get(kid)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKID, kid)
	}
	return pub, nil
}

func (v *GoogleVerifier) refresh(ctx context.Context, now time.Time) error {
	set, err := FetchJWKS(ctx, v.HTTPClient, v.CertsURL)
	if err != nil {
		return err
	}
	if err := v.keys.ResetFromJWKS(set); err != nil {
		return fmt.Errorf("%w: %w", ErrFetchKeys, err)
	}
	v.fetchedAt = now
	return nil
}

// Ready reports whether certificates have been loaded at least once.
func (v *GoogleVerifier) Ready() bool {
	return v.keys.IsReady()
}

func (v *GoogleVerifier) now() time.Time {
	if v.Now == nil {
		return time.Now()
	}
	return v.Now()
}
