package domain

import "time"

// TokenPair is a freshly minted access and refresh token. Both are delivered
// as HTTP-only cookies and never in a response body.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
