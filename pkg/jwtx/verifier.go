package jwtx

import "errors"

var (
	// ErrInvalidToken covers every reason a token is rejected: bad signature,
	// malformed structure, wrong algorithm, or expiry.
	ErrInvalidToken = errors.New("jwtx: invalid token")

	ErrUnknownKID   = errors.New("jwtx: unknown kid")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")

	// ErrFetchKeys reports that the remote key set could not be retrieved.
	// It is an infrastructure failure, not a verdict on the token.
	ErrFetchKeys = errors.New("jwtx: fetch keys")
)
