package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies service failures for the transport layer.
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unexpected"
	}
}

var (
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMFACodeRequired    = errors.New("mfa code required")
	ErrInvalidMFACode     = errors.New("invalid mfa code")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
	ErrInvalidGoogleToken = errors.New("invalid google id token")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("not enough privileges")

	ErrMFAAlreadyEnabled    = errors.New("mfa already enabled")
	ErrMFASetupNotInitiated = errors.New("mfa setup not initiated")
	ErrInvalidTOTPCode      = errors.New("invalid totp code")
	ErrMFANotEnabled        = errors.New("mfa not enabled")

	ErrPostNotFound        = errors.New("post not found")
	ErrPostCreateForbidden = errors.New("not authorized to create post for this user")
	ErrPostDeleteForbidden = errors.New("not authorized to delete this post")
)

// catalog maps each sentinel to its kind and the message shown to clients.
var catalog = []struct {
	err    error
	kind   ErrorKind
	detail string
}{
	{ErrUsernameTaken, KindConflict, "Username already registered"},
	{ErrInvalidCredentials, KindAuthentication, "Invalid credentials"},
	{ErrMFACodeRequired, KindAuthentication, "MFA code required"},
	{ErrInvalidMFACode, KindAuthentication, "Invalid MFA code"},
	{ErrNotAuthenticated, KindAuthentication, "Not authenticated"},
	{ErrInvalidToken, KindAuthentication, "Invalid token"},
	{ErrInvalidRefresh, KindAuthentication, "Invalid refresh token"},
	{ErrInvalidGoogleToken, KindAuthentication, "Invalid Google ID token"},
	{ErrUserNotFound, KindNotFound, "User not found"},
	{ErrForbidden, KindAuthorization, "Not enough privileges"},
	{ErrMFAAlreadyEnabled, KindConflict, "MFA is already enabled for this user"},
	{ErrMFASetupNotInitiated, KindValidation, "MFA setup not initiated"},
	{ErrInvalidTOTPCode, KindValidation, "Invalid TOTP code"},
	{ErrMFANotEnabled, KindValidation, "MFA is not enabled for this user"},
	{ErrPostNotFound, KindNotFound, "Post not found"},
	{ErrPostCreateForbidden, KindAuthorization, "Not authorized to create post for this user"},
	{ErrPostDeleteForbidden, KindAuthorization, "Not authorized to delete this post"},
}

// ValidationError reports malformed input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Kind returns the class of err. Errors the service does not recognise are
// KindUnexpected.
func Kind(err error) ErrorKind {
	kind, _ := Describe(err)
	return kind
}

// Describe returns the kind of err and the message safe to show a client.
// Unexpected errors get an empty message; callers must not leak err.Error().
func Describe(err error) (ErrorKind, string) {
	if err == nil {
		return KindUnexpected, ""
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return KindValidation, verr.Error()
	}
	for _, c := range catalog {
		if errors.Is(err, c.err) {
			return c.kind, c.detail
		}
	}
	return KindUnexpected, ""
}
