package authsdk

// ============================================================================
// Account Types
// ============================================================================

// SignupRequest creates a password account.
type SignupRequest struct {
	// Username is 3-50 characters
	Username string `json:"username"`

	// Password is at least 8 characters
	Password string `json:"password"`

	// Role is "user" (default) or "admin"
	Role string `json:"role,omitempty"`
}

// LoginRequest authenticates with a password and, when MFA is enabled, a TOTP code.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`

	// MFACode is the 6-digit TOTP code. Ignored for accounts without MFA.
	MFACode string `json:"mfa_code,omitempty"`
}

// User is the public view of an account, returned by signup and /users/me.
type User struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	MFAEnabled bool   `json:"mfa_enabled"`
}

// GoogleLoginRequest exchanges a Google ID token for a session.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token_str"`
}

// ============================================================================
// Generic Responses
// ============================================================================

// MessageResponse acknowledges a state change.
type MessageResponse struct {
	Message string `json:"message"`
}

// AdminResponse is returned by the admin probe endpoint.
type AdminResponse struct {
	Msg string `json:"msg"`
}

// CSRFTokenResponse carries the token also set in the csrf_token cookie.
type CSRFTokenResponse struct {
	CSRFToken string `json:"csrf_token"`
}

// ErrorResponse is the union of the server's error bodies. Expected rejections
// carry Detail (and Code for CSRF failures); unexpected faults carry Error.
type ErrorResponse struct {
	Detail string `json:"detail,omitempty"`
	Code   string `json:"code,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ============================================================================
// MFA Types
// ============================================================================

// MFASetupResponse carries a fresh TOTP secret and its provisioning QR code.
type MFASetupResponse struct {
	// Secret is the base32 TOTP secret
	Secret string `json:"secret"`

	// QRCode is a data:image/png;base64 URI of the otpauth:// URL
	QRCode string `json:"qr_code"`
}

// MFACodeRequest submits a 6-digit TOTP code.
type MFACodeRequest struct {
	Code string `json:"code"`
}

// ============================================================================
// Post Types
// ============================================================================

// PostRequest creates a post.
type PostRequest struct {
	// Title is 1-100 characters
	Title string `json:"title"`

	// Content is 1-1000 characters
	Content string `json:"content"`
}

// Post is a stored post.
type Post struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	OwnerID int64  `json:"owner_id"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status ("ok" or "degraded")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the store connection status
	Database string `json:"database"`

	// RateLimiter indicates the shared limiter status. Omitted when the
	// limiter is in-process.
	RateLimiter string `json:"rate_limiter,omitempty"`
}
