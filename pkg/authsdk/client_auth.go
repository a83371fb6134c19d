package authsdk

import (
	"context"
	"net/http"
)

// Signup creates a password account. It does not log in.
func (c *SDKClient) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/signup", req, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login authenticates and stores the session and CSRF cookies in the jar.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*MessageResponse, error) {
	var msg MessageResponse
	if err := c.do(ctx, http.MethodPost, "/login", req, &msg, http.StatusOK); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Refresh rotates the session cookies using the refresh token cookie.
func (c *SDKClient) Refresh(ctx context.Context) (*MessageResponse, error) {
	var msg MessageResponse
	if err := c.do(ctx, http.MethodPost, "/refresh", nil, &msg, http.StatusOK); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Logout clears the session cookies.
func (c *SDKClient) Logout(ctx context.Context) (*MessageResponse, error) {
	var msg MessageResponse
	if err := c.do(ctx, http.MethodPost, "/logout", nil, &msg, http.StatusOK); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Me returns the authenticated user.
func (c *SDKClient) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

// Admin calls the admin-only probe endpoint.
func (c *SDKClient) Admin(ctx context.Context) (*AdminResponse, error) {
	var resp AdminResponse
	if err := c.do(ctx, http.MethodGet, "/admin", nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CSRFToken fetches a fresh CSRF token. The jar keeps the matching cookie,
// which later mutating calls echo automatically.
func (c *SDKClient) CSRFToken(ctx context.Context) (string, error) {
	var resp CSRFTokenResponse
	if err := c.do(ctx, http.MethodGet, "/csrf-token", nil, &resp, http.StatusOK); err != nil {
		return "", err
	}
	return resp.CSRFToken, nil
}

// GoogleLogin exchanges a Google ID token for a session. The endpoint is
// CSRF protected, so a token is fetched first when the jar has none.
func (c *SDKClient) GoogleLogin(ctx context.Context, idToken string) (*MessageResponse, error) {
	if c.Cookie(CSRFTokenCookie) == "" {
		if _, err := c.CSRFToken(ctx); err != nil {
			return nil, err
		}
	}

	var msg MessageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/google", GoogleLoginRequest{IDToken: idToken}, &msg, http.StatusOK); err != nil {
		return nil, err
	}
	return &msg, nil
}
