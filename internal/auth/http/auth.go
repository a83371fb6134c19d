package http

import (
	"net/http"

	"github.com/aussiebroadwan/webtemplate/internal/auth/domain"
	"github.com/aussiebroadwan/webtemplate/internal/auth/service"
	"github.com/aussiebroadwan/webtemplate/pkg/authsdk"
	"github.com/aussiebroadwan/webtemplate/pkg/httpx"
	"github.com/aussiebroadwan/webtemplate/pkg/slogx"
)

// AuthHandler serves password accounts and cookie sessions.
type AuthHandler struct {
	AuthService *service.AuthService
	CSRF        *httpx.CSRF
	Cookies     CookieConfig
}

// HandleSignup handles POST /signup
//
//	@Summary		Create an account
//	@Description	Creates a password account. Does not start a session.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.SignupRequest	true	"Username, password and optional role"
//	@Success		200		{object}	authsdk.User			"Created account"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Invalid input or username taken"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/signup [post].
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.AuthService.Signup(r.Context(), service.SignupInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

// HandleLogin handles POST /login
//
//	@Summary		Log in
//	@Description	Verifies the password (and TOTP code for MFA accounts) and sets the access_token, refresh_token and csrf_token cookies.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.MessageResponse	"Login successful"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid credentials, MFA code required or invalid"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Too many requests"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, pair, err := h.AuthService.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
		MFACode:  req.MFACode,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !startSession(w, r, h.CSRF, h.Cookies, pair) {
		return
	}
	httpx.WriteMessage(w, "Login successful")
}

// HandleRefresh handles POST /refresh
//
//	@Summary		Refresh the session
//	@Description	Exchanges the refresh_token cookie for a new token pair. The old refresh token is not revoked.
//	@Tags			Auth
//	@Security		CookieAuth
//	@Produce		json
//	@Param			X-CSRF-Token	header		string					true	"CSRF token"
//	@Success		200				{object}	authsdk.MessageResponse	"Token refreshed successfully"
//	@Failure		401				{object}	authsdk.ErrorResponse	"Missing or invalid refresh token"
//	@Failure		403				{object}	authsdk.ErrorResponse	"CSRF token missing or invalid"
//	@Failure		404				{object}	authsdk.ErrorResponse	"User not found"
//	@Router			/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var token string
	if c, err := r.Cookie(refreshTokenCookie); err == nil {
		token = c.Value
	}

	pair, err := h.AuthService.Refresh(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !startSession(w, r, h.CSRF, h.Cookies, pair) {
		return
	}
	httpx.WriteMessage(w, "Token refreshed successfully")
}

// HandleLogout handles POST /logout
//
//	@Summary		Log out
//	@Description	Clears the session and CSRF cookies. Issued tokens stay valid until they expire.
//	@Tags			Auth
//	@Security		CookieAuth
//	@Produce		json
//	@Param			X-CSRF-Token	header		string					true	"CSRF token"
//	@Success		200				{object}	authsdk.MessageResponse	"Logged out successfully"
//	@Failure		401				{object}	authsdk.ErrorResponse	"Not authenticated"
//	@Failure		403				{object}	authsdk.ErrorResponse	"CSRF token missing or invalid"
//	@Router			/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookies(w, h.Cookies)
	h.CSRF.Clear(w)

	slogx.FromContext(r.Context()).Info("logged out")
	httpx.WriteMessage(w, "Logged out successfully")
}

// HandleMe handles GET /users/me
//
//	@Summary		Current user
//	@Tags			Auth
//	@Security		CookieAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.User			"Authenticated user"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Not authenticated or invalid token"
//	@Failure		404	{object}	authsdk.ErrorResponse	"User not found"
//	@Router			/users/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := sessionUser(w, r)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u.Public())
}

// HandleAdmin handles GET /admin
//
//	@Summary		Admin probe
//	@Tags			Auth
//	@Security		CookieAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.AdminResponse	"Welcome admin!"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Not authenticated"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Not enough privileges"
//	@Router			/admin [get].
func (h *AuthHandler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, authsdk.AdminResponse{Msg: "Welcome admin!"})
}

// HandleCSRFToken handles GET /csrf-token
//
//	@Summary		Issue a CSRF token
//	@Description	Sets the csrf_token cookie and returns the same value. Echo it in X-CSRF-Token on mutating requests.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.CSRFTokenResponse	"Token"
//	@Failure		500	{object}	authsdk.ErrorResponse		"Internal server error"
//	@Router			/csrf-token [get].
func (h *AuthHandler) HandleCSRFToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.CSRF.Issue(w)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.CSRFTokenResponse{CSRFToken: token})
}

// startSession sets the token cookies and rotates the CSRF cookie.
func startSession(w http.ResponseWriter, r *http.Request, csrf *httpx.CSRF, cookies CookieConfig, pair domain.TokenPair) bool {
	if _, err := csrf.Issue(w); err != nil {
		writeError(w, r, err)
		return false
	}
	setSessionCookies(w, cookies, pair)
	return true
}
