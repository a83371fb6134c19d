package http

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/aussiebroadwan/webtemplate/internal/auth/service"
	"github.com/aussiebroadwan/webtemplate/pkg/authsdk"
	"github.com/aussiebroadwan/webtemplate/pkg/cryptox"
	"github.com/aussiebroadwan/webtemplate/pkg/httpx"
	"github.com/aussiebroadwan/webtemplate/pkg/slogx"
)

const oauthStateTTL = 10 * time.Minute

// GoogleHandler signs users in with a Google identity.
type GoogleHandler struct {
	GoogleService *service.GoogleService
	CSRF          *httpx.CSRF
	Cookies       CookieConfig
}

// HandleTokenLogin handles POST /auth/google
//
//	@Summary		Sign in with a Google ID token
//	@Description	Verifies an ID token obtained by the client (e.g. Google Identity Services), creating the account on first use, and starts a session.
//	@Tags			Google
//	@Accept			json
//	@Produce		json
//	@Param			X-CSRF-Token	header		string						true	"CSRF token"
//	@Param			request			body		authsdk.GoogleLoginRequest	true	"Google ID token"
//	@Success		200				{object}	authsdk.MessageResponse		"Google login successful"
//	@Failure		401				{object}	authsdk.ErrorResponse		"Invalid Google ID token"
//	@Failure		403				{object}	authsdk.ErrorResponse		"CSRF token missing or invalid"
//	@Failure		500				{object}	authsdk.ErrorResponse		"Internal server error"
//	@Router			/auth/google [post].
func (h *GoogleHandler) HandleTokenLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.GoogleLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, pair, err := h.GoogleService.Exchange(r.Context(), req.IDToken)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !startSession(w, r, h.CSRF, h.Cookies, pair) {
		return
	}
	httpx.WriteMessage(w, "Google login successful")
}

// HandleCodeLogin handles GET /auth/google/login
//
//	@Summary		Start Google sign-in
//	@Description	Redirects to Google's consent screen. Only registered when a client secret and redirect URL are configured.
//	@Tags			Google
//	@Success		302
//	@Router			/auth/google/login [get].
func (h *GoogleHandler) HandleCodeLogin(w http.ResponseWriter, r *http.Request) {
	state, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   int(oauthStateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.Cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	httpx.NoCache(w)
	http.Redirect(w, r, h.GoogleService.AuthCodeURL(state), http.StatusFound)
}

// HandleCallback handles GET /auth/google/callback
//
//	@Summary		Finish Google sign-in
//	@Description	Checks the state parameter against the oauth_state cookie, redeems the code and starts a session.
//	@Tags			Google
//	@Produce		json
//	@Param			state	query		string					true	"Opaque state from /auth/google/login"
//	@Param			code	query		string					true	"Authorization code"
//	@Success		200		{object}	authsdk.MessageResponse	"Google login successful"
//	@Failure		400		{object}	authsdk.ErrorResponse	"State mismatch or missing code"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid Google ID token"
//	@Router			/auth/google/callback [get].
func (h *GoogleHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	// The state cookie is single use.
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		log.Info("google consent declined", "error", e)
		writeError(w, r, service.ErrInvalidGoogleToken)
		return
	}

	c, err := r.Cookie(oauthStateCookie)
	state := q.Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(c.Value), []byte(state)) != 1 {
		log.Warn("google callback state mismatch")
		httpx.WriteDetail(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}

	code := q.Get("code")
	if code == "" {
		httpx.WriteDetail(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	_, pair, err := h.GoogleService.ExchangeCode(r.Context(), code)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !startSession(w, r, h.CSRF, h.Cookies, pair) {
		return
	}
	httpx.WriteMessage(w, "Google login successful")
}
