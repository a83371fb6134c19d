package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/webtemplate/internal/auth/domain"
	"github.com/aussiebroadwan/webtemplate/internal/auth/service"
	"github.com/aussiebroadwan/webtemplate/pkg/httpx"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
	oauthStateCookie   = "oauth_state"
)

// CookieConfig controls the attributes of the session cookies.
type CookieConfig struct {
	Secure bool
}

type ctxKey struct{}

func withUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// userFromContext returns the user loaded by requireUser.
func userFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(domain.User)
	return u, ok
}

// requireUser resolves the access_token cookie to a user and rejects the
// request with 401 when it is missing or invalid.
func (r *Router) requireUser() httpx.Middleware {
	resolve := func(ctx context.Context, token string) (context.Context, string, error) {
		u, err := r.AuthService.CurrentUser(ctx, token)
		if err != nil {
			return ctx, "", err
		}
		return withUser(ctx, u), u.Username, nil
	}

	onError := func(w http.ResponseWriter, req *http.Request, err error) {
		if errors.Is(err, http.ErrNoCookie) {
			err = service.ErrNotAuthenticated
		}
		writeError(w, req, err)
	}

	return httpx.CookieAuthn(accessTokenCookie, resolve, onError)
}

// requireAdmin must run after requireUser.
func requireAdmin() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			u, ok := userFromContext(req.Context())
			if !ok {
				writeError(w, req, service.ErrNotAuthenticated)
				return
			}
			if err := service.RequireAdmin(u); err != nil {
				writeError(w, req, err)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

// setSessionCookies delivers a token pair. Each cookie lives as long as its token.
func setSessionCookies(w http.ResponseWriter, cfg CookieConfig, pair domain.TokenPair) {
	now := time.Now()
	http.SetCookie(w, sessionCookie(cfg, accessTokenCookie, pair.AccessToken, pair.AccessExpiresAt.Sub(now)))
	http.SetCookie(w, sessionCookie(cfg, refreshTokenCookie, pair.RefreshToken, pair.RefreshExpiresAt.Sub(now)))
}

func clearSessionCookies(w http.ResponseWriter, cfg CookieConfig) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		c := sessionCookie(cfg, name, "", 0)
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func sessionCookie(cfg CookieConfig, name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Round(time.Second).Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
