package httpx

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/webtemplate/pkg/slogx"
)

// TokenResolver turns a raw cookie value into a subject. It may also return a
// derived context carrying anything else downstream handlers need.
type TokenResolver func(ctx context.Context, token string) (context.Context, string, error)

// CookieAuthn authenticates requests from a session cookie. A missing cookie
// is passed to onError as http.ErrNoCookie; resolver failures are passed
// through unchanged.
func CookieAuthn(
	cookieName string,
	resolve TokenResolver,
	onError func(w http.ResponseWriter, r *http.Request, err error),
) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(cookieName)
			if err != nil || c.Value == "" {
				onError(w, r, http.ErrNoCookie)
				return
			}

			ctx, subject, err := resolve(r.Context(), c.Value)
			if err != nil {
				onError(w, r, err)
				return
			}

			ctx = WithSubject(ctx, subject)
			ctx = slogx.WithUser(ctx, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
