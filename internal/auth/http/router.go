package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/webtemplate/internal/auth/service"
	"github.com/aussiebroadwan/webtemplate/internal/auth/store"
	"github.com/aussiebroadwan/webtemplate/pkg/httpx"
	"github.com/aussiebroadwan/webtemplate/pkg/slogx"

	_ "github.com/aussiebroadwan/webtemplate/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store   store.Store
	csrf    *httpx.CSRF
	cookies CookieConfig

	AuthService   *service.AuthService
	MFAService    *service.MFAService
	GoogleService *service.GoogleService // Optional: nil disables the Google routes
	PostService   *service.PostService

	// LoginLimiter guards POST /login. It may be shared between instances
	// (see httpx.RedisLimiter); the others are always in-process.
	LoginLimiter    httpx.Limiter
	MutationLimiter httpx.Limiter
	ReadLimiter     httpx.Limiter
}

func NewRouter(
	st store.Store,
	csrf *httpx.CSRF,
	cookies CookieConfig,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		csrf:         csrf,
		cookies:      cookies,

		LoginLimiter:    httpx.NewMemoryLimiter(httpx.LoginLimit),
		MutationLimiter: httpx.NewMemoryLimiter(httpx.ModerateLimit),
		ReadLimiter:     httpx.NewMemoryLimiter(httpx.LenientLimit),
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerGoogle()
	r.registerMFA()
	r.registerPosts()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Web Template API
//	@version		0.1.0
//	@description	Cookie-session authentication (password, TOTP MFA, Google sign-in) and an ownership-gated posts resource.
//	@description
//	@description				Mutating requests must echo the csrf_token cookie in the X-CSRF-Token header.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/webtemplate
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	CookieAuth
//	@in							cookie
//	@name						access_token
//	@description				HS256 access token set by /login.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService: r.AuthService,
		CSRF:        r.csrf,
		Cookies:     r.cookies,
	}

	// Public account creation. No session exists yet, so no CSRF token either.
	r.Mux.Handle("POST /signup",
		httpx.Chain(http.HandlerFunc(h.HandleSignup),
			httpx.RateLimitByIP(r.MutationLimiter),
		),
	)

	// POST /login - checked against the login limiter before any password work
	r.Mux.Handle("POST /login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(r.LoginLimiter),
		),
	)

	r.Mux.Handle("POST /refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			r.csrf.Protect(),
			httpx.RateLimitByIP(r.MutationLimiter),
		),
	)

	r.Mux.Handle("POST /logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			r.csrf.Protect(),
			r.requireUser(),
		),
	)

	r.Mux.Handle("GET /users/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			r.requireUser(),
			httpx.RateLimitBySubject(r.ReadLimiter),
		),
	)

	r.Mux.Handle("GET /admin",
		httpx.Chain(http.HandlerFunc(h.HandleAdmin),
			r.requireUser(),
			requireAdmin(),
		),
	)

	r.Mux.Handle("GET /csrf-token",
		httpx.Chain(http.HandlerFunc(h.HandleCSRFToken),
			httpx.RateLimitByIP(r.ReadLimiter),
		),
	)
}

func (r *Router) registerGoogle() {
	if r.GoogleService == nil {
		return
	}
	h := &GoogleHandler{
		GoogleService: r.GoogleService,
		CSRF:          r.csrf,
		Cookies:       r.cookies,
	}

	r.Mux.Handle("POST /auth/google",
		httpx.Chain(http.HandlerFunc(h.HandleTokenLogin),
			r.csrf.Protect(),
			httpx.RateLimitByIP(r.LoginLimiter),
		),
	)

	if !r.GoogleService.CodeFlowEnabled() {
		return
	}

	// Authorization code flow. The callback is protected by the oauth_state
	// cookie rather than the CSRF token, since Google makes the request.
	r.Mux.Handle("GET /auth/google/login",
		httpx.Chain(http.HandlerFunc(h.HandleCodeLogin),
			httpx.RateLimitByIP(r.MutationLimiter),
		),
	)
	r.Mux.Handle("GET /auth/google/callback",
		httpx.Chain(http.HandlerFunc(h.HandleCallback),
			httpx.RateLimitByIP(r.LoginLimiter),
		),
	)
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			r.csrf.Protect(),
			r.requireUser(),
			httpx.RateLimitBySubject(r.MutationLimiter),
		)
	}

	r.Mux.Handle("POST /mfa/setup", secured(h.HandleSetup))
	r.Mux.Handle("POST /mfa/verify-and-enable", secured(h.HandleVerifyAndEnable))
	r.Mux.Handle("POST /mfa/disable", secured(h.HandleDisable))
}

func (r *Router) registerPosts() {
	h := &PostHandler{PostService: r.PostService}

	public := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, httpx.RateLimitByIP(r.ReadLimiter))
	}
	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			r.csrf.Protect(),
			r.requireUser(),
			httpx.RateLimitBySubject(r.MutationLimiter),
		)
	}

	r.Mux.Handle("GET /posts/{$}", public(h.HandleList))
	r.Mux.Handle("GET /posts/{id}", public(h.HandleGet))
	r.Mux.Handle("GET /users/{user_id}/posts/{$}", public(h.HandleListByOwner))
	r.Mux.Handle("POST /users/{user_id}/posts/{$}", secured(h.HandleCreate))
	r.Mux.Handle("DELETE /posts/{id}", secured(h.HandleDelete))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.ReadLimiter),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.LoginLimiter),
			httpx.RateLimitByIP(r.ReadLimiter),
		),
	)
}
