package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/webtemplate/internal/auth/http"
	"github.com/aussiebroadwan/webtemplate/internal/auth/service"
	"github.com/aussiebroadwan/webtemplate/internal/auth/store"
	"github.com/aussiebroadwan/webtemplate/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/webtemplate/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/webtemplate/pkg/cryptox"
	"github.com/aussiebroadwan/webtemplate/pkg/httpx"
	"github.com/aussiebroadwan/webtemplate/pkg/jwtx"
	"github.com/aussiebroadwan/webtemplate/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	loginLimiterPrefix = "webtemplate:ratelimit:login:"
)

// Application encapsulates the service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	redis  *redis.Client // nil unless REDIS_URL is set
	hasher *cryptox.Hasher
	codec  *jwtx.Codec
	csrf   *httpx.CSRF

	// Services
	authService   *service.AuthService
	mfaService    *service.MFAService
	googleService *service.GoogleService // nil unless GOOGLE_CLIENT_ID is set
	postService   *service.PostService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(ctx context.Context, cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "webtemplate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := app.initSecurity(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initRedis(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the router, for tests.
func (app *Application) Handler() http.Handler { return app.router }

// AuthService is used by tooling such as the sample data loader.
func (app *Application) AuthService() *service.AuthService { return app.authService }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"database", app.cfg.DatabaseDriver,
		"shared_login_limiter", app.redis != nil,
		"google", app.googleService != nil,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.Close(); err != nil {
		return err
	}

	app.logger.Info("service stopped")
	return nil
}

// Close releases the store and Redis connections without touching the
// HTTP server. Tooling that never calls Run uses it directly.
func (app *Application) Close() error {
	var errs []error
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
			errs = append(errs, err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(app.cfg.DatabaseFile)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initSecurity builds the password hasher, token codec and CSRF guard
func (app *Application) initSecurity() error {
	pepper, err := cryptox.LoadOrGeneratePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewHasher(pepper)

	app.codec, err = jwtx.NewCodec(jwtx.CodecConfig{
		Secret:     app.cfg.SecretKey,
		Issuer:     app.cfg.TokenIssuer,
		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTokenTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to create token codec: %w", err)
	}

	app.csrf, err = httpx.NewCSRF(httpx.CSRFConfig{
		Secret: []byte(app.cfg.CSRFSecret),
		Secure: app.cfg.CookieSecure,
	})
	if err != nil {
		return fmt.Errorf("failed to create csrf guard: %w", err)
	}

	if app.cfg.Env == "dev" && app.cfg.SecretKey == devSecretKey {
		app.logger.Warn("using the development SECRET_KEY; set SECRET_KEY before deploying")
	}
	return nil
}

// initRedis connects the shared login limiter when REDIS_URL is set
func (app *Application) initRedis(ctx context.Context) error {
	if app.cfg.RedisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		// The limiter fails open, so an unreachable Redis is not fatal.
		app.logger.Warn("redis not reachable at startup", "error", err)
	}

	app.redis = client
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.mfaService = &service.MFAService{
		Store:  app.db,
		Issuer: app.cfg.MFAIssuer,
	}
	app.authService = &service.AuthService{
		Store:  app.db,
		Hasher: app.hasher,
		Codec:  app.codec,
		MFA:    app.mfaService,
	}
	app.postService = &service.PostService{Store: app.db}

	if app.cfg.GoogleClientID != "" {
		app.googleService = &service.GoogleService{
			Store:    app.db,
			Auth:     app.authService,
			Verifier: jwtx.NewGoogleVerifier(app.cfg.GoogleClientID),
		}
		if app.cfg.GoogleClientSecret != "" && app.cfg.GoogleRedirectURL != "" {
			app.googleService.OAuth = service.NewGoogleOAuthConfig(
				app.cfg.GoogleClientID,
				app.cfg.GoogleClientSecret,
				app.cfg.GoogleRedirectURL,
			)
			app.logger.Info("google authorization code flow enabled")
		}
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.db,
		app.csrf,
		httpapi.CookieConfig{Secure: app.cfg.CookieSecure},
		BuildVersion,
		app.logger,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.MFAService = app.mfaService
	router.GoogleService = app.googleService // nil disables the Google routes
	router.PostService = app.postService

	if app.redis != nil {
		router.LoginLimiter = httpx.NewRedisLimiter(app.redis, loginLimiterPrefix, app.cfg.LoginLimit)
	} else {
		router.LoginLimiter = httpx.NewMemoryLimiter(app.cfg.LoginLimit)
	}
	router.MutationLimiter = httpx.NewMemoryLimiter(httpx.ParseRateLimitFromEnv("MODERATE", httpx.ModerateLimit))
	router.ReadLimiter = httpx.NewMemoryLimiter(httpx.ParseRateLimitFromEnv("LENIENT", httpx.LenientLimit))
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
