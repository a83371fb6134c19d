package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/webtemplate/pkg/httpx"
)

// Development-only fallbacks. Validate refuses them outside dev.
const (
	devSecretKey  = "change_this_secret"
	devCSRFSecret = "change_this_csrf_secret"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	SecretKey       string        // Required outside dev: HS256 signing secret for session tokens
	TokenIssuer     string        // Optional: iss claim of session tokens (default: webtemplate)
	AccessTokenTTL  time.Duration // ACCESS_TOKEN_EXPIRE_MINUTES (default: 30m)
	RefreshTokenTTL time.Duration // REFRESH_TOKEN_EXPIRE_DAYS (default: 7 days)
	CSRFSecret      string        // Required outside dev: HMAC key for CSRF tokens
	CookieSecure    bool          // Set the Secure attribute on session cookies (default: true outside dev)

	GoogleClientID     string // Optional: enables POST /auth/google
	GoogleClientSecret string // Optional: with GoogleRedirectURL, enables the authorization code flow
	GoogleRedirectURL  string

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // SQLite database file (default: ./app.db)
	DatabaseURL    string // Postgres DSN, required when DatabaseDriver is postgres
	PepperFile     string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	RedisURL   string                // Optional: shares the login limiter between instances
	LoginLimit httpx.RateLimitConfig // LOGIN_RATE_LIMIT per LOGIN_RATE_WINDOW (default: 5 per 60s)
	MFAIssuer  string                // Issuer shown in authenticator apps (default: WebTemplateApp)

	Env                 string        // Environment (dev, test, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads the environment. Call Validate before using the result.
func LoadConfig() Config {
	env := getEnvOrDefault("ENV", "dev")

	cfg := Config{
		SecretKey:       os.Getenv("SECRET_KEY"),
		TokenIssuer:     getEnvOrDefault("TOKEN_ISSUER", "webtemplate"),
		AccessTokenTTL:  time.Duration(getEnvIntOrDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		RefreshTokenTTL: time.Duration(getEnvIntOrDefault("REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,
		CSRFSecret:      os.Getenv("CSRF_SECRET_KEY"),
		CookieSecure:    getEnvBoolOrDefault("COOKIE_SECURE", env != "dev"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", DriverSQLite)),
		DatabaseFile:   getEnvOrDefault("DATABASE_FILE", "app.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		PepperFile:     getEnvOrDefault("PEPPER_FILE", "pepper"),

		RedisURL: os.Getenv("REDIS_URL"),
		LoginLimit: httpx.RateLimitConfig{
			RequestsPerWindow: getEnvIntOrDefault("LOGIN_RATE_LIMIT", httpx.LoginLimit.RequestsPerWindow),
			Window:            getEnvDurationOrDefault("LOGIN_RATE_WINDOW", httpx.LoginLimit.Window),
		},
		MFAIssuer: getEnvOrDefault("MFA_ISSUER", "WebTemplateApp"),

		Env:                 env,
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
	cfg.LoginLimit.Burst = cfg.LoginLimit.RequestsPerWindow

	if env == "dev" {
		if cfg.SecretKey == "" {
			cfg.SecretKey = devSecretKey
		}
		if cfg.CSRFSecret == "" {
			cfg.CSRFSecret = devCSRFSecret
		}
	}

	return cfg
}

// Validate reports every problem with cfg at once.
func (cfg Config) Validate() error {
	var errs []error

	if cfg.Env != "dev" {
		if cfg.SecretKey == "" || cfg.SecretKey == devSecretKey {
			errs = append(errs, errors.New("SECRET_KEY must be set outside dev"))
		}
		if cfg.CSRFSecret == "" || cfg.CSRFSecret == devCSRFSecret {
			errs = append(errs, errors.New("CSRF_SECRET_KEY must be set outside dev"))
		}
	}
	if cfg.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY is empty"))
	}
	if cfg.CSRFSecret == "" {
		errs = append(errs, errors.New("CSRF_SECRET_KEY is empty"))
	}

	if cfg.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if cfg.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("REFRESH_TOKEN_EXPIRE_DAYS must be positive"))
	}
	if cfg.LoginLimit.RequestsPerWindow <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_LIMIT must be positive"))
	}
	if cfg.LoginLimit.Window <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_WINDOW must be positive"))
	}
	if cfg.ShutdownGracePeriod <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_GRACE_PERIOD must be positive"))
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", cfg.Port))
	}

	switch cfg.DatabaseDriver {
	case DriverSQLite:
		if cfg.DatabaseFile == "" {
			errs = append(errs, errors.New("DATABASE_FILE is required for sqlite"))
		}
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER %q is not sqlite or postgres", cfg.DatabaseDriver))
	}

	if (cfg.GoogleClientSecret != "" || cfg.GoogleRedirectURL != "") && cfg.GoogleClientID == "" {
		errs = append(errs, errors.New("GOOGLE_CLIENT_ID is required when the authorization code flow is configured"))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns -1 for unparsable values so Validate catches them.
func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return -1
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return b
}

// getEnvDurationOrDefault accepts Go durations ("90s") or bare seconds ("60").
// Unparsable values yield -1 so Validate catches them.
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return -1
}
