package httpx

import (
	"context"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/webtemplate/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window
	RequestsPerWindow int
	// Window is the time window for rate limiting
	Window time.Duration
	// Burst allows for temporary bursts above the rate limit (memory limiter only)
	Burst int
}

// Common profiles. Each can be overridden with ParseRateLimitFromEnv.
var (
	// LoginLimit guards credential checks: 5 attempts per minute.
	LoginLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit for authenticated mutations.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 30, Window: time.Minute, Burst: 30}

	// LenientLimit for public reads and health probes.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 300, Window: time.Minute, Burst: 300}
)

// ParseRateLimitFromEnv overlays RATELIMIT_{prefix}_REQUESTS, _WINDOW_SEC and
// _BURST onto def. Invalid or non-positive values are ignored.
func ParseRateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	cfg := def

	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_REQUESTS"); ok {
		cfg.RequestsPerWindow = n
	}
	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_WINDOW_SEC"); ok {
		cfg.Window = time.Duration(n) * time.Second
	}
	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_BURST"); ok {
		cfg.Burst = n
	}
	return cfg
}

func positiveEnv(key string) (int, bool) {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Decision is the outcome of one limiter check.
type Decision struct {
	Allowed    bool
	Limit      int
	Window     time.Duration
	RetryAfter time.Duration
}

// Limiter counts requests per key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// KeyExtractor returns the bucket key for a request.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor extracts the client IP, honouring X-Forwarded-For and
// X-Real-IP set by a fronting proxy.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// SubjectKeyExtractor returns the authenticated subject, if any.
func SubjectKeyExtractor(r *http.Request) string {
	s, _ := SubjectFromContext(r.Context())
	return s
}

// CompositeKeyExtractor joins the non-empty results of extractors with sep.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		var parts []string
		for _, extractor := range extractors {
			if key := extractor(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// MemoryLimiter is an in-process token bucket per key.
type MemoryLimiter struct {
	cfg      RateLimitConfig
	limit    rate.Limit
	limiters sync.Map // map[string]*rate.Limiter

	mu          sync.Mutex
	lastCleanup time.Time
}

func NewMemoryLimiter(cfg RateLimitConfig) *MemoryLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.RequestsPerWindow
	}
	return &MemoryLimiter{
		cfg:         cfg,
		limit:       rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		lastCleanup: time.Now(),
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l := m.get(key)
	d := Decision{Limit: m.cfg.RequestsPerWindow, Window: m.cfg.Window}

	if l.Allow() {
		d.Allowed = true
		return d, nil
	}

	// Peek at when the next token lands without consuming it.
	res := l.Reserve()
	d.RetryAfter = res.Delay()
	res.Cancel()
	return d, nil
}

func (m *MemoryLimiter) get(key string) *rate.Limiter {
	if l, ok := m.limiters.Load(key); ok {
		return l.(*rate.Limiter)
	}
	actual, _ := m.limiters.LoadOrStore(key, rate.NewLimiter(m.limit, m.cfg.Burst))
	m.maybeCleanup()
	return actual.(*rate.Limiter)
}

// maybeCleanup drops idle buckets (full of tokens) every few minutes so
// ephemeral keys do not accumulate.
func (m *MemoryLimiter) maybeCleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastCleanup) < 5*time.Minute {
		return
	}
	m.lastCleanup = time.Now()

	m.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(m.cfg.Burst) {
			m.limiters.Delete(key)
		}
		return true
	})
}

// RateLimitMiddleware rejects requests over the limit with 429 before the
// wrapped handler runs. Requests with no key, or whose limiter check fails,
// are let through and logged.
func RateLimitMiddleware(l Limiter, keyExtractor KeyExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			key := keyExtractor(r)
			if key == "" {
				log.Warn("rate limit: unable to extract key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			d, err := l.Allow(ctx, key)
			if err != nil {
				log.Error("rate limit: limiter unavailable, allowing request", "err", err)
				next.ServeHTTP(w, r)
				return
			}

			if !d.Allowed {
				retryAfter := max(int((d.RetryAfter + time.Second - 1) / time.Second), 1)

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
				w.Header().Set("X-RateLimit-Window", d.Window.String())

				log.Warn("rate limit exceeded",
					"key", key,
					"endpoint", r.URL.Path,
					"retry_after", retryAfter,
				)
				WriteDetail(w, http.StatusTooManyRequests, "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP limits by client IP.
func RateLimitByIP(l Limiter) Middleware {
	return RateLimitMiddleware(l, IPKeyExtractor)
}

// RateLimitBySubject limits by authenticated subject, falling back to IP.
func RateLimitBySubject(l Limiter) Middleware {
	return RateLimitMiddleware(l, CompositeKeyExtractor(":", SubjectKeyExtractor, IPKeyExtractor))
}
