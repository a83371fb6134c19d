package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/webtemplate/internal/auth/store"
	"github.com/aussiebroadwan/webtemplate/pkg/authsdk"
	"github.com/aussiebroadwan/webtemplate/pkg/httpx"
	"github.com/aussiebroadwan/webtemplate/pkg/slogx"
)

const readyzTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Includes uptime, version, and the status of the store and, when shared, the rate limiter
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	limiter httpx.Limiter,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyzTimeout)
		defer cancel()
		log := slogx.FromContext(ctx)

		checks := &authsdk.HealthChecks{Database: "ok"}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(ctx); err != nil {
			log.Warn("readiness: store ping failed", "err", err)
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		// Only a shared limiter has something to ping.
		if p, ok := limiter.(pinger); ok {
			checks.RateLimiter = "ok"
			if err := p.Ping(ctx); err != nil {
				log.Warn("readiness: rate limiter ping failed", "err", err)
				checks.RateLimiter = "error: " + err.Error()
				overallStatus = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
		}

		httpx.WriteJSON(w, statusCode, authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
