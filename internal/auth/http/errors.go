package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/webtemplate/internal/auth/domain"
	"github.com/aussiebroadwan/webtemplate/internal/auth/service"
	"github.com/aussiebroadwan/webtemplate/pkg/httpx"
	"github.com/aussiebroadwan/webtemplate/pkg/slogx"
)

const maxBodyBytes = 1 << 20

func statusFor(kind service.ErrorKind) int {
	switch kind {
	case service.KindValidation, service.KindConflict:
		return http.StatusBadRequest
	case service.KindAuthentication:
		return http.StatusUnauthorized
	case service.KindAuthorization:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a service error to a response. Unrecognised errors are
// logged in full and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	kind, detail := service.Describe(err)
	if kind == service.KindUnexpected {
		log.Error("request failed", "err", err)
		httpx.WriteInternalError(w)
		return
	}

	log.Info("request rejected", "kind", kind.String(), "err", err)
	httpx.WriteDetail(w, statusFor(kind), detail)
}

// decodeJSON reads a JSON body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slogx.FromContext(r.Context()).Warn("failed to parse request", "err", err)

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.WriteDetail(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		httpx.WriteDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// sessionUser is for handlers behind requireUser.
func sessionUser(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, r, service.ErrNotAuthenticated)
	}
	return u, ok
}
