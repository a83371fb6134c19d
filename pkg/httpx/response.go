package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/webtemplate/pkg/slogx"
)

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so the first one listed runs first.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// WriteJSON writes v as JSON with the given status code and no-cache headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache marks the response as not cacheable. Responses may carry session
// cookies or secrets.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// DetailResponse is the body for expected rejections.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// ErrorResponse is the body for unexpected faults.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the body for simple acknowledgements.
type MessageResponse struct {
	Message string `json:"message"`
}

func WriteDetail(w http.ResponseWriter, code int, detail string) {
	WriteJSON(w, code, DetailResponse{Detail: detail})
}

func WriteMessage(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, MessageResponse{Message: message})
}

// WriteInternalError hides the cause from the client.
func WriteInternalError(w http.ResponseWriter) {
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
}

// Recover turns a handler panic into a logged 500.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					slogx.FromContext(r.Context()).Error("unhandled panic", "panic", rec)
					WriteInternalError(w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
