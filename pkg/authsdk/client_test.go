package authsdk

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_EchoesCSRFCookieOnMutations(t *testing.T) {
	t.Parallel()

	var seen []string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /csrf-token", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get(CSRFTokenHeader))
		http.SetCookie(w, &http.Cookie{Name: CSRFTokenCookie, Value: "tok.sig", Path: "/"})
		_ = json.NewEncoder(w).Encode(CSRFTokenResponse{CSRFToken: "tok.sig"})
	})
	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get(CSRFTokenHeader))
		_ = json.NewEncoder(w).Encode(MessageResponse{Message: "Logged out successfully"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewSDKClient(srv.URL + "/")
	tok, err := c.CSRFToken(t.Context())
	require.NoError(t, err)
	require.Equal(t, "tok.sig", tok)
	require.Equal(t, "tok.sig", c.Cookie(CSRFTokenCookie))

	msg, err := c.Logout(t.Context())
	require.NoError(t, err)
	require.Equal(t, "Logged out successfully", msg.Message)

	// GETs never send the header; POSTs echo the cookie.
	require.Equal(t, []string{"", "tok.sig"}, seen)
}

func TestClient_ErrorBodies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		wantCSRF   bool
	}{
		{"detail", http.StatusUnauthorized, `{"detail":"Invalid credentials"}`, "Invalid credentials", false},
		{"csrf", http.StatusForbidden, `{"detail":"CSRF token missing or invalid","code":"csrf_failed"}`, "CSRF token missing or invalid", true},
		{"internal", http.StatusInternalServerError, `{"error":"Internal server error"}`, "Internal server error", false},
		{"plain text", http.StatusBadGateway, "upstream down\n", "upstream down", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			_, err := NewSDKClient(srv.URL).Me(t.Context())
			require.Error(t, err)
			require.Equal(t, tt.status, StatusCode(err))

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.wantDetail, apiErr.Detail)
			require.Equal(t, tt.wantCSRF, apiErr.IsCSRF())
		})
	}
}

func TestStatusCode_NonAPIError(t *testing.T) {
	require.Zero(t, StatusCode(nil))
	require.Zero(t, StatusCode(http.ErrNoCookie))
}
