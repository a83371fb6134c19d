package service_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/webtemplate/internal/auth/domain"
	"github.com/aussiebroadwan/webtemplate/internal/auth/service"
	"github.com/aussiebroadwan/webtemplate/pkg/cryptox"
	"github.com/aussiebroadwan/webtemplate/pkg/jwtx"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// stubVerifier accepts tokens of the form "valid:<email>".
type stubVerifier struct {
	fetchErr bool
}

func (v stubVerifier) Verify(_ context.Context, raw string) (jwtx.GoogleClaims, error) {
	if v.fetchErr {
		return jwtx.GoogleClaims{}, fmt.Errorf("%w: connection refused", jwtx.ErrFetchKeys)
	}
	var email string
	if _, err := fmt.Sscanf(raw, "valid:%s", &email); err != nil {
		return jwtx.GoogleClaims{}, fmt.Errorf("%w: bad signature", jwtx.ErrInvalidToken)
	}
	return jwtx.GoogleClaims{Email: email, EmailVerified: true}, nil
}

func newGoogle(f *fixture, v service.IDTokenVerifier) *service.GoogleService {
	return &service.GoogleService{Store: f.store, Auth: f.auth, Verifier: v}
}

func TestGoogleExchange_CreatesAccount(t *testing.T) {
	f := newFixture(t)
	g := newGoogle(f, stubVerifier{})

	u, pair, err := g.Exchange(ctx(t), "valid:carol@example.com")
	require.NoError(t, err)
	require.Equal(t, "carol", u.Username)
	require.Equal(t, domain.RoleUser, u.Role)
	require.True(t, cryptox.IsPlaceholderHash(u.PasswordHash))
	require.NotEmpty(t, pair.AccessToken)

	// Placeholder credential can never be used for password login.
	_, _, err = f.auth.Login(ctx(t), service.LoginInput{Username: "carol", Password: u.PasswordHash})
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	// Second exchange reuses the account.
	again, _, err := g.Exchange(ctx(t), "valid:carol@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, again.ID)
}

func TestGoogleExchange_LocalPartCollision(t *testing.T) {
	f := newFixture(t)
	g := newGoogle(f, stubVerifier{})

	a, _, err := g.Exchange(ctx(t), "valid:dave@a.example")
	require.NoError(t, err)
	b, _, err := g.Exchange(ctx(t), "valid:dave@b.example")
	require.NoError(t, err)
	require.Equal(t, a.ID, b.ID, "accounts are keyed by local part only")
}

func TestGoogleExchange_Rejections(t *testing.T) {
	f := newFixture(t)

	_, _, err := newGoogle(f, stubVerifier{}).Exchange(ctx(t), "forged")
	require.ErrorIs(t, err, service.ErrInvalidGoogleToken)
	_, detail := service.Describe(err)
	require.Equal(t, "Invalid Google ID token", detail)

	_, _, err = newGoogle(f, stubVerifier{}).Exchange(ctx(t), "valid:ab@example.com")
	require.ErrorIs(t, err, service.ErrInvalidGoogleToken, "local part too short for a username")

	_, _, err = newGoogle(f, stubVerifier{fetchErr: true}).Exchange(ctx(t), "valid:carol@example.com")
	require.ErrorIs(t, err, jwtx.ErrFetchKeys)
	require.Equal(t, service.KindUnexpected, service.Kind(err))
}

func TestGoogleCodeFlow(t *testing.T) {
	f := newFixture(t)

	var gotCode string
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotCode = r.PostForm.Get("code")
		w.Header().Set("Content-Type", "application/json")
		if gotCode != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600,"id_token":"valid:erin@example.com"}`))
	}))
	t.Cleanup(tokenServer.Close)

	g := newGoogle(f, stubVerifier{})
	require.False(t, g.CodeFlowEnabled())

	g.OAuth = service.NewGoogleOAuthConfig("client-id", "client-secret", "http://localhost/auth/google/callback")
	g.OAuth.Endpoint = oauth2.Endpoint{
		AuthURL:   tokenServer.URL + "/auth",
		TokenURL:  tokenServer.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	require.True(t, g.CodeFlowEnabled())

	authURL := g.AuthCodeURL("state-123")
	require.Contains(t, authURL, "state=state-123")
	require.Contains(t, authURL, "client_id=client-id")

	u, pair, err := g.ExchangeCode(ctx(t), "good-code")
	require.NoError(t, err)
	require.Equal(t, "good-code", gotCode)
	require.Equal(t, "erin", u.Username)
	require.NotEmpty(t, pair.RefreshToken)

	_, _, err = g.ExchangeCode(ctx(t), "bad-code")
	require.ErrorIs(t, err, service.ErrInvalidGoogleToken)
}
