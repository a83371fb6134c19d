package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/webtemplate/internal/auth/domain"
	"github.com/aussiebroadwan/webtemplate/internal/auth/service"
	"github.com/aussiebroadwan/webtemplate/internal/auth/store"
	"github.com/aussiebroadwan/webtemplate/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/webtemplate/pkg/cryptox"
	"github.com/aussiebroadwan/webtemplate/pkg/jwtx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store store.Store
	codec *jwtx.Codec
	auth  *service.AuthService
	mfa   *service.MFAService
	posts *service.PostService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations(t.Context()))

	codec, err := jwtx.NewCodec(jwtx.CodecConfig{Secret: "test-secret"})
	require.NoError(t, err)

	mfa := &service.MFAService{Store: s, Issuer: "WebTemplateApp"}
	return &fixture{
		store: s,
		codec: codec,
		mfa:   mfa,
		auth: &service.AuthService{
			Store:  s,
			Hasher: cryptox.NewHasher("pepper"),
			Codec:  codec,
			MFA:    mfa,
		},
		posts: &service.PostService{Store: s},
	}
}

func (f *fixture) signup(t *testing.T, username string) domain.User {
	t.Helper()
	pub, err := f.auth.Signup(t.Context(), service.SignupInput{Username: username, Password: "secret123"})
	require.NoError(t, err)
	u, err := f.store.Users().GetUserByID(t.Context(), pub.ID)
	require.NoError(t, err)
	return u
}

// reload fetches the current record, as the HTTP layer does per request.
func (f *fixture) reload(t *testing.T, u domain.User) domain.User {
	t.Helper()
	got, err := f.store.Users().GetUserByID(t.Context(), u.ID)
	require.NoError(t, err)
	return got
}

func currentCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	return code
}

func ctx(t *testing.T) context.Context { return t.Context() }
