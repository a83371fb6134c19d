package auth_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/aussiebroadwan/webtemplate/pkg/authsdk"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

// TestMFAEnrollmentAndLogin enrolls a user in TOTP MFA and checks that login
// then demands a valid code.
func TestMFAEnrollmentAndLogin(t *testing.T) {
	baseURL := setupContainer(t)
	ctx := t.Context()

	client, _ := signupAndLogin(t, baseURL, "mfa-user", "")

	setup, err := client.SetupMFA(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, setup.Secret)
	require.NotEmpty(t, setup.QRCode)

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	_, err = client.VerifyAndEnableMFA(ctx, code)
	require.NoError(t, err)

	me, err := client.Me(ctx)
	require.NoError(t, err)
	require.True(t, me.MFAEnabled)

	fresh := authsdk.NewSDKClient(baseURL)

	_, err = fresh.Login(ctx, authsdk.LoginRequest{Username: "mfa-user", Password: testPassword})
	requireStatus(t, err, http.StatusUnauthorized, "login without code")

	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "MFA code required", apiErr.Detail)

	code, err = totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	_, err = fresh.Login(ctx, authsdk.LoginRequest{Username: "mfa-user", Password: testPassword, MFACode: code})
	require.NoError(t, err)
	require.True(t, fresh.Authenticated())

	_, err = fresh.DisableMFA(ctx)
	require.NoError(t, err)

	me, err = fresh.Me(ctx)
	require.NoError(t, err)
	require.False(t, me.MFAEnabled)
}
