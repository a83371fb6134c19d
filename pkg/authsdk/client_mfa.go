package authsdk

import (
	"context"
	"net/http"
)

// SetupMFA starts TOTP enrollment and returns the secret and QR code.
func (c *SDKClient) SetupMFA(ctx context.Context) (*MFASetupResponse, error) {
	var resp MFASetupResponse
	if err := c.do(ctx, http.MethodPost, "/mfa/setup", nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyAndEnableMFA confirms enrollment with a code from the authenticator.
func (c *SDKClient) VerifyAndEnableMFA(ctx context.Context, code string) (*MessageResponse, error) {
	var msg MessageResponse
	if err := c.do(ctx, http.MethodPost, "/mfa/verify-and-enable", MFACodeRequest{Code: code}, &msg, http.StatusOK); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DisableMFA turns MFA off and discards the secret.
func (c *SDKClient) DisableMFA(ctx context.Context) (*MessageResponse, error) {
	var msg MessageResponse
	if err := c.do(ctx, http.MethodPost, "/mfa/disable", nil, &msg, http.StatusOK); err != nil {
		return nil, err
	}
	return &msg, nil
}
