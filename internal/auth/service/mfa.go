package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"time"

	"github.com/aussiebroadwan/webtemplate/internal/auth/domain"
	"github.com/aussiebroadwan/webtemplate/internal/auth/store"
	"github.com/aussiebroadwan/webtemplate/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTP parameters. Codes from one step either side of now are accepted.
const (
	totpPeriod     = 30
	totpSkew       = 1
	totpSecretSize = 20 // 160 bits
	qrSize         = 256
)

var totpOpts = totp.ValidateOpts{
	Period:    totpPeriod,
	Skew:      totpSkew,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// MFAService drives TOTP enrollment:
// disabled -> Setup -> pending -> VerifyAndEnable -> enabled -> Disable -> disabled.
type MFAService struct {
	Store  store.Store
	Issuer string // shown in authenticator apps

	// Now overrides the clock, for tests.
	Now func() time.Time
}

func (s *MFAService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Setup generates and stores a fresh secret. Calling it again while pending
// replaces the secret; concurrent calls are last-writer-wins.
func (s *MFAService) Setup(ctx context.Context, u domain.User) (domain.MFASetup, error) {
	if u.MFAEnabled {
		return domain.MFASetup{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: u.Username,
		Period:      totpPeriod,
		SecretSize:  totpSecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.MFASetup{}, fmt.Errorf("generate totp key: %w", err)
	}

	qr, err := qrDataURI(key)
	if err != nil {
		return domain.MFASetup{}, err
	}

	if err := s.Store.Users().UpdateMFASecret(ctx, u.ID, key.Secret()); err != nil {
		return domain.MFASetup{}, fmt.Errorf("store mfa secret: %w", err)
	}

	slogx.FromContext(ctx).Info("mfa setup started", "user_id", u.ID)
	return domain.MFASetup{Secret: key.Secret(), QRCode: qr}, nil
}

// VerifyAndEnable turns MFA on once the user proves they hold the secret.
func (s *MFAService) VerifyAndEnable(ctx context.Context, u domain.User, code string) error {
	if u.MFASecret == nil || *u.MFASecret == "" {
		return ErrMFASetupNotInitiated
	}
	if !s.ValidateCode(*u.MFASecret, code) {
		return ErrInvalidTOTPCode
	}

	err := s.Store.Users().EnableMFA(ctx, u.ID)
	if errors.Is(err, store.ErrNotFound) {
		// Secret cleared by a concurrent disable.
		return ErrMFASetupNotInitiated
	}
	if err != nil {
		return fmt.Errorf("enable mfa: %w", err)
	}

	slogx.FromContext(ctx).Info("mfa enabled", "user_id", u.ID)
	return nil
}

// Disable turns MFA off and clears the secret.
func (s *MFAService) Disable(ctx context.Context, u domain.User) error {
	if !u.MFAEnabled {
		return ErrMFANotEnabled
	}
	if err := s.Store.Users().DisableMFA(ctx, u.ID); err != nil {
		return fmt.Errorf("disable mfa: %w", err)
	}

	slogx.FromContext(ctx).Info("mfa disabled", "user_id", u.ID)
	return nil
}

// ValidateCode checks a 6-digit code against secret at the current time.
func (s *MFAService) ValidateCode(secret, code string) bool {
	return ValidateCodeAt(secret, code, s.now())
}

// ValidateCodeAt checks code for the 30s step containing at, or one step
// either side.
func ValidateCodeAt(secret, code string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, at.UTC(), totpOpts)
	return err == nil && ok
}

func qrDataURI(key *otp.Key) (string, error) {
	img, err := key.Image(qrSize, qrSize)
	if err != nil {
		return "", fmt.Errorf("render qr: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
