package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/webtemplate/internal/auth/domain"
	"github.com/aussiebroadwan/webtemplate/internal/auth/store"
	"github.com/aussiebroadwan/webtemplate/pkg/cryptox"
	"github.com/aussiebroadwan/webtemplate/pkg/jwtx"
	"github.com/aussiebroadwan/webtemplate/pkg/slogx"
)

// AuthService owns signup, password login, refresh and identity resolution.
type AuthService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
	Codec  *jwtx.Codec
	MFA    *MFAService
}

type SignupInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	MFACode  string `json:"mfa_code,omitempty"`
}

func validateSignup(in *SignupInput) error {
	if n := utf8.RuneCountInString(in.Username); n < domain.UsernameMinLen || n > domain.UsernameMaxLen {
		return invalid("username", fmt.Sprintf("must be between %d and %d characters", domain.UsernameMinLen, domain.UsernameMaxLen))
	}
	if utf8.RuneCountInString(in.Password) < domain.PasswordMinLen {
		return invalid("password", fmt.Sprintf("must be at least %d characters", domain.PasswordMinLen))
	}
	switch in.Role {
	case "":
		in.Role = domain.RoleUser
	case domain.RoleUser, domain.RoleAdmin:
	default:
		return invalid("role", `must be "user" or "admin"`)
	}
	return nil
}

// Signup creates a password account. The returned record never carries the hash.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (domain.PublicUser, error) {
	log := slogx.FromContext(ctx)

	if err := validateSignup(&in); err != nil {
		return domain.PublicUser{}, err
	}

	_, err := s.Store.Users().GetUserByUsername(ctx, in.Username)
	switch {
	case err == nil:
		return domain.PublicUser{}, ErrUsernameTaken
	case !errors.Is(err, store.ErrNotFound):
		return domain.PublicUser{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.PublicUser{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.Store.Users().CreateUser(ctx, domain.User{
		Username:     in.Username,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.PublicUser{}, ErrUsernameTaken
	}
	if err != nil {
		return domain.PublicUser{}, fmt.Errorf("create user: %w", err)
	}

	log.Info("user signed up", "user_id", u.ID, "username", u.Username, "role", u.Role)
	return u.Public(), nil
}

// Login checks a password and, for MFA users, a TOTP code. Unknown users and
// wrong passwords fail identically and take the same time.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (domain.User, domain.TokenPair, error) {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByUsername(ctx, in.Username)
	if errors.Is(err, store.ErrNotFound) {
		s.Hasher.Burn(in.Password)
		log.Info("login failed", "reason", "unknown_user")
		return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.Hasher.Verify(in.Password, u.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) && !errors.Is(err, cryptox.ErrUnusableHash) {
			log.Error("stored password hash is unreadable", "user_id", u.ID, "err", err)
		}
		log.Info("login failed", "reason", "bad_password", "user_id", u.ID)
		return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
	}

	// A code supplied by a user without MFA is ignored.
	if u.MFAEnabled {
		if in.MFACode == "" {
			return domain.User{}, domain.TokenPair{}, ErrMFACodeRequired
		}
		if u.MFASecret == nil || !s.MFA.ValidateCode(*u.MFASecret, in.MFACode) {
			log.Info("login failed", "reason", "bad_mfa_code", "user_id", u.ID)
			return domain.User{}, domain.TokenPair{}, ErrInvalidMFACode
		}
	}

	pair, err := s.IssuePair(u.Username)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}
	log.Info("login succeeded", "user_id", u.ID, "mfa", u.MFAEnabled)
	return u, pair, nil
}

// Refresh exchanges a refresh token for a brand-new pair. The presented token
// is not revoked; it stays valid until its own expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	if refreshToken == "" {
		return domain.TokenPair{}, ErrNotAuthenticated
	}

	claims, err := s.Codec.Decode(refreshToken)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: %w", ErrInvalidRefresh, err)
	}

	u, err := s.lookup(ctx, claims.Subject)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return s.IssuePair(u.Username)
}

// CurrentUser resolves the account an access token speaks for.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (domain.User, error) {
	if accessToken == "" {
		return domain.User{}, ErrNotAuthenticated
	}

	claims, err := s.Codec.Decode(accessToken)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return s.lookup(ctx, claims.Subject)
}

func (s *AuthService) lookup(ctx context.Context, username string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return u, nil
}

// IssuePair mints an independent access and refresh token for username.
func (s *AuthService) IssuePair(username string) (domain.TokenPair, error) {
	access, err := s.Codec.Issue(username, jwtx.Access)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.Codec.Issue(username, jwtx.Refresh)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}

	now := time.Now()
	return domain.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  now.Add(s.Codec.TTL(jwtx.Access)),
		RefreshToken:     refresh,
		RefreshExpiresAt: now.Add(s.Codec.TTL(jwtx.Refresh)),
	}, nil
}
