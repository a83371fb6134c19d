package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/webtemplate/internal/auth/domain"
	"github.com/aussiebroadwan/webtemplate/internal/auth/store"
	"github.com/aussiebroadwan/webtemplate/pkg/cryptox"
	"github.com/aussiebroadwan/webtemplate/pkg/jwtx"
	"github.com/aussiebroadwan/webtemplate/pkg/slogx"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// IDTokenVerifier checks a Google ID token. *jwtx.GoogleVerifier implements it.
type IDTokenVerifier interface {
	Verify(ctx context.Context, raw string) (jwtx.GoogleClaims, error)
}

// GoogleService signs users in with a Google identity. Accounts are keyed by
// the email local part, so alice@a.com and alice@b.com share one account.
type GoogleService struct {
	Store    store.Store
	Auth     *AuthService
	Verifier IDTokenVerifier

	// OAuth is set when the server-side authorization code flow is enabled.
	OAuth *oauth2.Config
}

// NewGoogleOAuthConfig builds the authorization code flow config.
func NewGoogleOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     endpoints.Google,
	}
}

// Exchange verifies a Google ID token, creating the local account on first
// use, and issues a session pair.
func (s *GoogleService) Exchange(ctx context.Context, idToken string) (domain.User, domain.TokenPair, error) {
	log := slogx.FromContext(ctx)

	claims, err := s.Verifier.Verify(ctx, idToken)
	if errors.Is(err, jwtx.ErrFetchKeys) {
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("verify google token: %w", err)
	}
	if err != nil {
		log.Info("google token rejected", "err", err)
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("%w: %w", ErrInvalidGoogleToken, err)
	}

	username, ok := usernameFromEmail(claims.Email)
	if !ok {
		log.Info("google token rejected", "reason", "unusable email local part")
		return domain.User{}, domain.TokenPair{}, ErrInvalidGoogleToken
	}

	u, err := s.findOrCreate(ctx, username)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	pair, err := s.Auth.IssuePair(u.Username)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}
	return u, pair, nil
}

func (s *GoogleService) findOrCreate(ctx context.Context, username string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err == nil {
		log.Info("google login mapped to existing account", "user_id", u.ID)
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	u, err = s.Store.Users().CreateUser(ctx, domain.User{
		Username:     username,
		PasswordHash: cryptox.PlaceholderHash(),
		Role:         domain.RoleUser,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		// Lost a race with a concurrent first login.
		return s.Store.Users().GetUserByUsername(ctx, username)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	log.Info("user created from google identity", "user_id", u.ID, "username", u.Username)
	return u, nil
}

func usernameFromEmail(email string) (string, bool) {
	local, _, ok := strings.Cut(email, "@")
	if !ok {
		return "", false
	}
	n := utf8.RuneCountInString(local)
	return local, n >= domain.UsernameMinLen && n <= domain.UsernameMaxLen
}

// CodeFlowEnabled reports whether AuthCodeURL and ExchangeCode can be used.
func (s *GoogleService) CodeFlowEnabled() bool {
	return s.OAuth != nil && s.OAuth.ClientSecret != "" && s.OAuth.RedirectURL != ""
}

// AuthCodeURL is where the browser is sent to consent. state must round-trip
// through the callback unchanged.
func (s *GoogleService) AuthCodeURL(state string) string {
	return s.OAuth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// ExchangeCode redeems an authorization code and signs in with the ID token
// Google returns alongside the access token.
func (s *GoogleService) ExchangeCode(ctx context.Context, code string) (domain.User, domain.TokenPair, error) {
	tok, err := s.OAuth.Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			return domain.User{}, domain.TokenPair{}, fmt.Errorf("%w: %w", ErrInvalidGoogleToken, err)
		}
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("exchange google code: %w", err)
	}

	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("%w: no id_token in token response", ErrInvalidGoogleToken)
	}
	return s.Exchange(ctx, raw)
}
