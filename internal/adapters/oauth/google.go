package oauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"gatehouse/internal/domain"
	"gatehouse/internal/logger"
)

const googleIssuer = "https://accounts.google.com"

type GoogleProvider struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
	log         logger.Logger
}

// NewGoogle discovers the issuer configuration, so it needs network access.
func NewGoogle(ctx context.Context, clientID, clientSecret, redirectURL string, log logger.Logger) (*GoogleProvider, error) {
	return newOIDC(ctx, googleIssuer, clientID, clientSecret, redirectURL, log)
}

func newOIDC(ctx context.Context, issuer, clientID, clientSecret, redirectURL string, log logger.Logger) (*GoogleProvider, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init google oidc provider: %w", err)
	}

	return &GoogleProvider{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
		log:      log,
	}, nil
}

func (p *GoogleProvider) Name() string {
	return domain.ProviderGoogle
}

func (p *GoogleProvider) AuthCodeURL(state, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(state, pkceOptions(codeChallenge)...)
}

func (p *GoogleProvider) ExchangeCode(ctx context.Context, code, codeVerifier string) (*domain.Identity, error) {
	token, err := p.oauthConfig.Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return nil, fmt.Errorf("google token exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("google did not return id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("google id_token verification failed: %w", err)
	}

	var claims struct {
		Subject       string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("google id_token claims parse failed: %w", err)
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, errors.New("google id_token missing required claims")
	}

	p.log.Debug("google id_token verified", "issuer", idToken.Issuer, "email_verified", claims.EmailVerified)

	return &domain.Identity{
		Provider:          domain.ProviderGoogle,
		ProviderAccountID: claims.Subject,
		Email:             claims.Email,
		EmailVerified:     claims.EmailVerified,
		Name:              claims.Name,
		Image:             claims.Picture,
	}, nil
}
