package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"

	"gatehouse/internal/domain"
)

func (s *Service) startOAuth(ctx context.Context, provider string) (*domain.SignInResult, error) {
	p, err := s.providers.Get(provider)
	if err != nil {
		return nil, err
	}

	state, err := randomState()
	if err != nil {
		return nil, err
	}
	verifier := oauth2.GenerateVerifier()

	if err := s.flows.Save(ctx, domain.OAuthFlow{
		State:        state,
		Provider:     p.Name(),
		CodeVerifier: verifier,
	}); err != nil {
		return nil, fmt.Errorf("auth: save oauth flow: %w", err)
	}

	return &domain.SignInResult{
		Redirect: p.AuthCodeURL(state, oauth2.S256ChallengeFromVerifier(verifier)),
		State:    state,
	}, nil
}

func (s *Service) CompleteOAuth(ctx context.Context, provider, state, code string) (*domain.SignInResult, error) {
	if state == "" || code == "" {
		return nil, domain.ErrInvalidOAuthState
	}

	flow, err := s.flows.Take(ctx, state)
	if err != nil {
		return nil, err
	}
	if flow.Provider != provider {
		return nil, domain.ErrInvalidOAuthState
	}

	p, err := s.providers.Get(provider)
	if err != nil {
		return nil, err
	}

	identity, err := p.ExchangeCode(ctx, code, flow.CodeVerifier)
	if err != nil {
		return nil, fmt.Errorf("auth: %s exchange: %w", provider, err)
	}

	user, created, err := s.resolveUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	res, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	name := domain.EventSignedIn
	if created {
		name = domain.EventSignedUp
	}
	s.publish(ctx, name, res.Session, provider)

	return res, nil
}

// resolveUser finds the user behind an identity: a linked account first,
// then a user with the same verified email (which gets linked), otherwise a
// new user.
func (s *Service) resolveUser(ctx context.Context, id *domain.Identity) (*domain.User, bool, error) {
	acct, err := s.accounts.GetByProvider(ctx, id.Provider, id.ProviderAccountID)
	if err == nil {
		user, err := s.users.GetByID(ctx, acct.UserID)
		if err != nil {
			return nil, false, fmt.Errorf("auth: load linked user: %w", err)
		}
		return user, false, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, false, fmt.Errorf("auth: find account: %w", err)
	}

	email := normalizeEmail(id.Email)

	if email != "" && id.EmailVerified {
		user, err := s.users.GetByEmail(ctx, email)
		switch {
		case err == nil:
			if err := s.link(ctx, user, id); err != nil {
				return nil, false, err
			}
			return user, false, nil
		case !errors.Is(err, domain.ErrUserNotFound):
			return nil, false, fmt.Errorf("auth: find user: %w", err)
		}
	}

	user := &domain.User{
		Name:          strings.TrimSpace(id.Name),
		Email:         email,
		EmailVerified: id.EmailVerified,
		Image:         id.Image,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, err
	}
	if err := s.link(ctx, user, id); err != nil {
		return nil, false, err
	}

	return user, true, nil
}

func (s *Service) link(ctx context.Context, user *domain.User, id *domain.Identity) error {
	err := s.accounts.Create(ctx, &domain.Account{
		UserID:            user.ID,
		Provider:          id.Provider,
		ProviderAccountID: id.ProviderAccountID,
		CreatedAt:         s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("auth: link account: %w", err)
	}
	return nil
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth: generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
