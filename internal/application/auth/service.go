// Package auth implements the auth client: password and OAuth sign-in,
// sign-out and session checks.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gatehouse/internal/domain"
	"gatehouse/internal/event"
	"gatehouse/internal/logger"
)

type Deps struct {
	Users     domain.UserRepository
	Accounts  domain.AccountRepository
	Sessions  domain.SessionRepository
	Cache     domain.SessionCache
	Flows     domain.OAuthFlowStore
	Providers domain.OAuthProviderRegistry
	Bus       *event.Bus
	Log       logger.Logger
}

type Service struct {
	users     domain.UserRepository
	accounts  domain.AccountRepository
	sessions  domain.SessionRepository
	cache     domain.SessionCache
	flows     domain.OAuthFlowStore
	providers domain.OAuthProviderRegistry
	bus       *event.Bus
	log       logger.Logger

	secret     []byte
	sessionTTL time.Duration
	now        func() time.Time
	compare    func(hash, password []byte) error
}

// dummyHash is compared against when no stored hash exists, so an unknown
// email costs the same bcrypt work as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("gatehouse-no-such-user"), bcrypt.DefaultCost)

var _ domain.AuthClient = (*Service)(nil)

func NewService(deps Deps, secret string, sessionTTL time.Duration) *Service {
	return &Service{
		users:     deps.Users,
		accounts:  deps.Accounts,
		sessions:  deps.Sessions,
		cache:     deps.Cache,
		flows:     deps.Flows,
		providers: deps.Providers,
		bus:       deps.Bus,
		log:       deps.Log,

		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		now:        time.Now,
		compare:    bcrypt.CompareHashAndPassword,
	}
}

func (s *Service) SignIn(ctx context.Context, provider string, params *domain.SignInParams) (*domain.SignInResult, error) {
	if provider != domain.ProviderPassword {
		return s.startOAuth(ctx, provider)
	}

	if params == nil {
		return nil, domain.ErrInvalidFlow
	}

	switch params.Flow {
	case domain.FlowSignIn:
		return s.passwordSignIn(ctx, params)
	case domain.FlowSignUp:
		return s.passwordSignUp(ctx, params)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidFlow, params.Flow)
	}
}

func (s *Service) passwordSignIn(ctx context.Context, params *domain.SignInParams) (*domain.SignInResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(params.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = s.compare(dummyHash, []byte(params.Password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth: find user: %w", err)
	}

	// OAuth-only users have no password and cannot use this flow.
	if user.Password == "" {
		_ = s.compare(dummyHash, []byte(params.Password))
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.compare([]byte(user.Password), []byte(params.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	res, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventSignedIn, res.Session, domain.ProviderPassword)
	return res, nil
}

func (s *Service) passwordSignUp(ctx context.Context, params *domain.SignInParams) (*domain.SignInResult, error) {
	if len(params.Password) < domain.MinPasswordLength {
		return nil, domain.ErrInvalidPassword
	}

	email := normalizeEmail(params.Email)
	if email == "" {
		return nil, domain.ErrInvalidCredentials
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domain.ErrEmailAlreadyExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("auth: find user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	user := &domain.User{
		Name:     strings.TrimSpace(params.Name),
		Email:    email,
		Password: string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	res, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventSignedUp, res.Session, domain.ProviderPassword)
	return res, nil
}

func (s *Service) SignOut(ctx context.Context, token string) error {
	userID, sessionID, err := s.parseToken(token)
	if err != nil {
		return nil
	}

	// Cache hits are trusted by lookupSession, so the cached copy goes first.
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("auth: evict session: %w", err)
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("auth: delete session: %w", err)
	}

	s.publish(ctx, domain.EventSignedOut, &domain.Session{ID: sessionID, UserID: userID}, "")
	return nil
}

// IsAuthenticated reports (false, nil) for any token that does not map to a
// live session. Errors are reserved for storage failures.
func (s *Service) IsAuthenticated(ctx context.Context, token string) (bool, error) {
	_, err := s.CurrentSession(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) CurrentSession(ctx context.Context, token string) (*domain.Session, error) {
	userID, sessionID, err := s.parseToken(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	sess, err := s.lookupSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.UserID != userID || sess.Expired(s.now()) {
		return nil, domain.ErrUnauthorized
	}

	return sess, nil
}

func (s *Service) lookupSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	sess, err := s.cache.Get(ctx, id)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		s.log.Warn("auth: session cache read failed", "session_id", id, "error", err)
	}

	sess, err = s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("auth: load session: %w", err)
	}

	if err := s.cache.Set(ctx, sess); err != nil {
		s.log.Warn("auth: session cache write failed", "session_id", id, "error", err)
	}

	return sess, nil
}

func (s *Service) startSession(ctx context.Context, user *domain.User) (*domain.SignInResult, error) {
	now := s.now().UTC()
	sess := &domain.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("auth: create session: %w", err)
	}

	if err := s.cache.Set(ctx, sess); err != nil {
		s.log.Warn("auth: session cache write failed", "session_id", sess.ID, "error", err)
	}

	token, err := s.signToken(sess)
	if err != nil {
		return nil, err
	}

	return &domain.SignInResult{
		Token:   token,
		Session: sess,
		User:    user,
	}, nil
}

func (s *Service) publish(ctx context.Context, name string, sess *domain.Session, provider string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, name, domain.AuthEvent{
		UserID:    sess.UserID,
		SessionID: sess.ID,
		Provider:  provider,
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
