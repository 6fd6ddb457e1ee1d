package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"gatehouse/internal/domain"
	"gatehouse/internal/event"
	"gatehouse/internal/logger"
)

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[int64]*domain.User)}
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email != "" && u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	m.nextID++
	user.ID = m.nextID
	cp := *user
	m.byID[user.ID] = &cp
	return nil
}

type memAccounts struct {
	mu       sync.Mutex
	accounts []domain.Account
}

func (m *memAccounts) GetByProvider(_ context.Context, provider, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Provider == provider && a.ProviderAccountID == id {
			cp := a
			return &cp, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *memAccounts) Create(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts = append(m.accounts, *a)
	return nil
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]domain.Session
	getCalls int
	getErr   error
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[uuid.UUID]domain.Session)}
}

func (m *memSessions) Create(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *memSessions) GetByID(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memSessions) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *memSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

type memCache struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]domain.Session
	err      error
}

func newMemCache() *memCache {
	return &memCache{sessions: make(map[uuid.UUID]domain.Session)}
}

func (m *memCache) Get(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memCache) Set(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *memCache) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.sessions, id)
	return nil
}

type memFlows struct {
	mu    sync.Mutex
	flows map[string]domain.OAuthFlow
}

func (m *memFlows) Save(_ context.Context, f domain.OAuthFlow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.flows == nil {
		m.flows = make(map[string]domain.OAuthFlow)
	}
	m.flows[f.State] = f
	return nil
}

func (m *memFlows) Take(_ context.Context, state string) (*domain.OAuthFlow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flows[state]
	if !ok {
		return nil, domain.ErrInvalidOAuthState
	}
	delete(m.flows, state)
	return &f, nil
}

type fakeProvider struct {
	name     string
	identity domain.Identity
	verifier string
	code     string
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) AuthCodeURL(state, challenge string) string {
	return fmt.Sprintf("https://%s.example.com/authorize?state=%s&code_challenge=%s", p.name, state, challenge)
}

func (p *fakeProvider) ExchangeCode(_ context.Context, code, verifier string) (*domain.Identity, error) {
	p.code = code
	p.verifier = verifier
	id := p.identity
	return &id, nil
}

type fakeRegistry map[string]domain.OAuthProvider

func (r fakeRegistry) Get(name string) (domain.OAuthProvider, error) {
	p, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, name)
	}
	return p, nil
}

type harness struct {
	svc      *Service
	users    *memUsers
	accounts *memAccounts
	sessions *memSessions
	cache    *memCache
	flows    *memFlows
	github   *fakeProvider
	events   []string
	now      time.Time
}

func newHarness() *harness {
	h := &harness{
		users:    newMemUsers(),
		accounts: &memAccounts{},
		sessions: newMemSessions(),
		cache:    newMemCache(),
		flows:    &memFlows{},
		github: &fakeProvider{name: domain.ProviderGithub, identity: domain.Identity{
			Provider:          domain.ProviderGithub,
			ProviderAccountID: "gh-1",
			Email:             "Octo@Example.com",
			EmailVerified:     true,
			Name:              "Octo Cat",
		}},
		now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	bus := event.New()
	for _, name := range []string{domain.EventSignedUp, domain.EventSignedIn, domain.EventSignedOut} {
		bus.Subscribe(name, func(_ context.Context, _ any) {
			h.events = append(h.events, name)
		})
	}

	h.svc = NewService(Deps{
		Users:     h.users,
		Accounts:  h.accounts,
		Sessions:  h.sessions,
		Cache:     h.cache,
		Flows:     h.flows,
		Providers: fakeRegistry{domain.ProviderGithub: h.github},
		Bus:       bus,
		Log:       logger.Nop(),
	}, "test-secret", time.Hour)
	h.svc.now = func() time.Time { return h.now }

	return h
}
