package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("password must be at least 8 characters")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUnknownProvider    = errors.New("unknown auth provider")
	ErrInvalidOAuthState  = errors.New("invalid oauth state")
	ErrInvalidFlow        = errors.New("invalid sign-in flow")
)

// Providers accepted by AuthClient.SignIn.
const (
	ProviderPassword = "password"
	ProviderGithub   = "github"
	ProviderGoogle   = "google"
)

// Flows of the password provider.
const (
	FlowSignIn = "signIn"
	FlowSignUp = "signUp"
)

const MinPasswordLength = 8

type SignInParams struct {
	Flow     string `json:"flow"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// SignInResult carries either a session token (password flows, completed
// OAuth) or a redirect to an identity provider (started OAuth).
type SignInResult struct {
	Token    string   `json:"-"`
	Session  *Session `json:"-"`
	User     *User    `json:"user,omitempty"`
	Redirect string   `json:"redirect,omitempty"`
	State    string   `json:"-"`
}

// Identity is what an OAuth provider tells us about the person who signed in.
type Identity struct {
	Provider          string
	ProviderAccountID string
	Email             string
	EmailVerified     bool
	Name              string
	Image             string
}

// OAuthFlow is an in-flight authorization, keyed by its state.
type OAuthFlow struct {
	State        string `json:"state"`
	Provider     string `json:"provider"`
	CodeVerifier string `json:"code_verifier"`
}

type AuthClient interface {
	SignIn(ctx context.Context, provider string, params *SignInParams) (*SignInResult, error)
	CompleteOAuth(ctx context.Context, provider, state, code string) (*SignInResult, error)
	SignOut(ctx context.Context, token string) error
	IsAuthenticated(ctx context.Context, token string) (bool, error)
	CurrentSession(ctx context.Context, token string) (*Session, error)
}

// OAuthProvider returns identity facts only. It never creates users or sessions.
type OAuthProvider interface {
	Name() string
	AuthCodeURL(state, codeChallenge string) string
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*Identity, error)
}

type OAuthProviderRegistry interface {
	Get(name string) (OAuthProvider, error)
}

type OAuthFlowStore interface {
	Save(ctx context.Context, flow OAuthFlow) error
	// Take returns and removes the flow. A missing flow is ErrInvalidOAuthState.
	Take(ctx context.Context, state string) (*OAuthFlow, error)
}
