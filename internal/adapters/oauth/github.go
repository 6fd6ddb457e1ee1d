package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"gatehouse/internal/domain"
)

const githubAPI = "https://api.github.com"

type GithubProvider struct {
	oauthConfig *oauth2.Config
	apiBase     string
}

func NewGithub(clientID, clientSecret, redirectURL string) (*GithubProvider, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("github oauth config missing required fields")
	}

	return &GithubProvider{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		apiBase: githubAPI,
	}, nil
}

func (p *GithubProvider) Name() string {
	return domain.ProviderGithub
}

func (p *GithubProvider) AuthCodeURL(state, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(state, pkceOptions(codeChallenge)...)
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (p *GithubProvider) ExchangeCode(ctx context.Context, code, codeVerifier string) (*domain.Identity, error) {
	token, err := p.oauthConfig.Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return nil, fmt.Errorf("github token exchange failed: %w", err)
	}

	client := p.oauthConfig.Client(ctx, token)

	var user githubUser
	if err := p.getJSON(ctx, client, "/user", &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, errors.New("github user response missing id")
	}

	identity := &domain.Identity{
		Provider:          domain.ProviderGithub,
		ProviderAccountID: strconv.FormatInt(user.ID, 10),
		Name:              user.Name,
		Image:             user.AvatarURL,
	}
	if identity.Name == "" {
		identity.Name = user.Login
	}

	// The profile email is public and unverified; the primary address comes from /user/emails.
	var emails []githubEmail
	if err := p.getJSON(ctx, client, "/user/emails", &emails); err != nil {
		return nil, err
	}
	for _, e := range emails {
		if e.Primary {
			identity.Email = e.Email
			identity.EmailVerified = e.Verified
			break
		}
	}
	if identity.Email == "" {
		identity.Email = user.Email
	}

	return identity, nil
}

func (p *GithubProvider) getJSON(ctx context.Context, client *http.Client, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("github %s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github %s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("github %s decode failed: %w", path, err)
	}

	return nil
}
