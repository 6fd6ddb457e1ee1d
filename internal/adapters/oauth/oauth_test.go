package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"gatehouse/internal/domain"
)

func TestRegistryLookup(t *testing.T) {
	gh, err := NewGithub("id", "secret", "http://localhost:3000/api/auth/callback/github")
	require.NoError(t, err)

	reg := NewRegistry(gh, nil)

	p, err := reg.Get(domain.ProviderGithub)
	require.NoError(t, err)
	assert.Same(t, gh, p)

	_, err = reg.Get(domain.ProviderGoogle)
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
	assert.ElementsMatch(t, []string{domain.ProviderGithub}, reg.Names())
}

func TestNewGithubRequiresCredentials(t *testing.T) {
	_, err := NewGithub("", "secret", "http://localhost")
	assert.Error(t, err)
}

func TestGithubAuthCodeURLCarriesPKCE(t *testing.T) {
	gh, err := NewGithub("client", "secret", "http://localhost:3000/api/auth/callback/github")
	require.NoError(t, err)

	raw := gh.AuthCodeURL("state-1", "challenge-1")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "github.com", u.Host)
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "challenge-1", q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, "client", q.Get("client_id"))
}

func TestGithubExchangeCode(t *testing.T) {
	var gotVerifier string

	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		gotVerifier = r.PostForm.Get("code_verifier")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "gh-token", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gh-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(githubUser{ID: 99, Login: "ada", AvatarURL: "https://avatars/ada"})
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]githubEmail{
			{Email: "old@example.com", Verified: true},
			{Email: "ada@example.com", Primary: true, Verified: true},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	gh, err := NewGithub("client", "secret", srv.URL+"/callback")
	require.NoError(t, err)
	gh.oauthConfig.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/login/oauth/authorize",
		TokenURL:  srv.URL + "/login/oauth/access_token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	gh.apiBase = srv.URL

	id, err := gh.ExchangeCode(context.Background(), "code", "verifier-1")
	require.NoError(t, err)

	assert.Equal(t, "verifier-1", gotVerifier)
	assert.Equal(t, &domain.Identity{
		Provider:          domain.ProviderGithub,
		ProviderAccountID: "99",
		Email:             "ada@example.com",
		EmailVerified:     true,
		Name:              "ada",
		Image:             "https://avatars/ada",
	}, id)
}

func TestGithubExchangeCodeSurfacesAPIErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "t", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	gh, err := NewGithub("client", "secret", srv.URL+"/callback")
	require.NoError(t, err)
	gh.oauthConfig.Endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	gh.apiBase = srv.URL

	_, err = gh.ExchangeCode(context.Background(), "code", "v")
	assert.ErrorContains(t, err, "status 401")
}

func TestNewGoogleRequiresCredentials(t *testing.T) {
	_, err := newOIDC(context.Background(), "http://127.0.0.1:0", "", "", "", nil)
	assert.Error(t, err)
}
