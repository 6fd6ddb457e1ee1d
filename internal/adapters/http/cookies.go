package http

import (
	"net/http"
	"time"

	"gatehouse/internal/adapters/http/middleware"
	"gatehouse/internal/config"
	"gatehouse/internal/domain"
)

const oauthStateCookie = "__oauth_state"

func setSessionCookie(w http.ResponseWriter, cfg *config.Config, res *domain.SignInResult) {
	expires := time.Now().Add(cfg.JWTExpiry)
	if res.Session != nil {
		expires = res.Session.ExpiresAt
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    res.Token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookies(w http.ResponseWriter, cfg *config.Config) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.ClearCSRFCookie(w, cfg)
}

// The state cookie binds the provider callback to the browser that started it.
func setStateCookie(w http.ResponseWriter, cfg *config.Config, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/callback",
		MaxAge:   int((5 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearStateCookie(w http.ResponseWriter, cfg *config.Config) {
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/api/auth/callback",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
