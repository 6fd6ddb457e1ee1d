package middleware

import (
	"context"
	"net/http"

	"gatehouse/internal/core/guard"
	"gatehouse/internal/logger"
)

// AuthChecker is the slice of the auth client the guard depends on.
type AuthChecker interface {
	IsAuthenticated(ctx context.Context, token string) (bool, error)
}

// Guard redirects between public and protected pages. The checker is asked
// at most once per request, and a failed check counts as signed out.
func Guard(checker AuthChecker, matcher guard.Matcher, log logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !matcher.Applies(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authenticated := false
			if token := AccessToken(r); token != "" {
				ok, err := checker.IsAuthenticated(r.Context(), token)
				if err != nil {
					log.Warn("guard: auth check failed", "path", r.URL.Path, "error", err)
				}
				authenticated = ok && err == nil
			}

			outcome := guard.Decide(matcher.IsPublic(r.URL.Path), authenticated)
			if outcome != guard.Allow {
				log.Debug("guard: redirect", "path", r.URL.Path, "outcome", outcome.String())
				http.Redirect(w, r, outcome.Location(), redirectStatus(r.Method))
				return
			}

			next.ServeHTTP(w, r.WithContext(withAuthenticated(r.Context(), authenticated)))
		})
	}
}

// redirectStatus keeps the method for reads and turns writes into a GET.
func redirectStatus(method string) int {
	if method == http.MethodGet || method == http.MethodHead {
		return http.StatusTemporaryRedirect
	}
	return http.StatusSeeOther
}
