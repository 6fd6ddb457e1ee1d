package middleware

import (
	"context"
	"net/http"
)

// AccessTokenCookie carries the session token issued by the auth client.
const AccessTokenCookie = "access_token"

type authContextKey struct{}

type csrfContextKey struct{}

func withAuthenticated(ctx context.Context, ok bool) context.Context {
	return context.WithValue(ctx, authContextKey{}, ok)
}

// IsAuthenticated returns the guard's answer for this request. It is false
// when the guard did not run.
func IsAuthenticated(ctx context.Context) bool {
	ok, _ := ctx.Value(authContextKey{}).(bool)
	return ok
}

// CSRFToken returns the token the CSRF middleware expects on the next
// unsafe request.
func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfContextKey{}).(string)
	return token
}

// AccessToken reads the session token from the request cookie.
func AccessToken(r *http.Request) string {
	cookie, err := r.Cookie(AccessTokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
