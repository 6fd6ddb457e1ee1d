// Package guard decides whether a navigation passes through or is redirected
// based on the requested path and the caller's authentication state.
package guard

import "strings"

const (
	HomePath   = "/"
	SignInPath = "/sign-in"
	SignUpPath = "/sign-up"
)

type Outcome int

const (
	Allow Outcome = iota
	RedirectHome
	RedirectSignIn
)

func (o Outcome) String() string {
	switch o {
	case RedirectHome:
		return "redirect_home"
	case RedirectSignIn:
		return "redirect_sign_in"
	default:
		return "allow"
	}
}

// Location is the redirect target of o, or "" for Allow.
func (o Outcome) Location() string {
	switch o {
	case RedirectHome:
		return HomePath
	case RedirectSignIn:
		return SignInPath
	default:
		return ""
	}
}

// Decide maps (public page, authenticated) to an outcome.
func Decide(public, authenticated bool) Outcome {
	switch {
	case public && authenticated:
		return RedirectHome
	case !public && !authenticated:
		return RedirectSignIn
	default:
		return Allow
	}
}

// Matcher holds the static route configuration of the guard.
type Matcher struct {
	// Public paths are matched exactly, ignoring one trailing slash.
	Public []string
	// Skip lists path prefixes the guard never sees, such as embedded assets.
	Skip []string
	// Always lists path prefixes that are guarded even when they look like assets.
	Always []string
}

func DefaultMatcher() Matcher {
	return Matcher{
		Public: []string{SignInPath, SignUpPath},
		Skip:   []string{"/static/"},
		Always: []string{"/api", "/trpc"},
	}
}

// Applies reports whether the guard runs for path. Paths containing a dot
// are treated as static files and skipped.
func (m Matcher) Applies(path string) bool {
	for _, p := range m.Always {
		if hasSegmentPrefix(path, p) {
			return true
		}
	}
	for _, p := range m.Skip {
		if strings.HasPrefix(path, p) {
			return false
		}
	}
	return !strings.Contains(path, ".")
}

func (m Matcher) IsPublic(path string) bool {
	path = normalize(path)
	for _, p := range m.Public {
		if normalize(p) == path {
			return true
		}
	}
	return false
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// hasSegmentPrefix matches "/api" against "/api" and "/api/x" but not "/apiary".
func hasSegmentPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || rest[0] == '/'
}
