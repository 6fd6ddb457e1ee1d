// Package http
package http

import (
	"net/http"

	"gatehouse/internal/adapters/http/middleware"
	"gatehouse/internal/adapters/ws"
	"gatehouse/internal/config"
	"gatehouse/internal/core/guard"
	"gatehouse/internal/logger"
)

type RouterDeps struct {
	Auth      *AuthHandler
	Pages     *PageHandler
	WsSession *ws.Handler

	Checker middleware.AuthChecker
	Matcher guard.Matcher
	Log     logger.Logger
}

func NewRouter(cfg *config.Config, deps *RouterDeps) http.Handler {
	mux := http.NewServeMux()

	globalMw := middleware.New()
	globalMw.Use(middleware.Logging(deps.Log))
	globalMw.Use(middleware.CORS(cfg))
	globalMw.Use(middleware.CSRF(cfg))

	guardStack := middleware.New()
	guardStack.Use(middleware.Guard(deps.Checker, deps.Matcher, deps.Log))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(StaticFS())))

	mux.HandleFunc("GET /ws/session", deps.WsSession.Serve)

	// The auth endpoints answer for themselves and sit outside the guard.
	mux.HandleFunc("POST /api/auth/signin", deps.Auth.SignIn)
	mux.HandleFunc("POST /api/auth/signout", deps.Auth.SignOut)
	mux.HandleFunc("GET /api/auth/session", deps.Auth.Session)
	mux.HandleFunc("POST /api/auth/oauth/{provider}", deps.Auth.StartOAuth)
	mux.HandleFunc("GET /api/auth/callback/{provider}", deps.Auth.Callback)

	pages := http.NewServeMux()
	pages.HandleFunc("GET /{$}", deps.Pages.Home)
	pages.HandleFunc("GET /sign-in", deps.Pages.SignInPage)
	pages.HandleFunc("POST /sign-in", deps.Pages.SignIn)
	pages.HandleFunc("GET /sign-up", deps.Pages.SignUpPage)
	pages.HandleFunc("POST /sign-up", deps.Pages.SignUp)
	pages.HandleFunc("POST /sign-out", deps.Pages.SignOut)
	// The guard treats "/sign-in/" as "/sign-in"; send it to the canonical path.
	pages.Handle("GET /sign-in/{$}", http.RedirectHandler("/sign-in", http.StatusPermanentRedirect))
	pages.Handle("GET /sign-up/{$}", http.RedirectHandler("/sign-up", http.StatusPermanentRedirect))

	mux.Handle("/", guardStack.Then(pages))

	return globalMw.Apply(mux)
}
