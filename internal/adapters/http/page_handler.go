package http

import (
	"net/http"

	"gatehouse/internal/adapters/http/middleware"
	"gatehouse/internal/application/forms"
	"gatehouse/internal/config"
	"gatehouse/internal/domain"
	"gatehouse/internal/logger"
)

type PageHandler struct {
	auth     domain.AuthClient
	forms    *forms.Service
	renderer *Renderer
	cfg      *config.Config
	log      logger.Logger
}

func NewPageHandler(auth domain.AuthClient, f *forms.Service, renderer *Renderer, cfg *config.Config, log logger.Logger) *PageHandler {
	return &PageHandler{
		auth:     auth,
		forms:    f,
		renderer: renderer,
		cfg:      cfg,
		log:      log,
	}
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "home", &pageView{Title: "Home"})
}

func (h *PageHandler) SignInPage(w http.ResponseWriter, r *http.Request) {
	view := &pageView{Title: "Sign in"}
	if r.URL.Query().Get("error") == "oauth" {
		view.Submission = forms.Submission{State: forms.Failed, Notice: forms.NoticeSignInFailed}
	}

	h.render(w, r, http.StatusOK, "sign-in", view)
}

func (h *PageHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	form := forms.SignInForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	res := h.forms.SignIn(r.Context(), form)
	if res.OK() {
		setSessionCookie(w, h.cfg, res.SignIn)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.render(w, r, http.StatusUnprocessableEntity, "sign-in", &pageView{
		Title:      "Sign in",
		Values:     map[string]string{"email": form.Email},
		Submission: res.Submission,
	})
}

func (h *PageHandler) SignUpPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "sign-up", &pageView{Title: "Sign up"})
}

func (h *PageHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	form := forms.SignUpForm{
		Name:            r.PostFormValue("name"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}

	res := h.forms.SignUp(r.Context(), form)
	if res.OK() {
		setSessionCookie(w, h.cfg, res.SignIn)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.render(w, r, http.StatusUnprocessableEntity, "sign-up", &pageView{
		Title:      "Sign up",
		Values:     map[string]string{"name": form.Name, "email": form.Email},
		Submission: res.Submission,
	})
}

func (h *PageHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(r.Context(), middleware.AccessToken(r)); err != nil {
		h.log.Error("pages: sign out failed", "error", err)
	}

	clearSessionCookies(w, h.cfg)
	http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, view *pageView) {
	view.CSRFToken = middleware.CSRFToken(r.Context())
	if err := h.renderer.Render(w, status, name, view); err != nil {
		h.log.Error("pages: render failed", "page", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
