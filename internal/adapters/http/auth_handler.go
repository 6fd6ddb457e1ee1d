package http

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"gatehouse/internal/adapters/http/middleware"
	"gatehouse/internal/adapters/http/request"
	"gatehouse/internal/adapters/http/response"
	"gatehouse/internal/adapters/http/validator"
	"gatehouse/internal/application/forms"
	"gatehouse/internal/config"
	"gatehouse/internal/domain"
	"gatehouse/internal/logger"
)

const oauthFailedLocation = "/sign-in?error=oauth"

type signInRequest struct {
	Provider string               `json:"provider" validate:"required,oneof=password github google"`
	Params   *domain.SignInParams `json:"params"`
}

type AuthHandler struct {
	auth  domain.AuthClient
	forms *forms.Service
	cfg   *config.Config
	log   logger.Logger

	decoder   request.RequestDecoder
	writer    response.ResponseWriter
	validator validator.Validator
}

func NewAuthHandler(
	auth domain.AuthClient,
	f *forms.Service,
	cfg *config.Config,
	log logger.Logger,
	d request.RequestDecoder,
	w response.ResponseWriter,
	v validator.Validator,
) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		forms:     f,
		cfg:       cfg,
		log:       log,
		decoder:   d,
		writer:    w,
		validator: v,
	}
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req signInRequest
	if err := h.decoder.Decode(r, &req); err != nil {
		h.writer.Write(w, http.StatusBadRequest, &response.Response{
			Message: err.Error(),
		})
		return
	}

	if errs := h.validator.Validate(&req); len(errs) > 0 {
		h.writer.WriteValidationError(w, errs)
		return
	}

	res, err := h.auth.SignIn(r.Context(), req.Provider, req.Params)
	if err != nil {
		h.writeSignInError(w, err)
		return
	}

	if res.Token != "" {
		setSessionCookie(w, h.cfg, res)
	}
	if res.State != "" {
		setStateCookie(w, h.cfg, res.State)
	}

	h.writer.Write(w, http.StatusOK, &response.Response{
		Data: res,
	})
}

func (h *AuthHandler) writeSignInError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		h.writer.Write(w, http.StatusUnauthorized, &response.Response{
			Message: "invalid credentials",
		})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		h.writer.Write(w, http.StatusConflict, &response.Response{
			Message: "email already registered",
		})
	case errors.Is(err, domain.ErrInvalidPassword):
		h.writer.WriteValidationError(w, map[string]string{
			"password": "The password must be at least 8 characters.",
		})
	case errors.Is(err, domain.ErrUnknownProvider), errors.Is(err, domain.ErrInvalidFlow):
		h.writer.Write(w, http.StatusBadRequest, &response.Response{
			Message: err.Error(),
		})
	default:
		h.log.Error("auth: sign in failed", "error", err)
		h.writer.Write(w, http.StatusInternalServerError, &response.Response{
			Message: "failed to sign in",
		})
	}
}

// SignOut always clears the cookies, even when the session store is unreachable.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(r.Context(), middleware.AccessToken(r)); err != nil {
		h.log.Error("auth: sign out failed", "error", err)
	}

	clearSessionCookies(w, h.cfg)

	h.writer.Write(w, http.StatusOK, &response.Response{})
}

func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	authenticated := false
	if token := middleware.AccessToken(r); token != "" {
		ok, err := h.auth.IsAuthenticated(r.Context(), token)
		if err != nil {
			h.log.Warn("auth: session check failed", "error", err)
		}
		authenticated = ok && err == nil
	}

	h.writer.Write(w, http.StatusOK, &response.Response{
		Data: map[string]bool{"authenticated": authenticated},
	})
}

// StartOAuth handles the provider buttons on the sign-in and sign-up pages.
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	res := h.forms.OAuth(r.Context(), r.PathValue("provider"))
	if !res.OK() || res.SignIn.Redirect == "" {
		http.Redirect(w, r, oauthFailedLocation, http.StatusSeeOther)
		return
	}

	setStateCookie(w, h.cfg, res.SignIn.State)
	http.Redirect(w, r, res.SignIn.Redirect, http.StatusSeeOther)
}

func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")
	q := r.URL.Query()
	state, code := q.Get("state"), q.Get("code")

	clearStateCookie(w, h.cfg)

	if providerErr := q.Get("error"); providerErr != "" {
		h.log.Warn("auth: provider denied authorization", "provider", provider, "error", providerErr)
		http.Redirect(w, r, oauthFailedLocation, http.StatusSeeOther)
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		h.log.Warn("auth: oauth state mismatch", "provider", provider)
		http.Redirect(w, r, oauthFailedLocation, http.StatusSeeOther)
		return
	}

	res, err := h.auth.CompleteOAuth(r.Context(), provider, state, code)
	if err != nil {
		h.log.Warn("auth: oauth callback failed", "provider", provider, "error", err)
		http.Redirect(w, r, oauthFailedLocation, http.StatusSeeOther)
		return
	}

	setSessionCookie(w, h.cfg, res)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
