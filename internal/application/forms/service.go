package forms

import (
	"context"

	"gatehouse/internal/domain"
	"gatehouse/internal/logger"
)

const (
	NoticePasswordMismatch = "Passwords do not match"
	NoticeSignInFailed     = "An error occurred during sign in. Please try again."
	NoticeSignUpFailed     = "An error occurred during sign up. Please try again."
)

type SignInForm struct {
	Email    string `form:"email" validate:"required,min=2"`
	Password string `form:"password" validate:"required,min=8"`
}

type SignUpForm struct {
	Name            string `form:"name" validate:"required,min=1"`
	Email           string `form:"email" validate:"required,min=2"`
	Password        string `form:"password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,min=8"`
}

type Validator interface {
	Validate(payload any) map[string]string
}

// Result is the submission outcome plus, on success, what the auth client
// returned.
type Result struct {
	Submission
	SignIn *domain.SignInResult
}

func (r *Result) OK() bool {
	return r.SignIn != nil && r.State == Idle
}

type Service struct {
	auth      domain.AuthClient
	validator Validator
	log       logger.Logger
}

func NewService(auth domain.AuthClient, v Validator, log logger.Logger) *Service {
	return &Service{auth: auth, validator: v, log: log}
}

func (s *Service) SignIn(ctx context.Context, form SignInForm) *Result {
	res := &Result{}
	if errs := s.validator.Validate(&form); len(errs) > 0 {
		res.invalid(errs)
		return res
	}

	res.begin()
	out, err := s.auth.SignIn(ctx, domain.ProviderPassword, &domain.SignInParams{
		Flow:     domain.FlowSignIn,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		s.log.Warn("forms: sign in failed", "email", form.Email, "error", err)
		res.fail(NoticeSignInFailed)
		return res
	}

	res.SignIn = out
	res.finish()
	return res
}

// SignUp never calls the auth client when the passwords differ.
func (s *Service) SignUp(ctx context.Context, form SignUpForm) *Result {
	res := &Result{}
	if errs := s.validator.Validate(&form); len(errs) > 0 {
		res.invalid(errs)
		return res
	}

	res.begin()
	if form.Password != form.ConfirmPassword {
		res.fail(NoticePasswordMismatch)
		return res
	}

	out, err := s.auth.SignIn(ctx, domain.ProviderPassword, &domain.SignInParams{
		Flow:     domain.FlowSignUp,
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		s.log.Warn("forms: sign up failed", "email", form.Email, "error", err)
		res.fail(NoticeSignUpFailed)
		return res
	}

	res.SignIn = out
	res.finish()
	return res
}

// OAuth starts a provider redirect. Only github and google are offered.
func (s *Service) OAuth(ctx context.Context, provider string) *Result {
	res := &Result{}
	res.begin()

	if provider != domain.ProviderGithub && provider != domain.ProviderGoogle {
		res.fail(NoticeSignInFailed)
		return res
	}

	out, err := s.auth.SignIn(ctx, provider, nil)
	if err != nil {
		s.log.Warn("forms: oauth start failed", "provider", provider, "error", err)
		res.fail(NoticeSignInFailed)
		return res
	}

	res.SignIn = out
	res.finish()
	return res
}
