package forms

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gatehouse/internal/adapters/http/validator"
	"gatehouse/internal/domain"
	"gatehouse/internal/logger"
)

type mockAuthClient struct {
	mock.Mock
}

func (m *mockAuthClient) SignIn(ctx context.Context, provider string, params *domain.SignInParams) (*domain.SignInResult, error) {
	args := m.Called(ctx, provider, params)
	res, _ := args.Get(0).(*domain.SignInResult)
	return res, args.Error(1)
}

func (m *mockAuthClient) CompleteOAuth(ctx context.Context, provider, state, code string) (*domain.SignInResult, error) {
	args := m.Called(ctx, provider, state, code)
	res, _ := args.Get(0).(*domain.SignInResult)
	return res, args.Error(1)
}

func (m *mockAuthClient) SignOut(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockAuthClient) IsAuthenticated(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *mockAuthClient) CurrentSession(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	sess, _ := args.Get(0).(*domain.Session)
	return sess, args.Error(1)
}

func newService(client domain.AuthClient) *Service {
	return NewService(client, validator.New(), logger.Nop())
}

func validSignUp() SignUpForm {
	return SignUpForm{
		Name:            "Ada",
		Email:           "ada@example.com",
		Password:        "abcdefgh",
		ConfirmPassword: "abcdefgh",
	}
}

func TestSignUpPasswordMismatchNeverCallsAuth(t *testing.T) {
	client := &mockAuthClient{}
	svc := newService(client)

	form := validSignUp()
	form.ConfirmPassword = "abcdefgx"

	res := svc.SignUp(context.Background(), form)

	assert.Equal(t, Failed, res.State)
	assert.Equal(t, NoticePasswordMismatch, res.Notice)
	assert.False(t, res.OK())
	client.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything, mock.Anything)
}

func TestSignUpDelegatesPasswordFlow(t *testing.T) {
	client := &mockAuthClient{}
	want := &domain.SignInResult{Token: "tok"}
	client.On("SignIn", mock.Anything, domain.ProviderPassword, &domain.SignInParams{
		Flow:     domain.FlowSignUp,
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "abcdefgh",
	}).Return(want, nil).Once()

	res := newService(client).SignUp(context.Background(), validSignUp())

	require.True(t, res.OK())
	assert.Equal(t, Idle, res.State)
	assert.Same(t, want, res.SignIn)
	assert.Empty(t, res.Notice)
	client.AssertExpectations(t)
}

func TestAuthErrorsBecomeGenericNotices(t *testing.T) {
	client := &mockAuthClient{}
	client.On("SignIn", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("pq: connection reset by peer"))
	svc := newService(client)
	ctx := context.Background()

	up := svc.SignUp(ctx, validSignUp())
	assert.Equal(t, Failed, up.State)
	assert.False(t, up.Submitting())
	assert.Equal(t, NoticeSignUpFailed, up.Notice)
	assert.NotContains(t, up.Notice, "pq")

	in := svc.SignIn(ctx, SignInForm{Email: "ada@example.com", Password: "abcdefgh"})
	assert.Equal(t, Failed, in.State)
	assert.False(t, in.Submitting())
	assert.Equal(t, NoticeSignInFailed, in.Notice)

	oauth := svc.OAuth(ctx, domain.ProviderGithub)
	assert.Equal(t, Failed, oauth.State)
	assert.Equal(t, NoticeSignInFailed, oauth.Notice)
}

func TestFieldValidationStopsBeforeAuth(t *testing.T) {
	client := &mockAuthClient{}
	svc := newService(client)
	ctx := context.Background()

	in := svc.SignIn(ctx, SignInForm{Email: "", Password: "short"})
	assert.Equal(t, Failed, in.State)
	assert.Contains(t, in.FieldErrors, "email")
	assert.Contains(t, in.FieldErrors, "password")
	assert.Empty(t, in.Notice)

	up := svc.SignUp(ctx, SignUpForm{Email: "a@b.co", Password: "abcdefgh", ConfirmPassword: "abc"})
	assert.Contains(t, up.FieldErrors, "name")
	assert.Contains(t, up.FieldErrors, "confirmPassword")

	client.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything, mock.Anything)
}

func TestSignInDelegatesPasswordFlow(t *testing.T) {
	client := &mockAuthClient{}
	client.On("SignIn", mock.Anything, domain.ProviderPassword, &domain.SignInParams{
		Flow:     domain.FlowSignIn,
		Email:    "ada@example.com",
		Password: "abcdefgh",
	}).Return(&domain.SignInResult{Token: "tok"}, nil).Once()

	res := newService(client).SignIn(context.Background(), SignInForm{Email: "ada@example.com", Password: "abcdefgh"})

	assert.True(t, res.OK())
	client.AssertExpectations(t)
}

func TestOAuthOnlyOffersKnownProviders(t *testing.T) {
	client := &mockAuthClient{}
	client.On("SignIn", mock.Anything, domain.ProviderGoogle, (*domain.SignInParams)(nil)).
		Return(&domain.SignInResult{Redirect: "https://accounts.google.com/o/oauth2/auth?state=s"}, nil).Once()
	svc := newService(client)

	res := svc.OAuth(context.Background(), domain.ProviderGoogle)
	require.True(t, res.OK())
	assert.Contains(t, res.SignIn.Redirect, "accounts.google.com")

	res = svc.OAuth(context.Background(), domain.ProviderPassword)
	assert.Equal(t, Failed, res.State)

	client.AssertExpectations(t)
}
