package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neetmentor-backend/internal/models"
	"neetmentor-backend/internal/services"
)

type stubAuthService struct {
	err         error
	tokens      *models.AuthTokens
	user        *models.User
	registered  *models.RegisterRequest
	changedFor  uuid.UUID
	loggedOut   string
	resentEmail string
}

func (s *stubAuthService) Register(ctx context.Context, req models.RegisterRequest) error {
	s.registered = &req
	return s.err
}

func (s *stubAuthService) VerifyOTP(ctx context.Context, req models.VerifyOTPRequest) (*models.User, *models.AuthTokens, error) {
	return s.user, s.tokens, s.err
}

func (s *stubAuthService) ResendOTP(ctx context.Context, email string) error {
	s.resentEmail = email
	return s.err
}

func (s *stubAuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthTokens, error) {
	return s.tokens, s.err
}

func (s *stubAuthService) GoogleLogin(ctx context.Context, req models.GoogleLoginRequest) (*models.AuthTokens, error) {
	return s.tokens, s.err
}

func (s *stubAuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	return s.tokens, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, refreshToken string) error {
	s.loggedOut = refreshToken
	return s.err
}

func (s *stubAuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req models.ChangePasswordRequest) error {
	s.changedFor = userID
	return s.err
}

func TestAuthHandler_Register(t *testing.T) {
	svc := &stubAuthService{}
	h := NewAuthHandler(svc)

	rr := httptest.NewRecorder()
	h.Register(rr, newRequest(http.MethodPost, "/", `{"email":"a@b.co","first_name":"Asha","password":"secret123"}`, uuid.Nil, nil))

	require.Equal(t, http.StatusCreated, rr.Code)
	require.NotNil(t, svc.registered)
	assert.Equal(t, "Asha", svc.registered.FirstName)
}

func TestAuthHandler_ServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"email": "Invalid email"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"conflict", &services.ConflictError{Message: "exists"}, http.StatusConflict, "CONFLICT"},
		{"unauthorized", &services.UnauthorizedError{Message: "bad credentials"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", &services.ForbiddenError{Message: "Your email is not verified yet. Please check your inbox."}, http.StatusForbidden, "FORBIDDEN"},
		{"rate limited", &services.RateLimitError{Message: "wait"}, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"not found", &services.NotFoundError{Message: "no"}, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&stubAuthService{err: tt.err})

			rr := httptest.NewRecorder()
			h.Login(rr, newRequest(http.MethodPost, "/", `{"email":"a@b.co","password":"x"}`, uuid.Nil, nil))

			require.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.code, decodeError(t, rr).Code)
		})
	}
}

func TestAuthHandler_LoginReturnsTokens(t *testing.T) {
	tokens := &models.AuthTokens{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 900}
	h := NewAuthHandler(&stubAuthService{tokens: tokens})

	rr := httptest.NewRecorder()
	h.Login(rr, newRequest(http.MethodPost, "/", `{"email":"a@b.co","password":"x"}`, uuid.Nil, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, *tokens, decodeBody[models.AuthTokens](t, rr))
}

func TestAuthHandler_VerifyOTP(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "a@b.co", IsEmailVerified: true}
	h := NewAuthHandler(&stubAuthService{user: user, tokens: &models.AuthTokens{AccessToken: "a"}})

	rr := httptest.NewRecorder()
	h.VerifyOTP(rr, newRequest(http.MethodPost, "/", `{"email":"a@b.co","otp":"123456"}`, uuid.Nil, nil))

	require.Equal(t, http.StatusCreated, rr.Code)
	body := decodeBody[map[string]any](t, rr)
	assert.Contains(t, body, "user")
	assert.Contains(t, body, "tokens")
}

func TestAuthHandler_ChangePasswordUsesCaller(t *testing.T) {
	userID := uuid.New()
	svc := &stubAuthService{}
	h := NewAuthHandler(svc)

	rr := httptest.NewRecorder()
	h.ChangePassword(rr, newRequest(http.MethodPut, "/", `{"current_password":"a","new_password":"b12345678"}`, userID, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, userID, svc.changedFor)
}
