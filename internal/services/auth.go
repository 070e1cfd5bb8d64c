package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"neetmentor-backend/internal/middleware"
	"neetmentor-backend/internal/models"
	"neetmentor-backend/internal/repository"
)

const (
	bcryptCost       = 12
	otpDigits        = 6
	refreshTokenTTL  = 7 * 24 * time.Hour
	otpResendWindow  = 60 * time.Second
	refreshKeyPrefix = "refresh:"
	resendKeyPrefix  = "resend_limit:"
)

type userStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

type registrationStore interface {
	Save(ctx context.Context, p *models.PendingRegistration, ttl time.Duration) error
	Get(ctx context.Context, email string) (*models.PendingRegistration, error)
	Exists(ctx context.Context, email string) (bool, error)
	Delete(ctx context.Context, email string) error
}

type otpMailer interface {
	QueueOTP(ctx context.Context, to, firstName, otp string, ttl time.Duration) error
}

type AuthService struct {
	users         userStore
	registrations registrationStore
	redis         *redis.Client
	jwt           *middleware.JWTAuth
	email         otpMailer
	otpTTL        time.Duration
}

func NewAuthService(
	users userStore,
	registrations registrationStore,
	redisClient *redis.Client,
	jwt *middleware.JWTAuth,
	email otpMailer,
	otpTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:         users,
		registrations: registrations,
		redis:         redisClient,
		jwt:           jwt,
		email:         email,
		otpTTL:        otpTTL,
	}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register stores a pending registration and emails its OTP. No user row is
// created until VerifyOTP succeeds.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) error {
	email := normalizeEmail(req.Email)

	fieldErrors := make(map[string]string)
	if email == "" {
		fieldErrors["email"] = "Email is required"
	} else if !emailRegex.MatchString(email) {
		fieldErrors["email"] = "Invalid email format"
	}
	if req.Password == "" {
		fieldErrors["password"] = "Password is required"
	} else if err := validatePassword(req.Password); err != nil {
		fieldErrors["password"] = err.Error()
	}
	if len(fieldErrors) > 0 {
		return &ValidationError{Fields: fieldErrors}
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return &ConflictError{Message: "An account with this email already exists"}
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	otp, err := generateOTP()
	if err != nil {
		return err
	}

	pending := &models.PendingRegistration{
		Email:        email,
		FirstName:    strings.TrimSpace(req.FirstName),
		PasswordHash: string(hash),
		OTP:          otp,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.registrations.Save(ctx, pending, s.otpTTL); err != nil {
		return fmt.Errorf("failed to store pending registration: %w", err)
	}

	if err := s.email.QueueOTP(ctx, email, pending.FirstName, otp, s.otpTTL); err != nil {
		return fmt.Errorf("failed to queue verification email: %w", err)
	}
	return nil
}

// VerifyOTP turns a matching pending registration into a verified user and
// signs them in.
func (s *AuthService) VerifyOTP(ctx context.Context, req models.VerifyOTPRequest) (*models.User, *models.AuthTokens, error) {
	email := normalizeEmail(req.Email)
	invalid := &ValidationError{Fields: map[string]string{"otp": "Invalid verification code. Please check and try again."}}

	if email == "" || strings.TrimSpace(req.OTP) == "" {
		return nil, nil, invalid
	}

	pending, err := s.registrations.Get(ctx, email)
	if errors.Is(err, repository.ErrRegistrationNotFound) {
		return nil, nil, invalid
	}
	if err != nil {
		return nil, nil, err
	}
	if pending.OTP != strings.TrimSpace(req.OTP) {
		return nil, nil, invalid
	}

	user := &models.User{
		Email:           pending.Email,
		PasswordHash:    pending.PasswordHash,
		FirstName:       pending.FirstName,
		IsEmailVerified: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.registrations.Delete(ctx, email); err != nil {
		log.Warn().Err(err).Str("email", email).Msg("failed to delete pending registration")
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	pending, err := s.registrations.Get(ctx, email)
	if errors.Is(err, repository.ErrRegistrationNotFound) {
		return &NotFoundError{Message: "No pending registration for this email"}
	}
	if err != nil {
		return err
	}

	throttled, err := s.redis.SetNX(ctx, resendKeyPrefix+email, "1", otpResendWindow).Result()
	if err != nil {
		return fmt.Errorf("failed to check resend throttle: %w", err)
	}
	if !throttled {
		return &RateLimitError{Message: "Please wait 60 seconds before requesting another code"}
	}

	otp, err := generateOTP()
	if err != nil {
		return err
	}
	pending.OTP = otp
	if err := s.registrations.Save(ctx, pending, s.otpTTL); err != nil {
		return fmt.Errorf("failed to store pending registration: %w", err)
	}

	return s.email.QueueOTP(ctx, email, pending.FirstName, otp, s.otpTTL)
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthTokens, error) {
	email := normalizeEmail(req.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		pending, existsErr := s.registrations.Exists(ctx, email)
		if existsErr != nil {
			return nil, existsErr
		}
		if pending {
			return nil, &ForbiddenError{Message: "Your email is not verified yet. Please check your inbox."}
		}
		return nil, &UnauthorizedError{Message: "Invalid email or password"}
	}
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, &UnauthorizedError{Message: "Account is deactivated"}
	}

	if user.PasswordHash == "" {
		return nil, &UnauthorizedError{Message: "Invalid email or password"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, &UnauthorizedError{Message: "Invalid email or password"}
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to update last login")
	}

	return s.issueTokens(ctx, user)
}

// GoogleLogin signs in the account for email, creating a verified one on
// first use. The client has already completed the Google flow.
func (s *AuthService) GoogleLogin(ctx context.Context, req models.GoogleLoginRequest) (*models.AuthTokens, error) {
	email := normalizeEmail(req.Email)
	if !emailRegex.MatchString(email) {
		return nil, &ValidationError{Fields: map[string]string{"email": "Invalid email format"}}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		user = &models.User{
			Email:           email,
			FirstName:       strings.TrimSpace(req.FirstName),
			IsEmailVerified: true,
			AuthProvider:    "google",
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, &UnauthorizedError{Message: "Account is deactivated"}
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to update last login")
	}
	return s.issueTokens(ctx, user)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	userIDStr, err := s.redis.GetDel(ctx, refreshKeyPrefix+refreshToken).Result()
	if err != nil {
		return nil, &UnauthorizedError{Message: "Invalid or expired refresh token. Please log in again."}
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, &UnauthorizedError{Message: "Account is deactivated"}
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.redis.Del(ctx, refreshKeyPrefix+refreshToken).Err()
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req models.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return &NotFoundError{Message: "User not found"}
	}
	if err != nil {
		return err
	}

	if user.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			return &ValidationError{Fields: map[string]string{"current_password": "Current password is incorrect"}}
		}
	}
	if err := validatePassword(req.NewPassword); err != nil {
		return &ValidationError{Fields: map[string]string{"new_password": err.Error()}}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*models.AuthTokens, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user.ID, user.Email, user.SubscriptionTier)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := generateToken(64)
	if err != nil {
		return nil, err
	}

	if err := s.redis.Set(ctx, refreshKeyPrefix+refreshToken, user.ID.String(), refreshTokenTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(middleware.AccessTokenTTL.Seconds()),
	}, nil
}

func generateToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// generateOTP returns a uniformly random zero-padded numeric code.
func generateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

func validatePassword(pw string) error {
	if len(pw) < 8 {
		return fmt.Errorf("Password must be at least 8 characters")
	}
	for _, ch := range pw {
		if unicode.IsDigit(ch) {
			return nil
		}
	}
	return fmt.Errorf("Password must contain at least one number")
}
