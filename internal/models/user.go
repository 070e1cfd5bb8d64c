package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	FirstName        string     `json:"first_name"`
	SubscriptionTier string     `json:"subscription_tier"`
	IsEmailVerified  bool       `json:"is_email_verified"`
	IsActive         bool       `json:"is_active"`
	AuthProvider     string     `json:"auth_provider"`
	CreatedAt        time.Time  `json:"date_joined"`
	LastLoginAt      *time.Time `json:"last_login_at"`
}

// PendingRegistration is a sign-up awaiting OTP confirmation. It lives in
// Redis until verified or expired; no users row exists for it yet.
type PendingRegistration struct {
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	PasswordHash string    `json:"password_hash"`
	OTP          string    `json:"otp"`
	CreatedAt    time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	Password  string `json:"password"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type ResendOTPRequest struct {
	Email string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type GoogleLoginRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
}

type UserProfile struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	Email        string    `json:"email"`
	DateJoined   time.Time `json:"date_joined"`
	Subscription string    `json:"subscription"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
