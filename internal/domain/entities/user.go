package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

const (
	// PasswordMinLength is the shortest accepted password
	PasswordMinLength = 8
	// VerificationCodeTTL is how long an emailed verification code stays valid
	VerificationCodeTTL = 24 * time.Hour
	// VerificationResendCooldown is the minimum gap between two verification emails
	VerificationResendCooldown = 60 * time.Second
)

// User represents a registered account
type User struct {
	ID                         uuid.UUID   `json:"id"`
	Email                      string      `json:"email"`
	PasswordHash               string      `json:"-"`
	CreatedAt                  time.Time   `json:"created_at"`
	TermsAcceptedAt            null.Time   `json:"terms_accepted_at"`
	EmailVerifiedAt            null.Time   `json:"email_verified_at"`
	EmailVerificationCode      null.String `json:"-"`
	EmailVerificationExpiresAt null.Time   `json:"-"`
	EmailVerificationSentAt    null.Time   `json:"-"`
	NotificationsEnabled       bool        `json:"notifications_enabled"`
	MarketingEnabled           bool        `json:"marketing_enabled"`
}

// IsVerified reports whether the email address was confirmed
func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt.Valid
}

// NormalizeEmail trims and lowercases an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Preferences are the user controlled email switches
type Preferences struct {
	NotificationsEnabled bool `json:"notifications_enabled"`
	MarketingEnabled     bool `json:"marketing_enabled"`
}

// PreferencesPatch holds optional preference updates
type PreferencesPatch struct {
	NotificationsEnabled null.Bool `json:"notificationsEnabled"`
	MarketingEnabled     null.Bool `json:"marketingEnabled"`
}

// IsEmpty reports whether no field was supplied
func (p PreferencesPatch) IsEmpty() bool {
	return !p.NotificationsEnabled.Valid && !p.MarketingEnabled.Valid
}

// RegisterInput represents input for user registration
type RegisterInput struct {
	Email            string    `json:"email"`
	Password         string    `json:"password"`
	TermsAccepted    bool      `json:"termsAccepted"`
	MarketingEnabled null.Bool `json:"marketingEnabled"`
}

// LoginInput represents input for user login
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyEmailInput carries the emailed six digit code
type VerifyEmailInput struct {
	Code string `json:"code"`
}

// RegisterResult is returned after a successful registration
type RegisterResult struct {
	User             *User
	SessionToken     string
	VerificationCode string
}

// AuthResult is returned after a successful login
type AuthResult struct {
	User         *User
	SessionToken string
}
