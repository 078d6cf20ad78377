package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultSessionExpiry is the lifetime of the session cookie token
	DefaultSessionExpiry = 30 * 24 * time.Hour
	// DefaultUnsubscribeExpiry is the lifetime of one-click unsubscribe links
	DefaultUnsubscribeExpiry = 30 * 24 * time.Hour
)

var (
	// ErrUnauthorized is returned for every verification failure (malformed, expired, tampered).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidPreference is returned when an unsubscribe token names an unknown preference.
	ErrInvalidPreference = errors.New("invalid preference")
	// ErrMissingSecret is returned when the signing secret is not configured.
	ErrMissingSecret = errors.New("JWT_SECRET is not defined")
)

// Preference names a user email preference that an unsubscribe link can switch off.
type Preference string

const (
	PreferenceNotifications Preference = "notifications"
	PreferenceMarketing     Preference = "marketing"
)

// Valid reports whether p is one of the known preferences.
func (p Preference) Valid() bool {
	return p == PreferenceNotifications || p == PreferenceMarketing
}

// Purpose values keep a token of one kind from being accepted as the other.
const (
	PurposeSession     = "session"
	PurposeUnsubscribe = "unsubscribe"
)

// SessionClaims is the payload of a session token
type SessionClaims struct {
	UserID  string `json:"userId"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// UnsubscribeClaims is the payload of an unsubscribe token
type UnsubscribeClaims struct {
	UserID  string     `json:"userId"`
	Type    Preference `json:"type"`
	Purpose string     `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 tokens for sessions and unsubscribe links.
type TokenService struct {
	secret            []byte
	sessionExpiry     time.Duration
	unsubscribeExpiry time.Duration
	now               func() time.Time
}

var signJWTToken = func(token *jwt.Token, secret []byte) (string, error) {
	return token.SignedString(secret)
}

// NewTokenService creates a token service. Non-positive expiries fall back to the defaults.
func NewTokenService(secret string, sessionExpiry, unsubscribeExpiry time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	if sessionExpiry <= 0 {
		sessionExpiry = DefaultSessionExpiry
	}
	if unsubscribeExpiry <= 0 {
		unsubscribeExpiry = DefaultUnsubscribeExpiry
	}
	return &TokenService{
		secret:            []byte(secret),
		sessionExpiry:     sessionExpiry,
		unsubscribeExpiry: unsubscribeExpiry,
		now:               time.Now,
	}, nil
}

// WithClock replaces the clock used for issuing and verifying tokens.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// SessionExpiry returns the configured session lifetime
func (s *TokenService) SessionExpiry() time.Duration {
	return s.sessionExpiry
}

// IssueSessionToken signs {userId, purpose} with the session expiry.
func (s *TokenService) IssueSessionToken(userID uuid.UUID) (string, error) {
	claims := &SessionClaims{
		UserID:           userID.String(),
		Purpose:          PurposeSession,
		RegisteredClaims: s.registeredClaims(s.sessionExpiry),
	}
	return signJWTToken(jwt.NewWithClaims(jwt.SigningMethodHS256, claims), s.secret)
}

// VerifySessionToken checks signature and expiry and returns the user id.
func (s *TokenService) VerifySessionToken(tokenString string) (uuid.UUID, error) {
	claims := &SessionClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return uuid.Nil, err
	}
	if claims.Purpose != PurposeSession {
		return uuid.Nil, ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}
	return userID, nil
}

// DecodeUnverified reads the user id without checking the signature.
// The result must never be used for access control.
func (s *TokenService) DecodeUnverified(tokenString string) (uuid.UUID, bool) {
	claims := &SessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil || claims.Purpose != PurposeSession {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

// IssueUnsubscribeToken signs {userId, type, purpose} with the unsubscribe expiry.
func (s *TokenService) IssueUnsubscribeToken(userID string, pref Preference) (string, error) {
	if !pref.Valid() {
		return "", ErrInvalidPreference
	}
	claims := &UnsubscribeClaims{
		UserID:           userID,
		Type:             pref,
		Purpose:          PurposeUnsubscribe,
		RegisteredClaims: s.registeredClaims(s.unsubscribeExpiry),
	}
	return signJWTToken(jwt.NewWithClaims(jwt.SigningMethodHS256, claims), s.secret)
}

// VerifyUnsubscribeToken checks signature, expiry and purpose, then the preference name.
func (s *TokenService) VerifyUnsubscribeToken(tokenString string) (*UnsubscribeClaims, error) {
	claims := &UnsubscribeClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Purpose != PurposeUnsubscribe {
		return nil, ErrUnauthorized
	}
	if claims.UserID == "" || !claims.Type.Valid() {
		return nil, ErrInvalidPreference
	}
	return claims, nil
}

func (s *TokenService) registeredClaims(expiry time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func (s *TokenService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return ErrUnauthorized
	}
	return nil
}
