package crypto

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12

	verificationCodeMin = 100000
	verificationCodeMax = 999999
)

var (
	bcryptGenerateFromPassword = bcrypt.GenerateFromPassword
	randomInt                  = rand.Int
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcryptGenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword compares a password with a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateVerificationCode returns a six digit code drawn uniformly from [100000, 999999].
func GenerateVerificationCode() (string, error) {
	span := big.NewInt(verificationCodeMax - verificationCodeMin + 1)
	n, err := randomInt(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+verificationCodeMin, 10), nil
}
