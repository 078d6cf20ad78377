package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email                      string     `gorm:"type:text;uniqueIndex;not null"`
	PasswordHash               string     `gorm:"type:text;not null"`
	CreatedAt                  time.Time  `gorm:"not null;default:now()"`
	TermsAcceptedAt            *time.Time `gorm:"type:timestamptz"`
	EmailVerifiedAt            *time.Time `gorm:"type:timestamptz"`
	EmailVerificationCode      *string    `gorm:"type:text"`
	EmailVerificationExpiresAt *time.Time `gorm:"type:timestamptz"`
	EmailVerificationSentAt    *time.Time `gorm:"type:timestamptz"`
	NotificationsEnabled       bool       `gorm:"not null;default:true"`
	MarketingEnabled           bool       `gorm:"not null;default:true"`
}

func (User) TableName() string {
	return "users"
}
