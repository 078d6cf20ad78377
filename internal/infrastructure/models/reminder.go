package models

import (
	"time"

	"github.com/google/uuid"
	"vininfo.backend/internal/domain/entities"
)

type Reminder struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index"`
	VehicleID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Type         string         `gorm:"type:text;not null"`
	DueDate      entities.Date  `gorm:"type:date;not null"`
	Note         *string        `gorm:"type:text"`
	IsDone       bool           `gorm:"not null;default:false"`
	CreatedAt    time.Time      `gorm:"not null;default:now()"`
	EmailEnabled bool           `gorm:"not null;default:true"`
	EmailSendAt  *entities.Date `gorm:"type:date"`
	EmailSentAt  *time.Time     `gorm:"type:timestamptz"`
}

func (Reminder) TableName() string {
	return "reminders"
}

// ReminderDelivery is the row shape of the dispatcher eligibility query.
type ReminderDelivery struct {
	ReminderID   uuid.UUID
	UserID       uuid.UUID
	Type         string
	DueDate      entities.Date
	Note         *string
	Email        string
	VehicleTitle *string
	VehicleBrand *string
	VehicleModel *string
}
