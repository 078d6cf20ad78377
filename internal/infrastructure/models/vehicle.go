package models

import (
	"time"

	"github.com/google/uuid"
)

type Vehicle struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	VIN       *string   `gorm:"column:vin;type:text"`
	TP        *string   `gorm:"column:tp;type:text"`
	ORV       *string   `gorm:"column:orv;type:text"`
	Title     *string   `gorm:"type:text"`
	Brand     *string   `gorm:"type:text"`
	Model     *string   `gorm:"type:text"`
	Snapshot  *string   `gorm:"type:jsonb"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}
