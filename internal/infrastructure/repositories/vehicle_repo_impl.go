package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"vininfo.backend/internal/domain/entities"
	domainerrors "vininfo.backend/internal/domain/errors"
	"vininfo.backend/internal/infrastructure/models"
)

// VehicleRepository implements saved vehicle operations
type VehicleRepository struct {
	db *gorm.DB
}

// NewVehicleRepository creates a new vehicle repository
func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// Create inserts a vehicle; a duplicate (user, vin) becomes ErrAlreadyExists.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *entities.Vehicle) error {
	m := &models.Vehicle{
		ID:        vehicle.ID,
		UserID:    vehicle.UserID,
		VIN:       vehicle.VIN.Ptr(),
		TP:        vehicle.TP.Ptr(),
		ORV:       vehicle.ORV.Ptr(),
		Title:     vehicle.Title.Ptr(),
		Brand:     vehicle.Brand.Ptr(),
		Model:     vehicle.Model.Ptr(),
		Snapshot:  snapshotToColumn(vehicle.Snapshot),
		CreatedAt: vehicle.CreatedAt,
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets an owned vehicle
func (r *VehicleRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*entities.Vehicle, error) {
	var m models.Vehicle
	if err := GetDB(ctx, r.db).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toVehicleEntity(&m), nil
}

// ListByUser lists the owner's vehicles, newest first
func (r *VehicleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Vehicle, error) {
	var rows []models.Vehicle
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	vehicles := make([]*entities.Vehicle, 0, len(rows))
	for i := range rows {
		vehicles = append(vehicles, toVehicleEntity(&rows[i]))
	}
	return vehicles, nil
}

// ExistsByVIN reports whether the user already saved this VIN
func (r *VehicleRepository) ExistsByVIN(ctx context.Context, userID uuid.UUID, vin string) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&models.Vehicle{}).
		Where("user_id = ? AND vin = ?", userID, vin).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateTitle sets or clears the title of an owned vehicle
func (r *VehicleRepository) UpdateTitle(ctx context.Context, id, userID uuid.UUID, title null.String) (*entities.Vehicle, error) {
	db := GetDB(ctx, r.db)
	result := db.Model(&models.Vehicle{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("title", title.Ptr())
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domainerrors.ErrNotFound
	}
	return r.GetByID(ctx, id, userID)
}

// Delete removes an owned vehicle; a missing row is not an error.
func (r *VehicleRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Vehicle{}).Error
}

func snapshotToColumn(raw json.RawMessage) *string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	s := string(raw)
	return &s
}

func toVehicleEntity(m *models.Vehicle) *entities.Vehicle {
	v := &entities.Vehicle{
		ID:        m.ID,
		UserID:    m.UserID,
		VIN:       null.StringFromPtr(m.VIN),
		TP:        null.StringFromPtr(m.TP),
		ORV:       null.StringFromPtr(m.ORV),
		Title:     null.StringFromPtr(m.Title),
		Brand:     null.StringFromPtr(m.Brand),
		Model:     null.StringFromPtr(m.Model),
		CreatedAt: m.CreatedAt,
	}
	if m.Snapshot != nil {
		v.Snapshot = json.RawMessage(*m.Snapshot)
	}
	return v
}
