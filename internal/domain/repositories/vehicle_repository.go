package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"vininfo.backend/internal/domain/entities"
)

// VehicleRepository defines saved vehicle operations. Every method is scoped to the owner.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *entities.Vehicle) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*entities.Vehicle, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Vehicle, error)
	ExistsByVIN(ctx context.Context, userID uuid.UUID, vin string) (bool, error)
	UpdateTitle(ctx context.Context, id, userID uuid.UUID, title null.String) (*entities.Vehicle, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}
