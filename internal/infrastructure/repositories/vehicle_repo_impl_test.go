package repositories

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"vininfo.backend/internal/domain/entities"
	domainerrors "vininfo.backend/internal/domain/errors"
)

func newVehicle(userID uuid.UUID, vin string, createdAt time.Time) *entities.Vehicle {
	v := &entities.Vehicle{
		ID:        uuid.New(),
		UserID:    userID,
		Brand:     null.StringFrom("Skoda"),
		Model:     null.StringFrom("Octavia"),
		CreatedAt: createdAt,
	}
	if vin != "" {
		v.VIN = null.StringFrom(vin)
	}
	return v
}

func TestVehicleRepository_CRUD(t *testing.T) {
	db := newTestDB(t)
	createVehicleTable(t, db)
	repo := NewVehicleRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	older := newVehicle(userID, "TMBJJ7NE8L0000001", base)
	older.Snapshot = json.RawMessage(`{"VIN":"TMBJJ7NE8L0000001","Barva":"Modrá"}`)
	require.NoError(t, repo.Create(ctx, older))
	newer := newVehicle(userID, "", base.Add(time.Hour))
	newer.TP = null.StringFrom("UD123456")
	require.NoError(t, repo.Create(ctx, newer))

	list, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, newer.ID, list[0].ID, "newest first")
	require.JSONEq(t, string(older.Snapshot), string(list[1].Snapshot))
	require.Nil(t, list[0].Snapshot)

	exists, err := repo.ExistsByVIN(ctx, userID, "TMBJJ7NE8L0000001")
	require.NoError(t, err)
	require.True(t, exists)

	renamed, err := repo.UpdateTitle(ctx, older.ID, userID, null.StringFrom("Služební"))
	require.NoError(t, err)
	require.Equal(t, "Služební", renamed.Title.String)

	cleared, err := repo.UpdateTitle(ctx, older.ID, userID, null.String{})
	require.NoError(t, err)
	require.False(t, cleared.Title.Valid)

	_, err = repo.UpdateTitle(ctx, older.ID, uuid.New(), null.StringFrom("x"))
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, older.ID, uuid.New()), "foreign delete is a silent no-op")
	_, err = repo.GetByID(ctx, older.ID, userID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, older.ID, userID))
	require.NoError(t, repo.Delete(ctx, older.ID, userID))
	_, err = repo.GetByID(ctx, older.ID, userID)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestVehicleRepository_VINUniquePerUser(t *testing.T) {
	db := newTestDB(t)
	createVehicleTable(t, db)
	repo := NewVehicleRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	alice, bob := uuid.New(), uuid.New()

	require.NoError(t, repo.Create(ctx, newVehicle(alice, "VIN1", now)))
	require.ErrorIs(t, repo.Create(ctx, newVehicle(alice, "VIN1", now)), domainerrors.ErrAlreadyExists)
	require.NoError(t, repo.Create(ctx, newVehicle(bob, "VIN1", now)), "other users may save the same VIN")

	require.NoError(t, repo.Create(ctx, newVehicle(alice, "", now)))
	require.NoError(t, repo.Create(ctx, newVehicle(alice, "", now)), "vehicles without VIN are not deduplicated")

	exists, err := repo.ExistsByVIN(ctx, bob, "VIN2")
	require.NoError(t, err)
	require.False(t, exists)
}
