package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"vininfo.backend/internal/domain/entities"
	domainerrors "vininfo.backend/internal/domain/errors"
)

type reminderFixture struct {
	db        *gorm.DB
	users     *UserRepository
	vehicles  *VehicleRepository
	reminders *ReminderRepository
	today     entities.Date
}

func newReminderFixture(t *testing.T) *reminderFixture {
	t.Helper()
	db := newTestDB(t)
	createAllTables(t, db)
	return &reminderFixture{
		db:        db,
		users:     NewUserRepository(db),
		vehicles:  NewVehicleRepository(db),
		reminders: NewReminderRepository(db),
		today:     entities.NewDate(2026, time.March, 10),
	}
}

func (f *reminderFixture) user(t *testing.T, verified, notifications bool) *entities.User {
	t.Helper()
	now := time.Now().UTC()
	return seedUser(t, f.users, uuid.NewString()+"@example.cz", now, func(u *entities.User) {
		if verified {
			u.EmailVerifiedAt = null.TimeFrom(now)
		}
		u.NotificationsEnabled = notifications
	})
}

func (f *reminderFixture) vehicle(t *testing.T, userID uuid.UUID) *entities.Vehicle {
	t.Helper()
	v := newVehicle(userID, "", time.Now().UTC())
	require.NoError(t, f.vehicles.Create(context.Background(), v))
	return v
}

func (f *reminderFixture) reminder(t *testing.T, userID, vehicleID uuid.UUID, due entities.Date, mutate func(r *entities.Reminder)) *entities.Reminder {
	t.Helper()
	r := &entities.Reminder{
		ID:           uuid.New(),
		UserID:       userID,
		VehicleID:    vehicleID,
		Type:         entities.ReminderTypeSTK,
		DueDate:      due,
		CreatedAt:    time.Now().UTC(),
		EmailEnabled: true,
		EmailSendAt:  entities.DefaultEmailSendAt(due, true, nil),
	}
	if mutate != nil {
		mutate(r)
	}
	require.NoError(t, f.reminders.Create(context.Background(), r))
	return r
}

func deliveryIDs(items []*entities.ReminderDelivery) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, d := range items {
		ids = append(ids, d.ReminderID)
	}
	return ids
}

func TestReminderRepository_ListDueForEmail_AllConditionsRequired(t *testing.T) {
	f := newReminderFixture(t)
	ctx := context.Background()

	owner := f.user(t, true, true)
	car := f.vehicle(t, owner.ID)

	later := f.reminder(t, owner.ID, car.ID, f.today.AddDays(5), func(r *entities.Reminder) {
		sendAt := f.today
		r.EmailSendAt = &sendAt
		r.Note = null.StringFrom("Vzít techničák")
	})
	earliest := f.reminder(t, owner.ID, car.ID, f.today.AddDays(1), nil)

	// each of these misses exactly one condition
	f.reminder(t, owner.ID, car.ID, f.today.AddDays(1), func(r *entities.Reminder) { r.EmailEnabled = false })
	f.reminder(t, owner.ID, car.ID, f.today.AddDays(3), nil)
	f.reminder(t, owner.ID, car.ID, f.today.AddDays(1), func(r *entities.Reminder) { r.EmailSentAt = null.TimeFrom(time.Now()) })
	unverified := f.user(t, false, true)
	f.reminder(t, unverified.ID, f.vehicle(t, unverified.ID).ID, f.today.AddDays(1), nil)
	optedOut := f.user(t, true, false)
	f.reminder(t, optedOut.ID, f.vehicle(t, optedOut.ID).ID, f.today.AddDays(1), nil)
	f.reminder(t, owner.ID, car.ID, f.today.AddDays(1), func(r *entities.Reminder) { r.EmailSendAt = nil })

	items, err := f.reminders.ListDueForEmail(ctx, f.today)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{earliest.ID, later.ID}, deliveryIDs(items))

	first := items[0]
	require.Equal(t, owner.Email, first.Email)
	require.Equal(t, owner.ID, first.UserID)
	require.Equal(t, "Skoda Octavia", first.VehicleName())
	require.Equal(t, f.today.AddDays(1).String(), first.DueDate.String())
	require.Equal(t, "Vzít techničák", items[1].Note.String)
}

func TestReminderRepository_ListDueForEmail_ExcludesOrphans(t *testing.T) {
	f := newReminderFixture(t)
	ctx := context.Background()

	owner := f.user(t, true, true)
	car := f.vehicle(t, owner.ID)
	f.reminder(t, owner.ID, car.ID, f.today, nil)
	f.reminder(t, owner.ID, uuid.New(), f.today, nil)

	require.NoError(t, f.vehicles.Delete(ctx, car.ID, owner.ID))

	items, err := f.reminders.ListDueForEmail(ctx, f.today)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestReminderRepository_ClaimSentIsExclusive(t *testing.T) {
	f := newReminderFixture(t)
	ctx := context.Background()
	owner := f.user(t, true, true)
	r := f.reminder(t, owner.ID, f.vehicle(t, owner.ID).ID, f.today, nil)

	first := time.Now().UTC().Truncate(time.Microsecond)
	ok, err := f.reminders.ClaimSent(ctx, r.ID, first)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.reminders.ClaimSent(ctx, r.ID, first.Add(time.Second))
	require.NoError(t, err)
	require.False(t, ok, "second claim must lose")

	items, err := f.reminders.ListDueForEmail(ctx, f.today)
	require.NoError(t, err)
	require.Empty(t, items, "claimed reminders are no longer eligible")

	// a stale release from a different claim leaves the mark alone
	require.NoError(t, f.reminders.ReleaseClaim(ctx, r.ID, first.Add(time.Second)))
	items, err = f.reminders.ListDueForEmail(ctx, f.today)
	require.NoError(t, err)
	require.Empty(t, items)

	require.NoError(t, f.reminders.ReleaseClaim(ctx, r.ID, first))
	items, err = f.reminders.ListDueForEmail(ctx, f.today)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestReminderRepository_ListUpdateDelete(t *testing.T) {
	f := newReminderFixture(t)
	ctx := context.Background()
	owner := f.user(t, true, true)
	car := f.vehicle(t, owner.ID)
	other := f.vehicle(t, owner.ID)

	late := f.reminder(t, owner.ID, car.ID, f.today.AddDays(30), nil)
	soon := f.reminder(t, owner.ID, car.ID, f.today.AddDays(2), nil)
	f.reminder(t, owner.ID, other.ID, f.today.AddDays(10), nil)

	all, err := f.reminders.ListByUser(ctx, owner.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, soon.ID, all[0].ID)

	forCar, err := f.reminders.ListByUser(ctx, owner.ID, &car.ID)
	require.NoError(t, err)
	require.Len(t, forCar, 2)
	require.Equal(t, late.ID, forCar[1].ID)

	newDue := f.today.AddDays(40)
	updated, err := f.reminders.Update(ctx, late.ID, owner.ID, entities.ReminderUpdate{
		DueDate:      &newDue,
		SetNote:      true,
		Note:         null.StringFrom("Pneuservis"),
		IsDone:       null.BoolFrom(true),
		EmailEnabled: null.BoolFrom(false),
		SetSendAt:    true,
	})
	require.NoError(t, err)
	require.Equal(t, newDue.String(), updated.DueDate.String())
	require.Equal(t, "Pneuservis", updated.Note.String)
	require.True(t, updated.IsDone)
	require.False(t, updated.EmailEnabled)
	require.Nil(t, updated.EmailSendAt)

	_, err = f.reminders.Update(ctx, late.ID, uuid.New(), entities.ReminderUpdate{IsDone: null.BoolFrom(false)})
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = f.reminders.Update(ctx, late.ID, owner.ID, entities.ReminderUpdate{})
	require.ErrorIs(t, err, domainerrors.ErrNoFields)

	require.NoError(t, f.reminders.Delete(ctx, late.ID, owner.ID))
	_, err = f.reminders.GetByID(ctx, late.ID, owner.ID)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}
