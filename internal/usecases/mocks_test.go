package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/volatiletech/null/v8"
	"vininfo.backend/internal/domain/entities"
	"vininfo.backend/internal/infrastructure/email"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, address string) (*entities.User, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePreferences(ctx context.Context, id uuid.UUID, patch entities.PreferencesPatch) (*entities.Preferences, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Preferences), args.Error(1)
}

func (m *MockUserRepository) ListMarketingRecipients(ctx context.Context) ([]*entities.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

// Mock EmailVerificationRepository
type MockEmailVerificationRepository struct {
	mock.Mock
}

func (m *MockEmailVerificationRepository) SetCode(ctx context.Context, userID uuid.UUID, code string, expiresAt, sentAt time.Time) error {
	args := m.Called(ctx, userID, code, expiresAt, sentAt)
	return args.Error(0)
}

func (m *MockEmailVerificationRepository) MarkVerified(ctx context.Context, userID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

// Mock VehicleRepository
type MockVehicleRepository struct {
	mock.Mock
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *entities.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*entities.Vehicle, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Vehicle, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) ExistsByVIN(ctx context.Context, userID uuid.UUID, vin string) (bool, error) {
	args := m.Called(ctx, userID, vin)
	return args.Bool(0), args.Error(1)
}

func (m *MockVehicleRepository) UpdateTitle(ctx context.Context, id, userID uuid.UUID, title null.String) (*entities.Vehicle, error) {
	args := m.Called(ctx, id, userID, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// Mock ReminderRepository
type MockReminderRepository struct {
	mock.Mock
}

func (m *MockReminderRepository) Create(ctx context.Context, reminder *entities.Reminder) error {
	args := m.Called(ctx, reminder)
	return args.Error(0)
}

func (m *MockReminderRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*entities.Reminder, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Reminder), args.Error(1)
}

func (m *MockReminderRepository) ListByUser(ctx context.Context, userID uuid.UUID, vehicleID *uuid.UUID) ([]*entities.Reminder, error) {
	args := m.Called(ctx, userID, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Reminder), args.Error(1)
}

func (m *MockReminderRepository) Update(ctx context.Context, id, userID uuid.UUID, update entities.ReminderUpdate) (*entities.Reminder, error) {
	args := m.Called(ctx, id, userID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Reminder), args.Error(1)
}

func (m *MockReminderRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// Mock ReminderDeliveryRepository
type MockReminderDeliveryRepository struct {
	mock.Mock
}

func (m *MockReminderDeliveryRepository) ListDueForEmail(ctx context.Context, today entities.Date) ([]*entities.ReminderDelivery, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ReminderDelivery), args.Error(1)
}

func (m *MockReminderDeliveryRepository) ClaimSent(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockReminderDeliveryRepository) ReleaseClaim(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// Mock EmailSender
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockEmailSender) Send(ctx context.Context, msg email.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// Mock RunLocker
type MockRunLocker struct {
	mock.Mock
	released int
}

func (m *MockRunLocker) Acquire(ctx context.Context) (func(context.Context) error, bool, error) {
	args := m.Called(ctx)
	if !args.Bool(0) {
		return nil, false, args.Error(1)
	}
	return func(context.Context) error {
		m.released++
		return nil
	}, true, args.Error(1)
}
