// Package mocks provides testify mocks for the RuBAC repositories and use case.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	rubacDomain "github.com/allisson/sentinel/internal/rubac/domain"
)

// MockRuleRepository is a mock implementation of usecase.RuleRepository.
type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) Create(ctx context.Context, rule *rubacDomain.ContextRule) error {
	return m.Called(ctx, rule).Error(0)
}

func (m *MockRuleRepository) Get(ctx context.Context, id uuid.UUID) (*rubacDomain.ContextRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rubacDomain.ContextRule), args.Error(1)
}

func (m *MockRuleRepository) Update(ctx context.Context, rule *rubacDomain.ContextRule) error {
	return m.Called(ctx, rule).Error(0)
}

func (m *MockRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRuleRepository) List(ctx context.Context, offset, limit int) ([]*rubacDomain.ContextRule, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rubacDomain.ContextRule), args.Error(1)
}

func (m *MockRuleRepository) ListEnabledFor(
	ctx context.Context,
	resourceType string,
) ([]*rubacDomain.ContextRule, error) {
	args := m.Called(ctx, resourceType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rubacDomain.ContextRule), args.Error(1)
}

// MockHolidayRepository is a mock implementation of usecase.HolidayRepository.
type MockHolidayRepository struct {
	mock.Mock
}

func (m *MockHolidayRepository) Create(ctx context.Context, holiday *rubacDomain.Holiday) error {
	return m.Called(ctx, holiday).Error(0)
}

func (m *MockHolidayRepository) Delete(ctx context.Context, day time.Time) error {
	return m.Called(ctx, day).Error(0)
}

func (m *MockHolidayRepository) List(ctx context.Context) ([]*rubacDomain.Holiday, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rubacDomain.Holiday), args.Error(1)
}

func (m *MockHolidayRepository) ListBetween(
	ctx context.Context,
	from, to time.Time,
) ([]*rubacDomain.Holiday, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rubacDomain.Holiday), args.Error(1)
}

// MockDeviceRepository is a mock implementation of usecase.DeviceRepository.
type MockDeviceRepository struct {
	mock.Mock
}

func (m *MockDeviceRepository) Upsert(ctx context.Context, device *rubacDomain.DeviceProfile) error {
	return m.Called(ctx, device).Error(0)
}

func (m *MockDeviceRepository) Get(
	ctx context.Context,
	userID uuid.UUID,
	deviceID string,
) (*rubacDomain.DeviceProfile, error) {
	args := m.Called(ctx, userID, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rubacDomain.DeviceProfile), args.Error(1)
}

func (m *MockDeviceRepository) UpdateTrust(
	ctx context.Context,
	userID uuid.UUID,
	deviceID string,
	trust rubacDomain.DeviceTrust,
	updatedAt time.Time,
) error {
	return m.Called(ctx, userID, deviceID, trust, updatedAt).Error(0)
}

func (m *MockDeviceRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*rubacDomain.DeviceProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rubacDomain.DeviceProfile), args.Error(1)
}

// MockRuBACUseCase is a mock implementation of usecase.RuBACUseCase.
type MockRuBACUseCase struct {
	mock.Mock
}

func (m *MockRuBACUseCase) CreateRule(
	ctx context.Context,
	actor *authDomain.Principal,
	input *rubacDomain.RuleInput,
) (*rubacDomain.ContextRule, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rubacDomain.ContextRule), args.Error(1)
}

func (m *MockRuBACUseCase) UpdateRule(
	ctx context.Context,
	actor *authDomain.Principal,
	id uuid.UUID,
	input *rubacDomain.RuleInput,
) (*rubacDomain.ContextRule, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rubacDomain.ContextRule), args.Error(1)
}

func (m *MockRuBACUseCase) DeleteRule(ctx context.Context, actor *authDomain.Principal, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockRuBACUseCase) ListRules(ctx context.Context, offset, limit int) ([]*rubacDomain.ContextRule, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rubacDomain.ContextRule), args.Error(1)
}

func (m *MockRuBACUseCase) AddHoliday(
	ctx context.Context,
	actor *authDomain.Principal,
	day time.Time,
	name string,
) (*rubacDomain.Holiday, error) {
	args := m.Called(ctx, actor, day, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rubacDomain.Holiday), args.Error(1)
}

func (m *MockRuBACUseCase) DeleteHoliday(ctx context.Context, actor *authDomain.Principal, day time.Time) error {
	return m.Called(ctx, actor, day).Error(0)
}

func (m *MockRuBACUseCase) ListHolidays(ctx context.Context) ([]*rubacDomain.Holiday, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rubacDomain.Holiday), args.Error(1)
}

func (m *MockRuBACUseCase) RegisterDevice(
	ctx context.Context,
	actor *authDomain.Principal,
	input *rubacDomain.RegisterDeviceInput,
) (*rubacDomain.DeviceProfile, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rubacDomain.DeviceProfile), args.Error(1)
}

func (m *MockRuBACUseCase) UpdateDeviceTrust(
	ctx context.Context,
	actor *authDomain.Principal,
	input *rubacDomain.UpdateTrustInput,
) (*rubacDomain.DeviceProfile, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rubacDomain.DeviceProfile), args.Error(1)
}

func (m *MockRuBACUseCase) ListDevices(ctx context.Context, userID uuid.UUID) ([]*rubacDomain.DeviceProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rubacDomain.DeviceProfile), args.Error(1)
}

func (m *MockRuBACUseCase) Evaluate(
	ctx context.Context,
	input *rubacDomain.EvaluateInput,
) (*rubacDomain.Result, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rubacDomain.Result), args.Error(1)
}
