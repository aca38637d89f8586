// Package mocks provides testify mocks for the clearance use case and repositories.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	clearanceDomain "github.com/allisson/sentinel/internal/clearance/domain"
	macDomain "github.com/allisson/sentinel/internal/mac/domain"
)

// MockClearanceRepository is a mock implementation of usecase.ClearanceRepository.
type MockClearanceRepository struct {
	mock.Mock
}

func (m *MockClearanceRepository) Upsert(ctx context.Context, clearance *macDomain.Clearance) error {
	return m.Called(ctx, clearance).Error(0)
}

func (m *MockClearanceRepository) Get(ctx context.Context, userID uuid.UUID) (*macDomain.Clearance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*macDomain.Clearance), args.Error(1)
}

func (m *MockClearanceRepository) ListReviewDue(
	ctx context.Context,
	dueBefore time.Time,
) ([]*macDomain.Clearance, error) {
	args := m.Called(ctx, dueBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*macDomain.Clearance), args.Error(1)
}

func (m *MockClearanceRepository) CreateReview(ctx context.Context, review *clearanceDomain.Review) error {
	return m.Called(ctx, review).Error(0)
}

// MockEscalationRepository is a mock implementation of usecase.EscalationRepository.
type MockEscalationRepository struct {
	mock.Mock
}

func (m *MockEscalationRepository) Create(ctx context.Context, escalation *clearanceDomain.Escalation) error {
	return m.Called(ctx, escalation).Error(0)
}

func (m *MockEscalationRepository) Get(ctx context.Context, id uuid.UUID) (*clearanceDomain.Escalation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clearanceDomain.Escalation), args.Error(1)
}

func (m *MockEscalationRepository) Decide(ctx context.Context, escalation *clearanceDomain.Escalation) error {
	return m.Called(ctx, escalation).Error(0)
}

func (m *MockEscalationRepository) ListPending(
	ctx context.Context,
	offset, limit int,
) ([]*clearanceDomain.Escalation, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*clearanceDomain.Escalation), args.Error(1)
}

// MockClearanceUseCase is a mock implementation of usecase.ClearanceUseCase.
type MockClearanceUseCase struct {
	mock.Mock
}

func (m *MockClearanceUseCase) Assign(
	ctx context.Context,
	actor *authDomain.Principal,
	input *clearanceDomain.AssignInput,
) (*macDomain.Clearance, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*macDomain.Clearance), args.Error(1)
}

func (m *MockClearanceUseCase) Get(ctx context.Context, userID uuid.UUID) (*macDomain.Clearance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*macDomain.Clearance), args.Error(1)
}

func (m *MockClearanceUseCase) RequestEscalation(
	ctx context.Context,
	actor *authDomain.Principal,
	input *clearanceDomain.EscalationInput,
) (*clearanceDomain.Escalation, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clearanceDomain.Escalation), args.Error(1)
}

func (m *MockClearanceUseCase) DecideEscalation(
	ctx context.Context,
	actor *authDomain.Principal,
	input *clearanceDomain.DecideEscalationInput,
) (*clearanceDomain.Escalation, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clearanceDomain.Escalation), args.Error(1)
}

func (m *MockClearanceUseCase) ListPendingEscalations(
	ctx context.Context,
	offset, limit int,
) ([]*clearanceDomain.Escalation, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*clearanceDomain.Escalation), args.Error(1)
}

func (m *MockClearanceUseCase) Review(
	ctx context.Context,
	actor *authDomain.Principal,
	input *clearanceDomain.ReviewInput,
) (*clearanceDomain.Review, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clearanceDomain.Review), args.Error(1)
}

func (m *MockClearanceUseCase) GetUsersRequiringReview(
	ctx context.Context,
	daysBeforeDue int,
) ([]*macDomain.Clearance, error) {
	args := m.Called(ctx, daysBeforeDue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*macDomain.Clearance), args.Error(1)
}
