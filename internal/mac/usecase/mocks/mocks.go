// Package mocks provides testify mocks for the MAC use case.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	macDomain "github.com/allisson/sentinel/internal/mac/domain"
)

// MockMACUseCase is a mock implementation of usecase.MACUseCase.
type MockMACUseCase struct {
	mock.Mock
}

func (m *MockMACUseCase) CheckReadAccess(
	ctx context.Context,
	userID uuid.UUID,
	resourceType, resourceID string,
) (*macDomain.Decision, error) {
	args := m.Called(ctx, userID, resourceType, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*macDomain.Decision), args.Error(1)
}

func (m *MockMACUseCase) CheckWriteAccess(
	ctx context.Context,
	userID uuid.UUID,
	resourceType, resourceID string,
) (*macDomain.Decision, error) {
	args := m.Called(ctx, userID, resourceType, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*macDomain.Decision), args.Error(1)
}

func (m *MockMACUseCase) Check(
	ctx context.Context,
	userID uuid.UUID,
	resourceType, resourceID string,
	mode macDomain.AccessMode,
) (*macDomain.Decision, error) {
	args := m.Called(ctx, userID, resourceType, resourceID, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*macDomain.Decision), args.Error(1)
}

func (m *MockMACUseCase) Subject(ctx context.Context, userID uuid.UUID) (macDomain.Subject, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(macDomain.Subject), args.Error(1)
}
