// Package mocks provides testify mocks for the resource use case and repository.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	resourceDomain "github.com/allisson/sentinel/internal/resource/domain"
)

// MockResourceRepository is a mock implementation of usecase.ResourceRepository.
type MockResourceRepository struct {
	mock.Mock
}

func (m *MockResourceRepository) Create(ctx context.Context, resource *resourceDomain.Resource) error {
	return m.Called(ctx, resource).Error(0)
}

func (m *MockResourceRepository) Get(
	ctx context.Context,
	resourceType, resourceID string,
) (*resourceDomain.Resource, error) {
	args := m.Called(ctx, resourceType, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resourceDomain.Resource), args.Error(1)
}

func (m *MockResourceRepository) UpdateLabel(ctx context.Context, resource *resourceDomain.Resource) error {
	return m.Called(ctx, resource).Error(0)
}

func (m *MockResourceRepository) UpdateOwner(
	ctx context.Context,
	resourceType, resourceID string,
	fromOwner, toOwner uuid.UUID,
) error {
	return m.Called(ctx, resourceType, resourceID, fromOwner, toOwner).Error(0)
}

func (m *MockResourceRepository) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*resourceDomain.Resource, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*resourceDomain.Resource), args.Error(1)
}

// MockResourceUseCase is a mock implementation of usecase.ResourceUseCase.
type MockResourceUseCase struct {
	mock.Mock
}

func (m *MockResourceUseCase) Register(
	ctx context.Context,
	actor *authDomain.Principal,
	input *resourceDomain.RegisterInput,
) (*resourceDomain.Resource, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resourceDomain.Resource), args.Error(1)
}

func (m *MockResourceUseCase) Get(
	ctx context.Context,
	resourceType, resourceID string,
) (*resourceDomain.Resource, error) {
	args := m.Called(ctx, resourceType, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resourceDomain.Resource), args.Error(1)
}

func (m *MockResourceUseCase) Reclassify(
	ctx context.Context,
	actor *authDomain.Principal,
	input *resourceDomain.ReclassifyInput,
) (*resourceDomain.Resource, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resourceDomain.Resource), args.Error(1)
}

func (m *MockResourceUseCase) ListOwned(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*resourceDomain.Resource, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*resourceDomain.Resource), args.Error(1)
}
