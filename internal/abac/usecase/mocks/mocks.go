// Package mocks provides testify mocks for the ABAC repositories and use case.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	abacDomain "github.com/allisson/sentinel/internal/abac/domain"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
)

// MockPolicyRepository is a mock implementation of usecase.PolicyRepository.
type MockPolicyRepository struct {
	mock.Mock
}

func (m *MockPolicyRepository) Create(ctx context.Context, policy *abacDomain.Policy) error {
	return m.Called(ctx, policy).Error(0)
}

func (m *MockPolicyRepository) Get(ctx context.Context, id uuid.UUID) (*abacDomain.Policy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*abacDomain.Policy), args.Error(1)
}

func (m *MockPolicyRepository) Update(ctx context.Context, policy *abacDomain.Policy) error {
	return m.Called(ctx, policy).Error(0)
}

func (m *MockPolicyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPolicyRepository) List(ctx context.Context, offset, limit int) ([]*abacDomain.Policy, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*abacDomain.Policy), args.Error(1)
}

func (m *MockPolicyRepository) ListEnabledFor(
	ctx context.Context,
	resourceType, action string,
) ([]*abacDomain.Policy, error) {
	args := m.Called(ctx, resourceType, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*abacDomain.Policy), args.Error(1)
}

// MockAttributeRepository is a mock implementation of usecase.AttributeRepository.
type MockAttributeRepository struct {
	mock.Mock
}

func (m *MockAttributeRepository) Upsert(ctx context.Context, attribute *abacDomain.UserAttribute) error {
	return m.Called(ctx, attribute).Error(0)
}

func (m *MockAttributeRepository) Delete(ctx context.Context, userID uuid.UUID, name string) error {
	return m.Called(ctx, userID, name).Error(0)
}

func (m *MockAttributeRepository) ListActive(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*abacDomain.UserAttribute, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*abacDomain.UserAttribute), args.Error(1)
}

// MockABACUseCase is a mock implementation of usecase.ABACUseCase.
type MockABACUseCase struct {
	mock.Mock
}

func (m *MockABACUseCase) CreatePolicy(
	ctx context.Context,
	actor *authDomain.Principal,
	input *abacDomain.PolicyInput,
) (*abacDomain.Policy, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*abacDomain.Policy), args.Error(1)
}

func (m *MockABACUseCase) UpdatePolicy(
	ctx context.Context,
	actor *authDomain.Principal,
	id uuid.UUID,
	input *abacDomain.PolicyInput,
) (*abacDomain.Policy, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*abacDomain.Policy), args.Error(1)
}

func (m *MockABACUseCase) DeletePolicy(ctx context.Context, actor *authDomain.Principal, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockABACUseCase) GetPolicy(ctx context.Context, id uuid.UUID) (*abacDomain.Policy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*abacDomain.Policy), args.Error(1)
}

func (m *MockABACUseCase) ListPolicies(ctx context.Context, offset, limit int) ([]*abacDomain.Policy, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*abacDomain.Policy), args.Error(1)
}

func (m *MockABACUseCase) SetAttribute(
	ctx context.Context,
	actor *authDomain.Principal,
	input *abacDomain.SetAttributeInput,
) (*abacDomain.UserAttribute, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*abacDomain.UserAttribute), args.Error(1)
}

func (m *MockABACUseCase) DeleteAttribute(
	ctx context.Context,
	actor *authDomain.Principal,
	userID uuid.UUID,
	name string,
) error {
	return m.Called(ctx, actor, userID, name).Error(0)
}

func (m *MockABACUseCase) ListAttributes(ctx context.Context, userID uuid.UUID) ([]*abacDomain.UserAttribute, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*abacDomain.UserAttribute), args.Error(1)
}

func (m *MockABACUseCase) Evaluate(
	ctx context.Context,
	input *abacDomain.EvaluateInput,
) (*abacDomain.Evaluation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*abacDomain.Evaluation), args.Error(1)
}
