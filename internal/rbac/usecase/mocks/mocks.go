// Package mocks provides testify mocks for the RBAC use case and repositories.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	rbacDomain "github.com/allisson/sentinel/internal/rbac/domain"
)

// MockRoleRepository is a mock implementation of usecase.RoleRepository.
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) Create(ctx context.Context, role *rbacDomain.Role) error {
	return m.Called(ctx, role).Error(0)
}

func (m *MockRoleRepository) Get(ctx context.Context, id uuid.UUID) (*rbacDomain.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Role), args.Error(1)
}

func (m *MockRoleRepository) GetByName(ctx context.Context, name string) (*rbacDomain.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Role), args.Error(1)
}

func (m *MockRoleRepository) List(ctx context.Context, offset, limit int) ([]*rbacDomain.Role, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.Role), args.Error(1)
}

// MockAssignmentRepository is a mock implementation of usecase.AssignmentRepository.
type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) Create(ctx context.Context, assignment *rbacDomain.RoleAssignment) error {
	return m.Called(ctx, assignment).Error(0)
}

func (m *MockAssignmentRepository) ListActive(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*rbacDomain.ActiveAssignment, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.ActiveAssignment), args.Error(1)
}

func (m *MockAssignmentRepository) Revoke(
	ctx context.Context,
	userID, roleID, revokedBy uuid.UUID,
	reason string,
	now time.Time,
) (int64, error) {
	args := m.Called(ctx, userID, roleID, revokedBy, reason, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockRequestRepository is a mock implementation of usecase.RequestRepository.
type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) Create(ctx context.Context, request *rbacDomain.RoleRequest) error {
	return m.Called(ctx, request).Error(0)
}

func (m *MockRequestRepository) Get(ctx context.Context, id uuid.UUID) (*rbacDomain.RoleRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.RoleRequest), args.Error(1)
}

func (m *MockRequestRepository) Decide(ctx context.Context, request *rbacDomain.RoleRequest) error {
	return m.Called(ctx, request).Error(0)
}

func (m *MockRequestRepository) ListPending(
	ctx context.Context,
	offset, limit int,
) ([]*rbacDomain.RoleRequest, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.RoleRequest), args.Error(1)
}

// MockRBACUseCase is a mock implementation of usecase.RBACUseCase.
type MockRBACUseCase struct {
	mock.Mock
}

func (m *MockRBACUseCase) CreateRole(
	ctx context.Context,
	actor *authDomain.Principal,
	input *rbacDomain.CreateRoleInput,
) (*rbacDomain.Role, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Role), args.Error(1)
}

func (m *MockRBACUseCase) GetRole(ctx context.Context, id uuid.UUID) (*rbacDomain.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Role), args.Error(1)
}

func (m *MockRBACUseCase) ListRoles(ctx context.Context, offset, limit int) ([]*rbacDomain.Role, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.Role), args.Error(1)
}

func (m *MockRBACUseCase) AssignRole(
	ctx context.Context,
	actor *authDomain.Principal,
	input *rbacDomain.AssignRoleInput,
) (*rbacDomain.RoleAssignment, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.RoleAssignment), args.Error(1)
}

func (m *MockRBACUseCase) RevokeRole(
	ctx context.Context,
	actor *authDomain.Principal,
	input *rbacDomain.RevokeRoleInput,
) error {
	return m.Called(ctx, actor, input).Error(0)
}

func (m *MockRBACUseCase) RequestRole(
	ctx context.Context,
	actor *authDomain.Principal,
	input *rbacDomain.RequestRoleInput,
) (*rbacDomain.RoleRequest, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.RoleRequest), args.Error(1)
}

func (m *MockRBACUseCase) ApproveRoleRequest(
	ctx context.Context,
	actor *authDomain.Principal,
	input *rbacDomain.ApproveRoleRequestInput,
) (*rbacDomain.RoleAssignment, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.RoleAssignment), args.Error(1)
}

func (m *MockRBACUseCase) RejectRoleRequest(
	ctx context.Context,
	actor *authDomain.Principal,
	input *rbacDomain.RejectRoleRequestInput,
) (*rbacDomain.RoleRequest, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.RoleRequest), args.Error(1)
}

func (m *MockRBACUseCase) ListPendingRequests(
	ctx context.Context,
	offset, limit int,
) ([]*rbacDomain.RoleRequest, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.RoleRequest), args.Error(1)
}

func (m *MockRBACUseCase) ListAssignments(
	ctx context.Context,
	userID uuid.UUID,
) ([]*rbacDomain.ActiveAssignment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.ActiveAssignment), args.Error(1)
}

func (m *MockRBACUseCase) EffectivePermissions(
	ctx context.Context,
	userID uuid.UUID,
) (*rbacDomain.EffectivePermissions, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.EffectivePermissions), args.Error(1)
}

func (m *MockRBACUseCase) HasPermission(
	ctx context.Context,
	userID uuid.UUID,
	resourceType, action string,
) (bool, error) {
	args := m.Called(ctx, userID, resourceType, action)
	return args.Bool(0), args.Error(1)
}
