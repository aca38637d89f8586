// Package mocks provides testify mocks for the DAC use cases, repositories and services.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	dacDomain "github.com/allisson/sentinel/internal/dac/domain"
)

// MockPermissionRepository is a mock implementation of usecase.PermissionRepository.
type MockPermissionRepository struct {
	mock.Mock
}

func (m *MockPermissionRepository) Upsert(ctx context.Context, grant *dacDomain.ResourcePermission) error {
	return m.Called(ctx, grant).Error(0)
}

func (m *MockPermissionRepository) Get(
	ctx context.Context,
	resourceType, resourceID string,
	userID uuid.UUID,
) (*dacDomain.ResourcePermission, error) {
	args := m.Called(ctx, resourceType, resourceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dacDomain.ResourcePermission), args.Error(1)
}

func (m *MockPermissionRepository) Delete(
	ctx context.Context,
	resourceType, resourceID string,
	userID uuid.UUID,
) error {
	return m.Called(ctx, resourceType, resourceID, userID).Error(0)
}

func (m *MockPermissionRepository) ListByResource(
	ctx context.Context,
	resourceType, resourceID string,
) ([]*dacDomain.ResourcePermission, error) {
	args := m.Called(ctx, resourceType, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dacDomain.ResourcePermission), args.Error(1)
}

// MockTransferRepository is a mock implementation of usecase.TransferRepository.
type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) Create(ctx context.Context, transfer *dacDomain.OwnershipTransfer) error {
	return m.Called(ctx, transfer).Error(0)
}

func (m *MockTransferRepository) Get(ctx context.Context, id uuid.UUID) (*dacDomain.OwnershipTransfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dacDomain.OwnershipTransfer), args.Error(1)
}

func (m *MockTransferRepository) Decide(ctx context.Context, transfer *dacDomain.OwnershipTransfer) error {
	return m.Called(ctx, transfer).Error(0)
}

func (m *MockTransferRepository) ListPending(
	ctx context.Context,
	userID uuid.UUID,
) ([]*dacDomain.OwnershipTransfer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dacDomain.OwnershipTransfer), args.Error(1)
}

// MockLinkRepository is a mock implementation of usecase.LinkRepository.
type MockLinkRepository struct {
	mock.Mock
}

func (m *MockLinkRepository) Create(ctx context.Context, link *dacDomain.SharingLink) error {
	return m.Called(ctx, link).Error(0)
}

func (m *MockLinkRepository) Get(ctx context.Context, id uuid.UUID) (*dacDomain.SharingLink, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dacDomain.SharingLink), args.Error(1)
}

func (m *MockLinkRepository) GetByTokenHash(ctx context.Context, tokenHash []byte) (*dacDomain.SharingLink, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dacDomain.SharingLink), args.Error(1)
}

func (m *MockLinkRepository) IncrementUses(ctx context.Context, id uuid.UUID, now time.Time) error {
	return m.Called(ctx, id, now).Error(0)
}

func (m *MockLinkRepository) Revoke(ctx context.Context, id, revokedBy uuid.UUID, now time.Time) error {
	return m.Called(ctx, id, revokedBy, now).Error(0)
}

func (m *MockLinkRepository) ListByResource(
	ctx context.Context,
	resourceType, resourceID string,
) ([]*dacDomain.SharingLink, error) {
	args := m.Called(ctx, resourceType, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dacDomain.SharingLink), args.Error(1)
}

// MockLinkSecrets is a mock implementation of service.LinkSecrets.
type MockLinkSecrets struct {
	mock.Mock
}

func (m *MockLinkSecrets) GenerateToken() (string, []byte, error) {
	args := m.Called()
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).([]byte), args.Error(2)
}

func (m *MockLinkSecrets) HashToken(plainToken string) []byte {
	args := m.Called(plainToken)
	return args.Get(0).([]byte)
}

func (m *MockLinkSecrets) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockLinkSecrets) ComparePassword(password, hashed string) bool {
	return m.Called(password, hashed).Bool(0)
}

// MockPermissionUseCase is a mock implementation of usecase.PermissionUseCase.
type MockPermissionUseCase struct {
	mock.Mock
}

func (m *MockPermissionUseCase) GrantPermission(
	ctx context.Context,
	actor *authDomain.Principal,
	input *dacDomain.GrantPermissionInput,
) (*dacDomain.ResourcePermission, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dacDomain.ResourcePermission), args.Error(1)
}

func (m *MockPermissionUseCase) RevokePermission(
	ctx context.Context,
	actor *authDomain.Principal,
	input *dacDomain.RevokePermissionInput,
) error {
	return m.Called(ctx, actor, input).Error(0)
}

func (m *MockPermissionUseCase) ListPermissions(
	ctx context.Context,
	actor *authDomain.Principal,
	resourceType, resourceID string,
) ([]*dacDomain.ResourcePermission, error) {
	args := m.Called(ctx, actor, resourceType, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dacDomain.ResourcePermission), args.Error(1)
}

func (m *MockPermissionUseCase) EffectivePermission(
	ctx context.Context,
	userID uuid.UUID,
	resourceType, resourceID string,
) (dacDomain.Permission, error) {
	args := m.Called(ctx, userID, resourceType, resourceID)
	return args.Get(0).(dacDomain.Permission), args.Error(1)
}

func (m *MockPermissionUseCase) HasPermission(
	ctx context.Context,
	userID uuid.UUID,
	resourceType, resourceID string,
	required dacDomain.Permission,
) (bool, error) {
	args := m.Called(ctx, userID, resourceType, resourceID, required)
	return args.Bool(0), args.Error(1)
}

// MockTransferUseCase is a mock implementation of usecase.TransferUseCase.
type MockTransferUseCase struct {
	mock.Mock
}

func (m *MockTransferUseCase) RequestOwnershipTransfer(
	ctx context.Context,
	actor *authDomain.Principal,
	input *dacDomain.RequestTransferInput,
) (*dacDomain.OwnershipTransfer, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dacDomain.OwnershipTransfer), args.Error(1)
}

func (m *MockTransferUseCase) ApproveOwnershipTransfer(
	ctx context.Context,
	actor *authDomain.Principal,
	input *dacDomain.DecideTransferInput,
) (*dacDomain.OwnershipTransfer, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dacDomain.OwnershipTransfer), args.Error(1)
}

func (m *MockTransferUseCase) RejectOwnershipTransfer(
	ctx context.Context,
	actor *authDomain.Principal,
	input *dacDomain.DecideTransferInput,
) (*dacDomain.OwnershipTransfer, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dacDomain.OwnershipTransfer), args.Error(1)
}

func (m *MockTransferUseCase) ListPendingTransfers(
	ctx context.Context,
	userID uuid.UUID,
) ([]*dacDomain.OwnershipTransfer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dacDomain.OwnershipTransfer), args.Error(1)
}

// MockSharingLinkUseCase is a mock implementation of usecase.SharingLinkUseCase.
type MockSharingLinkUseCase struct {
	mock.Mock
}

func (m *MockSharingLinkUseCase) CreateSharingLink(
	ctx context.Context,
	actor *authDomain.Principal,
	input *dacDomain.CreateLinkInput,
) (*dacDomain.CreateLinkOutput, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dacDomain.CreateLinkOutput), args.Error(1)
}

func (m *MockSharingLinkUseCase) VerifySharingLink(
	ctx context.Context,
	input *dacDomain.VerifyLinkInput,
) (*dacDomain.SharingLink, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dacDomain.SharingLink), args.Error(1)
}

func (m *MockSharingLinkUseCase) UseSharingLink(
	ctx context.Context,
	input *dacDomain.VerifyLinkInput,
) (*dacDomain.SharingLink, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dacDomain.SharingLink), args.Error(1)
}

func (m *MockSharingLinkUseCase) RevokeSharingLink(
	ctx context.Context,
	actor *authDomain.Principal,
	linkID uuid.UUID,
) error {
	return m.Called(ctx, actor, linkID).Error(0)
}

func (m *MockSharingLinkUseCase) ListSharingLinks(
	ctx context.Context,
	actor *authDomain.Principal,
	resourceType, resourceID string,
) ([]*dacDomain.SharingLink, error) {
	args := m.Called(ctx, actor, resourceType, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dacDomain.SharingLink), args.Error(1)
}
