package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditMocks "github.com/allisson/sentinel/internal/audit/usecase/mocks"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	"github.com/allisson/sentinel/internal/clock"
	dacDomain "github.com/allisson/sentinel/internal/dac/domain"
	"github.com/allisson/sentinel/internal/dac/usecase/mocks"
	databaseMocks "github.com/allisson/sentinel/internal/database/mocks"
	apperrors "github.com/allisson/sentinel/internal/errors"
	macDomain "github.com/allisson/sentinel/internal/mac/domain"
	macMocks "github.com/allisson/sentinel/internal/mac/usecase/mocks"
	resourceDomain "github.com/allisson/sentinel/internal/resource/domain"
	resourceMocks "github.com/allisson/sentinel/internal/resource/usecase/mocks"
)

var testNow = time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

func newUser() *authDomain.Principal {
	return &authDomain.Principal{UserID: uuid.Must(uuid.NewV7())}
}

func newResource(owner uuid.UUID) *resourceDomain.Resource {
	return &resourceDomain.Resource{
		ID:             uuid.Must(uuid.NewV7()),
		ResourceType:   "door",
		ResourceID:     "lobby-1",
		OwnerID:        owner,
		Classification: macDomain.Confidential,
		Compartments:   macDomain.Compartments{},
	}
}

type permissionFixture struct {
	permissionRepo *mocks.MockPermissionRepository
	resourceRepo   *resourceMocks.MockResourceRepository
	subjects       *macMocks.MockMACUseCase
	uc             PermissionUseCase
}

func newPermissionFixture(t *testing.T) *permissionFixture {
	f := &permissionFixture{
		permissionRepo: &mocks.MockPermissionRepository{},
		resourceRepo:   &resourceMocks.MockResourceRepository{},
		subjects:       &macMocks.MockMACUseCase{},
	}
	f.uc = NewPermissionUseCase(
		databaseMocks.NewMockTxManager(t).PassThrough(),
		f.permissionRepo,
		f.resourceRepo,
		f.subjects,
		(&auditMocks.MockAuditUseCase{}).AcceptAll(),
		clock.NewFake(testNow),
	)
	return f
}

func grantInput(resource *resourceDomain.Resource, perms dacDomain.Permission) *dacDomain.GrantPermissionInput {
	return &dacDomain.GrantPermissionInput{
		ResourceType: resource.ResourceType,
		ResourceID:   resource.ResourceID,
		UserID:       uuid.Must(uuid.NewV7()),
		Permissions:  perms,
	}
}

func TestPermissionUseCase_GrantPermission(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Owner", func(t *testing.T) {
		f := newPermissionFixture(t)
		owner := newUser()
		resource := newResource(owner.UserID)
		f.resourceRepo.On("Get", mock.Anything, "door", "lobby-1").Return(resource, nil)
		f.permissionRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(g *dacDomain.ResourcePermission) bool {
			return g.Permissions == dacDomain.PermRead|dacDomain.PermWrite && g.GrantedBy == owner.UserID
		})).Return(nil)

		grant, err := f.uc.GrantPermission(ctx, owner, grantInput(resource, dacDomain.PermRead|dacDomain.PermWrite))

		require.NoError(t, err)
		assert.Equal(t, "lobby-1", grant.ResourceID)
	})

	t.Run("Success_Admin", func(t *testing.T) {
		f := newPermissionFixture(t)
		admin := &authDomain.Principal{UserID: uuid.Must(uuid.NewV7()), IsAdmin: true}
		resource := newResource(uuid.Must(uuid.NewV7()))
		f.resourceRepo.On("Get", mock.Anything, "door", "lobby-1").Return(resource, nil)
		f.permissionRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

		_, err := f.uc.GrantPermission(ctx, admin, grantInput(resource, dacDomain.PermAll))

		require.NoError(t, err)
	})

	t.Run("Success_TopSecretClearance", func(t *testing.T) {
		f := newPermissionFixture(t)
		caller := newUser()
		resource := newResource(uuid.Must(uuid.NewV7()))
		f.resourceRepo.On("Get", mock.Anything, "door", "lobby-1").Return(resource, nil)
		f.subjects.On("Subject", mock.Anything, caller.UserID).Return(macDomain.Subject{Level: macDomain.TopSecret}, nil)
		f.permissionRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

		_, err := f.uc.GrantPermission(ctx, caller, grantInput(resource, dacDomain.PermDelete))

		require.NoError(t, err)
	})

	t.Run("Success_ShareHolderWithinOwnRights", func(t *testing.T) {
		f := newPermissionFixture(t)
		caller := newUser()
		resource := newResource(uuid.Must(uuid.NewV7()))
		f.resourceRepo.On("Get", mock.Anything, "door", "lobby-1").Return(resource, nil)
		f.subjects.On("Subject", mock.Anything, caller.UserID).Return(macDomain.Subject{Level: macDomain.Secret}, nil)
		f.permissionRepo.On("Get", mock.Anything, "door", "lobby-1", caller.UserID).Return(&dacDomain.ResourcePermission{
			Permissions: dacDomain.PermRead | dacDomain.PermShare,
		}, nil)
		f.permissionRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

		_, err := f.uc.GrantPermission(ctx, caller, grantInput(resource, dacDomain.PermRead))

		require.NoError(t, err)
	})

	t.Run("Error_ShareHolderAmplifies", func(t *testing.T) {
		f := newPermissionFixture(t)
		caller := newUser()
		resource := newResource(uuid.Must(uuid.NewV7()))
		f.resourceRepo.On("Get", mock.Anything, "door", "lobby-1").Return(resource, nil)
		f.subjects.On("Subject", mock.Anything, caller.UserID).Return(macDomain.Subject{}, nil)
		f.permissionRepo.On("Get", mock.Anything, "door", "lobby-1", caller.UserID).Return(&dacDomain.ResourcePermission{
			Permissions: dacDomain.PermRead | dacDomain.PermShare,
		}, nil)

		_, err := f.uc.GrantPermission(ctx, caller, grantInput(resource, dacDomain.PermWrite))

		assert.ErrorIs(t, err, dacDomain.ErrPrivilegeAmplification)
		f.permissionRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("Error_InsufficientShareAuthority", func(t *testing.T) {
		f := newPermissionFixture(t)
		caller := newUser()
		resource := newResource(uuid.Must(uuid.NewV7()))
		f.resourceRepo.On("Get", mock.Anything, "door", "lobby-1").Return(resource, nil)
		f.subjects.On("Subject", mock.Anything, caller.UserID).Return(macDomain.Subject{Level: macDomain.Secret}, nil)
		f.permissionRepo.On("Get", mock.Anything, "door", "lobby-1", caller.UserID).Return(&dacDomain.ResourcePermission{
			Permissions: dacDomain.PermRead | dacDomain.PermWrite,
		}, nil)

		_, err := f.uc.GrantPermission(ctx, caller, grantInput(resource, dacDomain.PermRead))

		assert.ErrorIs(t, err, dacDomain.ErrInsufficientShareAuthority)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.Contains(t, err.Error(), "insufficient share authority")
	})

	t.Run("Error_ExpiredShareGrantDoesNotCount", func(t *testing.T) {
		f := newPermissionFixture(t)
		caller := newUser()
		expired := testNow.Add(-time.Minute)
		resource := newResource(uuid.Must(uuid.NewV7()))
		f.resourceRepo.On("Get", mock.Anything, "door", "lobby-1").Return(resource, nil)
		f.subjects.On("Subject", mock.Anything, caller.UserID).Return(macDomain.Subject{}, nil)
		f.permissionRepo.On("Get", mock.Anything, "door", "lobby-1", caller.UserID).Return(&dacDomain.ResourcePermission{
			Permissions: dacDomain.PermAll,
			ExpiresAt:   &expired,
		}, nil)

		_, err := f.uc.GrantPermission(ctx, caller, grantInput(resource, dacDomain.PermRead))

		assert.ErrorIs(t, err, dacDomain.ErrInsufficientShareAuthority)
	})

	t.Run("Error_EmptyPermission", func(t *testing.T) {
		f := newPermissionFixture(t)
		_, err := f.uc.GrantPermission(ctx, newUser(), grantInput(newResource(uuid.Nil), 0))
		assert.ErrorIs(t, err, dacDomain.ErrInvalidPermission)
	})
}

func TestPermissionUseCase_RevokePermission(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Owner", func(t *testing.T) {
		f := newPermissionFixture(t)
		owner := newUser()
		target := uuid.Must(uuid.NewV7())
		f.resourceRepo.On("Get", mock.Anything, "door", "lobby-1").Return(newResource(owner.UserID), nil)
		f.permissionRepo.On("Delete", mock.Anything, "door", "lobby-1", target).Return(nil)

		err := f.uc.RevokePermission(ctx, owner, &dacDomain.RevokePermissionInput{
			ResourceType: "door",
			ResourceID:   "lobby-1",
			UserID:       target,
		})

		assert.NoError(t, err)
	})

	t.Run("Error_ShareHolderCannotRevoke", func(t *testing.T) {
		f := newPermissionFixture(t)
		f.resourceRepo.On("Get", mock.Anything, "door", "lobby-1").Return(newResource(uuid.Must(uuid.NewV7())), nil)

		err := f.uc.RevokePermission(ctx, newUser(), &dacDomain.RevokePermissionInput{
			ResourceType: "door",
			ResourceID:   "lobby-1",
			UserID:       uuid.Must(uuid.NewV7()),
		})

		assert.ErrorIs(t, err, dacDomain.ErrOwnerOrAdminRequired)
		f.permissionRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPermissionUseCase_EffectivePermission(t *testing.T) {
	ctx := context.Background()
	owner := uuid.Must(uuid.NewV7())

	t.Run("Success_OwnerHoldsEverything", func(t *testing.T) {
		f := newPermissionFixture(t)
		f.resourceRepo.On("Get", ctx, "door", "lobby-1").Return(newResource(owner), nil)

		held, err := f.uc.EffectivePermission(ctx, owner, "door", "lobby-1")

		require.NoError(t, err)
		assert.Equal(t, dacDomain.PermAll, held)
	})

	t.Run("Success_NoGrant", func(t *testing.T) {
		f := newPermissionFixture(t)
		userID := uuid.Must(uuid.NewV7())
		f.resourceRepo.On("Get", ctx, "door", "lobby-1").Return(newResource(owner), nil)
		f.permissionRepo.On("Get", ctx, "door", "lobby-1", userID).Return(nil, dacDomain.ErrPermissionNotFound)

		allowed, err := f.uc.HasPermission(ctx, userID, "door", "lobby-1", dacDomain.PermRead)

		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("Error_ResourceNotRegistered", func(t *testing.T) {
		f := newPermissionFixture(t)
		f.resourceRepo.On("Get", ctx, "door", "ghost").Return(nil, resourceDomain.ErrResourceNotFound)

		_, err := f.uc.EffectivePermission(ctx, owner, "door", "ghost")

		assert.ErrorIs(t, err, resourceDomain.ErrResourceNotFound)
	})
}
