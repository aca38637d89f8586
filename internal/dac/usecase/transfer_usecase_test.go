package usecase

import (
	"context"
	"testing"

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
	resourceDomain "github.com/allisson/sentinel/internal/resource/domain"
	resourceMocks "github.com/allisson/sentinel/internal/resource/usecase/mocks"
)

type transferFixture struct {
	transferRepo *mocks.MockTransferRepository
	resourceRepo *resourceMocks.MockResourceRepository
	uc           TransferUseCase
}

func newTransferFixture(t *testing.T) *transferFixture {
	f := &transferFixture{
		transferRepo: &mocks.MockTransferRepository{},
		resourceRepo: &resourceMocks.MockResourceRepository{},
	}
	f.uc = NewTransferUseCase(
		databaseMocks.NewMockTxManager(t).PassThrough(),
		f.transferRepo,
		f.resourceRepo,
		(&auditMocks.MockAuditUseCase{}).AcceptAll(),
		clock.NewFake(testNow),
	)
	return f
}

func pendingTransfer() *dacDomain.OwnershipTransfer {
	return &dacDomain.OwnershipTransfer{
		ID:           uuid.Must(uuid.NewV7()),
		ResourceType: "door",
		ResourceID:   "lobby-1",
		FromUserID:   uuid.Must(uuid.NewV7()),
		ToUserID:     uuid.Must(uuid.NewV7()),
		Status:       dacDomain.TransferRequested,
	}
}

func TestTransferUseCase_RequestOwnershipTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newTransferFixture(t)
		owner := newUser()
		to := uuid.Must(uuid.NewV7())
		f.resourceRepo.On("Get", mock.Anything, "door", "lobby-1").Return(newResource(owner.UserID), nil)
		f.transferRepo.On("Create", mock.Anything, mock.MatchedBy(func(tr *dacDomain.OwnershipTransfer) bool {
			return tr.FromUserID == owner.UserID && tr.ToUserID == to && tr.Status == dacDomain.TransferRequested
		})).Return(nil)

		transfer, err := f.uc.RequestOwnershipTransfer(ctx, owner, &dacDomain.RequestTransferInput{
			ResourceType: "door",
			ResourceID:   "lobby-1",
			ToUserID:     to,
		})

		require.NoError(t, err)
		assert.Equal(t, to, transfer.ToUserID)
	})

	t.Run("Error_NotOwner", func(t *testing.T) {
		f := newTransferFixture(t)
		f.resourceRepo.On("Get", mock.Anything, "door", "lobby-1").Return(newResource(uuid.Must(uuid.NewV7())), nil)

		_, err := f.uc.RequestOwnershipTransfer(ctx, newUser(), &dacDomain.RequestTransferInput{
			ResourceType: "door",
			ResourceID:   "lobby-1",
			ToUserID:     uuid.Must(uuid.NewV7()),
		})

		assert.ErrorIs(t, err, dacDomain.ErrNotOwner)
	})

	t.Run("Error_ToCurrentOwner", func(t *testing.T) {
		f := newTransferFixture(t)
		owner := newUser()
		f.resourceRepo.On("Get", mock.Anything, "door", "lobby-1").Return(newResource(owner.UserID), nil)

		_, err := f.uc.RequestOwnershipTransfer(ctx, owner, &dacDomain.RequestTransferInput{
			ResourceType: "door",
			ResourceID:   "lobby-1",
			ToUserID:     owner.UserID,
		})

		assert.ErrorIs(t, err, dacDomain.ErrTransferToSelf)
	})
}

func TestTransferUseCase_ApproveOwnershipTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_TargetApproves", func(t *testing.T) {
		f := newTransferFixture(t)
		transfer := pendingTransfer()
		f.transferRepo.On("Get", mock.Anything, transfer.ID).Return(transfer, nil)
		f.transferRepo.On("Decide", mock.Anything, mock.MatchedBy(func(tr *dacDomain.OwnershipTransfer) bool {
			return tr.Status == dacDomain.TransferApproved
		})).Return(nil)
		f.resourceRepo.On("UpdateOwner", mock.Anything, "door", "lobby-1", transfer.FromUserID, transfer.ToUserID).
			Return(nil)

		approved, err := f.uc.ApproveOwnershipTransfer(
			ctx,
			&authDomain.Principal{UserID: transfer.ToUserID},
			&dacDomain.DecideTransferInput{TransferID: transfer.ID},
		)

		require.NoError(t, err)
		assert.Equal(t, dacDomain.TransferApproved, approved.Status)
		f.resourceRepo.AssertExpectations(t)
	})

	t.Run("Error_NonTargetRejectedAndOwnerUnchanged", func(t *testing.T) {
		f := newTransferFixture(t)
		transfer := pendingTransfer()
		f.transferRepo.On("Get", mock.Anything, transfer.ID).Return(transfer, nil)

		for _, caller := range []uuid.UUID{transfer.FromUserID, uuid.Must(uuid.NewV7())} {
			_, err := f.uc.ApproveOwnershipTransfer(
				ctx,
				&authDomain.Principal{UserID: caller, IsAdmin: true},
				&dacDomain.DecideTransferInput{TransferID: transfer.ID},
			)

			assert.ErrorIs(t, err, dacDomain.ErrTransferApproverMismatch)
			assert.ErrorIs(t, err, apperrors.ErrForbidden)
		}
		f.resourceRepo.AssertNotCalled(t, "UpdateOwner", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.transferRepo.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything)
	})

	t.Run("Error_AlreadyDecided", func(t *testing.T) {
		f := newTransferFixture(t)
		transfer := pendingTransfer()
		transfer.Status = dacDomain.TransferRejected
		f.transferRepo.On("Get", mock.Anything, transfer.ID).Return(transfer, nil)

		_, err := f.uc.ApproveOwnershipTransfer(
			ctx,
			&authDomain.Principal{UserID: transfer.ToUserID},
			&dacDomain.DecideTransferInput{TransferID: transfer.ID},
		)

		assert.ErrorIs(t, err, dacDomain.ErrTransferAlreadyDecided)
	})

	t.Run("Error_OwnerChangedMeanwhile", func(t *testing.T) {
		f := newTransferFixture(t)
		transfer := pendingTransfer()
		f.transferRepo.On("Get", mock.Anything, transfer.ID).Return(transfer, nil)
		f.transferRepo.On("Decide", mock.Anything, mock.Anything).Return(nil)
		f.resourceRepo.On("UpdateOwner", mock.Anything, "door", "lobby-1", transfer.FromUserID, transfer.ToUserID).
			Return(resourceDomain.ErrOwnerChanged)

		_, err := f.uc.ApproveOwnershipTransfer(
			ctx,
			&authDomain.Principal{UserID: transfer.ToUserID},
			&dacDomain.DecideTransferInput{TransferID: transfer.ID},
		)

		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestTransferUseCase_RejectOwnershipTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_EitherParty", func(t *testing.T) {
		for _, pick := range []func(*dacDomain.OwnershipTransfer) uuid.UUID{
			func(tr *dacDomain.OwnershipTransfer) uuid.UUID { return tr.FromUserID },
			func(tr *dacDomain.OwnershipTransfer) uuid.UUID { return tr.ToUserID },
		} {
			f := newTransferFixture(t)
			transfer := pendingTransfer()
			f.transferRepo.On("Get", mock.Anything, transfer.ID).Return(transfer, nil)
			f.transferRepo.On("Decide", mock.Anything, mock.Anything).Return(nil)

			rejected, err := f.uc.RejectOwnershipTransfer(
				ctx,
				&authDomain.Principal{UserID: pick(transfer)},
				&dacDomain.DecideTransferInput{TransferID: transfer.ID, Reason: "changed plans"},
			)

			require.NoError(t, err)
			assert.Equal(t, dacDomain.TransferRejected, rejected.Status)
			f.resourceRepo.AssertNotCalled(t, "UpdateOwner", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("Error_ThirdParty", func(t *testing.T) {
		f := newTransferFixture(t)
		transfer := pendingTransfer()
		f.transferRepo.On("Get", mock.Anything, transfer.ID).Return(transfer, nil)

		_, err := f.uc.RejectOwnershipTransfer(ctx, newUser(), &dacDomain.DecideTransferInput{TransferID: transfer.ID})

		assert.ErrorIs(t, err, dacDomain.ErrTransferRejectForbidden)
	})
}
