package usecase

import (
	"context"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	"github.com/allisson/sentinel/internal/clock"
	dacDomain "github.com/allisson/sentinel/internal/dac/domain"
	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
	resourceDomain "github.com/allisson/sentinel/internal/resource/domain"
)

type transferUseCase struct {
	txManager    database.TxManager
	transferRepo TransferRepository
	resourceRepo ResourceRepository
	audit        AuditRecorder
	clock        clock.Clock
}

func (t *transferUseCase) RequestOwnershipTransfer(
	ctx context.Context,
	actor *authDomain.Principal,
	input *dacDomain.RequestTransferInput,
) (*dacDomain.OwnershipTransfer, error) {
	var transfer *dacDomain.OwnershipTransfer
	err := t.txManager.WithTx(ctx, func(ctx context.Context) error {
		resource, err := t.resourceRepo.Get(ctx, input.ResourceType, input.ResourceID)
		if err != nil {
			return err
		}
		if !resource.IsOwnedBy(actor.UserID) {
			return dacDomain.ErrNotOwner
		}
		if resource.IsOwnedBy(input.ToUserID) {
			return dacDomain.ErrTransferToSelf
		}

		transfer = &dacDomain.OwnershipTransfer{
			ID:           uuid.Must(uuid.NewV7()),
			ResourceType: resource.ResourceType,
			ResourceID:   resource.ResourceID,
			FromUserID:   actor.UserID,
			ToUserID:     input.ToUserID,
			Reason:       input.Reason,
			Status:       dacDomain.TransferRequested,
			CreatedAt:    t.clock.Now(),
		}
		if err := t.transferRepo.Create(ctx, transfer); err != nil {
			return err
		}

		return t.record(ctx, actor, auditDomain.ActionOwnershipTransferRequested, transfer)
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

// ApproveOwnershipTransfer moves ownership with a compare-and-set on the current owner, so a
// stale transfer fails instead of overwriting a newer owner.
func (t *transferUseCase) ApproveOwnershipTransfer(
	ctx context.Context,
	actor *authDomain.Principal,
	input *dacDomain.DecideTransferInput,
) (*dacDomain.OwnershipTransfer, error) {
	return t.decide(ctx, actor, input, dacDomain.TransferApproved)
}

func (t *transferUseCase) RejectOwnershipTransfer(
	ctx context.Context,
	actor *authDomain.Principal,
	input *dacDomain.DecideTransferInput,
) (*dacDomain.OwnershipTransfer, error) {
	return t.decide(ctx, actor, input, dacDomain.TransferRejected)
}

func (t *transferUseCase) decide(
	ctx context.Context,
	actor *authDomain.Principal,
	input *dacDomain.DecideTransferInput,
	status dacDomain.TransferStatus,
) (*dacDomain.OwnershipTransfer, error) {
	var transfer *dacDomain.OwnershipTransfer
	err := t.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		transfer, err = t.transferRepo.Get(ctx, input.TransferID)
		if err != nil {
			return err
		}

		switch status {
		case dacDomain.TransferApproved:
			if transfer.ToUserID != actor.UserID {
				return dacDomain.ErrTransferApproverMismatch
			}
		case dacDomain.TransferRejected:
			if !transfer.IsParty(actor.UserID) {
				return dacDomain.ErrTransferRejectForbidden
			}
		}
		if transfer.Status != dacDomain.TransferRequested {
			return dacDomain.ErrTransferAlreadyDecided
		}

		now := t.clock.Now()
		transfer.Status = status
		transfer.DecidedBy = &actor.UserID
		transfer.DecidedAt = &now
		transfer.DecisionReason = input.Reason
		if err := t.transferRepo.Decide(ctx, transfer); err != nil {
			return err
		}

		action := auditDomain.ActionOwnershipTransferRejected
		if status == dacDomain.TransferApproved {
			action = auditDomain.ActionOwnershipTransferApproved
			err := t.resourceRepo.UpdateOwner(
				ctx, transfer.ResourceType, transfer.ResourceID, transfer.FromUserID, transfer.ToUserID,
			)
			if err != nil {
				if apperrors.Is(err, resourceDomain.ErrOwnerChanged) {
					return apperrors.Wrap(err, "resource changed owner after the transfer was requested")
				}
				return err
			}
		}

		return t.record(ctx, actor, action, transfer)
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

func (t *transferUseCase) ListPendingTransfers(
	ctx context.Context,
	userID uuid.UUID,
) ([]*dacDomain.OwnershipTransfer, error) {
	transfers, err := t.transferRepo.ListPending(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list ownership transfers")
	}
	return transfers, nil
}

func (t *transferUseCase) record(
	ctx context.Context,
	actor *authDomain.Principal,
	action string,
	transfer *dacDomain.OwnershipTransfer,
) error {
	_, err := t.audit.Record(ctx, &auditDomain.RecordInput{
		ActorID:      actor.UserID,
		Action:       action,
		ResourceType: transfer.ResourceType,
		ResourceID:   transfer.ResourceID,
		Outcome:      auditDomain.OutcomeSuccess,
		Details: map[string]any{
			"transfer_id":  transfer.ID.String(),
			"from_user_id": transfer.FromUserID.String(),
			"to_user_id":   transfer.ToUserID.String(),
			"reason":       transfer.Reason,
		},
	})
	return err
}

// NewTransferUseCase creates a new TransferUseCase with the provided dependencies.
func NewTransferUseCase(
	txManager database.TxManager,
	transferRepo TransferRepository,
	resourceRepo ResourceRepository,
	audit AuditRecorder,
	clk clock.Clock,
) TransferUseCase {
	return &transferUseCase{
		txManager:    txManager,
		transferRepo: transferRepo,
		resourceRepo: resourceRepo,
		audit:        audit,
		clock:        clk,
	}
}
