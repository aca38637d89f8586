package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	"github.com/allisson/sentinel/internal/clock"
	dacDomain "github.com/allisson/sentinel/internal/dac/domain"
	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
	macDomain "github.com/allisson/sentinel/internal/mac/domain"
	resourceDomain "github.com/allisson/sentinel/internal/resource/domain"
)

type permissionUseCase struct {
	txManager      database.TxManager
	permissionRepo PermissionRepository
	resourceRepo   ResourceRepository
	subjects       SubjectReader
	audit          AuditRecorder
	clock          clock.Clock
}

// effectivePermission is shared by every DAC use case: owners hold every right, other users
// hold their grant while it is active.
func effectivePermission(
	ctx context.Context,
	permissionRepo PermissionRepository,
	resource *resourceDomain.Resource,
	userID uuid.UUID,
	now time.Time,
) (dacDomain.Permission, error) {
	if resource.IsOwnedBy(userID) {
		return dacDomain.PermAll, nil
	}
	grant, err := permissionRepo.Get(ctx, resource.ResourceType, resource.ResourceID, userID)
	if err != nil {
		if apperrors.Is(err, dacDomain.ErrPermissionNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if !grant.IsActive(now) {
		return 0, nil
	}
	return grant.Permissions, nil
}

func canManage(actor *authDomain.Principal, resource *resourceDomain.Resource) bool {
	return actor.CanAdminister() || resource.IsOwnedBy(actor.UserID)
}

// grantCeiling returns the most a caller may grant. Owners, administrators and TOP_SECRET
// subjects may grant anything; share holders may grant up to their own rights.
func (p *permissionUseCase) grantCeiling(
	ctx context.Context,
	actor *authDomain.Principal,
	resource *resourceDomain.Resource,
	now time.Time,
) (dacDomain.Permission, error) {
	if canManage(actor, resource) {
		return dacDomain.PermAll, nil
	}

	subject, err := p.subjects.Subject(ctx, actor.UserID)
	if err != nil {
		return 0, err
	}
	if subject.Level == macDomain.TopSecret {
		return dacDomain.PermAll, nil
	}

	held, err := effectivePermission(ctx, p.permissionRepo, resource, actor.UserID, now)
	if err != nil {
		return 0, err
	}
	if !held.Has(dacDomain.PermShare) {
		return 0, dacDomain.ErrInsufficientShareAuthority
	}
	return held, nil
}

func (p *permissionUseCase) GrantPermission(
	ctx context.Context,
	actor *authDomain.Principal,
	input *dacDomain.GrantPermissionInput,
) (*dacDomain.ResourcePermission, error) {
	if !input.Permissions.IsValid() {
		return nil, dacDomain.ErrInvalidPermission
	}
	now := p.clock.Now()
	if input.ExpiresAt != nil && !input.ExpiresAt.After(now) {
		return nil, dacDomain.ErrExpiryInPast
	}

	var grant *dacDomain.ResourcePermission
	err := p.txManager.WithTx(ctx, func(ctx context.Context) error {
		resource, err := p.resourceRepo.Get(ctx, input.ResourceType, input.ResourceID)
		if err != nil {
			return err
		}

		ceiling, err := p.grantCeiling(ctx, actor, resource, now)
		if err != nil {
			return err
		}
		if !input.Permissions.IsSubsetOf(ceiling) {
			return dacDomain.ErrPrivilegeAmplification
		}

		grant = &dacDomain.ResourcePermission{
			ID:           uuid.Must(uuid.NewV7()),
			ResourceType: resource.ResourceType,
			ResourceID:   resource.ResourceID,
			UserID:       input.UserID,
			Permissions:  input.Permissions,
			ExpiresAt:    input.ExpiresAt,
			GrantedBy:    actor.UserID,
			Reason:       input.Reason,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := p.permissionRepo.Upsert(ctx, grant); err != nil {
			return err
		}

		_, err = p.audit.Record(ctx, &auditDomain.RecordInput{
			ActorID:      actor.UserID,
			Action:       auditDomain.ActionPermissionGranted,
			ResourceType: resource.ResourceType,
			ResourceID:   resource.ResourceID,
			Outcome:      auditDomain.OutcomeSuccess,
			Details: map[string]any{
				"user_id":     input.UserID.String(),
				"permissions": input.Permissions.Names(),
				"reason":      input.Reason,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return grant, nil
}

func (p *permissionUseCase) RevokePermission(
	ctx context.Context,
	actor *authDomain.Principal,
	input *dacDomain.RevokePermissionInput,
) error {
	return p.txManager.WithTx(ctx, func(ctx context.Context) error {
		resource, err := p.resourceRepo.Get(ctx, input.ResourceType, input.ResourceID)
		if err != nil {
			return err
		}
		if !canManage(actor, resource) {
			return dacDomain.ErrOwnerOrAdminRequired
		}

		if err := p.permissionRepo.Delete(ctx, resource.ResourceType, resource.ResourceID, input.UserID); err != nil {
			return err
		}

		_, err = p.audit.Record(ctx, &auditDomain.RecordInput{
			ActorID:      actor.UserID,
			Action:       auditDomain.ActionPermissionRevoked,
			ResourceType: resource.ResourceType,
			ResourceID:   resource.ResourceID,
			Outcome:      auditDomain.OutcomeSuccess,
			Details:      map[string]any{"user_id": input.UserID.String()},
		})
		return err
	})
}

func (p *permissionUseCase) ListPermissions(
	ctx context.Context,
	actor *authDomain.Principal,
	resourceType, resourceID string,
) ([]*dacDomain.ResourcePermission, error) {
	resource, err := p.resourceRepo.Get(ctx, resourceType, resourceID)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, resource) {
		return nil, dacDomain.ErrOwnerOrAdminRequired
	}
	return p.permissionRepo.ListByResource(ctx, resourceType, resourceID)
}

func (p *permissionUseCase) EffectivePermission(
	ctx context.Context,
	userID uuid.UUID,
	resourceType, resourceID string,
) (dacDomain.Permission, error) {
	resource, err := p.resourceRepo.Get(ctx, resourceType, resourceID)
	if err != nil {
		return 0, err
	}
	return effectivePermission(ctx, p.permissionRepo, resource, userID, p.clock.Now())
}

func (p *permissionUseCase) HasPermission(
	ctx context.Context,
	userID uuid.UUID,
	resourceType, resourceID string,
	required dacDomain.Permission,
) (bool, error) {
	held, err := p.EffectivePermission(ctx, userID, resourceType, resourceID)
	if err != nil {
		return false, err
	}
	return held.Has(required), nil
}

// NewPermissionUseCase creates a new PermissionUseCase with the provided dependencies.
func NewPermissionUseCase(
	txManager database.TxManager,
	permissionRepo PermissionRepository,
	resourceRepo ResourceRepository,
	subjects SubjectReader,
	audit AuditRecorder,
	clk clock.Clock,
) PermissionUseCase {
	return &permissionUseCase{
		txManager:      txManager,
		permissionRepo: permissionRepo,
		resourceRepo:   resourceRepo,
		subjects:       subjects,
		audit:          audit,
		clock:          clk,
	}
}
