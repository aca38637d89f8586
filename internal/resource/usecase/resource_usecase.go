package usecase

import (
	"context"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	"github.com/allisson/sentinel/internal/clock"
	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
	macDomain "github.com/allisson/sentinel/internal/mac/domain"
	resourceDomain "github.com/allisson/sentinel/internal/resource/domain"
)

type resourceUseCase struct {
	txManager    database.TxManager
	resourceRepo ResourceRepository
	audit        AuditRecorder
	clock        clock.Clock
}

// Register creates the resource with the caller as owner and records the registration.
func (r *resourceUseCase) Register(
	ctx context.Context,
	actor *authDomain.Principal,
	input *resourceDomain.RegisterInput,
) (*resourceDomain.Resource, error) {
	if !input.Classification.IsValid() {
		return nil, macDomain.ErrInvalidSecurityLevel
	}

	now := r.clock.Now()
	resource := &resourceDomain.Resource{
		ID:             uuid.Must(uuid.NewV7()),
		ResourceType:   input.ResourceType,
		ResourceID:     input.ResourceID,
		OwnerID:        actor.UserID,
		Classification: input.Classification,
		Compartments:   macDomain.NewCompartments(input.Compartments...),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := r.resourceRepo.Create(ctx, resource); err != nil {
			return err
		}
		_, err := r.audit.Record(ctx, &auditDomain.RecordInput{
			ActorID:      actor.UserID,
			Action:       auditDomain.ActionResourceRegistered,
			ResourceType: resource.ResourceType,
			ResourceID:   resource.ResourceID,
			Outcome:      auditDomain.OutcomeSuccess,
			Details: map[string]any{
				"classification": resource.Classification.String(),
				"compartments":   []string(resource.Compartments),
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return resource, nil
}

// Get retrieves a resource.
func (r *resourceUseCase) Get(ctx context.Context, resourceType, resourceID string) (*resourceDomain.Resource, error) {
	return r.resourceRepo.Get(ctx, resourceType, resourceID)
}

// Reclassify changes the label of a resource. The previous label is kept in the audit trail.
func (r *resourceUseCase) Reclassify(
	ctx context.Context,
	actor *authDomain.Principal,
	input *resourceDomain.ReclassifyInput,
) (*resourceDomain.Resource, error) {
	if !actor.CanAdminister() {
		return nil, resourceDomain.ErrReclassifyForbidden
	}
	if !input.Classification.IsValid() {
		return nil, macDomain.ErrInvalidSecurityLevel
	}

	var resource *resourceDomain.Resource
	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		resource, err = r.resourceRepo.Get(ctx, input.ResourceType, input.ResourceID)
		if err != nil {
			return err
		}

		previous := resource.Label()
		resource.Classification = input.Classification
		resource.Compartments = macDomain.NewCompartments(input.Compartments...)
		resource.UpdatedAt = r.clock.Now()

		if err := r.resourceRepo.UpdateLabel(ctx, resource); err != nil {
			return err
		}

		_, err = r.audit.Record(ctx, &auditDomain.RecordInput{
			ActorID:      actor.UserID,
			Action:       auditDomain.ActionResourceReclassified,
			ResourceType: resource.ResourceType,
			ResourceID:   resource.ResourceID,
			Outcome:      auditDomain.OutcomeSuccess,
			Details: map[string]any{
				"previous_classification": previous.Level.String(),
				"previous_compartments":   []string(previous.Compartments),
				"classification":          resource.Classification.String(),
				"compartments":            []string(resource.Compartments),
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return resource, nil
}

// ListOwned lists the resources owned by ownerID.
func (r *resourceUseCase) ListOwned(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*resourceDomain.Resource, error) {
	resources, err := r.resourceRepo.ListByOwner(ctx, ownerID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list resources")
	}
	return resources, nil
}

// NewResourceUseCase creates a new ResourceUseCase with the provided dependencies.
func NewResourceUseCase(
	txManager database.TxManager,
	resourceRepo ResourceRepository,
	audit AuditRecorder,
	clk clock.Clock,
) ResourceUseCase {
	return &resourceUseCase{
		txManager:    txManager,
		resourceRepo: resourceRepo,
		audit:        audit,
		clock:        clk,
	}
}
