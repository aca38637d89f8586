package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/allisson/sentinel/internal/clock"
	apperrors "github.com/allisson/sentinel/internal/errors"
	macDomain "github.com/allisson/sentinel/internal/mac/domain"
)

type macUseCase struct {
	clearances ClearanceReader
	resources  ResourceReader
	clock      clock.Clock
}

func (m *macUseCase) CheckReadAccess(
	ctx context.Context,
	userID uuid.UUID,
	resourceType, resourceID string,
) (*macDomain.Decision, error) {
	return m.Check(ctx, userID, resourceType, resourceID, macDomain.ModeRead)
}

func (m *macUseCase) CheckWriteAccess(
	ctx context.Context,
	userID uuid.UUID,
	resourceType, resourceID string,
) (*macDomain.Decision, error) {
	return m.Check(ctx, userID, resourceType, resourceID, macDomain.ModeWrite)
}

// Check loads both facts on every call. An unregistered resource is returned as an error so
// callers decide how to deny.
func (m *macUseCase) Check(
	ctx context.Context,
	userID uuid.UUID,
	resourceType, resourceID string,
	mode macDomain.AccessMode,
) (*macDomain.Decision, error) {
	subject, err := m.Subject(ctx, userID)
	if err != nil {
		return nil, err
	}

	resource, err := m.resources.Get(ctx, resourceType, resourceID)
	if err != nil {
		return nil, err
	}

	decision := macDomain.Check(subject, resource.Label(), mode)
	return &decision, nil
}

// Subject treats a missing or expired clearance as the lowest level with no compartments.
func (m *macUseCase) Subject(ctx context.Context, userID uuid.UUID) (macDomain.Subject, error) {
	clearance, err := m.clearances.Get(ctx, userID)
	if err != nil {
		if !apperrors.Is(err, macDomain.ErrClearanceNotFound) {
			return macDomain.Subject{}, apperrors.Wrap(err, "failed to load clearance")
		}
		clearance = nil
	}
	return clearance.Subject(m.clock.Now()), nil
}

// NewMACUseCase creates a new MACUseCase.
func NewMACUseCase(clearances ClearanceReader, resources ResourceReader, clk clock.Clock) MACUseCase {
	return &macUseCase{clearances: clearances, resources: resources, clock: clk}
}
