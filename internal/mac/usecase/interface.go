// Package usecase loads stored clearances and resource labels and evaluates Bell-LaPadula over them.
package usecase

import (
	"context"

	"github.com/google/uuid"

	macDomain "github.com/allisson/sentinel/internal/mac/domain"
	resourceDomain "github.com/allisson/sentinel/internal/resource/domain"
)

// ClearanceReader loads a user's stored clearance.
type ClearanceReader interface {
	Get(ctx context.Context, userID uuid.UUID) (*macDomain.Clearance, error)
}

// ResourceReader loads a registered resource.
type ResourceReader interface {
	Get(ctx context.Context, resourceType, resourceID string) (*resourceDomain.Resource, error)
}

// MACUseCase evaluates the simple security and *-properties for stored subjects and objects.
type MACUseCase interface {
	// CheckReadAccess evaluates "no read up" for userID against the registered resource.
	CheckReadAccess(ctx context.Context, userID uuid.UUID, resourceType, resourceID string) (*macDomain.Decision, error)

	// CheckWriteAccess evaluates "no write down" for userID against the registered resource.
	CheckWriteAccess(ctx context.Context, userID uuid.UUID, resourceType, resourceID string) (*macDomain.Decision, error)

	// Check evaluates the property selected by mode.
	Check(
		ctx context.Context,
		userID uuid.UUID,
		resourceType, resourceID string,
		mode macDomain.AccessMode,
	) (*macDomain.Decision, error)

	// Subject returns the effective MAC subject of userID at the current instant.
	Subject(ctx context.Context, userID uuid.UUID) (macDomain.Subject, error)
}
