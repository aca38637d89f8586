// Package usecase implements registration and classification of protected resources.
package usecase

import (
	"context"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	resourceDomain "github.com/allisson/sentinel/internal/resource/domain"
)

// ResourceRepository defines persistence for protected resources.
type ResourceRepository interface {
	// Create stores a new resource. Returns ErrResourceAlreadyRegistered on duplicates.
	Create(ctx context.Context, resource *resourceDomain.Resource) error

	// Get retrieves a resource by type and id. Returns ErrResourceNotFound if missing.
	Get(ctx context.Context, resourceType, resourceID string) (*resourceDomain.Resource, error)

	// UpdateLabel persists a new classification and compartment set.
	UpdateLabel(ctx context.Context, resource *resourceDomain.Resource) error

	// UpdateOwner reassigns ownership only if fromOwner still owns the resource.
	// Returns ErrOwnerChanged when the conditional update matches no row.
	UpdateOwner(ctx context.Context, resourceType, resourceID string, fromOwner, toOwner uuid.UUID) error

	// ListByOwner returns resources owned by ownerID ordered by creation time.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*resourceDomain.Resource, error)
}

// AuditRecorder appends events to the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, input *auditDomain.RecordInput) (*auditDomain.AuditEvent, error)
}

// ResourceUseCase defines resource registry operations.
type ResourceUseCase interface {
	// Register creates a resource owned by the caller.
	Register(
		ctx context.Context,
		actor *authDomain.Principal,
		input *resourceDomain.RegisterInput,
	) (*resourceDomain.Resource, error)

	Get(ctx context.Context, resourceType, resourceID string) (*resourceDomain.Resource, error)

	// Reclassify changes the MAC label. Administrators only.
	Reclassify(
		ctx context.Context,
		actor *authDomain.Principal,
		input *resourceDomain.ReclassifyInput,
	) (*resourceDomain.Resource, error)

	ListOwned(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*resourceDomain.Resource, error)
}
