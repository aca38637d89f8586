// Package domain defines protected resources: the objects every access model evaluates.
// A resource has exactly one owner and carries the MAC label it was classified with.
package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/sentinel/internal/errors"
	macDomain "github.com/allisson/sentinel/internal/mac/domain"
)

var (
	// ErrResourceNotFound indicates the resource is not registered.
	ErrResourceNotFound = apperrors.Wrap(apperrors.ErrNotFound, "resource not found")

	// ErrResourceAlreadyRegistered indicates a resource with the same type and id exists.
	ErrResourceAlreadyRegistered = apperrors.Wrap(apperrors.ErrConflict, "resource already registered")

	// ErrOwnerChanged indicates the resource owner changed since the caller read it.
	ErrOwnerChanged = apperrors.Wrap(apperrors.ErrConflict, "resource owner changed")

	// ErrReclassifyForbidden indicates a non-admin attempted to change a resource label.
	ErrReclassifyForbidden = apperrors.Wrap(apperrors.ErrForbidden, "only administrators may reclassify resources")
)

// Resource is a registered protected object.
type Resource struct {
	ID             uuid.UUID
	ResourceType   string
	ResourceID     string
	OwnerID        uuid.UUID
	Classification macDomain.SecurityLevel
	Compartments   macDomain.Compartments
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Label returns the MAC label of the resource.
func (r *Resource) Label() macDomain.Label {
	return macDomain.Label{Level: r.Classification, Compartments: r.Compartments}
}

// IsOwnedBy reports whether userID currently owns the resource.
func (r *Resource) IsOwnedBy(userID uuid.UUID) bool {
	return r.OwnerID == userID
}

// RegisterInput contains the data needed to register a resource.
type RegisterInput struct {
	ResourceType   string
	ResourceID     string
	Classification macDomain.SecurityLevel
	Compartments   macDomain.Compartments
}

// ReclassifyInput changes the MAC label of a registered resource.
type ReclassifyInput struct {
	ResourceType   string
	ResourceID     string
	Classification macDomain.SecurityLevel
	Compartments   macDomain.Compartments
}
