// Package domain defines the clearance lifecycle: administrative assignment, escalation
// requests and periodic reviews. The Clearance type itself lives with the MAC lattice.
package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/sentinel/internal/errors"
	macDomain "github.com/allisson/sentinel/internal/mac/domain"
)

// DefaultReviewInterval is the time between an assignment or approved review and the next review.
const DefaultReviewInterval = 365 * 24 * time.Hour

var (
	// ErrSelfGrant indicates a user attempted to assign, approve or review their own clearance.
	ErrSelfGrant = apperrors.Wrap(apperrors.ErrForbidden, "clearance cannot be self-granted")

	// ErrAdminRequired indicates a non-admin attempted an administrative clearance operation.
	ErrAdminRequired = apperrors.Wrap(apperrors.ErrForbidden, "clearance administration requires an administrator")

	// ErrTrustedSubjectRequiresSuperAdmin indicates a non super-admin tried to grant trusted-subject status.
	ErrTrustedSubjectRequiresSuperAdmin = apperrors.Wrap(
		apperrors.ErrForbidden, "trusted subject status can only be granted by a super administrator",
	)

	// ErrEscalationNotFound indicates the escalation request does not exist.
	ErrEscalationNotFound = apperrors.Wrap(apperrors.ErrNotFound, "escalation request not found")

	// ErrEscalationPending indicates the user already has an undecided escalation.
	ErrEscalationPending = apperrors.Wrap(apperrors.ErrConflict, "an escalation request is already pending")

	// ErrEscalationDecided indicates the escalation was already approved or rejected.
	ErrEscalationDecided = apperrors.Wrap(apperrors.ErrConflict, "escalation request already decided")

	// ErrEscalationNotHigher indicates the requested clearance is already held.
	ErrEscalationNotHigher = apperrors.Wrap(
		apperrors.ErrInvalidInput, "requested clearance does not exceed the current clearance",
	)

	// ErrExpiryInPast indicates an expiry that is not in the future.
	ErrExpiryInPast = apperrors.Wrap(apperrors.ErrInvalidInput, "expires_at must be in the future")

	// ErrInvalidReviewWindow indicates a negative look-ahead window.
	ErrInvalidReviewWindow = apperrors.Wrap(apperrors.ErrInvalidInput, "days before due must not be negative")
)

// EscalationStatus is the state of an escalation request.
type EscalationStatus string

const (
	EscalationPending  EscalationStatus = "pending"
	EscalationApproved EscalationStatus = "approved"
	EscalationRejected EscalationStatus = "rejected"
)

// Escalation is a request to raise a user's clearance. It never changes the active clearance
// until approved.
type Escalation struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	TargetLevel        macDomain.SecurityLevel
	TargetCompartments macDomain.Compartments
	Reason             string
	Status             EscalationStatus
	DecidedBy          *uuid.UUID
	DecidedAt          *time.Time
	Notes              string
	CreatedAt          time.Time
}

// Review records the outcome of a periodic clearance review.
type Review struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	ReviewerID      uuid.UUID
	Approved        bool
	PreviousLevel   macDomain.SecurityLevel
	NewLevel        *macDomain.SecurityLevel
	NewCompartments macDomain.Compartments
	Notes           string
	CreatedAt       time.Time
}

// AssignInput creates or replaces a user's clearance.
type AssignInput struct {
	UserID         uuid.UUID
	Level          macDomain.SecurityLevel
	Compartments   macDomain.Compartments
	TrustedSubject bool
	Reason         string
	ExpiresAt      *time.Time
}

// EscalationInput requests a higher clearance for the caller.
type EscalationInput struct {
	TargetLevel        macDomain.SecurityLevel
	TargetCompartments macDomain.Compartments
	Reason             string
}

// DecideEscalationInput approves or rejects a pending escalation.
type DecideEscalationInput struct {
	EscalationID uuid.UUID
	Approved     bool
	Notes        string
}

// ReviewInput records a periodic review. NewLevel and NewCompartments apply only on approval;
// when nil the current values are kept.
type ReviewInput struct {
	UserID          uuid.UUID
	Approved        bool
	NewLevel        *macDomain.SecurityLevel
	NewCompartments macDomain.Compartments
	Notes           string
}

// Exceeds reports whether the target label asks for more than the subject holds.
func (e *EscalationInput) Exceeds(current macDomain.Subject) bool {
	if !current.Level.Dominates(e.TargetLevel) {
		return true
	}
	return !e.TargetCompartments.IsSubsetOf(current.Compartments)
}
