// Package usecase implements the clearance lifecycle workflows.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	clearanceDomain "github.com/allisson/sentinel/internal/clearance/domain"
	macDomain "github.com/allisson/sentinel/internal/mac/domain"
)

// ClearanceRepository defines persistence for active clearances and review records.
type ClearanceRepository interface {
	// Upsert creates or replaces the user's clearance.
	Upsert(ctx context.Context, clearance *macDomain.Clearance) error

	// Get retrieves a user's clearance. Returns ErrClearanceNotFound if none was assigned.
	Get(ctx context.Context, userID uuid.UUID) (*macDomain.Clearance, error)

	// ListReviewDue returns clearances whose review is due at or before dueBefore.
	ListReviewDue(ctx context.Context, dueBefore time.Time) ([]*macDomain.Clearance, error)

	CreateReview(ctx context.Context, review *clearanceDomain.Review) error
}

// EscalationRepository defines persistence for escalation requests.
type EscalationRepository interface {
	// Create stores a pending escalation. Returns ErrEscalationPending when the user
	// already has one.
	Create(ctx context.Context, escalation *clearanceDomain.Escalation) error

	// Get retrieves an escalation. Returns ErrEscalationNotFound if missing.
	Get(ctx context.Context, id uuid.UUID) (*clearanceDomain.Escalation, error)

	// Decide stores the decision only if the escalation is still pending.
	// Returns ErrEscalationDecided otherwise.
	Decide(ctx context.Context, escalation *clearanceDomain.Escalation) error

	ListPending(ctx context.Context, offset, limit int) ([]*clearanceDomain.Escalation, error)
}

// AuditRecorder appends events to the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, input *auditDomain.RecordInput) (*auditDomain.AuditEvent, error)
}

// ClearanceUseCase defines the clearance lifecycle operations.
type ClearanceUseCase interface {
	// Assign creates or replaces a clearance. Administrators only, never for themselves.
	Assign(
		ctx context.Context,
		actor *authDomain.Principal,
		input *clearanceDomain.AssignInput,
	) (*macDomain.Clearance, error)

	// Get returns the stored clearance of a user.
	Get(ctx context.Context, userID uuid.UUID) (*macDomain.Clearance, error)

	// RequestEscalation records a pending escalation for the caller without touching the
	// active clearance.
	RequestEscalation(
		ctx context.Context,
		actor *authDomain.Principal,
		input *clearanceDomain.EscalationInput,
	) (*clearanceDomain.Escalation, error)

	// DecideEscalation approves or rejects a pending escalation. Approval applies the target
	// label to the active clearance.
	DecideEscalation(
		ctx context.Context,
		actor *authDomain.Principal,
		input *clearanceDomain.DecideEscalationInput,
	) (*clearanceDomain.Escalation, error)

	ListPendingEscalations(ctx context.Context, offset, limit int) ([]*clearanceDomain.Escalation, error)

	// Review records a periodic review. Approval may change the label and always resets
	// the review due date; rejection leaves the clearance untouched.
	Review(
		ctx context.Context,
		actor *authDomain.Principal,
		input *clearanceDomain.ReviewInput,
	) (*clearanceDomain.Review, error)

	// GetUsersRequiringReview lists clearances due for review within daysBeforeDue days.
	GetUsersRequiringReview(ctx context.Context, daysBeforeDue int) ([]*macDomain.Clearance, error)
}
