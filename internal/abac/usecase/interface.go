// Package usecase implements attribute based access policy administration and evaluation.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	abacDomain "github.com/allisson/sentinel/internal/abac/domain"
	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
)

// PolicyRepository defines persistence for access policies.
type PolicyRepository interface {
	Create(ctx context.Context, policy *abacDomain.Policy) error

	Get(ctx context.Context, id uuid.UUID) (*abacDomain.Policy, error)

	// Update replaces a policy. Returns ErrPolicyNotFound if it does not exist.
	Update(ctx context.Context, policy *abacDomain.Policy) error

	// Delete removes a policy. Returns ErrPolicyNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, offset, limit int) ([]*abacDomain.Policy, error)

	// ListEnabledFor returns the enabled policies targeting (resourceType, action),
	// highest priority first.
	ListEnabledFor(ctx context.Context, resourceType, action string) ([]*abacDomain.Policy, error)
}

// AttributeRepository defines persistence for user attributes.
type AttributeRepository interface {
	// Upsert creates or replaces the attribute (userID, name).
	Upsert(ctx context.Context, attribute *abacDomain.UserAttribute) error

	// Delete removes an attribute. Returns ErrAttributeNotFound if it does not exist.
	Delete(ctx context.Context, userID uuid.UUID, name string) error

	// ListActive returns the attributes of userID that have not expired at now.
	ListActive(ctx context.Context, userID uuid.UUID, now time.Time) ([]*abacDomain.UserAttribute, error)
}

// AuditRecorder appends events to the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, input *auditDomain.RecordInput) (*auditDomain.AuditEvent, error)
}

// ABACUseCase administers policies and attributes and evaluates requests against them.
type ABACUseCase interface {
	CreatePolicy(ctx context.Context, actor *authDomain.Principal, input *abacDomain.PolicyInput) (*abacDomain.Policy, error)

	UpdatePolicy(
		ctx context.Context,
		actor *authDomain.Principal,
		id uuid.UUID,
		input *abacDomain.PolicyInput,
	) (*abacDomain.Policy, error)

	DeletePolicy(ctx context.Context, actor *authDomain.Principal, id uuid.UUID) error

	GetPolicy(ctx context.Context, id uuid.UUID) (*abacDomain.Policy, error)

	ListPolicies(ctx context.Context, offset, limit int) ([]*abacDomain.Policy, error)

	SetAttribute(
		ctx context.Context,
		actor *authDomain.Principal,
		input *abacDomain.SetAttributeInput,
	) (*abacDomain.UserAttribute, error)

	DeleteAttribute(ctx context.Context, actor *authDomain.Principal, userID uuid.UUID, name string) error

	// ListAttributes returns the user's unexpired attributes.
	ListAttributes(ctx context.Context, userID uuid.UUID) ([]*abacDomain.UserAttribute, error)

	// Evaluate merges the user's stored attributes into the request context and applies the
	// policies targeting the request. No targeting policy means allowed.
	Evaluate(ctx context.Context, input *abacDomain.EvaluateInput) (*abacDomain.Evaluation, error)
}
