// Package usecase runs the enabled authorization models over an access request in a fixed
// order and records every decision in the audit trail.
package usecase

import (
	"context"

	"github.com/google/uuid"

	abacDomain "github.com/allisson/sentinel/internal/abac/domain"
	accessDomain "github.com/allisson/sentinel/internal/access/domain"
	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	dacDomain "github.com/allisson/sentinel/internal/dac/domain"
	macDomain "github.com/allisson/sentinel/internal/mac/domain"
	resourceDomain "github.com/allisson/sentinel/internal/resource/domain"
	rubacDomain "github.com/allisson/sentinel/internal/rubac/domain"
)

// Evaluator adapts one authorization model to the orchestrator.
type Evaluator interface {
	Model() accessDomain.Model

	// Evaluate returns the model's verdict. An error means the model could not decide.
	Evaluate(ctx context.Context, req *accessDomain.Request) (*accessDomain.Verdict, error)
}

// RoleChecker answers role-based permission questions.
type RoleChecker interface {
	HasPermission(ctx context.Context, userID uuid.UUID, resourceType, action string) (bool, error)
}

// LabelChecker answers Bell-LaPadula questions for stored subjects and objects.
type LabelChecker interface {
	Check(
		ctx context.Context,
		userID uuid.UUID,
		resourceType, resourceID string,
		mode macDomain.AccessMode,
	) (*macDomain.Decision, error)

	Subject(ctx context.Context, userID uuid.UUID) (macDomain.Subject, error)
}

// OwnershipChecker reports the discretionary rights a user holds on a resource.
type OwnershipChecker interface {
	EffectivePermission(ctx context.Context, userID uuid.UUID, resourceType, resourceID string) (dacDomain.Permission, error)
}

// PolicyEvaluator applies attribute based access policies.
type PolicyEvaluator interface {
	Evaluate(ctx context.Context, input *abacDomain.EvaluateInput) (*abacDomain.Evaluation, error)
}

// ContextEvaluator applies time, device and network rules.
type ContextEvaluator interface {
	Evaluate(ctx context.Context, input *rubacDomain.EvaluateInput) (*rubacDomain.Result, error)
}

// ResourceReader loads a registered resource.
type ResourceReader interface {
	Get(ctx context.Context, resourceType, resourceID string) (*resourceDomain.Resource, error)
}

// AuditRecorder appends events to the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, input *auditDomain.RecordInput) (*auditDomain.AuditEvent, error)
}

// AccessUseCase decides access requests.
type AccessUseCase interface {
	// CheckAccess returns the decision for req. When the decision could not be audited the
	// decision is still returned together with ErrAuditEmission.
	CheckAccess(ctx context.Context, req *accessDomain.Request) (*accessDomain.Decision, error)
}
