// Package usecase implements the role catalog and the role request workflow.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	rbacDomain "github.com/allisson/sentinel/internal/rbac/domain"
)

// RoleRepository defines persistence for the role catalog.
type RoleRepository interface {
	// Create stores a role. Returns ErrRoleAlreadyExists on a duplicate name.
	Create(ctx context.Context, role *rbacDomain.Role) error

	Get(ctx context.Context, id uuid.UUID) (*rbacDomain.Role, error)

	GetByName(ctx context.Context, name string) (*rbacDomain.Role, error)

	List(ctx context.Context, offset, limit int) ([]*rbacDomain.Role, error)
}

// AssignmentRepository defines persistence for role assignments.
type AssignmentRepository interface {
	// Create stores an assignment unless the user already holds an active assignment of the
	// role at assignment.CreatedAt, which is rejected with ErrRoleAlreadyAssigned. A second
	// assignment for the same request is rejected with ErrRequestAlreadyDecided.
	Create(ctx context.Context, assignment *rbacDomain.RoleAssignment) error

	// ListActive returns the assignments of userID that are neither revoked nor expired at now.
	ListActive(ctx context.Context, userID uuid.UUID, now time.Time) ([]*rbacDomain.ActiveAssignment, error)

	// Revoke marks every active assignment of roleID held by userID as revoked and returns
	// how many were revoked.
	Revoke(
		ctx context.Context,
		userID, roleID, revokedBy uuid.UUID,
		reason string,
		now time.Time,
	) (int64, error)
}

// RequestRepository defines persistence for role requests.
type RequestRepository interface {
	// Create stores a request. Returns ErrDuplicatePendingRequest when the same user already
	// has a pending request for the role.
	Create(ctx context.Context, request *rbacDomain.RoleRequest) error

	Get(ctx context.Context, id uuid.UUID) (*rbacDomain.RoleRequest, error)

	// Decide stores the decision only while the request is still requested.
	// Returns ErrRequestAlreadyDecided otherwise.
	Decide(ctx context.Context, request *rbacDomain.RoleRequest) error

	ListPending(ctx context.Context, offset, limit int) ([]*rbacDomain.RoleRequest, error)
}

// AuditRecorder appends events to the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, input *auditDomain.RecordInput) (*auditDomain.AuditEvent, error)
}

// RBACUseCase defines role catalog, assignment and request operations.
type RBACUseCase interface {
	CreateRole(ctx context.Context, actor *authDomain.Principal, input *rbacDomain.CreateRoleInput) (*rbacDomain.Role, error)

	GetRole(ctx context.Context, id uuid.UUID) (*rbacDomain.Role, error)

	ListRoles(ctx context.Context, offset, limit int) ([]*rbacDomain.Role, error)

	// AssignRole grants a role directly. Administrators only, never to themselves.
	AssignRole(
		ctx context.Context,
		actor *authDomain.Principal,
		input *rbacDomain.AssignRoleInput,
	) (*rbacDomain.RoleAssignment, error)

	// RevokeRole revokes the user's active assignments of the role. Revocation is permanent.
	RevokeRole(ctx context.Context, actor *authDomain.Principal, input *rbacDomain.RevokeRoleInput) error

	// RequestRole opens a request. Users may request for themselves; requesting on behalf of
	// someone else requires an administrator.
	RequestRole(
		ctx context.Context,
		actor *authDomain.Principal,
		input *rbacDomain.RequestRoleInput,
	) (*rbacDomain.RoleRequest, error)

	// ApproveRoleRequest moves a requested request to approved and creates its assignment
	// in one transaction.
	ApproveRoleRequest(
		ctx context.Context,
		actor *authDomain.Principal,
		input *rbacDomain.ApproveRoleRequestInput,
	) (*rbacDomain.RoleAssignment, error)

	// RejectRoleRequest moves a requested request to rejected.
	RejectRoleRequest(
		ctx context.Context,
		actor *authDomain.Principal,
		input *rbacDomain.RejectRoleRequestInput,
	) (*rbacDomain.RoleRequest, error)

	ListPendingRequests(ctx context.Context, offset, limit int) ([]*rbacDomain.RoleRequest, error)

	ListAssignments(ctx context.Context, userID uuid.UUID) ([]*rbacDomain.ActiveAssignment, error)

	// EffectivePermissions returns the union of grants across active assignments.
	EffectivePermissions(ctx context.Context, userID uuid.UUID) (*rbacDomain.EffectivePermissions, error)

	// HasPermission reports whether any active assignment grants action on resourceType.
	HasPermission(ctx context.Context, userID uuid.UUID, resourceType, action string) (bool, error)
}
