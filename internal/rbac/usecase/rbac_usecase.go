package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	"github.com/allisson/sentinel/internal/clock"
	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
	rbacDomain "github.com/allisson/sentinel/internal/rbac/domain"
)

const auditResourceRole = "role"

type rbacUseCase struct {
	txManager      database.TxManager
	roleRepo       RoleRepository
	assignmentRepo AssignmentRepository
	requestRepo    RequestRepository
	audit          AuditRecorder
	clock          clock.Clock
}

// requireGrantor enforces that actor is an admin acting on someone else's roles.
func requireGrantor(actor *authDomain.Principal, userID uuid.UUID) error {
	if !actor.CanAdminister() {
		return rbacDomain.ErrRoleAdminRequired
	}
	if actor.UserID == userID {
		return rbacDomain.ErrSelfApproval
	}
	return nil
}

// validateExpiry requires a future expiry for temporary grants and ignores it otherwise.
func validateExpiry(isTemporary bool, expiresAt *time.Time, now time.Time) (*time.Time, error) {
	if !isTemporary {
		return nil, nil
	}
	if expiresAt == nil || !expiresAt.After(now) {
		return nil, rbacDomain.ErrTemporaryExpiryRequired
	}
	return expiresAt, nil
}

func (r *rbacUseCase) CreateRole(
	ctx context.Context,
	actor *authDomain.Principal,
	input *rbacDomain.CreateRoleInput,
) (*rbacDomain.Role, error) {
	if !actor.CanAdminister() {
		return nil, rbacDomain.ErrRoleAdminRequired
	}
	permissions, err := rbacDomain.ParsePermissions(input.Permissions)
	if err != nil {
		return nil, err
	}

	role := &rbacDomain.Role{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Permissions: permissions,
		CreatedAt:   r.clock.Now(),
	}

	err = r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := r.roleRepo.Create(ctx, role); err != nil {
			return err
		}
		_, err := r.audit.Record(ctx, &auditDomain.RecordInput{
			ActorID:      actor.UserID,
			Action:       auditDomain.ActionRoleCreated,
			ResourceType: auditResourceRole,
			ResourceID:   role.ID.String(),
			Outcome:      auditDomain.OutcomeSuccess,
			Details:      map[string]any{"name": role.Name, "permissions": role.Permissions.Strings()},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (r *rbacUseCase) GetRole(ctx context.Context, id uuid.UUID) (*rbacDomain.Role, error) {
	return r.roleRepo.Get(ctx, id)
}

func (r *rbacUseCase) ListRoles(ctx context.Context, offset, limit int) ([]*rbacDomain.Role, error) {
	roles, err := r.roleRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list roles")
	}
	return roles, nil
}

func (r *rbacUseCase) AssignRole(
	ctx context.Context,
	actor *authDomain.Principal,
	input *rbacDomain.AssignRoleInput,
) (*rbacDomain.RoleAssignment, error) {
	if err := requireGrantor(actor, input.UserID); err != nil {
		return nil, err
	}

	now := r.clock.Now()
	expiresAt, err := validateExpiry(input.IsTemporary, input.ExpiresAt, now)
	if err != nil {
		return nil, err
	}

	assignment := &rbacDomain.RoleAssignment{
		ID:          uuid.Must(uuid.NewV7()),
		UserID:      input.UserID,
		RoleID:      input.RoleID,
		IsTemporary: input.IsTemporary,
		ExpiresAt:   expiresAt,
		GrantedBy:   actor.UserID,
		CreatedAt:   now,
	}

	err = r.txManager.WithTx(ctx, func(ctx context.Context) error {
		role, err := r.roleRepo.Get(ctx, input.RoleID)
		if err != nil {
			return err
		}

		if err := r.assignmentRepo.Create(ctx, assignment); err != nil {
			return err
		}
		_, err = r.audit.Record(ctx, &auditDomain.RecordInput{
			ActorID:      actor.UserID,
			Action:       auditDomain.ActionRoleAssigned,
			ResourceType: auditResourceRole,
			ResourceID:   role.ID.String(),
			Outcome:      auditDomain.OutcomeSuccess,
			Details: map[string]any{
				"user_id":      input.UserID.String(),
				"role":         role.Name,
				"is_temporary": assignment.IsTemporary,
				"reason":       input.Reason,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

func (r *rbacUseCase) RevokeRole(
	ctx context.Context,
	actor *authDomain.Principal,
	input *rbacDomain.RevokeRoleInput,
) error {
	if !actor.CanAdminister() {
		return rbacDomain.ErrRoleAdminRequired
	}

	return r.txManager.WithTx(ctx, func(ctx context.Context) error {
		revoked, err := r.assignmentRepo.Revoke(ctx, input.UserID, input.RoleID, actor.UserID, input.Reason, r.clock.Now())
		if err != nil {
			return err
		}
		if revoked == 0 {
			return rbacDomain.ErrAssignmentNotFound
		}
		_, err = r.audit.Record(ctx, &auditDomain.RecordInput{
			ActorID:      actor.UserID,
			Action:       auditDomain.ActionRoleRevoked,
			ResourceType: auditResourceRole,
			ResourceID:   input.RoleID.String(),
			Outcome:      auditDomain.OutcomeSuccess,
			Details:      map[string]any{"user_id": input.UserID.String(), "reason": input.Reason},
		})
		return err
	})
}

func (r *rbacUseCase) RequestRole(
	ctx context.Context,
	actor *authDomain.Principal,
	input *rbacDomain.RequestRoleInput,
) (*rbacDomain.RoleRequest, error) {
	userID := input.UserID
	if userID == uuid.Nil {
		userID = actor.UserID
	}
	if userID != actor.UserID && !actor.CanAdminister() {
		return nil, rbacDomain.ErrRoleAdminRequired
	}

	now := r.clock.Now()
	expiresAt, err := validateExpiry(input.IsTemporary, input.RequestedExpiresAt, now)
	if err != nil {
		return nil, err
	}

	request := &rbacDomain.RoleRequest{
		ID:                 uuid.Must(uuid.NewV7()),
		UserID:             userID,
		RoleID:             input.RoleID,
		RequestedBy:        actor.UserID,
		Reason:             input.Reason,
		Justification:      input.Justification,
		IsTemporary:        input.IsTemporary,
		RequestedExpiresAt: expiresAt,
		Status:             rbacDomain.RequestRequested,
		CreatedAt:          now,
	}

	err = r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if _, err := r.roleRepo.Get(ctx, input.RoleID); err != nil {
			return err
		}
		if err := r.requestRepo.Create(ctx, request); err != nil {
			return err
		}
		_, err := r.audit.Record(ctx, &auditDomain.RecordInput{
			ActorID:      actor.UserID,
			Action:       auditDomain.ActionRoleRequested,
			ResourceType: auditResourceRole,
			ResourceID:   input.RoleID.String(),
			Outcome:      auditDomain.OutcomeSuccess,
			Details: map[string]any{
				"request_id":   request.ID.String(),
				"user_id":      userID.String(),
				"is_temporary": request.IsTemporary,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (r *rbacUseCase) ApproveRoleRequest(
	ctx context.Context,
	actor *authDomain.Principal,
	input *rbacDomain.ApproveRoleRequestInput,
) (*rbacDomain.RoleAssignment, error) {
	if !actor.CanAdminister() {
		return nil, rbacDomain.ErrRoleAdminRequired
	}

	var assignment *rbacDomain.RoleAssignment
	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		request, err := r.requestRepo.Get(ctx, input.RequestID)
		if err != nil {
			return err
		}
		if request.Status != rbacDomain.RequestRequested {
			return rbacDomain.ErrRequestAlreadyDecided
		}
		if request.UserID == actor.UserID {
			return rbacDomain.ErrSelfApproval
		}

		isTemporary := request.IsTemporary
		if input.IsTemporary != nil {
			isTemporary = *input.IsTemporary
		}
		expiresAt := request.RequestedExpiresAt
		if input.ExpiresAt != nil {
			expiresAt = input.ExpiresAt
		}

		now := r.clock.Now()
		expiresAt, err = validateExpiry(isTemporary, expiresAt, now)
		if err != nil {
			return err
		}

		request.Status = rbacDomain.RequestApproved
		request.DecidedBy = &actor.UserID
		request.DecidedAt = &now
		if err := r.requestRepo.Decide(ctx, request); err != nil {
			return err
		}

		assignment = &rbacDomain.RoleAssignment{
			ID:          uuid.Must(uuid.NewV7()),
			UserID:      request.UserID,
			RoleID:      request.RoleID,
			IsTemporary: isTemporary,
			ExpiresAt:   expiresAt,
			GrantedBy:   actor.UserID,
			RequestID:   &request.ID,
			CreatedAt:   now,
		}
		if err := r.assignmentRepo.Create(ctx, assignment); err != nil {
			return err
		}

		_, err = r.audit.Record(ctx, &auditDomain.RecordInput{
			ActorID:      actor.UserID,
			Action:       auditDomain.ActionRoleRequestApproved,
			ResourceType: auditResourceRole,
			ResourceID:   request.RoleID.String(),
			Outcome:      auditDomain.OutcomeSuccess,
			Details: map[string]any{
				"request_id":   request.ID.String(),
				"user_id":      request.UserID.String(),
				"is_temporary": isTemporary,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

func (r *rbacUseCase) RejectRoleRequest(
	ctx context.Context,
	actor *authDomain.Principal,
	input *rbacDomain.RejectRoleRequestInput,
) (*rbacDomain.RoleRequest, error) {
	if !actor.CanAdminister() {
		return nil, rbacDomain.ErrRoleAdminRequired
	}

	var request *rbacDomain.RoleRequest
	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		request, err = r.requestRepo.Get(ctx, input.RequestID)
		if err != nil {
			return err
		}
		if request.Status != rbacDomain.RequestRequested {
			return rbacDomain.ErrRequestAlreadyDecided
		}

		now := r.clock.Now()
		request.Status = rbacDomain.RequestRejected
		request.DecidedBy = &actor.UserID
		request.DecidedAt = &now
		request.DecisionReason = input.Reason
		if err := r.requestRepo.Decide(ctx, request); err != nil {
			return err
		}

		_, err = r.audit.Record(ctx, &auditDomain.RecordInput{
			ActorID:      actor.UserID,
			Action:       auditDomain.ActionRoleRequestRejected,
			ResourceType: auditResourceRole,
			ResourceID:   request.RoleID.String(),
			Outcome:      auditDomain.OutcomeSuccess,
			Details: map[string]any{
				"request_id": request.ID.String(),
				"user_id":    request.UserID.String(),
				"reason":     input.Reason,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (r *rbacUseCase) ListPendingRequests(ctx context.Context, offset, limit int) ([]*rbacDomain.RoleRequest, error) {
	requests, err := r.requestRepo.ListPending(ctx, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list role requests")
	}
	return requests, nil
}

func (r *rbacUseCase) ListAssignments(ctx context.Context, userID uuid.UUID) ([]*rbacDomain.ActiveAssignment, error) {
	return r.assignmentRepo.ListActive(ctx, userID, r.clock.Now())
}

// EffectivePermissions re-reads assignments on every call so revocations and expiries apply
// immediately.
func (r *rbacUseCase) EffectivePermissions(
	ctx context.Context,
	userID uuid.UUID,
) (*rbacDomain.EffectivePermissions, error) {
	active, err := r.assignmentRepo.ListActive(ctx, userID, r.clock.Now())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load role assignments")
	}
	return rbacDomain.Merge(userID, active), nil
}

func (r *rbacUseCase) HasPermission(
	ctx context.Context,
	userID uuid.UUID,
	resourceType, action string,
) (bool, error) {
	effective, err := r.EffectivePermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	return effective.Permissions.Allows(resourceType, action), nil
}

// NewRBACUseCase creates a new RBACUseCase with the provided dependencies.
func NewRBACUseCase(
	txManager database.TxManager,
	roleRepo RoleRepository,
	assignmentRepo AssignmentRepository,
	requestRepo RequestRepository,
	audit AuditRecorder,
	clk clock.Clock,
) RBACUseCase {
	return &rbacUseCase{
		txManager:      txManager,
		roleRepo:       roleRepo,
		assignmentRepo: assignmentRepo,
		requestRepo:    requestRepo,
		audit:          audit,
		clock:          clk,
	}
}
