package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
	rbacDomain "github.com/allisson/sentinel/internal/rbac/domain"
)

// MySQLRoleRepository implements role persistence for MySQL.
type MySQLRoleRepository struct {
	db *sql.DB
}

// NewMySQLRoleRepository creates a new MySQLRoleRepository.
func NewMySQLRoleRepository(db *sql.DB) *MySQLRoleRepository {
	return &MySQLRoleRepository{db: db}
}

func (m *MySQLRoleRepository) Create(ctx context.Context, role *rbacDomain.Role) error {
	querier := database.GetTx(ctx, m.db)
	query := `INSERT INTO roles (` + roleColumns + `) VALUES (?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, role.ID, role.Name, role.Description, role.Permissions, role.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return rbacDomain.ErrRoleAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create role")
	}
	return nil
}

func (m *MySQLRoleRepository) Get(ctx context.Context, id uuid.UUID) (*rbacDomain.Role, error) {
	querier := database.GetTx(ctx, m.db)
	return scanRoleRow(querier.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = ?`, id))
}

func (m *MySQLRoleRepository) GetByName(ctx context.Context, name string) (*rbacDomain.Role, error) {
	querier := database.GetTx(ctx, m.db)
	return scanRoleRow(querier.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = ?`, name))
}

func (m *MySQLRoleRepository) List(ctx context.Context, offset, limit int) ([]*rbacDomain.Role, error) {
	querier := database.GetTx(ctx, m.db)
	rows, err := querier.QueryContext(ctx,
		`SELECT `+roleColumns+` FROM roles ORDER BY name ASC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list roles")
	}
	defer rows.Close() //nolint:errcheck

	roles := make([]*rbacDomain.Role, 0)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan role")
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate roles")
	}
	return roles, nil
}

// MySQLAssignmentRepository implements role assignment persistence for MySQL.
type MySQLAssignmentRepository struct {
	db *sql.DB
}

// NewMySQLAssignmentRepository creates a new MySQLAssignmentRepository.
func NewMySQLAssignmentRepository(db *sql.DB) *MySQLAssignmentRepository {
	return &MySQLAssignmentRepository{db: db}
}

func (m *MySQLAssignmentRepository) Create(ctx context.Context, a *rbacDomain.RoleAssignment) error {
	querier := database.GetTx(ctx, m.db)
	query := `INSERT INTO role_assignments (` + assignmentColumns + `)
			  SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ? FROM DUAL
			  WHERE NOT EXISTS (
			      SELECT 1 FROM role_assignments
			      WHERE user_id = ? AND role_id = ? AND revoked_at IS NULL
			        AND (expires_at IS NULL OR expires_at > ?)
			  )`

	result, err := querier.ExecContext(ctx, query, a.ID, a.UserID, a.RoleID, a.IsTemporary, a.ExpiresAt,
		a.GrantedBy, a.RequestID, a.RevokedAt, a.RevokedBy, a.RevokeReason, a.CreatedAt,
		a.UserID, a.RoleID, a.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return rbacDomain.ErrRequestAlreadyDecided
		}
		return apperrors.Wrap(err, "failed to create role assignment")
	}
	return checkAssignmentInserted(result)
}

func (m *MySQLAssignmentRepository) ListActive(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*rbacDomain.ActiveAssignment, error) {
	querier := database.GetTx(ctx, m.db)
	query := `SELECT ` + prefixed("a", assignmentColumns) + `, ` + prefixed("r", roleColumns) + `
			  FROM role_assignments a JOIN roles r ON r.id = a.role_id
			  WHERE a.user_id = ? AND a.revoked_at IS NULL AND (a.expires_at IS NULL OR a.expires_at > ?)
			  ORDER BY a.created_at ASC`

	rows, err := querier.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list role assignments")
	}
	return scanActiveAssignments(rows)
}

func (m *MySQLAssignmentRepository) Revoke(
	ctx context.Context,
	userID, roleID, revokedBy uuid.UUID,
	reason string,
	now time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)
	query := `UPDATE role_assignments SET revoked_at = ?, revoked_by = ?, revoke_reason = ?
			  WHERE user_id = ? AND role_id = ? AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, query, now, revokedBy, reason, userID, roleID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to revoke role")
	}
	revoked, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return revoked, nil
}

// MySQLRequestRepository implements role request persistence for MySQL.
type MySQLRequestRepository struct {
	db *sql.DB
}

// NewMySQLRequestRepository creates a new MySQLRequestRepository.
func NewMySQLRequestRepository(db *sql.DB) *MySQLRequestRepository {
	return &MySQLRequestRepository{db: db}
}

// Create inserts a request. The unique index on the generated pending_key column rejects a
// duplicate pending request.
func (m *MySQLRequestRepository) Create(ctx context.Context, r *rbacDomain.RoleRequest) error {
	querier := database.GetTx(ctx, m.db)
	query := `INSERT INTO role_requests (` + requestColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, r.ID, r.UserID, r.RoleID, r.RequestedBy, r.Reason, r.Justification,
		r.IsTemporary, r.RequestedExpiresAt, r.Status, r.DecidedBy, r.DecidedAt, r.DecisionReason, r.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return rbacDomain.ErrDuplicatePendingRequest
		}
		return apperrors.Wrap(err, "failed to create role request")
	}
	return nil
}

func (m *MySQLRequestRepository) Get(ctx context.Context, id uuid.UUID) (*rbacDomain.RoleRequest, error) {
	querier := database.GetTx(ctx, m.db)
	return scanRequestRow(querier.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM role_requests WHERE id = ?`, id))
}

func (m *MySQLRequestRepository) Decide(ctx context.Context, r *rbacDomain.RoleRequest) error {
	querier := database.GetTx(ctx, m.db)
	query := `UPDATE role_requests SET status = ?, decided_by = ?, decided_at = ?, decision_reason = ?
			  WHERE id = ? AND status = ?`

	result, err := querier.ExecContext(ctx, query, r.Status, r.DecidedBy, r.DecidedAt, r.DecisionReason, r.ID,
		rbacDomain.RequestRequested)
	if err != nil {
		return apperrors.Wrap(err, "failed to decide role request")
	}
	return requireRow(result, rbacDomain.ErrRequestAlreadyDecided)
}

func (m *MySQLRequestRepository) ListPending(
	ctx context.Context,
	offset, limit int,
) ([]*rbacDomain.RoleRequest, error) {
	querier := database.GetTx(ctx, m.db)
	query := `SELECT ` + requestColumns + ` FROM role_requests WHERE status = ?
			  ORDER BY created_at ASC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, rbacDomain.RequestRequested, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list role requests")
	}
	return scanRequests(rows)
}
