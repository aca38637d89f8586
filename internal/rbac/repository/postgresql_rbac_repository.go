// Package repository implements role catalog, assignment and request persistence for
// PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
	rbacDomain "github.com/allisson/sentinel/internal/rbac/domain"
)

const (
	roleColumns       = `id, name, description, permissions, created_at`
	assignmentColumns = `id, user_id, role_id, is_temporary, expires_at, granted_by, request_id, revoked_at, revoked_by, revoke_reason, created_at`
	requestColumns    = `id, user_id, role_id, requested_by, reason, justification, is_temporary, requested_expires_at, status, decided_by, decided_at, decision_reason, created_at`
)

// PostgreSQLRoleRepository implements role persistence for PostgreSQL.
type PostgreSQLRoleRepository struct {
	db *sql.DB
}

// NewPostgreSQLRoleRepository creates a new PostgreSQLRoleRepository.
func NewPostgreSQLRoleRepository(db *sql.DB) *PostgreSQLRoleRepository {
	return &PostgreSQLRoleRepository{db: db}
}

func (p *PostgreSQLRoleRepository) Create(ctx context.Context, role *rbacDomain.Role) error {
	querier := database.GetTx(ctx, p.db)
	query := `INSERT INTO roles (` + roleColumns + `) VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(ctx, query, role.ID, role.Name, role.Description, role.Permissions, role.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return rbacDomain.ErrRoleAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create role")
	}
	return nil
}

func (p *PostgreSQLRoleRepository) Get(ctx context.Context, id uuid.UUID) (*rbacDomain.Role, error) {
	querier := database.GetTx(ctx, p.db)
	return scanRoleRow(querier.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
}

func (p *PostgreSQLRoleRepository) GetByName(ctx context.Context, name string) (*rbacDomain.Role, error) {
	querier := database.GetTx(ctx, p.db)
	return scanRoleRow(querier.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, name))
}

func (p *PostgreSQLRoleRepository) List(ctx context.Context, offset, limit int) ([]*rbacDomain.Role, error) {
	querier := database.GetTx(ctx, p.db)
	rows, err := querier.QueryContext(ctx,
		`SELECT `+roleColumns+` FROM roles ORDER BY name ASC LIMIT $1 OFFSET $2`, limit, offset)
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

// PostgreSQLAssignmentRepository implements role assignment persistence for PostgreSQL.
type PostgreSQLAssignmentRepository struct {
	db *sql.DB
}

// NewPostgreSQLAssignmentRepository creates a new PostgreSQLAssignmentRepository.
func NewPostgreSQLAssignmentRepository(db *sql.DB) *PostgreSQLAssignmentRepository {
	return &PostgreSQLAssignmentRepository{db: db}
}

// Create inserts an assignment unless the user already holds an active assignment of the
// same role at a.CreatedAt; the existence check and the insert are one statement. The unique
// request_id index rejects a second assignment for the same approved request.
func (p *PostgreSQLAssignmentRepository) Create(ctx context.Context, a *rbacDomain.RoleAssignment) error {
	querier := database.GetTx(ctx, p.db)
	query := `INSERT INTO role_assignments (` + assignmentColumns + `)
			  SELECT $1::uuid, $2::uuid, $3::uuid, $4::boolean, $5::timestamptz, $6::uuid, $7::uuid,
			         $8::timestamptz, $9::uuid, $10::text, $11::timestamptz
			  WHERE NOT EXISTS (
			      SELECT 1 FROM role_assignments
			      WHERE user_id = $2 AND role_id = $3 AND revoked_at IS NULL
			        AND (expires_at IS NULL OR expires_at > $11)
			  )`

	result, err := querier.ExecContext(ctx, query, a.ID, a.UserID, a.RoleID, a.IsTemporary, a.ExpiresAt,
		a.GrantedBy, a.RequestID, a.RevokedAt, a.RevokedBy, a.RevokeReason, a.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return rbacDomain.ErrRequestAlreadyDecided
		}
		return apperrors.Wrap(err, "failed to create role assignment")
	}
	return checkAssignmentInserted(result)
}

func (p *PostgreSQLAssignmentRepository) ListActive(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*rbacDomain.ActiveAssignment, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + prefixed("a", assignmentColumns) + `, ` + prefixed("r", roleColumns) + `
			  FROM role_assignments a JOIN roles r ON r.id = a.role_id
			  WHERE a.user_id = $1 AND a.revoked_at IS NULL AND (a.expires_at IS NULL OR a.expires_at > $2)
			  ORDER BY a.created_at ASC`

	rows, err := querier.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list role assignments")
	}
	return scanActiveAssignments(rows)
}

// Revoke sets revoked_at only on assignments that are not already revoked.
func (p *PostgreSQLAssignmentRepository) Revoke(
	ctx context.Context,
	userID, roleID, revokedBy uuid.UUID,
	reason string,
	now time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)
	query := `UPDATE role_assignments SET revoked_at = $1, revoked_by = $2, revoke_reason = $3
			  WHERE user_id = $4 AND role_id = $5 AND revoked_at IS NULL`

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

// PostgreSQLRequestRepository implements role request persistence for PostgreSQL.
type PostgreSQLRequestRepository struct {
	db *sql.DB
}

// NewPostgreSQLRequestRepository creates a new PostgreSQLRequestRepository.
func NewPostgreSQLRequestRepository(db *sql.DB) *PostgreSQLRequestRepository {
	return &PostgreSQLRequestRepository{db: db}
}

// Create inserts a request. The partial unique index on requested rows rejects a duplicate
// pending request.
func (p *PostgreSQLRequestRepository) Create(ctx context.Context, r *rbacDomain.RoleRequest) error {
	querier := database.GetTx(ctx, p.db)
	query := `INSERT INTO role_requests (` + requestColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

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

func (p *PostgreSQLRequestRepository) Get(ctx context.Context, id uuid.UUID) (*rbacDomain.RoleRequest, error) {
	querier := database.GetTx(ctx, p.db)
	return scanRequestRow(querier.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM role_requests WHERE id = $1`, id))
}

// Decide is a compare-and-set on status so only one decision can win.
func (p *PostgreSQLRequestRepository) Decide(ctx context.Context, r *rbacDomain.RoleRequest) error {
	querier := database.GetTx(ctx, p.db)
	query := `UPDATE role_requests SET status = $1, decided_by = $2, decided_at = $3, decision_reason = $4
			  WHERE id = $5 AND status = $6`

	result, err := querier.ExecContext(ctx, query, r.Status, r.DecidedBy, r.DecidedAt, r.DecisionReason, r.ID,
		rbacDomain.RequestRequested)
	if err != nil {
		return apperrors.Wrap(err, "failed to decide role request")
	}
	return requireRow(result, rbacDomain.ErrRequestAlreadyDecided)
}

func (p *PostgreSQLRequestRepository) ListPending(
	ctx context.Context,
	offset, limit int,
) ([]*rbacDomain.RoleRequest, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + requestColumns + ` FROM role_requests WHERE status = $1
			  ORDER BY created_at ASC LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, rbacDomain.RequestRequested, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list role requests")
	}
	return scanRequests(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func roleFields(role *rbacDomain.Role) []any {
	return []any{&role.ID, &role.Name, &role.Description, &role.Permissions, &role.CreatedAt}
}

// checkAssignmentInserted maps a conditional insert that wrote no row to ErrRoleAlreadyAssigned.
func checkAssignmentInserted(result sql.Result) error {
	inserted, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if inserted == 0 {
		return rbacDomain.ErrRoleAlreadyAssigned
	}
	return nil
}

func assignmentFields(a *rbacDomain.RoleAssignment) []any {
	return []any{&a.ID, &a.UserID, &a.RoleID, &a.IsTemporary, &a.ExpiresAt, &a.GrantedBy, &a.RequestID,
		&a.RevokedAt, &a.RevokedBy, &a.RevokeReason, &a.CreatedAt}
}

func scanRole(row rowScanner) (*rbacDomain.Role, error) {
	var role rbacDomain.Role
	if err := row.Scan(roleFields(&role)...); err != nil {
		return nil, err
	}
	return &role, nil
}

func scanRoleRow(row *sql.Row) (*rbacDomain.Role, error) {
	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rbacDomain.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get role")
	}
	return role, nil
}

func scanActiveAssignments(rows *sql.Rows) ([]*rbacDomain.ActiveAssignment, error) {
	defer rows.Close() //nolint:errcheck

	active := make([]*rbacDomain.ActiveAssignment, 0)
	for rows.Next() {
		var item rbacDomain.ActiveAssignment
		dest := append(assignmentFields(&item.Assignment), roleFields(&item.Role)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan role assignment")
		}
		active = append(active, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate role assignments")
	}
	return active, nil
}

func scanRequest(row rowScanner) (*rbacDomain.RoleRequest, error) {
	var r rbacDomain.RoleRequest
	err := row.Scan(&r.ID, &r.UserID, &r.RoleID, &r.RequestedBy, &r.Reason, &r.Justification, &r.IsTemporary,
		&r.RequestedExpiresAt, &r.Status, &r.DecidedBy, &r.DecidedAt, &r.DecisionReason, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanRequestRow(row *sql.Row) (*rbacDomain.RoleRequest, error) {
	r, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rbacDomain.ErrRequestNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get role request")
	}
	return r, nil
}

func scanRequests(rows *sql.Rows) ([]*rbacDomain.RoleRequest, error) {
	defer rows.Close() //nolint:errcheck

	requests := make([]*rbacDomain.RoleRequest, 0)
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan role request")
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate role requests")
	}
	return requests, nil
}

// prefixed qualifies every column of a comma separated list with alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, c := range parts {
		parts[i] = alias + "." + c
	}
	return strings.Join(parts, ", ")
}

func requireRow(result sql.Result, notMatched error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return notMatched
	}
	return nil
}
