// Package repository implements permission grant, ownership transfer and sharing link
// persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	dacDomain "github.com/allisson/sentinel/internal/dac/domain"
	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
)

const (
	permissionColumns = `id, resource_type, resource_id, user_id, permissions, expires_at, granted_by, reason, created_at, updated_at`
	transferColumns   = `id, resource_type, resource_id, from_user_id, to_user_id, reason, status, decided_by, decided_at, decision_reason, created_at`
	linkColumns       = `id, token_hash, resource_type, resource_id, created_by, permissions, expires_at, max_uses, uses_so_far, password_hash, require_auth, allowed_emails, allowed_domains, revoked_at, revoked_by, created_at`
)

// PostgreSQLPermissionRepository implements permission grant persistence for PostgreSQL.
type PostgreSQLPermissionRepository struct {
	db *sql.DB
}

// NewPostgreSQLPermissionRepository creates a new PostgreSQLPermissionRepository.
func NewPostgreSQLPermissionRepository(db *sql.DB) *PostgreSQLPermissionRepository {
	return &PostgreSQLPermissionRepository{db: db}
}

// Upsert replaces the bitset of an existing grant and keeps its id and created_at.
func (p *PostgreSQLPermissionRepository) Upsert(ctx context.Context, g *dacDomain.ResourcePermission) error {
	querier := database.GetTx(ctx, p.db)
	query := `INSERT INTO resource_permissions (` + permissionColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  ON CONFLICT (resource_type, resource_id, user_id) DO UPDATE SET
			  permissions = EXCLUDED.permissions, expires_at = EXCLUDED.expires_at,
			  granted_by = EXCLUDED.granted_by, reason = EXCLUDED.reason, updated_at = EXCLUDED.updated_at`

	_, err := querier.ExecContext(ctx, query, g.ID, g.ResourceType, g.ResourceID, g.UserID, g.Permissions,
		g.ExpiresAt, g.GrantedBy, g.Reason, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert permission")
	}
	return nil
}

func (p *PostgreSQLPermissionRepository) Get(
	ctx context.Context,
	resourceType, resourceID string,
	userID uuid.UUID,
) (*dacDomain.ResourcePermission, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + permissionColumns + ` FROM resource_permissions
			  WHERE resource_type = $1 AND resource_id = $2 AND user_id = $3`
	return scanPermissionRow(querier.QueryRowContext(ctx, query, resourceType, resourceID, userID))
}

func (p *PostgreSQLPermissionRepository) Delete(
	ctx context.Context,
	resourceType, resourceID string,
	userID uuid.UUID,
) error {
	querier := database.GetTx(ctx, p.db)
	query := `DELETE FROM resource_permissions WHERE resource_type = $1 AND resource_id = $2 AND user_id = $3`

	result, err := querier.ExecContext(ctx, query, resourceType, resourceID, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete permission")
	}
	return requireRow(result, dacDomain.ErrPermissionNotFound)
}

func (p *PostgreSQLPermissionRepository) ListByResource(
	ctx context.Context,
	resourceType, resourceID string,
) ([]*dacDomain.ResourcePermission, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + permissionColumns + ` FROM resource_permissions
			  WHERE resource_type = $1 AND resource_id = $2 ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, resourceType, resourceID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permissions")
	}
	return scanPermissions(rows)
}

// PostgreSQLTransferRepository implements ownership transfer persistence for PostgreSQL.
type PostgreSQLTransferRepository struct {
	db *sql.DB
}

// NewPostgreSQLTransferRepository creates a new PostgreSQLTransferRepository.
func NewPostgreSQLTransferRepository(db *sql.DB) *PostgreSQLTransferRepository {
	return &PostgreSQLTransferRepository{db: db}
}

func (p *PostgreSQLTransferRepository) Create(ctx context.Context, t *dacDomain.OwnershipTransfer) error {
	querier := database.GetTx(ctx, p.db)
	query := `INSERT INTO ownership_transfers (` + transferColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := querier.ExecContext(ctx, query, t.ID, t.ResourceType, t.ResourceID, t.FromUserID, t.ToUserID,
		t.Reason, t.Status, t.DecidedBy, t.DecidedAt, t.DecisionReason, t.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create ownership transfer")
	}
	return nil
}

func (p *PostgreSQLTransferRepository) Get(ctx context.Context, id uuid.UUID) (*dacDomain.OwnershipTransfer, error) {
	querier := database.GetTx(ctx, p.db)
	return scanTransferRow(
		querier.QueryRowContext(ctx, `SELECT `+transferColumns+` FROM ownership_transfers WHERE id = $1`, id),
	)
}

// Decide is a compare-and-set on status so only one decision can win.
func (p *PostgreSQLTransferRepository) Decide(ctx context.Context, t *dacDomain.OwnershipTransfer) error {
	querier := database.GetTx(ctx, p.db)
	query := `UPDATE ownership_transfers SET status = $1, decided_by = $2, decided_at = $3, decision_reason = $4
			  WHERE id = $5 AND status = $6`

	result, err := querier.ExecContext(ctx, query, t.Status, t.DecidedBy, t.DecidedAt, t.DecisionReason, t.ID,
		dacDomain.TransferRequested)
	if err != nil {
		return apperrors.Wrap(err, "failed to decide ownership transfer")
	}
	return requireRow(result, dacDomain.ErrTransferAlreadyDecided)
}

func (p *PostgreSQLTransferRepository) ListPending(
	ctx context.Context,
	userID uuid.UUID,
) ([]*dacDomain.OwnershipTransfer, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + transferColumns + ` FROM ownership_transfers
			  WHERE status = $1 AND (from_user_id = $2 OR to_user_id = $2) ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, dacDomain.TransferRequested, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list ownership transfers")
	}
	return scanTransfers(rows)
}

// PostgreSQLLinkRepository implements sharing link persistence for PostgreSQL.
type PostgreSQLLinkRepository struct {
	db *sql.DB
}

// NewPostgreSQLLinkRepository creates a new PostgreSQLLinkRepository.
func NewPostgreSQLLinkRepository(db *sql.DB) *PostgreSQLLinkRepository {
	return &PostgreSQLLinkRepository{db: db}
}

func (p *PostgreSQLLinkRepository) Create(ctx context.Context, l *dacDomain.SharingLink) error {
	querier := database.GetTx(ctx, p.db)
	query := `INSERT INTO sharing_links (` + linkColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := querier.ExecContext(ctx, query, l.ID, l.TokenHash, l.ResourceType, l.ResourceID, l.CreatedBy,
		l.Permissions, l.ExpiresAt, l.MaxUses, l.UsesSoFar, l.PasswordHash, l.RequireAuth, l.AllowedEmails,
		l.AllowedDomains, l.RevokedAt, l.RevokedBy, l.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create sharing link")
	}
	return nil
}

func (p *PostgreSQLLinkRepository) Get(ctx context.Context, id uuid.UUID) (*dacDomain.SharingLink, error) {
	querier := database.GetTx(ctx, p.db)
	return scanLinkRow(querier.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM sharing_links WHERE id = $1`, id))
}

func (p *PostgreSQLLinkRepository) GetByTokenHash(ctx context.Context, tokenHash []byte) (*dacDomain.SharingLink, error) {
	querier := database.GetTx(ctx, p.db)
	return scanLinkRow(
		querier.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM sharing_links WHERE token_hash = $1`, tokenHash),
	)
}

// IncrementUses re-checks every live-link condition in the UPDATE itself, so concurrent
// redemptions can never push uses_so_far past max_uses.
func (p *PostgreSQLLinkRepository) IncrementUses(ctx context.Context, id uuid.UUID, now time.Time) error {
	querier := database.GetTx(ctx, p.db)
	query := `UPDATE sharing_links SET uses_so_far = uses_so_far + 1
			  WHERE id = $1 AND revoked_at IS NULL AND (expires_at IS NULL OR expires_at > $2)
			  AND (max_uses IS NULL OR uses_so_far < max_uses)`

	result, err := querier.ExecContext(ctx, query, id, now)
	if err != nil {
		return apperrors.Wrap(err, "failed to consume sharing link use")
	}
	return requireRow(result, dacDomain.ErrLinkExhausted)
}

func (p *PostgreSQLLinkRepository) Revoke(ctx context.Context, id, revokedBy uuid.UUID, now time.Time) error {
	querier := database.GetTx(ctx, p.db)
	query := `UPDATE sharing_links SET revoked_at = $1, revoked_by = $2 WHERE id = $3 AND revoked_at IS NULL`

	if _, err := querier.ExecContext(ctx, query, now, revokedBy, id); err != nil {
		return apperrors.Wrap(err, "failed to revoke sharing link")
	}
	return nil
}

func (p *PostgreSQLLinkRepository) ListByResource(
	ctx context.Context,
	resourceType, resourceID string,
) ([]*dacDomain.SharingLink, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + linkColumns + ` FROM sharing_links
			  WHERE resource_type = $1 AND resource_id = $2 ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, resourceType, resourceID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sharing links")
	}
	return scanLinks(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPermission(row rowScanner) (*dacDomain.ResourcePermission, error) {
	var g dacDomain.ResourcePermission
	err := row.Scan(&g.ID, &g.ResourceType, &g.ResourceID, &g.UserID, &g.Permissions, &g.ExpiresAt,
		&g.GrantedBy, &g.Reason, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func scanPermissionRow(row *sql.Row) (*dacDomain.ResourcePermission, error) {
	g, err := scanPermission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dacDomain.ErrPermissionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get permission")
	}
	return g, nil
}

func scanPermissions(rows *sql.Rows) ([]*dacDomain.ResourcePermission, error) {
	defer rows.Close() //nolint:errcheck

	grants := make([]*dacDomain.ResourcePermission, 0)
	for rows.Next() {
		g, err := scanPermission(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan permission")
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate permissions")
	}
	return grants, nil
}

func scanTransfer(row rowScanner) (*dacDomain.OwnershipTransfer, error) {
	var t dacDomain.OwnershipTransfer
	err := row.Scan(&t.ID, &t.ResourceType, &t.ResourceID, &t.FromUserID, &t.ToUserID, &t.Reason, &t.Status,
		&t.DecidedBy, &t.DecidedAt, &t.DecisionReason, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTransferRow(row *sql.Row) (*dacDomain.OwnershipTransfer, error) {
	t, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dacDomain.ErrTransferNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get ownership transfer")
	}
	return t, nil
}

func scanTransfers(rows *sql.Rows) ([]*dacDomain.OwnershipTransfer, error) {
	defer rows.Close() //nolint:errcheck

	transfers := make([]*dacDomain.OwnershipTransfer, 0)
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan ownership transfer")
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate ownership transfers")
	}
	return transfers, nil
}

func scanLink(row rowScanner) (*dacDomain.SharingLink, error) {
	var (
		l       dacDomain.SharingLink
		maxUses sql.NullInt64
	)
	err := row.Scan(&l.ID, &l.TokenHash, &l.ResourceType, &l.ResourceID, &l.CreatedBy, &l.Permissions,
		&l.ExpiresAt, &maxUses, &l.UsesSoFar, &l.PasswordHash, &l.RequireAuth, &l.AllowedEmails,
		&l.AllowedDomains, &l.RevokedAt, &l.RevokedBy, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	if maxUses.Valid {
		n := int(maxUses.Int64)
		l.MaxUses = &n
	}
	return &l, nil
}

func scanLinkRow(row *sql.Row) (*dacDomain.SharingLink, error) {
	l, err := scanLink(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dacDomain.ErrLinkNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get sharing link")
	}
	return l, nil
}

func scanLinks(rows *sql.Rows) ([]*dacDomain.SharingLink, error) {
	defer rows.Close() //nolint:errcheck

	links := make([]*dacDomain.SharingLink, 0)
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan sharing link")
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate sharing links")
	}
	return links, nil
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
