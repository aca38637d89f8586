package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	dacDomain "github.com/allisson/sentinel/internal/dac/domain"
	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
)

// MySQLPermissionRepository implements permission grant persistence for MySQL.
type MySQLPermissionRepository struct {
	db *sql.DB
}

// NewMySQLPermissionRepository creates a new MySQLPermissionRepository.
func NewMySQLPermissionRepository(db *sql.DB) *MySQLPermissionRepository {
	return &MySQLPermissionRepository{db: db}
}

// Upsert replaces the bitset of an existing grant and keeps its id and created_at.
func (m *MySQLPermissionRepository) Upsert(ctx context.Context, g *dacDomain.ResourcePermission) error {
	querier := database.GetTx(ctx, m.db)
	query := `INSERT INTO resource_permissions (` + permissionColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			  permissions = VALUES(permissions), expires_at = VALUES(expires_at),
			  granted_by = VALUES(granted_by), reason = VALUES(reason), updated_at = VALUES(updated_at)`

	_, err := querier.ExecContext(ctx, query, g.ID, g.ResourceType, g.ResourceID, g.UserID, g.Permissions,
		g.ExpiresAt, g.GrantedBy, g.Reason, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert permission")
	}
	return nil
}

func (m *MySQLPermissionRepository) Get(
	ctx context.Context,
	resourceType, resourceID string,
	userID uuid.UUID,
) (*dacDomain.ResourcePermission, error) {
	querier := database.GetTx(ctx, m.db)
	query := `SELECT ` + permissionColumns + ` FROM resource_permissions
			  WHERE resource_type = ? AND resource_id = ? AND user_id = ?`
	return scanPermissionRow(querier.QueryRowContext(ctx, query, resourceType, resourceID, userID))
}

func (m *MySQLPermissionRepository) Delete(
	ctx context.Context,
	resourceType, resourceID string,
	userID uuid.UUID,
) error {
	querier := database.GetTx(ctx, m.db)
	query := `DELETE FROM resource_permissions WHERE resource_type = ? AND resource_id = ? AND user_id = ?`

	result, err := querier.ExecContext(ctx, query, resourceType, resourceID, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete permission")
	}
	return requireRow(result, dacDomain.ErrPermissionNotFound)
}

func (m *MySQLPermissionRepository) ListByResource(
	ctx context.Context,
	resourceType, resourceID string,
) ([]*dacDomain.ResourcePermission, error) {
	querier := database.GetTx(ctx, m.db)
	query := `SELECT ` + permissionColumns + ` FROM resource_permissions
			  WHERE resource_type = ? AND resource_id = ? ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, resourceType, resourceID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permissions")
	}
	return scanPermissions(rows)
}

// MySQLTransferRepository implements ownership transfer persistence for MySQL.
type MySQLTransferRepository struct {
	db *sql.DB
}

// NewMySQLTransferRepository creates a new MySQLTransferRepository.
func NewMySQLTransferRepository(db *sql.DB) *MySQLTransferRepository {
	return &MySQLTransferRepository{db: db}
}

func (m *MySQLTransferRepository) Create(ctx context.Context, t *dacDomain.OwnershipTransfer) error {
	querier := database.GetTx(ctx, m.db)
	query := `INSERT INTO ownership_transfers (` + transferColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, t.ID, t.ResourceType, t.ResourceID, t.FromUserID, t.ToUserID,
		t.Reason, t.Status, t.DecidedBy, t.DecidedAt, t.DecisionReason, t.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create ownership transfer")
	}
	return nil
}

func (m *MySQLTransferRepository) Get(ctx context.Context, id uuid.UUID) (*dacDomain.OwnershipTransfer, error) {
	querier := database.GetTx(ctx, m.db)
	return scanTransferRow(
		querier.QueryRowContext(ctx, `SELECT `+transferColumns+` FROM ownership_transfers WHERE id = ?`, id),
	)
}

// Decide is a compare-and-set on status so only one decision can win.
func (m *MySQLTransferRepository) Decide(ctx context.Context, t *dacDomain.OwnershipTransfer) error {
	querier := database.GetTx(ctx, m.db)
	query := `UPDATE ownership_transfers SET status = ?, decided_by = ?, decided_at = ?, decision_reason = ?
			  WHERE id = ? AND status = ?`

	result, err := querier.ExecContext(ctx, query, t.Status, t.DecidedBy, t.DecidedAt, t.DecisionReason, t.ID,
		dacDomain.TransferRequested)
	if err != nil {
		return apperrors.Wrap(err, "failed to decide ownership transfer")
	}
	return requireRow(result, dacDomain.ErrTransferAlreadyDecided)
}

func (m *MySQLTransferRepository) ListPending(
	ctx context.Context,
	userID uuid.UUID,
) ([]*dacDomain.OwnershipTransfer, error) {
	querier := database.GetTx(ctx, m.db)
	query := `SELECT ` + transferColumns + ` FROM ownership_transfers
			  WHERE status = ? AND (from_user_id = ? OR to_user_id = ?) ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, dacDomain.TransferRequested, userID, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list ownership transfers")
	}
	return scanTransfers(rows)
}

// MySQLLinkRepository implements sharing link persistence for MySQL.
type MySQLLinkRepository struct {
	db *sql.DB
}

// NewMySQLLinkRepository creates a new MySQLLinkRepository.
func NewMySQLLinkRepository(db *sql.DB) *MySQLLinkRepository {
	return &MySQLLinkRepository{db: db}
}

func (m *MySQLLinkRepository) Create(ctx context.Context, l *dacDomain.SharingLink) error {
	querier := database.GetTx(ctx, m.db)
	query := `INSERT INTO sharing_links (` + linkColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, l.ID, l.TokenHash, l.ResourceType, l.ResourceID, l.CreatedBy,
		l.Permissions, l.ExpiresAt, l.MaxUses, l.UsesSoFar, l.PasswordHash, l.RequireAuth, l.AllowedEmails,
		l.AllowedDomains, l.RevokedAt, l.RevokedBy, l.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create sharing link")
	}
	return nil
}

func (m *MySQLLinkRepository) Get(ctx context.Context, id uuid.UUID) (*dacDomain.SharingLink, error) {
	querier := database.GetTx(ctx, m.db)
	return scanLinkRow(querier.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM sharing_links WHERE id = ?`, id))
}

func (m *MySQLLinkRepository) GetByTokenHash(ctx context.Context, tokenHash []byte) (*dacDomain.SharingLink, error) {
	querier := database.GetTx(ctx, m.db)
	return scanLinkRow(
		querier.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM sharing_links WHERE token_hash = ?`, tokenHash),
	)
}

// IncrementUses re-checks every live-link condition in the UPDATE itself, so concurrent
// redemptions can never push uses_so_far past max_uses.
func (m *MySQLLinkRepository) IncrementUses(ctx context.Context, id uuid.UUID, now time.Time) error {
	querier := database.GetTx(ctx, m.db)
	query := `UPDATE sharing_links SET uses_so_far = uses_so_far + 1
			  WHERE id = ? AND revoked_at IS NULL AND (expires_at IS NULL OR expires_at > ?)
			  AND (max_uses IS NULL OR uses_so_far < max_uses)`

	result, err := querier.ExecContext(ctx, query, id, now)
	if err != nil {
		return apperrors.Wrap(err, "failed to consume sharing link use")
	}
	return requireRow(result, dacDomain.ErrLinkExhausted)
}

func (m *MySQLLinkRepository) Revoke(ctx context.Context, id, revokedBy uuid.UUID, now time.Time) error {
	querier := database.GetTx(ctx, m.db)
	query := `UPDATE sharing_links SET revoked_at = ?, revoked_by = ? WHERE id = ? AND revoked_at IS NULL`

	if _, err := querier.ExecContext(ctx, query, now, revokedBy, id); err != nil {
		return apperrors.Wrap(err, "failed to revoke sharing link")
	}
	return nil
}

func (m *MySQLLinkRepository) ListByResource(
	ctx context.Context,
	resourceType, resourceID string,
) ([]*dacDomain.SharingLink, error) {
	querier := database.GetTx(ctx, m.db)
	query := `SELECT ` + linkColumns + ` FROM sharing_links
			  WHERE resource_type = ? AND resource_id = ? ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, resourceType, resourceID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sharing links")
	}
	return scanLinks(rows)
}
