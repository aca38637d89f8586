package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	clearanceDomain "github.com/allisson/sentinel/internal/clearance/domain"
	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
)

// MySQLEscalationRepository implements escalation persistence for MySQL.
type MySQLEscalationRepository struct {
	db *sql.DB
}

// NewMySQLEscalationRepository creates a new MySQLEscalationRepository.
func NewMySQLEscalationRepository(db *sql.DB) *MySQLEscalationRepository {
	return &MySQLEscalationRepository{db: db}
}

// Create inserts a pending escalation. The unique index on the generated pending column
// turns a concurrent duplicate into ErrEscalationPending.
func (m *MySQLEscalationRepository) Create(ctx context.Context, escalation *clearanceDomain.Escalation) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO clearance_escalations (` + escalationColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, escalation.ID, escalation.UserID, escalation.TargetLevel,
		escalation.TargetCompartments, escalation.Reason, escalation.Status, escalation.DecidedBy,
		escalation.DecidedAt, escalation.Notes, escalation.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return clearanceDomain.ErrEscalationPending
		}
		return apperrors.Wrap(err, "failed to create escalation")
	}
	return nil
}

// Get retrieves an escalation by ID.
func (m *MySQLEscalationRepository) Get(ctx context.Context, id uuid.UUID) (*clearanceDomain.Escalation, error) {
	querier := database.GetTx(ctx, m.db)
	row := querier.QueryRowContext(ctx, `SELECT `+escalationColumns+` FROM clearance_escalations WHERE id = ?`, id)
	return scanEscalationRow(row)
}

// Decide records the decision only while the escalation is pending.
func (m *MySQLEscalationRepository) Decide(ctx context.Context, escalation *clearanceDomain.Escalation) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE clearance_escalations SET status = ?, decided_by = ?, decided_at = ?, notes = ?
			  WHERE id = ? AND status = ?`

	result, err := querier.ExecContext(ctx, query, escalation.Status, escalation.DecidedBy, escalation.DecidedAt,
		escalation.Notes, escalation.ID, clearanceDomain.EscalationPending)
	if err != nil {
		return apperrors.Wrap(err, "failed to decide escalation")
	}
	return requireRow(result, clearanceDomain.ErrEscalationDecided)
}

// ListPending lists pending escalations, oldest first.
func (m *MySQLEscalationRepository) ListPending(
	ctx context.Context,
	offset, limit int,
) ([]*clearanceDomain.Escalation, error) {
	querier := database.GetTx(ctx, m.db)
	query := `SELECT ` + escalationColumns + ` FROM clearance_escalations
			  WHERE status = ? ORDER BY created_at ASC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, clearanceDomain.EscalationPending, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list escalations")
	}
	return scanEscalationRows(rows)
}
