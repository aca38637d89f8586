package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	clearanceDomain "github.com/allisson/sentinel/internal/clearance/domain"
	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
)

const escalationColumns = `id, user_id, target_level, target_compartments, reason, status, decided_by, decided_at, notes, created_at`

// PostgreSQLEscalationRepository implements escalation persistence for PostgreSQL.
type PostgreSQLEscalationRepository struct {
	db *sql.DB
}

// NewPostgreSQLEscalationRepository creates a new PostgreSQLEscalationRepository.
func NewPostgreSQLEscalationRepository(db *sql.DB) *PostgreSQLEscalationRepository {
	return &PostgreSQLEscalationRepository{db: db}
}

// Create inserts a pending escalation. The partial unique index on pending rows turns a
// concurrent duplicate into ErrEscalationPending.
func (p *PostgreSQLEscalationRepository) Create(ctx context.Context, escalation *clearanceDomain.Escalation) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO clearance_escalations (` + escalationColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

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
func (p *PostgreSQLEscalationRepository) Get(ctx context.Context, id uuid.UUID) (*clearanceDomain.Escalation, error) {
	querier := database.GetTx(ctx, p.db)
	row := querier.QueryRowContext(ctx, `SELECT `+escalationColumns+` FROM clearance_escalations WHERE id = $1`, id)
	return scanEscalationRow(row)
}

// Decide records the decision only while the escalation is pending.
func (p *PostgreSQLEscalationRepository) Decide(ctx context.Context, escalation *clearanceDomain.Escalation) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE clearance_escalations SET status = $1, decided_by = $2, decided_at = $3, notes = $4
			  WHERE id = $5 AND status = $6`

	result, err := querier.ExecContext(ctx, query, escalation.Status, escalation.DecidedBy, escalation.DecidedAt,
		escalation.Notes, escalation.ID, clearanceDomain.EscalationPending)
	if err != nil {
		return apperrors.Wrap(err, "failed to decide escalation")
	}
	return requireRow(result, clearanceDomain.ErrEscalationDecided)
}

// ListPending lists pending escalations, oldest first.
func (p *PostgreSQLEscalationRepository) ListPending(
	ctx context.Context,
	offset, limit int,
) ([]*clearanceDomain.Escalation, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + escalationColumns + ` FROM clearance_escalations
			  WHERE status = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, clearanceDomain.EscalationPending, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list escalations")
	}
	return scanEscalationRows(rows)
}

func scanEscalation(row rowScanner) (*clearanceDomain.Escalation, error) {
	var escalation clearanceDomain.Escalation
	err := row.Scan(&escalation.ID, &escalation.UserID, &escalation.TargetLevel, &escalation.TargetCompartments,
		&escalation.Reason, &escalation.Status, &escalation.DecidedBy, &escalation.DecidedAt, &escalation.Notes,
		&escalation.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &escalation, nil
}

func scanEscalationRow(row *sql.Row) (*clearanceDomain.Escalation, error) {
	escalation, err := scanEscalation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, clearanceDomain.ErrEscalationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get escalation")
	}
	return escalation, nil
}

func scanEscalationRows(rows *sql.Rows) ([]*clearanceDomain.Escalation, error) {
	defer rows.Close() //nolint:errcheck

	escalations := make([]*clearanceDomain.Escalation, 0)
	for rows.Next() {
		escalation, err := scanEscalation(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan escalation")
		}
		escalations = append(escalations, escalation)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate escalations")
	}
	return escalations, nil
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
