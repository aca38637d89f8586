// Package repository implements clearance persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	clearanceDomain "github.com/allisson/sentinel/internal/clearance/domain"
	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
	macDomain "github.com/allisson/sentinel/internal/mac/domain"
)

const clearanceColumns = `user_id, level, compartments, trusted_subject, expires_at, review_due_at, assigned_by, reason, created_at, updated_at`

// PostgreSQLClearanceRepository implements clearance persistence for PostgreSQL.
type PostgreSQLClearanceRepository struct {
	db *sql.DB
}

// NewPostgreSQLClearanceRepository creates a new PostgreSQLClearanceRepository.
func NewPostgreSQLClearanceRepository(db *sql.DB) *PostgreSQLClearanceRepository {
	return &PostgreSQLClearanceRepository{db: db}
}

// Upsert creates or replaces the user's clearance. created_at is preserved on replace.
func (p *PostgreSQLClearanceRepository) Upsert(ctx context.Context, clearance *macDomain.Clearance) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO clearances (` + clearanceColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  ON CONFLICT (user_id) DO UPDATE SET
				level = EXCLUDED.level,
				compartments = EXCLUDED.compartments,
				trusted_subject = EXCLUDED.trusted_subject,
				expires_at = EXCLUDED.expires_at,
				review_due_at = EXCLUDED.review_due_at,
				assigned_by = EXCLUDED.assigned_by,
				reason = EXCLUDED.reason,
				updated_at = EXCLUDED.updated_at`

	_, err := querier.ExecContext(ctx, query, clearance.UserID, clearance.Level, clearance.Compartments,
		clearance.TrustedSubject, clearance.ExpiresAt, clearance.ReviewDueAt, clearance.AssignedBy,
		clearance.Reason, clearance.CreatedAt, clearance.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert clearance")
	}
	return nil
}

// Get retrieves a user's clearance.
func (p *PostgreSQLClearanceRepository) Get(ctx context.Context, userID uuid.UUID) (*macDomain.Clearance, error) {
	querier := database.GetTx(ctx, p.db)
	row := querier.QueryRowContext(ctx, `SELECT `+clearanceColumns+` FROM clearances WHERE user_id = $1`, userID)
	return scanClearanceRow(row)
}

// ListReviewDue returns clearances with review_due_at <= dueBefore, soonest first.
func (p *PostgreSQLClearanceRepository) ListReviewDue(
	ctx context.Context,
	dueBefore time.Time,
) ([]*macDomain.Clearance, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + clearanceColumns + ` FROM clearances
			  WHERE review_due_at IS NOT NULL AND review_due_at <= $1
			  ORDER BY review_due_at ASC`

	rows, err := querier.QueryContext(ctx, query, dueBefore)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list clearances due for review")
	}
	return scanClearanceRows(rows)
}

// CreateReview inserts a review record.
func (p *PostgreSQLClearanceRepository) CreateReview(ctx context.Context, review *clearanceDomain.Review) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO clearance_reviews
			  (id, user_id, reviewer_id, approved, previous_level, new_level, new_compartments, notes, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(ctx, query, review.ID, review.UserID, review.ReviewerID, review.Approved,
		review.PreviousLevel, review.NewLevel, nullableCompartments(review.NewCompartments), review.Notes,
		review.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create clearance review")
	}
	return nil
}

// nullableCompartments stores an unset compartment change as NULL.
func nullableCompartments(c macDomain.Compartments) any {
	if c == nil {
		return nil
	}
	return c
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClearance(row rowScanner) (*macDomain.Clearance, error) {
	var clearance macDomain.Clearance
	err := row.Scan(&clearance.UserID, &clearance.Level, &clearance.Compartments, &clearance.TrustedSubject,
		&clearance.ExpiresAt, &clearance.ReviewDueAt, &clearance.AssignedBy, &clearance.Reason,
		&clearance.CreatedAt, &clearance.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &clearance, nil
}

func scanClearanceRow(row *sql.Row) (*macDomain.Clearance, error) {
	clearance, err := scanClearance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, macDomain.ErrClearanceNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get clearance")
	}
	return clearance, nil
}

func scanClearanceRows(rows *sql.Rows) ([]*macDomain.Clearance, error) {
	defer rows.Close() //nolint:errcheck

	clearances := make([]*macDomain.Clearance, 0)
	for rows.Next() {
		clearance, err := scanClearance(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan clearance")
		}
		clearances = append(clearances, clearance)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate clearances")
	}
	return clearances, nil
}
