package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	clearanceDomain "github.com/allisson/sentinel/internal/clearance/domain"
	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
	macDomain "github.com/allisson/sentinel/internal/mac/domain"
)

// MySQLClearanceRepository implements clearance persistence for MySQL.
type MySQLClearanceRepository struct {
	db *sql.DB
}

// NewMySQLClearanceRepository creates a new MySQLClearanceRepository.
func NewMySQLClearanceRepository(db *sql.DB) *MySQLClearanceRepository {
	return &MySQLClearanceRepository{db: db}
}

// Upsert creates or replaces the user's clearance. created_at is preserved on replace.
func (m *MySQLClearanceRepository) Upsert(ctx context.Context, clearance *macDomain.Clearance) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO clearances (` + clearanceColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
				level = VALUES(level),
				compartments = VALUES(compartments),
				trusted_subject = VALUES(trusted_subject),
				expires_at = VALUES(expires_at),
				review_due_at = VALUES(review_due_at),
				assigned_by = VALUES(assigned_by),
				reason = VALUES(reason),
				updated_at = VALUES(updated_at)`

	_, err := querier.ExecContext(ctx, query, clearance.UserID, clearance.Level, clearance.Compartments,
		clearance.TrustedSubject, clearance.ExpiresAt, clearance.ReviewDueAt, clearance.AssignedBy,
		clearance.Reason, clearance.CreatedAt, clearance.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert clearance")
	}
	return nil
}

// Get retrieves a user's clearance.
func (m *MySQLClearanceRepository) Get(ctx context.Context, userID uuid.UUID) (*macDomain.Clearance, error) {
	querier := database.GetTx(ctx, m.db)
	row := querier.QueryRowContext(ctx, `SELECT `+clearanceColumns+` FROM clearances WHERE user_id = ?`, userID)
	return scanClearanceRow(row)
}

// ListReviewDue returns clearances with review_due_at <= dueBefore, soonest first.
func (m *MySQLClearanceRepository) ListReviewDue(
	ctx context.Context,
	dueBefore time.Time,
) ([]*macDomain.Clearance, error) {
	querier := database.GetTx(ctx, m.db)
	query := `SELECT ` + clearanceColumns + ` FROM clearances
			  WHERE review_due_at IS NOT NULL AND review_due_at <= ?
			  ORDER BY review_due_at ASC`

	rows, err := querier.QueryContext(ctx, query, dueBefore)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list clearances due for review")
	}
	return scanClearanceRows(rows)
}

// CreateReview inserts a review record.
func (m *MySQLClearanceRepository) CreateReview(ctx context.Context, review *clearanceDomain.Review) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO clearance_reviews
			  (id, user_id, reviewer_id, approved, previous_level, new_level, new_compartments, notes, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, review.ID, review.UserID, review.ReviewerID, review.Approved,
		review.PreviousLevel, review.NewLevel, nullableCompartments(review.NewCompartments), review.Notes,
		review.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create clearance review")
	}
	return nil
}
