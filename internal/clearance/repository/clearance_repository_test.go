package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clearanceDomain "github.com/allisson/sentinel/internal/clearance/domain"
	macDomain "github.com/allisson/sentinel/internal/mac/domain"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var clearanceRowColumns = []string{"user_id", "level", "compartments", "trusted_subject", "expires_at",
	"review_due_at", "assigned_by", "reason", "created_at", "updated_at"}

func TestPostgreSQLClearanceRepository_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clearance := &macDomain.Clearance{
		UserID:       uuid.Must(uuid.NewV7()),
		Level:        macDomain.TopSecret,
		Compartments: macDomain.NewCompartments("OPS"),
		AssignedBy:   uuid.Must(uuid.NewV7()),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectExec(`INSERT INTO clearances .* ON CONFLICT \(user_id\) DO UPDATE`).
		WithArgs(clearance.UserID, "TOP_SECRET", `["OPS"]`, false, nil, nil, clearance.AssignedBy, "", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, NewPostgreSQLClearanceRepository(db).Upsert(context.Background(), clearance))
}

func TestPostgreSQLClearanceRepository_Get(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		due := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`FROM clearances WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(clearanceRowColumns).AddRow(userID.String(), "SECRET",
				[]byte(`["OPS"]`), true, nil, due, uuid.Must(uuid.NewV7()).String(), "initial", due, due))

		clearance, err := NewPostgreSQLClearanceRepository(db).Get(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, macDomain.Secret, clearance.Level)
		assert.True(t, clearance.TrustedSubject)
		assert.Nil(t, clearance.ExpiresAt)
		assert.Equal(t, due, *clearance.ReviewDueAt)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`FROM clearances`).WillReturnRows(sqlmock.NewRows(clearanceRowColumns))

		_, err := NewPostgreSQLClearanceRepository(db).Get(ctx, userID)

		assert.ErrorIs(t, err, macDomain.ErrClearanceNotFound)
	})
}

func TestPostgreSQLEscalationRepository_Create(t *testing.T) {
	ctx := context.Background()
	escalation := &clearanceDomain.Escalation{
		ID:                 uuid.Must(uuid.NewV7()),
		UserID:             uuid.Must(uuid.NewV7()),
		TargetLevel:        macDomain.Secret,
		TargetCompartments: macDomain.Compartments{},
		Status:             clearanceDomain.EscalationPending,
		CreatedAt:          time.Now().UTC(),
	}

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`INSERT INTO clearance_escalations`).WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPostgreSQLEscalationRepository(db).Create(ctx, escalation))
	})

	t.Run("Error_PendingExists", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`INSERT INTO clearance_escalations`).WillReturnError(&pq.Error{Code: "23505"})

		err := NewPostgreSQLEscalationRepository(db).Create(ctx, escalation)

		assert.ErrorIs(t, err, clearanceDomain.ErrEscalationPending)
	})
}

func TestPostgreSQLEscalationRepository_Decide(t *testing.T) {
	ctx := context.Background()
	decider := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()
	escalation := &clearanceDomain.Escalation{
		ID:        uuid.Must(uuid.NewV7()),
		Status:    clearanceDomain.EscalationApproved,
		DecidedBy: &decider,
		DecidedAt: &now,
	}

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE clearance_escalations SET .* WHERE id = \$5 AND status = \$6`).
			WithArgs("approved", decider, now, "", escalation.ID, "pending").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPostgreSQLEscalationRepository(db).Decide(ctx, escalation))
	})

	t.Run("Error_AlreadyDecided", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE clearance_escalations`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewPostgreSQLEscalationRepository(db).Decide(ctx, escalation)

		assert.ErrorIs(t, err, clearanceDomain.ErrEscalationDecided)
	})
}

func TestMySQLClearanceRepository_ListReviewDue(t *testing.T) {
	db, mock := newMockDB(t)
	dueBefore := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	userID := uuid.Must(uuid.NewV7())

	mock.ExpectQuery(`FROM clearances\s+WHERE review_due_at IS NOT NULL AND review_due_at <= \?`).
		WithArgs(dueBefore).
		WillReturnRows(sqlmock.NewRows(clearanceRowColumns).AddRow(userID.String(), "CONFIDENTIAL",
			[]byte(`[]`), false, nil, dueBefore, uuid.Must(uuid.NewV7()).String(), "", dueBefore, dueBefore))

	clearances, err := NewMySQLClearanceRepository(db).ListReviewDue(context.Background(), dueBefore)

	require.NoError(t, err)
	require.Len(t, clearances, 1)
	assert.Equal(t, userID, clearances[0].UserID)
}
