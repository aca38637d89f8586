package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestNewTxManager(t *testing.T) {
	db, _ := newMockDB(t)

	txManager := NewTxManager(db)
	assert.NotNil(t, txManager)
	assert.IsType(t, &sqlTxManager{}, txManager)
}

func TestWithTx(t *testing.T) {
	t.Run("Success_Commit", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
			assert.True(t, InTx(ctx))
			assert.IsType(t, &sql.Tx{}, GetTx(ctx, db))
			return nil
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_RollbackOnError", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
			return assert.AnError
		})

		assert.Equal(t, assert.AnError, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_RollbackFails", func(t *testing.T) {
		db, mock := newMockDB(t)
		rollbackErr := errors.New("rollback failed")
		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(rollbackErr)

		err := NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
			return assert.AnError
		})

		assert.Equal(t, rollbackErr, err)
	})

	t.Run("Error_BeginFails", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin().WillReturnError(assert.AnError)

		called := false
		err := NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
			called = true
			return nil
		})

		assert.Equal(t, assert.AnError, err)
		assert.False(t, called)
	})

	t.Run("Success_NestedJoinsOuter", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		txManager := NewTxManager(db)
		err := txManager.WithTx(context.Background(), func(outer context.Context) error {
			return txManager.WithTx(outer, func(inner context.Context) error {
				assert.Same(t, GetTx(outer, db), GetTx(inner, db))
				return nil
			})
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetTx_WithoutTransaction(t *testing.T) {
	db, _ := newMockDB(t)

	ctx := context.Background()
	querier := GetTx(ctx, db)

	assert.Equal(t, db, querier)
	assert.False(t, InTx(ctx))
}
