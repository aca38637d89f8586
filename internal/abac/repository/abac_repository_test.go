package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	abacDomain "github.com/allisson/sentinel/internal/abac/domain"
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

var policyRowColumns = []string{"id", "name", "resource_type", "action", "effect", "rules", "priority", "enabled",
	"created_by", "created_at", "updated_at"}

func TestPostgreSQLPolicyRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	policy := &abacDomain.Policy{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         "deny-hr",
		ResourceType: "records",
		Action:       "read",
		Effect:       abacDomain.EffectDeny,
		Rules: abacDomain.Rules{
			{Attribute: "department", Operator: abacDomain.OpEquals, Value: abacDomain.StringValue("HR")},
		},
		Priority:  10,
		Enabled:   true,
		CreatedBy: uuid.Must(uuid.NewV7()),
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec(`INSERT INTO access_policies`).
		WithArgs(policy.ID, "deny-hr", "records", "read", "DENY",
			`[{"attribute":"department","operator":"EQUALS","value":"HR"}]`, int64(10), true, policy.CreatedBy,
			now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, NewPostgreSQLPolicyRepository(db).Create(context.Background(), policy))
}

func TestPostgreSQLPolicyRepository_ListEnabledFor(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`WHERE resource_type = \$1 AND action = \$2 AND enabled = TRUE\s+ORDER BY priority DESC`).
		WithArgs("records", "read").
		WillReturnRows(sqlmock.NewRows(policyRowColumns).
			AddRow(uuid.Must(uuid.NewV7()).String(), "deny-hr", "records", "read", "DENY",
				[]byte(`[{"attribute":"department","operator":"EQUALS","value":"HR"}]`), int64(10), true,
				uuid.Must(uuid.NewV7()).String(), now, now).
			AddRow(uuid.Must(uuid.NewV7()).String(), "allow-senior", "records", "read", "ALLOW",
				[]byte(`[{"attribute":"level","operator":"GREATER_THAN","value":3}]`), int64(1), true,
				uuid.Must(uuid.NewV7()).String(), now, now))

	policies, err := NewPostgreSQLPolicyRepository(db).ListEnabledFor(context.Background(), "records", "read")

	require.NoError(t, err)
	require.Len(t, policies, 2)
	assert.Equal(t, abacDomain.EffectDeny, policies[0].Effect)
	assert.Equal(t, abacDomain.KindNumber, policies[1].Rules[0].Value.Kind())
}

func TestMySQLPolicyRepository_Update(t *testing.T) {
	ctx := context.Background()
	policy := &abacDomain.Policy{ID: uuid.Must(uuid.NewV7()), Effect: abacDomain.EffectAllow}

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE access_policies SET .* WHERE id = \?`).WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewMySQLPolicyRepository(db).Update(ctx, policy))
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE access_policies`).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, NewMySQLPolicyRepository(db).Update(ctx, policy), abacDomain.ErrPolicyNotFound)
	})
}

func TestPostgreSQLPolicyRepository_Get(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.Must(uuid.NewV7())
	mock.ExpectQuery(`FROM access_policies WHERE id = \$1`).WithArgs(id).WillReturnError(sql.ErrNoRows)

	_, err := NewPostgreSQLPolicyRepository(db).Get(context.Background(), id)

	assert.ErrorIs(t, err, abacDomain.ErrPolicyNotFound)
}

func TestPostgreSQLAttributeRepository_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	attribute := &abacDomain.UserAttribute{
		UserID:    uuid.Must(uuid.NewV7()),
		Name:      "sites",
		Value:     abacDomain.SetValue("hq", "lab"),
		Source:    "hr-sync",
		UpdatedAt: now,
	}

	mock.ExpectExec(`ON CONFLICT \(user_id, name\) DO UPDATE`).
		WithArgs(attribute.UserID, "sites", `["hq","lab"]`, "hr-sync", nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, NewPostgreSQLAttributeRepository(db).Upsert(context.Background(), attribute))
}

func TestMySQLAttributeRepository_ListActive(t *testing.T) {
	db, mock := newMockDB(t)
	userID := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	mock.ExpectQuery(`WHERE user_id = \? AND \(expires_at IS NULL OR expires_at > \?\)`).
		WithArgs(userID, now).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "name", "value", "source", "expires_at", "updated_at"}).
			AddRow(userID.String(), "clearance_years", []byte(`7`), "", nil, now).
			AddRow(userID.String(), "department", []byte(`"OPS"`), "hr-sync", nil, now))

	attributes, err := NewMySQLAttributeRepository(db).ListActive(context.Background(), userID, now)

	require.NoError(t, err)
	require.Len(t, attributes, 2)
	n, ok := attributes[0].Value.Number()
	assert.True(t, ok)
	assert.Equal(t, float64(7), n)
	assert.Equal(t, "OPS", attributes[1].Value.String())
}

func TestMySQLAttributeRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	userID := uuid.Must(uuid.NewV7())
	mock.ExpectExec(`DELETE FROM user_attributes WHERE user_id = \? AND name = \?`).
		WithArgs(userID, "department").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewMySQLAttributeRepository(db).Delete(context.Background(), userID, "department")

	assert.ErrorIs(t, err, abacDomain.ErrAttributeNotFound)
}
