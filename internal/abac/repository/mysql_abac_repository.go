package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	abacDomain "github.com/allisson/sentinel/internal/abac/domain"
	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
)

// MySQLPolicyRepository implements access policy persistence for MySQL.
type MySQLPolicyRepository struct {
	db *sql.DB
}

// NewMySQLPolicyRepository creates a new MySQLPolicyRepository.
func NewMySQLPolicyRepository(db *sql.DB) *MySQLPolicyRepository {
	return &MySQLPolicyRepository{db: db}
}

func (m *MySQLPolicyRepository) Create(ctx context.Context, policy *abacDomain.Policy) error {
	querier := database.GetTx(ctx, m.db)
	query := `INSERT INTO access_policies (` + policyColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, policy.ID, policy.Name, policy.ResourceType, policy.Action,
		policy.Effect, policy.Rules, policy.Priority, policy.Enabled, policy.CreatedBy, policy.CreatedAt,
		policy.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create access policy")
	}
	return nil
}

func (m *MySQLPolicyRepository) Get(ctx context.Context, id uuid.UUID) (*abacDomain.Policy, error) {
	querier := database.GetTx(ctx, m.db)
	return scanPolicyRow(querier.QueryRowContext(ctx, `SELECT `+policyColumns+` FROM access_policies WHERE id = ?`, id))
}

func (m *MySQLPolicyRepository) Update(ctx context.Context, policy *abacDomain.Policy) error {
	querier := database.GetTx(ctx, m.db)
	query := `UPDATE access_policies SET name = ?, resource_type = ?, action = ?, effect = ?, rules = ?,
			  priority = ?, enabled = ?, updated_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, policy.Name, policy.ResourceType, policy.Action, policy.Effect,
		policy.Rules, policy.Priority, policy.Enabled, policy.UpdatedAt, policy.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update access policy")
	}
	return requireRow(result, abacDomain.ErrPolicyNotFound)
}

func (m *MySQLPolicyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)
	result, err := querier.ExecContext(ctx, `DELETE FROM access_policies WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete access policy")
	}
	return requireRow(result, abacDomain.ErrPolicyNotFound)
}

func (m *MySQLPolicyRepository) List(ctx context.Context, offset, limit int) ([]*abacDomain.Policy, error) {
	querier := database.GetTx(ctx, m.db)
	query := `SELECT ` + policyColumns + ` FROM access_policies
			  ORDER BY resource_type ASC, action ASC, priority DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list access policies")
	}
	return scanPolicies(rows)
}

func (m *MySQLPolicyRepository) ListEnabledFor(
	ctx context.Context,
	resourceType, action string,
) ([]*abacDomain.Policy, error) {
	querier := database.GetTx(ctx, m.db)
	query := `SELECT ` + policyColumns + ` FROM access_policies
			  WHERE resource_type = ? AND action = ? AND enabled = TRUE
			  ORDER BY priority DESC, created_at ASC`

	rows, err := querier.QueryContext(ctx, query, resourceType, action)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load access policies")
	}
	return scanPolicies(rows)
}

// MySQLAttributeRepository implements user attribute persistence for MySQL.
type MySQLAttributeRepository struct {
	db *sql.DB
}

// NewMySQLAttributeRepository creates a new MySQLAttributeRepository.
func NewMySQLAttributeRepository(db *sql.DB) *MySQLAttributeRepository {
	return &MySQLAttributeRepository{db: db}
}

func (m *MySQLAttributeRepository) Upsert(ctx context.Context, a *abacDomain.UserAttribute) error {
	querier := database.GetTx(ctx, m.db)
	query := `INSERT INTO user_attributes (` + attributeColumns + `) VALUES (?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE value = VALUES(value), source = VALUES(source),
			  expires_at = VALUES(expires_at), updated_at = VALUES(updated_at)`

	_, err := querier.ExecContext(ctx, query, a.UserID, a.Name, a.Value, a.Source, a.ExpiresAt, a.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert user attribute")
	}
	return nil
}

func (m *MySQLAttributeRepository) Delete(ctx context.Context, userID uuid.UUID, name string) error {
	querier := database.GetTx(ctx, m.db)
	result, err := querier.ExecContext(ctx, `DELETE FROM user_attributes WHERE user_id = ? AND name = ?`, userID, name)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete user attribute")
	}
	return requireRow(result, abacDomain.ErrAttributeNotFound)
}

func (m *MySQLAttributeRepository) ListActive(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*abacDomain.UserAttribute, error) {
	querier := database.GetTx(ctx, m.db)
	query := `SELECT ` + attributeColumns + ` FROM user_attributes
			  WHERE user_id = ? AND (expires_at IS NULL OR expires_at > ?) ORDER BY name ASC`

	rows, err := querier.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list user attributes")
	}
	return scanAttributes(rows)
}
