// Package repository implements access policy and user attribute persistence for PostgreSQL
// and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	abacDomain "github.com/allisson/sentinel/internal/abac/domain"
	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
)

const (
	policyColumns    = `id, name, resource_type, action, effect, rules, priority, enabled, created_by, created_at, updated_at`
	attributeColumns = `user_id, name, value, source, expires_at, updated_at`
)

// PostgreSQLPolicyRepository implements access policy persistence for PostgreSQL.
type PostgreSQLPolicyRepository struct {
	db *sql.DB
}

// NewPostgreSQLPolicyRepository creates a new PostgreSQLPolicyRepository.
func NewPostgreSQLPolicyRepository(db *sql.DB) *PostgreSQLPolicyRepository {
	return &PostgreSQLPolicyRepository{db: db}
}

func (p *PostgreSQLPolicyRepository) Create(ctx context.Context, policy *abacDomain.Policy) error {
	querier := database.GetTx(ctx, p.db)
	query := `INSERT INTO access_policies (` + policyColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := querier.ExecContext(ctx, query, policy.ID, policy.Name, policy.ResourceType, policy.Action,
		policy.Effect, policy.Rules, policy.Priority, policy.Enabled, policy.CreatedBy, policy.CreatedAt,
		policy.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create access policy")
	}
	return nil
}

func (p *PostgreSQLPolicyRepository) Get(ctx context.Context, id uuid.UUID) (*abacDomain.Policy, error) {
	querier := database.GetTx(ctx, p.db)
	return scanPolicyRow(querier.QueryRowContext(ctx, `SELECT `+policyColumns+` FROM access_policies WHERE id = $1`, id))
}

func (p *PostgreSQLPolicyRepository) Update(ctx context.Context, policy *abacDomain.Policy) error {
	querier := database.GetTx(ctx, p.db)
	query := `UPDATE access_policies SET name = $1, resource_type = $2, action = $3, effect = $4, rules = $5,
			  priority = $6, enabled = $7, updated_at = $8 WHERE id = $9`

	result, err := querier.ExecContext(ctx, query, policy.Name, policy.ResourceType, policy.Action, policy.Effect,
		policy.Rules, policy.Priority, policy.Enabled, policy.UpdatedAt, policy.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update access policy")
	}
	return requireRow(result, abacDomain.ErrPolicyNotFound)
}

func (p *PostgreSQLPolicyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)
	result, err := querier.ExecContext(ctx, `DELETE FROM access_policies WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete access policy")
	}
	return requireRow(result, abacDomain.ErrPolicyNotFound)
}

func (p *PostgreSQLPolicyRepository) List(ctx context.Context, offset, limit int) ([]*abacDomain.Policy, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + policyColumns + ` FROM access_policies
			  ORDER BY resource_type ASC, action ASC, priority DESC LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list access policies")
	}
	return scanPolicies(rows)
}

func (p *PostgreSQLPolicyRepository) ListEnabledFor(
	ctx context.Context,
	resourceType, action string,
) ([]*abacDomain.Policy, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + policyColumns + ` FROM access_policies
			  WHERE resource_type = $1 AND action = $2 AND enabled = TRUE
			  ORDER BY priority DESC, created_at ASC`

	rows, err := querier.QueryContext(ctx, query, resourceType, action)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load access policies")
	}
	return scanPolicies(rows)
}

// PostgreSQLAttributeRepository implements user attribute persistence for PostgreSQL.
type PostgreSQLAttributeRepository struct {
	db *sql.DB
}

// NewPostgreSQLAttributeRepository creates a new PostgreSQLAttributeRepository.
func NewPostgreSQLAttributeRepository(db *sql.DB) *PostgreSQLAttributeRepository {
	return &PostgreSQLAttributeRepository{db: db}
}

func (p *PostgreSQLAttributeRepository) Upsert(ctx context.Context, a *abacDomain.UserAttribute) error {
	querier := database.GetTx(ctx, p.db)
	query := `INSERT INTO user_attributes (` + attributeColumns + `) VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (user_id, name) DO UPDATE SET value = EXCLUDED.value, source = EXCLUDED.source,
			  expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`

	_, err := querier.ExecContext(ctx, query, a.UserID, a.Name, a.Value, a.Source, a.ExpiresAt, a.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert user attribute")
	}
	return nil
}

func (p *PostgreSQLAttributeRepository) Delete(ctx context.Context, userID uuid.UUID, name string) error {
	querier := database.GetTx(ctx, p.db)
	result, err := querier.ExecContext(ctx, `DELETE FROM user_attributes WHERE user_id = $1 AND name = $2`, userID, name)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete user attribute")
	}
	return requireRow(result, abacDomain.ErrAttributeNotFound)
}

func (p *PostgreSQLAttributeRepository) ListActive(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*abacDomain.UserAttribute, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + attributeColumns + ` FROM user_attributes
			  WHERE user_id = $1 AND (expires_at IS NULL OR expires_at > $2) ORDER BY name ASC`

	rows, err := querier.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list user attributes")
	}
	return scanAttributes(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row rowScanner) (*abacDomain.Policy, error) {
	var policy abacDomain.Policy
	err := row.Scan(&policy.ID, &policy.Name, &policy.ResourceType, &policy.Action, &policy.Effect, &policy.Rules,
		&policy.Priority, &policy.Enabled, &policy.CreatedBy, &policy.CreatedAt, &policy.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

func scanPolicyRow(row *sql.Row) (*abacDomain.Policy, error) {
	policy, err := scanPolicy(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, abacDomain.ErrPolicyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get access policy")
	}
	return policy, nil
}

func scanPolicies(rows *sql.Rows) ([]*abacDomain.Policy, error) {
	defer rows.Close() //nolint:errcheck

	policies := make([]*abacDomain.Policy, 0)
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan access policy")
		}
		policies = append(policies, policy)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate access policies")
	}
	return policies, nil
}

func scanAttributes(rows *sql.Rows) ([]*abacDomain.UserAttribute, error) {
	defer rows.Close() //nolint:errcheck

	attributes := make([]*abacDomain.UserAttribute, 0)
	for rows.Next() {
		var a abacDomain.UserAttribute
		if err := rows.Scan(&a.UserID, &a.Name, &a.Value, &a.Source, &a.ExpiresAt, &a.UpdatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan user attribute")
		}
		attributes = append(attributes, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate user attributes")
	}
	return attributes, nil
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
