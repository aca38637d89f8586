// Package repository implements context rule, holiday and device profile persistence for
// PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
	rubacDomain "github.com/allisson/sentinel/internal/rubac/domain"
)

const (
	ruleColumns   = `id, name, resource_type, kind, config, enabled, created_at, updated_at`
	deviceColumns = `id, device_id, user_id, name, trust_level, compliance, last_seen_at, created_at, updated_at`
)

// PostgreSQLRuleRepository implements context rule persistence for PostgreSQL.
type PostgreSQLRuleRepository struct {
	db *sql.DB
}

// NewPostgreSQLRuleRepository creates a new PostgreSQLRuleRepository.
func NewPostgreSQLRuleRepository(db *sql.DB) *PostgreSQLRuleRepository {
	return &PostgreSQLRuleRepository{db: db}
}

func (p *PostgreSQLRuleRepository) Create(ctx context.Context, rule *rubacDomain.ContextRule) error {
	querier := database.GetTx(ctx, p.db)
	query := `INSERT INTO context_rules (` + ruleColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(ctx, query, rule.ID, rule.Name, rule.ResourceType, string(rule.Kind), rule.Config,
		rule.Enabled, rule.CreatedAt, rule.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create context rule")
	}
	return nil
}

func (p *PostgreSQLRuleRepository) Get(ctx context.Context, id uuid.UUID) (*rubacDomain.ContextRule, error) {
	querier := database.GetTx(ctx, p.db)
	return scanRuleRow(querier.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM context_rules WHERE id = $1`, id))
}

func (p *PostgreSQLRuleRepository) Update(ctx context.Context, rule *rubacDomain.ContextRule) error {
	querier := database.GetTx(ctx, p.db)
	query := `UPDATE context_rules SET name = $1, resource_type = $2, kind = $3, config = $4, enabled = $5,
			  updated_at = $6 WHERE id = $7`

	result, err := querier.ExecContext(ctx, query, rule.Name, rule.ResourceType, string(rule.Kind), rule.Config,
		rule.Enabled, rule.UpdatedAt, rule.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update context rule")
	}
	return requireRow(result, rubacDomain.ErrRuleNotFound)
}

func (p *PostgreSQLRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)
	result, err := querier.ExecContext(ctx, `DELETE FROM context_rules WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete context rule")
	}
	return requireRow(result, rubacDomain.ErrRuleNotFound)
}

func (p *PostgreSQLRuleRepository) List(ctx context.Context, offset, limit int) ([]*rubacDomain.ContextRule, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + ruleColumns + ` FROM context_rules ORDER BY created_at ASC LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list context rules")
	}
	return scanRules(rows)
}

func (p *PostgreSQLRuleRepository) ListEnabledFor(
	ctx context.Context,
	resourceType string,
) ([]*rubacDomain.ContextRule, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + ruleColumns + ` FROM context_rules
			  WHERE (resource_type = $1 OR resource_type = '*') AND enabled = TRUE ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, resourceType)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load context rules")
	}
	return scanRules(rows)
}

// PostgreSQLHolidayRepository implements holiday calendar persistence for PostgreSQL.
type PostgreSQLHolidayRepository struct {
	db *sql.DB
}

// NewPostgreSQLHolidayRepository creates a new PostgreSQLHolidayRepository.
func NewPostgreSQLHolidayRepository(db *sql.DB) *PostgreSQLHolidayRepository {
	return &PostgreSQLHolidayRepository{db: db}
}

func (p *PostgreSQLHolidayRepository) Create(ctx context.Context, holiday *rubacDomain.Holiday) error {
	querier := database.GetTx(ctx, p.db)
	_, err := querier.ExecContext(ctx, `INSERT INTO holidays (day, name) VALUES ($1, $2)`, holiday.Day, holiday.Name)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return rubacDomain.ErrHolidayExists
		}
		return apperrors.Wrap(err, "failed to create holiday")
	}
	return nil
}

func (p *PostgreSQLHolidayRepository) Delete(ctx context.Context, day time.Time) error {
	querier := database.GetTx(ctx, p.db)
	result, err := querier.ExecContext(ctx, `DELETE FROM holidays WHERE day = $1`, day)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete holiday")
	}
	return requireRow(result, rubacDomain.ErrHolidayNotFound)
}

func (p *PostgreSQLHolidayRepository) List(ctx context.Context) ([]*rubacDomain.Holiday, error) {
	querier := database.GetTx(ctx, p.db)
	rows, err := querier.QueryContext(ctx, `SELECT day, name FROM holidays ORDER BY day ASC`)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list holidays")
	}
	return scanHolidays(rows)
}

func (p *PostgreSQLHolidayRepository) ListBetween(
	ctx context.Context,
	from, to time.Time,
) ([]*rubacDomain.Holiday, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT day, name FROM holidays WHERE day BETWEEN $1 AND $2 ORDER BY day ASC`

	rows, err := querier.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load holidays")
	}
	return scanHolidays(rows)
}

// PostgreSQLDeviceRepository implements device profile persistence for PostgreSQL.
type PostgreSQLDeviceRepository struct {
	db *sql.DB
}

// NewPostgreSQLDeviceRepository creates a new PostgreSQLDeviceRepository.
func NewPostgreSQLDeviceRepository(db *sql.DB) *PostgreSQLDeviceRepository {
	return &PostgreSQLDeviceRepository{db: db}
}

// Upsert leaves trust_level untouched on conflict.
func (p *PostgreSQLDeviceRepository) Upsert(ctx context.Context, d *rubacDomain.DeviceProfile) error {
	querier := database.GetTx(ctx, p.db)
	query := `INSERT INTO device_profiles (` + deviceColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  ON CONFLICT (user_id, device_id) DO UPDATE SET name = EXCLUDED.name,
			  compliance = EXCLUDED.compliance, last_seen_at = EXCLUDED.last_seen_at, updated_at = EXCLUDED.updated_at`

	_, err := querier.ExecContext(ctx, query, d.ID, d.DeviceID, d.UserID, d.Name, d.TrustLevel, d.Compliance,
		d.LastSeenAt, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert device profile")
	}
	return nil
}

func (p *PostgreSQLDeviceRepository) Get(
	ctx context.Context,
	userID uuid.UUID,
	deviceID string,
) (*rubacDomain.DeviceProfile, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + deviceColumns + ` FROM device_profiles WHERE user_id = $1 AND device_id = $2`
	return scanDeviceRow(querier.QueryRowContext(ctx, query, userID, deviceID))
}

func (p *PostgreSQLDeviceRepository) UpdateTrust(
	ctx context.Context,
	userID uuid.UUID,
	deviceID string,
	trust rubacDomain.DeviceTrust,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)
	query := `UPDATE device_profiles SET trust_level = $1, updated_at = $2 WHERE user_id = $3 AND device_id = $4`

	result, err := querier.ExecContext(ctx, query, trust, updatedAt, userID, deviceID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update device trust")
	}
	return requireRow(result, rubacDomain.ErrDeviceNotFound)
}

func (p *PostgreSQLDeviceRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*rubacDomain.DeviceProfile, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + deviceColumns + ` FROM device_profiles WHERE user_id = $1 ORDER BY last_seen_at DESC`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list device profiles")
	}
	return scanDevices(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*rubacDomain.ContextRule, error) {
	var rule rubacDomain.ContextRule
	var kind string
	err := row.Scan(&rule.ID, &rule.Name, &rule.ResourceType, &kind, &rule.Config, &rule.Enabled,
		&rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rule.Kind = rubacDomain.RuleKind(kind)
	return &rule, nil
}

func scanRuleRow(row *sql.Row) (*rubacDomain.ContextRule, error) {
	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rubacDomain.ErrRuleNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get context rule")
	}
	return rule, nil
}

func scanRules(rows *sql.Rows) ([]*rubacDomain.ContextRule, error) {
	defer rows.Close() //nolint:errcheck

	rules := make([]*rubacDomain.ContextRule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan context rule")
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate context rules")
	}
	return rules, nil
}

func scanHolidays(rows *sql.Rows) ([]*rubacDomain.Holiday, error) {
	defer rows.Close() //nolint:errcheck

	holidays := make([]*rubacDomain.Holiday, 0)
	for rows.Next() {
		var h rubacDomain.Holiday
		if err := rows.Scan(&h.Day, &h.Name); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan holiday")
		}
		holidays = append(holidays, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate holidays")
	}
	return holidays, nil
}

func scanDevice(row rowScanner) (*rubacDomain.DeviceProfile, error) {
	var d rubacDomain.DeviceProfile
	err := row.Scan(&d.ID, &d.DeviceID, &d.UserID, &d.Name, &d.TrustLevel, &d.Compliance, &d.LastSeenAt,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func scanDeviceRow(row *sql.Row) (*rubacDomain.DeviceProfile, error) {
	device, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rubacDomain.ErrDeviceNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get device profile")
	}
	return device, nil
}

func scanDevices(rows *sql.Rows) ([]*rubacDomain.DeviceProfile, error) {
	defer rows.Close() //nolint:errcheck

	devices := make([]*rubacDomain.DeviceProfile, 0)
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan device profile")
		}
		devices = append(devices, device)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate device profiles")
	}
	return devices, nil
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
