package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
	rubacDomain "github.com/allisson/sentinel/internal/rubac/domain"
)

// MySQLRuleRepository implements context rule persistence for MySQL.
type MySQLRuleRepository struct {
	db *sql.DB
}

// NewMySQLRuleRepository creates a new MySQLRuleRepository.
func NewMySQLRuleRepository(db *sql.DB) *MySQLRuleRepository {
	return &MySQLRuleRepository{db: db}
}

func (m *MySQLRuleRepository) Create(ctx context.Context, rule *rubacDomain.ContextRule) error {
	querier := database.GetTx(ctx, m.db)
	query := `INSERT INTO context_rules (` + ruleColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, rule.ID, rule.Name, rule.ResourceType, string(rule.Kind), rule.Config,
		rule.Enabled, rule.CreatedAt, rule.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create context rule")
	}
	return nil
}

func (m *MySQLRuleRepository) Get(ctx context.Context, id uuid.UUID) (*rubacDomain.ContextRule, error) {
	querier := database.GetTx(ctx, m.db)
	return scanRuleRow(querier.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM context_rules WHERE id = ?`, id))
}

func (m *MySQLRuleRepository) Update(ctx context.Context, rule *rubacDomain.ContextRule) error {
	querier := database.GetTx(ctx, m.db)
	query := `UPDATE context_rules SET name = ?, resource_type = ?, kind = ?, config = ?, enabled = ?,
			  updated_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, rule.Name, rule.ResourceType, string(rule.Kind), rule.Config,
		rule.Enabled, rule.UpdatedAt, rule.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update context rule")
	}
	return requireRow(result, rubacDomain.ErrRuleNotFound)
}

func (m *MySQLRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)
	result, err := querier.ExecContext(ctx, `DELETE FROM context_rules WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete context rule")
	}
	return requireRow(result, rubacDomain.ErrRuleNotFound)
}

func (m *MySQLRuleRepository) List(ctx context.Context, offset, limit int) ([]*rubacDomain.ContextRule, error) {
	querier := database.GetTx(ctx, m.db)
	query := `SELECT ` + ruleColumns + ` FROM context_rules ORDER BY created_at ASC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list context rules")
	}
	return scanRules(rows)
}

func (m *MySQLRuleRepository) ListEnabledFor(
	ctx context.Context,
	resourceType string,
) ([]*rubacDomain.ContextRule, error) {
	querier := database.GetTx(ctx, m.db)
	query := `SELECT ` + ruleColumns + ` FROM context_rules
			  WHERE (resource_type = ? OR resource_type = '*') AND enabled = TRUE ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, resourceType)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load context rules")
	}
	return scanRules(rows)
}

// MySQLHolidayRepository implements holiday calendar persistence for MySQL.
type MySQLHolidayRepository struct {
	db *sql.DB
}

// NewMySQLHolidayRepository creates a new MySQLHolidayRepository.
func NewMySQLHolidayRepository(db *sql.DB) *MySQLHolidayRepository {
	return &MySQLHolidayRepository{db: db}
}

func (m *MySQLHolidayRepository) Create(ctx context.Context, holiday *rubacDomain.Holiday) error {
	querier := database.GetTx(ctx, m.db)
	_, err := querier.ExecContext(ctx, `INSERT INTO holidays (day, name) VALUES (?, ?)`, holiday.Day, holiday.Name)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return rubacDomain.ErrHolidayExists
		}
		return apperrors.Wrap(err, "failed to create holiday")
	}
	return nil
}

func (m *MySQLHolidayRepository) Delete(ctx context.Context, day time.Time) error {
	querier := database.GetTx(ctx, m.db)
	result, err := querier.ExecContext(ctx, `DELETE FROM holidays WHERE day = ?`, day)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete holiday")
	}
	return requireRow(result, rubacDomain.ErrHolidayNotFound)
}

func (m *MySQLHolidayRepository) List(ctx context.Context) ([]*rubacDomain.Holiday, error) {
	querier := database.GetTx(ctx, m.db)
	rows, err := querier.QueryContext(ctx, `SELECT day, name FROM holidays ORDER BY day ASC`)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list holidays")
	}
	return scanHolidays(rows)
}

func (m *MySQLHolidayRepository) ListBetween(
	ctx context.Context,
	from, to time.Time,
) ([]*rubacDomain.Holiday, error) {
	querier := database.GetTx(ctx, m.db)
	query := `SELECT day, name FROM holidays WHERE day BETWEEN ? AND ? ORDER BY day ASC`

	rows, err := querier.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load holidays")
	}
	return scanHolidays(rows)
}

// MySQLDeviceRepository implements device profile persistence for MySQL.
type MySQLDeviceRepository struct {
	db *sql.DB
}

// NewMySQLDeviceRepository creates a new MySQLDeviceRepository.
func NewMySQLDeviceRepository(db *sql.DB) *MySQLDeviceRepository {
	return &MySQLDeviceRepository{db: db}
}

// Upsert leaves trust_level untouched on conflict.
func (m *MySQLDeviceRepository) Upsert(ctx context.Context, d *rubacDomain.DeviceProfile) error {
	querier := database.GetTx(ctx, m.db)
	query := `INSERT INTO device_profiles (` + deviceColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE name = VALUES(name), compliance = VALUES(compliance),
			  last_seen_at = VALUES(last_seen_at), updated_at = VALUES(updated_at)`

	_, err := querier.ExecContext(ctx, query, d.ID, d.DeviceID, d.UserID, d.Name, d.TrustLevel, d.Compliance,
		d.LastSeenAt, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert device profile")
	}
	return nil
}

func (m *MySQLDeviceRepository) Get(
	ctx context.Context,
	userID uuid.UUID,
	deviceID string,
) (*rubacDomain.DeviceProfile, error) {
	querier := database.GetTx(ctx, m.db)
	query := `SELECT ` + deviceColumns + ` FROM device_profiles WHERE user_id = ? AND device_id = ?`
	return scanDeviceRow(querier.QueryRowContext(ctx, query, userID, deviceID))
}

func (m *MySQLDeviceRepository) UpdateTrust(
	ctx context.Context,
	userID uuid.UUID,
	deviceID string,
	trust rubacDomain.DeviceTrust,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)
	query := `UPDATE device_profiles SET trust_level = ?, updated_at = ? WHERE user_id = ? AND device_id = ?`

	result, err := querier.ExecContext(ctx, query, trust, updatedAt, userID, deviceID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update device trust")
	}
	return requireRow(result, rubacDomain.ErrDeviceNotFound)
}

func (m *MySQLDeviceRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*rubacDomain.DeviceProfile, error) {
	querier := database.GetTx(ctx, m.db)
	query := `SELECT ` + deviceColumns + ` FROM device_profiles WHERE user_id = ? ORDER BY last_seen_at DESC`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list device profiles")
	}
	return scanDevices(rows)
}
