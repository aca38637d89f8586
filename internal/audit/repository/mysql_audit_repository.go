package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
)

// MySQLAuditRepository implements audit persistence for MySQL.
type MySQLAuditRepository struct {
	db *sql.DB
}

// NewMySQLAuditRepository creates a new MySQLAuditRepository.
func NewMySQLAuditRepository(db *sql.DB) *MySQLAuditRepository {
	return &MySQLAuditRepository{db: db}
}

// LockHead reads the chain head with SELECT ... FOR UPDATE. Must run inside a transaction.
func (m *MySQLAuditRepository) LockHead(ctx context.Context) (*auditDomain.ChainHead, error) {
	return scanHead(database.GetTx(ctx, m.db).QueryRowContext(ctx,
		`SELECT sequence, hash FROM audit_chain_head WHERE id = 1 FOR UPDATE`))
}

// GetHead reads the chain head.
func (m *MySQLAuditRepository) GetHead(ctx context.Context) (*auditDomain.ChainHead, error) {
	return scanHead(database.GetTx(ctx, m.db).QueryRowContext(ctx,
		`SELECT sequence, hash FROM audit_chain_head WHERE id = 1`))
}

// UpdateHead moves the chain head to the given position.
func (m *MySQLAuditRepository) UpdateHead(ctx context.Context, head *auditDomain.ChainHead) error {
	querier := database.GetTx(ctx, m.db)
	_, err := querier.ExecContext(ctx,
		`UPDATE audit_chain_head SET sequence = ?, hash = ? WHERE id = 1`, head.Sequence, head.Hash)
	if err != nil {
		return apperrors.Wrap(err, "failed to update audit chain head")
	}
	return nil
}

// Create inserts an audit event.
func (m *MySQLAuditRepository) Create(ctx context.Context, event *auditDomain.AuditEvent) error {
	querier := database.GetTx(ctx, m.db)

	details, err := json.Marshal(event.Details)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit details")
	}

	query := `INSERT INTO audit_events (` + auditEventColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, event.ID, event.Sequence, event.ActorID, event.Action,
		event.ResourceType, event.ResourceID, event.Outcome, string(details), event.PrevHash, event.Hash, event.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}
	return nil
}

// Get retrieves an audit event by ID.
func (m *MySQLAuditRepository) Get(ctx context.Context, id uuid.UUID) (*auditDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, m.db)
	row := querier.QueryRowContext(ctx, `SELECT `+auditEventColumns+` FROM audit_events WHERE id = ?`, id)
	event, err := scanAuditEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auditDomain.ErrAuditEventNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get audit event")
	}
	return event, nil
}

// List returns events matching filter ordered by sequence descending.
func (m *MySQLAuditRepository) List(
	ctx context.Context,
	filter auditDomain.ListFilter,
	offset, limit int,
) ([]*auditDomain.AuditEvent, error) {
	where, args := buildAuditFilter(filter, func(int) string { return "?" })
	args = append(args, limit, offset)
	query := `SELECT ` + auditEventColumns + ` FROM audit_events` + where + ` ORDER BY sequence DESC LIMIT ? OFFSET ?`

	return queryAuditEvents(ctx, database.GetTx(ctx, m.db), query, args...)
}

// ListAfterSequence returns events in chain order starting after afterSequence.
func (m *MySQLAuditRepository) ListAfterSequence(
	ctx context.Context,
	afterSequence int64,
	limit int,
) ([]*auditDomain.AuditEvent, error) {
	query := `SELECT ` + auditEventColumns + ` FROM audit_events WHERE sequence > ? ORDER BY sequence ASC LIMIT ?`
	return queryAuditEvents(ctx, database.GetTx(ctx, m.db), query, afterSequence, limit)
}
