// Package repository implements audit trail persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
)

const auditEventColumns = `id, sequence, actor_id, action, resource_type, resource_id, outcome, details, prev_hash, hash, created_at`

// PostgreSQLAuditRepository implements audit persistence for PostgreSQL.
type PostgreSQLAuditRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditRepository creates a new PostgreSQLAuditRepository.
func NewPostgreSQLAuditRepository(db *sql.DB) *PostgreSQLAuditRepository {
	return &PostgreSQLAuditRepository{db: db}
}

// LockHead reads the chain head with SELECT ... FOR UPDATE. Must run inside a transaction.
func (p *PostgreSQLAuditRepository) LockHead(ctx context.Context) (*auditDomain.ChainHead, error) {
	return scanHead(database.GetTx(ctx, p.db).QueryRowContext(ctx,
		`SELECT sequence, hash FROM audit_chain_head WHERE id = 1 FOR UPDATE`))
}

// GetHead reads the chain head.
func (p *PostgreSQLAuditRepository) GetHead(ctx context.Context) (*auditDomain.ChainHead, error) {
	return scanHead(database.GetTx(ctx, p.db).QueryRowContext(ctx,
		`SELECT sequence, hash FROM audit_chain_head WHERE id = 1`))
}

// UpdateHead moves the chain head to the given position.
func (p *PostgreSQLAuditRepository) UpdateHead(ctx context.Context, head *auditDomain.ChainHead) error {
	querier := database.GetTx(ctx, p.db)
	_, err := querier.ExecContext(ctx,
		`UPDATE audit_chain_head SET sequence = $1, hash = $2 WHERE id = 1`, head.Sequence, head.Hash)
	if err != nil {
		return apperrors.Wrap(err, "failed to update audit chain head")
	}
	return nil
}

// Create inserts an audit event.
func (p *PostgreSQLAuditRepository) Create(ctx context.Context, event *auditDomain.AuditEvent) error {
	querier := database.GetTx(ctx, p.db)

	details, err := json.Marshal(event.Details)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit details")
	}

	query := `INSERT INTO audit_events (` + auditEventColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = querier.ExecContext(ctx, query, event.ID, event.Sequence, event.ActorID, event.Action,
		event.ResourceType, event.ResourceID, event.Outcome, string(details), event.PrevHash, event.Hash, event.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}
	return nil
}

// Get retrieves an audit event by ID.
func (p *PostgreSQLAuditRepository) Get(ctx context.Context, id uuid.UUID) (*auditDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, p.db)
	row := querier.QueryRowContext(ctx, `SELECT `+auditEventColumns+` FROM audit_events WHERE id = $1`, id)
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
func (p *PostgreSQLAuditRepository) List(
	ctx context.Context,
	filter auditDomain.ListFilter,
	offset, limit int,
) ([]*auditDomain.AuditEvent, error) {
	where, args := buildAuditFilter(filter, func(n int) string { return fmt.Sprintf("$%d", n) })
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM audit_events%s ORDER BY sequence DESC LIMIT $%d OFFSET $%d`,
		auditEventColumns, where, len(args)-1, len(args))

	return queryAuditEvents(ctx, database.GetTx(ctx, p.db), query, args...)
}

// ListAfterSequence returns events in chain order starting after afterSequence.
func (p *PostgreSQLAuditRepository) ListAfterSequence(
	ctx context.Context,
	afterSequence int64,
	limit int,
) ([]*auditDomain.AuditEvent, error) {
	query := `SELECT ` + auditEventColumns + ` FROM audit_events WHERE sequence > $1 ORDER BY sequence ASC LIMIT $2`
	return queryAuditEvents(ctx, database.GetTx(ctx, p.db), query, afterSequence, limit)
}

// buildAuditFilter renders the WHERE clause for filter using placeholder to number arguments.
func buildAuditFilter(filter auditDomain.ListFilter, placeholder func(n int) string) (string, []any) {
	var conditions []string
	var args []any

	add := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, placeholder(len(args))))
	}

	if filter.ActorID != nil {
		add("actor_id = %s", *filter.ActorID)
	}
	if filter.Action != "" {
		add("action = %s", filter.Action)
	}
	if filter.ResourceType != "" {
		add("resource_type = %s", filter.ResourceType)
	}
	if filter.ResourceID != "" {
		add("resource_id = %s", filter.ResourceID)
	}
	if filter.From != nil {
		add("created_at >= %s", *filter.From)
	}
	if filter.To != nil {
		add("created_at <= %s", *filter.To)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHead(row rowScanner) (*auditDomain.ChainHead, error) {
	var head auditDomain.ChainHead
	if err := row.Scan(&head.Sequence, &head.Hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Wrap(apperrors.ErrIntegrity, "audit chain head missing")
		}
		return nil, apperrors.Wrap(err, "failed to read audit chain head")
	}
	return &head, nil
}

func scanAuditEvent(row rowScanner) (*auditDomain.AuditEvent, error) {
	var event auditDomain.AuditEvent
	var details []byte
	err := row.Scan(&event.ID, &event.Sequence, &event.ActorID, &event.Action, &event.ResourceType,
		&event.ResourceID, &event.Outcome, &details, &event.PrevHash, &event.Hash, &event.CreatedAt)
	if err != nil {
		return nil, err
	}

	event.Details = map[string]any{}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &event.Details); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit details")
		}
	}
	event.CreatedAt = event.CreatedAt.UTC()
	return &event, nil
}

func queryAuditEvents(
	ctx context.Context,
	querier database.Querier,
	query string,
	args ...any,
) ([]*auditDomain.AuditEvent, error) {
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer rows.Close() //nolint:errcheck

	events := make([]*auditDomain.AuditEvent, 0)
	for rows.Next() {
		event, err := scanAuditEvent(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit event")
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}
	return events, nil
}
