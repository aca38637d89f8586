// Package usecase implements recording, listing and verification of the audit trail.
package usecase

import (
	"context"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	outboxDomain "github.com/allisson/sentinel/internal/outbox/domain"
)

// AuditRepository defines persistence for audit events and the chain head.
// Implementations must support transaction-aware operations via context propagation.
type AuditRepository interface {
	// LockHead reads the chain head and holds a row lock until the transaction ends.
	LockHead(ctx context.Context) (*auditDomain.ChainHead, error)

	// GetHead reads the chain head without locking.
	GetHead(ctx context.Context) (*auditDomain.ChainHead, error)

	UpdateHead(ctx context.Context, head *auditDomain.ChainHead) error

	Create(ctx context.Context, event *auditDomain.AuditEvent) error

	// Get retrieves an event by ID. Returns ErrAuditEventNotFound if missing.
	Get(ctx context.Context, id uuid.UUID) (*auditDomain.AuditEvent, error)

	// List returns events matching filter, newest first.
	List(ctx context.Context, filter auditDomain.ListFilter, offset, limit int) ([]*auditDomain.AuditEvent, error)

	// ListAfterSequence returns up to limit events with sequence > afterSequence, in chain order.
	ListAfterSequence(ctx context.Context, afterSequence int64, limit int) ([]*auditDomain.AuditEvent, error)
}

// OutboxWriter persists outbox events inside the caller's transaction.
type OutboxWriter interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// AuditUseCase defines the audit trail operations.
type AuditUseCase interface {
	// Record appends an event to the chain. When ctx carries a transaction the event commits
	// or rolls back together with the caller's changes.
	Record(ctx context.Context, input *auditDomain.RecordInput) (*auditDomain.AuditEvent, error)

	Get(ctx context.Context, id uuid.UUID) (*auditDomain.AuditEvent, error)

	List(ctx context.Context, filter auditDomain.ListFilter, offset, limit int) ([]*auditDomain.AuditEvent, error)

	// VerifyChain walks the whole chain and reports every event that fails verification.
	VerifyChain(ctx context.Context) (*auditDomain.VerificationReport, error)
}
