package usecase

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	"github.com/allisson/sentinel/internal/audit/service"
	"github.com/allisson/sentinel/internal/clock"
	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
	outboxDomain "github.com/allisson/sentinel/internal/outbox/domain"
)

// verifyBatchSize is the page size used while walking the chain.
const verifyBatchSize = 500

type auditUseCase struct {
	txManager  database.TxManager
	auditRepo  AuditRepository
	outboxRepo OutboxWriter
	hasher     service.ChainHasher
	clock      clock.Clock
}

// recordedPayload is the outbox representation of an appended event.
type recordedPayload struct {
	ID           uuid.UUID      `json:"id"`
	Sequence     int64          `json:"sequence"`
	ActorID      uuid.UUID      `json:"actor_id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type,omitempty"`
	ResourceID   string         `json:"resource_id,omitempty"`
	Outcome      string         `json:"outcome,omitempty"`
	Details      map[string]any `json:"details"`
	Hash         string         `json:"hash"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Record appends an event under the chain head lock. The event, the new head and the outbox
// message are written in one transaction.
func (a *auditUseCase) Record(
	ctx context.Context,
	input *auditDomain.RecordInput,
) (*auditDomain.AuditEvent, error) {
	details, err := normalizeDetails(input.Details)
	if err != nil {
		return nil, err
	}

	var event *auditDomain.AuditEvent
	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		head, err := a.auditRepo.LockHead(ctx)
		if err != nil {
			return apperrors.Wrap(err, "failed to lock audit chain head")
		}

		now := a.clock.Now().UTC().Truncate(time.Microsecond)
		event = &auditDomain.AuditEvent{
			ID:           uuid.Must(uuid.NewV7()),
			Sequence:     head.Sequence + 1,
			ActorID:      input.ActorID,
			Action:       input.Action,
			ResourceType: input.ResourceType,
			ResourceID:   input.ResourceID,
			Outcome:      input.Outcome,
			Details:      details,
			PrevHash:     head.Hash,
			CreatedAt:    now,
		}

		hash, err := a.hasher.Hash(head.Hash, event)
		if err != nil {
			return err
		}
		event.Hash = hash

		if err := a.auditRepo.Create(ctx, event); err != nil {
			return apperrors.Wrap(err, "failed to create audit event")
		}

		if err := a.auditRepo.UpdateHead(ctx, &auditDomain.ChainHead{Sequence: event.Sequence, Hash: hash}); err != nil {
			return apperrors.Wrap(err, "failed to advance audit chain head")
		}

		outboxEvent, err := outboxDomain.NewOutboxEvent(
			outboxDomain.EventTypeAuditRecorded,
			&recordedPayload{
				ID:           event.ID,
				Sequence:     event.Sequence,
				ActorID:      event.ActorID,
				Action:       event.Action,
				ResourceType: event.ResourceType,
				ResourceID:   event.ResourceID,
				Outcome:      event.Outcome,
				Details:      event.Details,
				Hash:         hex.EncodeToString(hash),
				CreatedAt:    event.CreatedAt,
			},
			now,
		)
		if err != nil {
			return err
		}
		return a.outboxRepo.Create(ctx, outboxEvent)
	})
	if err != nil {
		return nil, err
	}

	return event, nil
}

// Get retrieves a single event.
func (a *auditUseCase) Get(ctx context.Context, id uuid.UUID) (*auditDomain.AuditEvent, error) {
	return a.auditRepo.Get(ctx, id)
}

// List retrieves events newest first.
func (a *auditUseCase) List(
	ctx context.Context,
	filter auditDomain.ListFilter,
	offset, limit int,
) ([]*auditDomain.AuditEvent, error) {
	events, err := a.auditRepo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	return events, nil
}

// VerifyChain checks sequence continuity, predecessor links and every hash, then compares the
// last event with the recorded head.
func (a *auditUseCase) VerifyChain(ctx context.Context) (*auditDomain.VerificationReport, error) {
	head, err := a.auditRepo.GetHead(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read audit chain head")
	}

	report := &auditDomain.VerificationReport{
		HeadSequence:  head.Sequence,
		InvalidEvents: []uuid.UUID{},
	}

	var lastSequence int64
	var lastHash []byte
	for {
		events, err := a.auditRepo.ListAfterSequence(ctx, lastSequence, verifyBatchSize)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list audit events")
		}

		for _, event := range events {
			report.TotalChecked++

			valid := event.Sequence == lastSequence+1 &&
				bytes.Equal(event.PrevHash, lastHash) &&
				a.hasher.Verify(event) == nil
			if valid {
				report.ValidCount++
			} else {
				report.InvalidCount++
				report.InvalidEvents = append(report.InvalidEvents, event.ID)
			}

			lastSequence = event.Sequence
			lastHash = event.Hash
		}

		if len(events) < verifyBatchSize {
			break
		}
	}

	if lastSequence != head.Sequence || !bytes.Equal(lastHash, head.Hash) {
		report.HeadMismatch = true
	}

	return report, nil
}

// normalizeDetails round-trips details through JSON so the hashed form matches what the
// database returns on read.
func normalizeDetails(details map[string]any) (map[string]any, error) {
	if len(details) == 0 {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(details)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "audit details are not serializable")
	}
	normalized := make(map[string]any, len(details))
	if err := json.Unmarshal(data, &normalized); err != nil {
		return nil, apperrors.Wrap(err, "failed to normalize audit details")
	}
	return normalized, nil
}

// NewAuditUseCase creates a new AuditUseCase with the provided dependencies.
func NewAuditUseCase(
	txManager database.TxManager,
	auditRepo AuditRepository,
	outboxRepo OutboxWriter,
	hasher service.ChainHasher,
	clk clock.Clock,
) AuditUseCase {
	return &auditUseCase{
		txManager:  txManager,
		auditRepo:  auditRepo,
		outboxRepo: outboxRepo,
		hasher:     hasher,
		clock:      clk,
	}
}
