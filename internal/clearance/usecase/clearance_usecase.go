package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	clearanceDomain "github.com/allisson/sentinel/internal/clearance/domain"
	"github.com/allisson/sentinel/internal/clock"
	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
	macDomain "github.com/allisson/sentinel/internal/mac/domain"
)

type clearanceUseCase struct {
	txManager      database.TxManager
	clearanceRepo  ClearanceRepository
	escalationRepo EscalationRepository
	audit          AuditRecorder
	clock          clock.Clock
	reviewInterval time.Duration
}

// requireAdministrator enforces that actor is an admin acting on someone else's clearance.
func requireAdministrator(actor *authDomain.Principal, userID uuid.UUID) error {
	if !actor.CanAdminister() {
		return clearanceDomain.ErrAdminRequired
	}
	if actor.UserID == userID {
		return clearanceDomain.ErrSelfGrant
	}
	return nil
}

// Assign creates or replaces the clearance and schedules its next review.
func (c *clearanceUseCase) Assign(
	ctx context.Context,
	actor *authDomain.Principal,
	input *clearanceDomain.AssignInput,
) (*macDomain.Clearance, error) {
	if err := requireAdministrator(actor, input.UserID); err != nil {
		return nil, err
	}
	if input.TrustedSubject && !actor.IsSuperAdmin() {
		return nil, clearanceDomain.ErrTrustedSubjectRequiresSuperAdmin
	}
	if !input.Level.IsValid() {
		return nil, macDomain.ErrInvalidSecurityLevel
	}

	now := c.clock.Now()
	if input.ExpiresAt != nil && !input.ExpiresAt.After(now) {
		return nil, clearanceDomain.ErrExpiryInPast
	}

	reviewDueAt := now.Add(c.reviewInterval)
	clearance := &macDomain.Clearance{
		UserID:         input.UserID,
		Level:          input.Level,
		Compartments:   macDomain.NewCompartments(input.Compartments...),
		TrustedSubject: input.TrustedSubject,
		ExpiresAt:      input.ExpiresAt,
		ReviewDueAt:    &reviewDueAt,
		AssignedBy:     actor.UserID,
		Reason:         input.Reason,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := c.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := c.clearanceRepo.Upsert(ctx, clearance); err != nil {
			return err
		}
		_, err := c.audit.Record(ctx, &auditDomain.RecordInput{
			ActorID:      actor.UserID,
			Action:       auditDomain.ActionClearanceAssigned,
			ResourceType: "user",
			ResourceID:   input.UserID.String(),
			Outcome:      auditDomain.OutcomeSuccess,
			Details: map[string]any{
				"level":           clearance.Level.String(),
				"compartments":    []string(clearance.Compartments),
				"trusted_subject": clearance.TrustedSubject,
				"reason":          clearance.Reason,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return clearance, nil
}

// Get returns the stored clearance.
func (c *clearanceUseCase) Get(ctx context.Context, userID uuid.UUID) (*macDomain.Clearance, error) {
	return c.clearanceRepo.Get(ctx, userID)
}

// RequestEscalation records a pending request for a label the caller does not yet hold.
func (c *clearanceUseCase) RequestEscalation(
	ctx context.Context,
	actor *authDomain.Principal,
	input *clearanceDomain.EscalationInput,
) (*clearanceDomain.Escalation, error) {
	if !input.TargetLevel.IsValid() {
		return nil, macDomain.ErrInvalidSecurityLevel
	}
	input.TargetCompartments = macDomain.NewCompartments(input.TargetCompartments...)

	current, err := c.clearanceRepo.Get(ctx, actor.UserID)
	if err != nil && !apperrors.Is(err, macDomain.ErrClearanceNotFound) {
		return nil, err
	}

	now := c.clock.Now()
	if !input.Exceeds(current.Subject(now)) {
		return nil, clearanceDomain.ErrEscalationNotHigher
	}

	escalation := &clearanceDomain.Escalation{
		ID:                 uuid.Must(uuid.NewV7()),
		UserID:             actor.UserID,
		TargetLevel:        input.TargetLevel,
		TargetCompartments: input.TargetCompartments,
		Reason:             input.Reason,
		Status:             clearanceDomain.EscalationPending,
		CreatedAt:          now,
	}

	err = c.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := c.escalationRepo.Create(ctx, escalation); err != nil {
			return err
		}
		_, err := c.audit.Record(ctx, &auditDomain.RecordInput{
			ActorID:      actor.UserID,
			Action:       auditDomain.ActionEscalationRequested,
			ResourceType: "clearance_escalation",
			ResourceID:   escalation.ID.String(),
			Outcome:      auditDomain.OutcomeSuccess,
			Details: map[string]any{
				"target_level":        escalation.TargetLevel.String(),
				"target_compartments": []string(escalation.TargetCompartments),
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return escalation, nil
}

// DecideEscalation applies the decision with a conditional update so concurrent deciders
// cannot both succeed.
func (c *clearanceUseCase) DecideEscalation(
	ctx context.Context,
	actor *authDomain.Principal,
	input *clearanceDomain.DecideEscalationInput,
) (*clearanceDomain.Escalation, error) {
	var escalation *clearanceDomain.Escalation
	err := c.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		escalation, err = c.escalationRepo.Get(ctx, input.EscalationID)
		if err != nil {
			return err
		}
		if err := requireAdministrator(actor, escalation.UserID); err != nil {
			return err
		}
		if escalation.Status != clearanceDomain.EscalationPending {
			return clearanceDomain.ErrEscalationDecided
		}

		now := c.clock.Now()
		escalation.Status = clearanceDomain.EscalationRejected
		if input.Approved {
			escalation.Status = clearanceDomain.EscalationApproved
		}
		escalation.DecidedBy = &actor.UserID
		escalation.DecidedAt = &now
		escalation.Notes = input.Notes

		if err := c.escalationRepo.Decide(ctx, escalation); err != nil {
			return err
		}

		if input.Approved {
			if err := c.applyEscalation(ctx, actor, escalation, now); err != nil {
				return err
			}
		}

		_, err = c.audit.Record(ctx, &auditDomain.RecordInput{
			ActorID:      actor.UserID,
			Action:       auditDomain.ActionEscalationDecided,
			ResourceType: "clearance_escalation",
			ResourceID:   escalation.ID.String(),
			Outcome:      string(escalation.Status),
			Details: map[string]any{
				"user_id":      escalation.UserID.String(),
				"target_level": escalation.TargetLevel.String(),
				"notes":        escalation.Notes,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return escalation, nil
}

// applyEscalation raises the active clearance to the escalation target, keeping the
// trusted-subject flag and expiry of the existing clearance.
func (c *clearanceUseCase) applyEscalation(
	ctx context.Context,
	actor *authDomain.Principal,
	escalation *clearanceDomain.Escalation,
	now time.Time,
) error {
	existing, err := c.clearanceRepo.Get(ctx, escalation.UserID)
	if err != nil && !apperrors.Is(err, macDomain.ErrClearanceNotFound) {
		return err
	}

	reviewDueAt := now.Add(c.reviewInterval)
	clearance := &macDomain.Clearance{
		UserID:       escalation.UserID,
		Level:        escalation.TargetLevel,
		Compartments: escalation.TargetCompartments,
		ReviewDueAt:  &reviewDueAt,
		AssignedBy:   actor.UserID,
		Reason:       "escalation " + escalation.ID.String(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if existing != nil && !existing.IsExpired(now) {
		clearance.TrustedSubject = existing.TrustedSubject
		clearance.ExpiresAt = existing.ExpiresAt
		clearance.CreatedAt = existing.CreatedAt
	}

	return c.clearanceRepo.Upsert(ctx, clearance)
}

// ListPendingEscalations lists undecided escalations, oldest first.
func (c *clearanceUseCase) ListPendingEscalations(
	ctx context.Context,
	offset, limit int,
) ([]*clearanceDomain.Escalation, error) {
	escalations, err := c.escalationRepo.ListPending(ctx, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list escalations")
	}
	return escalations, nil
}

// Review stores the review outcome and, on approval, the updated clearance.
func (c *clearanceUseCase) Review(
	ctx context.Context,
	actor *authDomain.Principal,
	input *clearanceDomain.ReviewInput,
) (*clearanceDomain.Review, error) {
	if err := requireAdministrator(actor, input.UserID); err != nil {
		return nil, err
	}
	if input.NewLevel != nil && !input.NewLevel.IsValid() {
		return nil, macDomain.ErrInvalidSecurityLevel
	}

	var review *clearanceDomain.Review
	err := c.txManager.WithTx(ctx, func(ctx context.Context) error {
		clearance, err := c.clearanceRepo.Get(ctx, input.UserID)
		if err != nil {
			return err
		}

		now := c.clock.Now()
		review = &clearanceDomain.Review{
			ID:            uuid.Must(uuid.NewV7()),
			UserID:        input.UserID,
			ReviewerID:    actor.UserID,
			Approved:      input.Approved,
			PreviousLevel: clearance.Level,
			Notes:         input.Notes,
			CreatedAt:     now,
		}

		if input.Approved {
			if input.NewLevel != nil {
				clearance.Level = *input.NewLevel
				review.NewLevel = input.NewLevel
			}
			if input.NewCompartments != nil {
				clearance.Compartments = macDomain.NewCompartments(input.NewCompartments...)
				review.NewCompartments = clearance.Compartments
			}
			reviewDueAt := now.Add(c.reviewInterval)
			clearance.ReviewDueAt = &reviewDueAt
			clearance.UpdatedAt = now

			if err := c.clearanceRepo.Upsert(ctx, clearance); err != nil {
				return err
			}
		}

		if err := c.clearanceRepo.CreateReview(ctx, review); err != nil {
			return err
		}

		outcome := string(clearanceDomain.EscalationRejected)
		if input.Approved {
			outcome = string(clearanceDomain.EscalationApproved)
		}
		_, err = c.audit.Record(ctx, &auditDomain.RecordInput{
			ActorID:      actor.UserID,
			Action:       auditDomain.ActionClearanceReviewed,
			ResourceType: "user",
			ResourceID:   input.UserID.String(),
			Outcome:      outcome,
			Details: map[string]any{
				"previous_level": review.PreviousLevel.String(),
				"level":          clearance.Level.String(),
				"notes":          input.Notes,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

// GetUsersRequiringReview is a read-only query over review due dates.
func (c *clearanceUseCase) GetUsersRequiringReview(
	ctx context.Context,
	daysBeforeDue int,
) ([]*macDomain.Clearance, error) {
	if daysBeforeDue < 0 {
		return nil, clearanceDomain.ErrInvalidReviewWindow
	}
	dueBefore := c.clock.Now().AddDate(0, 0, daysBeforeDue)

	clearances, err := c.clearanceRepo.ListReviewDue(ctx, dueBefore)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list clearances due for review")
	}
	return clearances, nil
}

// NewClearanceUseCase creates a new ClearanceUseCase. A non-positive reviewInterval falls
// back to DefaultReviewInterval.
func NewClearanceUseCase(
	txManager database.TxManager,
	clearanceRepo ClearanceRepository,
	escalationRepo EscalationRepository,
	audit AuditRecorder,
	clk clock.Clock,
	reviewInterval time.Duration,
) ClearanceUseCase {
	if reviewInterval <= 0 {
		reviewInterval = clearanceDomain.DefaultReviewInterval
	}
	return &clearanceUseCase{
		txManager:      txManager,
		clearanceRepo:  clearanceRepo,
		escalationRepo: escalationRepo,
		audit:          audit,
		clock:          clk,
		reviewInterval: reviewInterval,
	}
}
