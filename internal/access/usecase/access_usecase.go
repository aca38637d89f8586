package usecase

import (
	"context"
	"fmt"

	accessDomain "github.com/allisson/sentinel/internal/access/domain"
	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	"github.com/allisson/sentinel/internal/clock"
	apperrors "github.com/allisson/sentinel/internal/errors"
)

type accessUseCase struct {
	evaluators map[accessDomain.Model]Evaluator
	audit      AuditRecorder
	clock      clock.Clock
}

// CheckAccess never caches facts across calls. The first denying model ends the evaluation.
func (a *accessUseCase) CheckAccess(
	ctx context.Context,
	req *accessDomain.Request,
) (*accessDomain.Decision, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	decision, evalErr := a.decide(ctx, req)
	decision.DecidedAt = a.clock.Now()

	if err := a.record(ctx, req, decision); err != nil {
		return decision, apperrors.Join(evalErr, apperrors.Join(accessDomain.ErrAuditEmission, err))
	}
	return decision, evalErr
}

func (a *accessUseCase) decide(ctx context.Context, req *accessDomain.Request) (*accessDomain.Decision, error) {
	if req.Subject.IsSuperAdmin() {
		return &accessDomain.Decision{
			Allowed:   true,
			Bypassed:  true,
			Reason:    "super administrator bypass",
			Evaluated: []accessDomain.Model{},
		}, nil
	}

	decision := &accessDomain.Decision{
		Evaluated: make([]accessDomain.Model, 0, len(accessDomain.EvaluationOrder)),
		Details:   map[string]any{},
	}
	for _, model := range req.EnabledModels() {
		decision.Evaluated = append(decision.Evaluated, model)

		evaluator, ok := a.evaluators[model]
		if !ok {
			decision.DeniedBy = model
			decision.Reason = fmt.Sprintf("%s evaluation unavailable", model)
			return decision, apperrors.Wrapf(accessDomain.ErrEvaluationFailed, "%s is not configured", model)
		}

		verdict, err := evaluator.Evaluate(ctx, req)
		if err != nil {
			decision.DeniedBy = model
			decision.Reason = fmt.Sprintf("%s evaluation failed", model)
			return decision, apperrors.Join(
				apperrors.Wrapf(accessDomain.ErrEvaluationFailed, "%s", model), err,
			)
		}
		if len(verdict.Details) > 0 {
			decision.Details[string(model)] = verdict.Details
		}
		if !verdict.Allowed {
			decision.DeniedBy = model
			decision.Reason = verdict.Reason
			return decision, nil
		}
	}

	decision.Allowed = true
	decision.Reason = "access granted"
	return decision, nil
}

func (a *accessUseCase) record(ctx context.Context, req *accessDomain.Request, d *accessDomain.Decision) error {
	outcome := auditDomain.OutcomeDenied
	if d.Allowed {
		outcome = auditDomain.OutcomeAllowed
	}
	evaluated := make([]string, 0, len(d.Evaluated))
	for _, m := range d.Evaluated {
		evaluated = append(evaluated, string(m))
	}

	_, err := a.audit.Record(ctx, &auditDomain.RecordInput{
		ActorID:      req.Subject.UserID,
		Action:       auditDomain.ActionAccessChecked,
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		Outcome:      outcome,
		Details: map[string]any{
			"action":    req.Action,
			"denied_by": string(d.DeniedBy),
			"reason":    d.Reason,
			"bypassed":  d.Bypassed,
			"evaluated": evaluated,
			"client_ip": req.Context.ClientIP,
			"device_id": req.Context.DeviceID,
		},
	})
	return err
}

// NewAccessUseCase creates an AccessUseCase running the given evaluators. An enabled model
// without an evaluator denies with ErrEvaluationFailed.
func NewAccessUseCase(evaluators []Evaluator, audit AuditRecorder, clk clock.Clock) AccessUseCase {
	byModel := make(map[accessDomain.Model]Evaluator, len(evaluators))
	for _, e := range evaluators {
		byModel[e.Model()] = e
	}
	return &accessUseCase{evaluators: byModel, audit: audit, clock: clk}
}
