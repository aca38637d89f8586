package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	abacDomain "github.com/allisson/sentinel/internal/abac/domain"
	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	"github.com/allisson/sentinel/internal/clock"
	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
)

const (
	auditResourcePolicy    = "access_policy"
	auditResourceAttribute = "user_attribute"
)

type abacUseCase struct {
	txManager     database.TxManager
	policyRepo    PolicyRepository
	attributeRepo AttributeRepository
	audit         AuditRecorder
	clock         clock.Clock
}

func (a *abacUseCase) CreatePolicy(
	ctx context.Context,
	actor *authDomain.Principal,
	input *abacDomain.PolicyInput,
) (*abacDomain.Policy, error) {
	if !actor.CanAdminister() {
		return nil, abacDomain.ErrPolicyAdminRequired
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := a.clock.Now()
	policy := &abacDomain.Policy{
		ID:        uuid.Must(uuid.NewV7()),
		CreatedBy: actor.UserID,
		CreatedAt: now,
	}
	applyPolicyInput(policy, input, now)

	err := a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := a.policyRepo.Create(ctx, policy); err != nil {
			return err
		}
		return a.recordPolicy(ctx, actor, policy, "created")
	})
	if err != nil {
		return nil, err
	}
	return policy, nil
}

func (a *abacUseCase) UpdatePolicy(
	ctx context.Context,
	actor *authDomain.Principal,
	id uuid.UUID,
	input *abacDomain.PolicyInput,
) (*abacDomain.Policy, error) {
	if !actor.CanAdminister() {
		return nil, abacDomain.ErrPolicyAdminRequired
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var policy *abacDomain.Policy
	err := a.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		policy, err = a.policyRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		applyPolicyInput(policy, input, a.clock.Now())
		if err := a.policyRepo.Update(ctx, policy); err != nil {
			return err
		}
		return a.recordPolicy(ctx, actor, policy, "updated")
	})
	if err != nil {
		return nil, err
	}
	return policy, nil
}

func (a *abacUseCase) DeletePolicy(ctx context.Context, actor *authDomain.Principal, id uuid.UUID) error {
	if !actor.CanAdminister() {
		return abacDomain.ErrPolicyAdminRequired
	}
	return a.txManager.WithTx(ctx, func(ctx context.Context) error {
		policy, err := a.policyRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := a.policyRepo.Delete(ctx, id); err != nil {
			return err
		}
		return a.recordPolicy(ctx, actor, policy, "deleted")
	})
}

func (a *abacUseCase) GetPolicy(ctx context.Context, id uuid.UUID) (*abacDomain.Policy, error) {
	return a.policyRepo.Get(ctx, id)
}

func (a *abacUseCase) ListPolicies(ctx context.Context, offset, limit int) ([]*abacDomain.Policy, error) {
	policies, err := a.policyRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list access policies")
	}
	return policies, nil
}

func (a *abacUseCase) SetAttribute(
	ctx context.Context,
	actor *authDomain.Principal,
	input *abacDomain.SetAttributeInput,
) (*abacDomain.UserAttribute, error) {
	if !actor.CanAdminister() {
		return nil, abacDomain.ErrPolicyAdminRequired
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	attribute := &abacDomain.UserAttribute{
		UserID:    input.UserID,
		Name:      strings.TrimSpace(input.Name),
		Value:     input.Value,
		Source:    input.Source,
		ExpiresAt: input.ExpiresAt,
		UpdatedAt: a.clock.Now(),
	}

	err := a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := a.attributeRepo.Upsert(ctx, attribute); err != nil {
			return err
		}
		return a.recordAttribute(ctx, actor, attribute.UserID, attribute.Name, map[string]any{
			"change": "set",
			"value":  attribute.Value.String(),
			"source": attribute.Source,
		})
	})
	if err != nil {
		return nil, err
	}
	return attribute, nil
}

func (a *abacUseCase) DeleteAttribute(
	ctx context.Context,
	actor *authDomain.Principal,
	userID uuid.UUID,
	name string,
) error {
	if !actor.CanAdminister() {
		return abacDomain.ErrPolicyAdminRequired
	}
	return a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := a.attributeRepo.Delete(ctx, userID, name); err != nil {
			return err
		}
		return a.recordAttribute(ctx, actor, userID, name, map[string]any{"change": "deleted"})
	})
}

func (a *abacUseCase) ListAttributes(ctx context.Context, userID uuid.UUID) ([]*abacDomain.UserAttribute, error) {
	attributes, err := a.attributeRepo.ListActive(ctx, userID, a.clock.Now())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list user attributes")
	}
	return attributes, nil
}

func (a *abacUseCase) Evaluate(
	ctx context.Context,
	input *abacDomain.EvaluateInput,
) (*abacDomain.Evaluation, error) {
	policies, err := a.policyRepo.ListEnabledFor(ctx, input.ResourceType, input.Action)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load access policies")
	}
	if len(policies) == 0 {
		eval := abacDomain.Evaluate(nil, nil)
		return &eval, nil
	}

	stored, err := a.attributeRepo.ListActive(ctx, input.UserID, a.clock.Now())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load user attributes")
	}

	attrs := make(abacDomain.Attributes, len(input.Context)+len(stored))
	for name, value := range input.Context {
		attrs[name] = value
	}
	for _, attribute := range stored {
		attrs[attribute.Name] = attribute.Value
	}

	eval := abacDomain.Evaluate(policies, attrs)
	return &eval, nil
}

func applyPolicyInput(policy *abacDomain.Policy, input *abacDomain.PolicyInput, now time.Time) {
	effect, _ := abacDomain.ParseEffect(string(input.Effect))
	policy.Name = strings.TrimSpace(input.Name)
	policy.ResourceType = strings.TrimSpace(input.ResourceType)
	policy.Action = strings.ToLower(strings.TrimSpace(input.Action))
	policy.Effect = effect
	policy.Rules = input.Rules
	policy.Priority = input.Priority
	policy.Enabled = input.Enabled
	policy.UpdatedAt = now
}

func (a *abacUseCase) recordPolicy(
	ctx context.Context,
	actor *authDomain.Principal,
	policy *abacDomain.Policy,
	change string,
) error {
	_, err := a.audit.Record(ctx, &auditDomain.RecordInput{
		ActorID:      actor.UserID,
		Action:       auditDomain.ActionPolicyChanged,
		ResourceType: auditResourcePolicy,
		ResourceID:   policy.ID.String(),
		Outcome:      auditDomain.OutcomeSuccess,
		Details: map[string]any{
			"change":        change,
			"name":          policy.Name,
			"resource_type": policy.ResourceType,
			"action":        policy.Action,
			"effect":        string(policy.Effect),
			"priority":      policy.Priority,
			"enabled":       policy.Enabled,
		},
	})
	return err
}

func (a *abacUseCase) recordAttribute(
	ctx context.Context,
	actor *authDomain.Principal,
	userID uuid.UUID,
	name string,
	details map[string]any,
) error {
	details["name"] = name
	_, err := a.audit.Record(ctx, &auditDomain.RecordInput{
		ActorID:      actor.UserID,
		Action:       auditDomain.ActionAttributeChanged,
		ResourceType: auditResourceAttribute,
		ResourceID:   userID.String(),
		Outcome:      auditDomain.OutcomeSuccess,
		Details:      details,
	})
	return err
}

// NewABACUseCase creates a new ABACUseCase with the provided dependencies.
func NewABACUseCase(
	txManager database.TxManager,
	policyRepo PolicyRepository,
	attributeRepo AttributeRepository,
	audit AuditRecorder,
	clk clock.Clock,
) ABACUseCase {
	return &abacUseCase{
		txManager:     txManager,
		policyRepo:    policyRepo,
		attributeRepo: attributeRepo,
		audit:         audit,
		clock:         clk,
	}
}
