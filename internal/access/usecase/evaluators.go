package usecase

import (
	"context"
	"fmt"
	"strings"

	abacDomain "github.com/allisson/sentinel/internal/abac/domain"
	accessDomain "github.com/allisson/sentinel/internal/access/domain"
	"github.com/allisson/sentinel/internal/clock"
	dacDomain "github.com/allisson/sentinel/internal/dac/domain"
	apperrors "github.com/allisson/sentinel/internal/errors"
	macDomain "github.com/allisson/sentinel/internal/mac/domain"
	resourceDomain "github.com/allisson/sentinel/internal/resource/domain"
	rubacDomain "github.com/allisson/sentinel/internal/rubac/domain"
)

const reasonUnregistered = "resource is not registered"

type rbacEvaluator struct {
	roles RoleChecker
}

// NewRBACEvaluator checks that an active role assignment grants the action on the resource type.
func NewRBACEvaluator(roles RoleChecker) Evaluator {
	return &rbacEvaluator{roles: roles}
}

func (e *rbacEvaluator) Model() accessDomain.Model { return accessDomain.ModelRBAC }

func (e *rbacEvaluator) Evaluate(ctx context.Context, req *accessDomain.Request) (*accessDomain.Verdict, error) {
	ok, err := e.roles.HasPermission(ctx, req.Subject.UserID, req.ResourceType, strings.ToLower(req.Action))
	if err != nil {
		return nil, err
	}
	if !ok {
		return accessDomain.Deny(fmt.Sprintf("no active role grants %s:%s",
			req.ResourceType, strings.ToLower(req.Action))), nil
	}
	return accessDomain.Allow("role grants permission"), nil
}

type macEvaluator struct {
	labels LabelChecker
}

// NewMACEvaluator checks the Bell-LaPadula property matching the action's direction.
func NewMACEvaluator(labels LabelChecker) Evaluator {
	return &macEvaluator{labels: labels}
}

func (e *macEvaluator) Model() accessDomain.Model { return accessDomain.ModelMAC }

func (e *macEvaluator) Evaluate(ctx context.Context, req *accessDomain.Request) (*accessDomain.Verdict, error) {
	mode := macDomain.ModeForAction(req.Action)
	decision, err := e.labels.Check(ctx, req.Subject.UserID, req.ResourceType, req.ResourceID, mode)
	if err != nil {
		if apperrors.Is(err, resourceDomain.ErrResourceNotFound) {
			return accessDomain.Deny(reasonUnregistered), nil
		}
		return nil, err
	}
	verdict := &accessDomain.Verdict{
		Allowed: decision.Allowed,
		Reason:  decision.Reason,
		Details: map[string]any{"mode": string(mode), "rule": string(decision.Rule)},
	}
	if verdict.Allowed {
		verdict.Reason = "clearance dominates label"
	}
	return verdict, nil
}

type dacEvaluator struct {
	ownership OwnershipChecker
}

// NewDACEvaluator checks that the subject owns the resource or holds the right the action needs.
func NewDACEvaluator(ownership OwnershipChecker) Evaluator {
	return &dacEvaluator{ownership: ownership}
}

func (e *dacEvaluator) Model() accessDomain.Model { return accessDomain.ModelDAC }

func (e *dacEvaluator) Evaluate(ctx context.Context, req *accessDomain.Request) (*accessDomain.Verdict, error) {
	required, ok := dacDomain.PermissionForAction(req.Action)
	if !ok {
		return accessDomain.Deny(fmt.Sprintf("action %q has no discretionary permission", req.Action)), nil
	}
	held, err := e.ownership.EffectivePermission(ctx, req.Subject.UserID, req.ResourceType, req.ResourceID)
	if err != nil {
		if apperrors.Is(err, resourceDomain.ErrResourceNotFound) {
			return accessDomain.Deny(reasonUnregistered), nil
		}
		return nil, err
	}
	if !held.Has(required) {
		return accessDomain.Deny(fmt.Sprintf("missing %s permission", required)), nil
	}
	return &accessDomain.Verdict{
		Allowed: true,
		Reason:  "discretionary permission held",
		Details: map[string]any{"held": held.Names()},
	}, nil
}

type abacEvaluator struct {
	policies  PolicyEvaluator
	labels    LabelChecker
	resources ResourceReader
	clock     clock.Clock
}

// NewABACEvaluator evaluates access policies over the subject, resource, environment and
// request attributes of the call.
func NewABACEvaluator(
	policies PolicyEvaluator,
	labels LabelChecker,
	resources ResourceReader,
	clk clock.Clock,
) Evaluator {
	return &abacEvaluator{policies: policies, labels: labels, resources: resources, clock: clk}
}

func (e *abacEvaluator) Model() accessDomain.Model { return accessDomain.ModelABAC }

func (e *abacEvaluator) Evaluate(ctx context.Context, req *accessDomain.Request) (*accessDomain.Verdict, error) {
	attrs, err := e.attributes(ctx, req)
	if err != nil {
		if apperrors.Is(err, resourceDomain.ErrResourceNotFound) {
			return accessDomain.Deny(reasonUnregistered), nil
		}
		return nil, err
	}
	eval, err := e.policies.Evaluate(ctx, &abacDomain.EvaluateInput{
		UserID:       req.Subject.UserID,
		ResourceType: req.ResourceType,
		Action:       strings.ToLower(req.Action),
		Context:      attrs,
	})
	if err != nil {
		return nil, err
	}

	details := map[string]any{"policies_evaluated": eval.PoliciesEvaluated}
	if eval.MatchedPolicyID != nil {
		details["matched_policy_id"] = eval.MatchedPolicyID.String()
	}
	if len(eval.Failures) > 0 {
		failures := make([]map[string]any, 0, len(eval.Failures))
		for _, f := range eval.Failures {
			failures = append(failures, map[string]any{
				"policy":    f.Policy,
				"attribute": f.Attribute,
				"operator":  string(f.Operator),
				"expected":  f.Expected,
				"actual":    f.Actual,
			})
		}
		details["failures"] = failures
	}
	return &accessDomain.Verdict{Allowed: eval.Allowed, Reason: eval.Reason, Details: details}, nil
}

// attributes builds the request snapshot. Caller-supplied attributes always land under
// request.* so they cannot shadow subject, resource or environment facts.
func (e *abacEvaluator) attributes(ctx context.Context, req *accessDomain.Request) (abacDomain.Attributes, error) {
	subject, err := e.labels.Subject(ctx, req.Subject.UserID)
	if err != nil {
		return nil, err
	}

	p := req.Subject
	attrs := abacDomain.Attributes{
		"subject.id":              abacDomain.StringValue(p.UserID.String()),
		"subject.trust_level":     abacDomain.StringValue(string(p.TrustLevel)),
		"subject.is_admin":        abacDomain.BoolValue(p.IsAdmin),
		"subject.mfa_verified":    abacDomain.BoolValue(p.MFAVerified),
		"subject.clearance_level": abacDomain.StringValue(subject.Level.String()),
		"subject.compartments":    abacDomain.SetValue(subject.Compartments...),
		"resource.type":           abacDomain.StringValue(req.ResourceType),
		"resource.id":             abacDomain.StringValue(req.ResourceID),
		"request.action":          abacDomain.StringValue(strings.ToLower(req.Action)),
		"request.tls":             abacDomain.BoolValue(req.Context.TLS),
	}
	if p.Email != "" {
		attrs["subject.email"] = abacDomain.StringValue(p.Email)
	}
	for name, value := range map[string]string{
		"request.client_ip":  req.Context.ClientIP,
		"request.user_agent": req.Context.UserAgent,
		"request.device_id":  req.Context.DeviceID,
	} {
		if value != "" {
			attrs[name] = abacDomain.StringValue(value)
		}
	}

	resource, err := e.resources.Get(ctx, req.ResourceType, req.ResourceID)
	if err != nil {
		return nil, err
	}
	attrs["resource.classification"] = abacDomain.StringValue(resource.Classification.String())
	attrs["resource.compartments"] = abacDomain.SetValue(resource.Compartments...)
	attrs["resource.owner_id"] = abacDomain.StringValue(resource.OwnerID.String())

	now := e.clock.Now().UTC()
	attrs["env.hour"] = abacDomain.NumberValue(float64(now.Hour()))
	attrs["env.weekday"] = abacDomain.StringValue(strings.ToUpper(now.Weekday().String()[:3]))
	attrs["env.date"] = abacDomain.StringValue(now.Format("2006-01-02"))

	for name, value := range req.Context.Attributes {
		if !strings.HasPrefix(name, "request.") {
			name = "request." + name
		}
		if _, taken := attrs[name]; !taken {
			attrs[name] = value
		}
	}
	return attrs, nil
}

type rubacEvaluator struct {
	rules     ContextEvaluator
	resources ResourceReader
}

// NewRuBACEvaluator applies the context rules of the resource type using the resource
// classification as its sensitivity.
func NewRuBACEvaluator(rules ContextEvaluator, resources ResourceReader) Evaluator {
	return &rubacEvaluator{rules: rules, resources: resources}
}

func (e *rubacEvaluator) Model() accessDomain.Model { return accessDomain.ModelRuBAC }

func (e *rubacEvaluator) Evaluate(ctx context.Context, req *accessDomain.Request) (*accessDomain.Verdict, error) {
	resource, err := e.resources.Get(ctx, req.ResourceType, req.ResourceID)
	if err != nil {
		if apperrors.Is(err, resourceDomain.ErrResourceNotFound) {
			return accessDomain.Deny(reasonUnregistered), nil
		}
		return nil, err
	}

	result, err := e.rules.Evaluate(ctx, &rubacDomain.EvaluateInput{
		UserID:       req.Subject.UserID,
		ResourceType: req.ResourceType,
		Sensitivity:  resource.Classification.String(),
		ClientIP:     req.Context.ClientIP,
		TLS:          req.Context.TLS,
		DeviceID:     req.Context.DeviceID,
	})
	if err != nil {
		return nil, err
	}

	details := map[string]any{"rules_checked": result.RulesChecked}
	if result.RuleID != nil {
		details["rule_id"] = result.RuleID.String()
		details["kind"] = string(result.Kind)
	}
	return &accessDomain.Verdict{Allowed: result.Allowed, Reason: result.Reason, Details: details}, nil
}
