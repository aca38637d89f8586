package domain

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// RuleFailure reports one rule that did not match.
type RuleFailure struct {
	PolicyID  uuid.UUID `json:"policy_id"`
	Policy    string    `json:"policy"`
	Attribute string    `json:"attribute"`
	Operator  Operator  `json:"operator"`
	Expected  string    `json:"expected"`
	Actual    string    `json:"actual"`
}

// Evaluation is the outcome of evaluating the policies targeting a request.
type Evaluation struct {
	Allowed           bool
	Reason            string
	MatchedPolicyID   *uuid.UUID
	PoliciesEvaluated int
	Failures          []RuleFailure
}

// Evaluate walks the enabled policies from highest to lowest priority and the first policy
// whose rules all match decides:
//
//   - no enabled policy targets the request: allowed;
//   - the first matching policy is DENY: denied, and no lower-priority ALLOW can override it;
//   - the first matching policy is ALLOW: allowed;
//   - nothing matches: denied, with one failure per rule that did not match.
//
// At equal priority DENY policies are tried before ALLOW policies.
func Evaluate(policies []*Policy, attrs Attributes) Evaluation {
	enabled := make([]*Policy, 0, len(policies))
	for _, p := range policies {
		if p.Enabled {
			enabled = append(enabled, p)
		}
	}
	if len(enabled) == 0 {
		return Evaluation{Allowed: true, Reason: "no access policy applies"}
	}

	sort.SliceStable(enabled, func(i, j int) bool {
		if enabled[i].Priority != enabled[j].Priority {
			return enabled[i].Priority > enabled[j].Priority
		}
		return enabled[i].Effect == EffectDeny && enabled[j].Effect != EffectDeny
	})

	eval := Evaluation{PoliciesEvaluated: len(enabled), Failures: make([]RuleFailure, 0)}
	for _, p := range enabled {
		failures := matchPolicy(p, attrs)
		if len(failures) > 0 {
			eval.Failures = append(eval.Failures, failures...)
			continue
		}

		id := p.ID
		eval.MatchedPolicyID = &id
		eval.Failures = eval.Failures[:0]
		if p.Effect == EffectDeny {
			eval.Reason = fmt.Sprintf("denied by policy %q", p.Name)
			return eval
		}
		eval.Allowed = true
		eval.Reason = fmt.Sprintf("allowed by policy %q", p.Name)
		return eval
	}

	eval.Reason = "no access policy matched"
	return eval
}

func matchPolicy(p *Policy, attrs Attributes) []RuleFailure {
	var failures []RuleFailure
	for _, rule := range p.Rules {
		actual := attrs.Get(rule.Attribute)
		if rule.Operator.Match(actual, rule.Value) {
			continue
		}
		failures = append(failures, RuleFailure{
			PolicyID:  p.ID,
			Policy:    p.Name,
			Attribute: rule.Attribute,
			Operator:  rule.Operator,
			Expected:  rule.Value.Describe(),
			Actual:    actual.Describe(),
		})
	}
	return failures
}
