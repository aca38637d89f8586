// Package domain defines attribute based access policies, the tagged attribute values they
// compare and the priority-ordered evaluation over them.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/sentinel/internal/errors"
)

// Effect is what a policy yields when all its rules match.
type Effect string

const (
	EffectAllow Effect = "ALLOW"
	EffectDeny  Effect = "DENY"
)

// ParseEffect accepts ALLOW or DENY in any case.
func ParseEffect(s string) (Effect, error) {
	switch e := Effect(strings.ToUpper(strings.TrimSpace(s))); e {
	case EffectAllow, EffectDeny:
		return e, nil
	default:
		return "", apperrors.Wrapf(ErrInvalidEffect, "%q", s)
	}
}

// Operator compares an actual attribute value with a rule's expected value.
type Operator string

const (
	OpEquals      Operator = "EQUALS"
	OpContains    Operator = "CONTAINS"
	OpGreaterThan Operator = "GREATER_THAN"
	OpLessThan    Operator = "LESS_THAN"
	OpIn          Operator = "IN"
)

// ParseOperator accepts the operator names in any case.
func ParseOperator(s string) (Operator, error) {
	switch op := Operator(strings.ToUpper(strings.TrimSpace(s))); op {
	case OpEquals, OpContains, OpGreaterThan, OpLessThan, OpIn:
		return op, nil
	default:
		return "", apperrors.Wrapf(ErrInvalidOperator, "%q", s)
	}
}

// Match applies the operator. An absent actual value or a value that cannot be coerced
// never matches.
//
//   - EQUALS compares both sides as strings.
//   - CONTAINS is a substring test, or membership when actual is a set.
//   - GREATER_THAN and LESS_THAN compare both sides as numbers.
//   - IN splits expected on commas and tests membership of actual (every member, for a set).
func (op Operator) Match(actual, expected Value) bool {
	if actual.IsAbsent() || expected.IsAbsent() {
		return false
	}
	switch op {
	case OpEquals:
		return actual.String() == expected.String()
	case OpContains:
		if actual.Kind() == KindSet {
			return slices.Contains(actual.set, expected.String())
		}
		return strings.Contains(actual.String(), expected.String())
	case OpGreaterThan, OpLessThan:
		a, ok := actual.Number()
		if !ok {
			return false
		}
		e, ok := expected.Number()
		if !ok {
			return false
		}
		if op == OpGreaterThan {
			return a > e
		}
		return a < e
	case OpIn:
		members := expected.Items()
		if members == nil {
			members = splitList(expected.String())
		}
		if actual.Kind() == KindSet {
			if len(actual.set) == 0 {
				return false
			}
			for _, item := range actual.set {
				if !slices.Contains(members, item) {
					return false
				}
			}
			return true
		}
		return slices.Contains(members, actual.String())
	default:
		return false
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Rule is one attribute comparison of a policy.
type Rule struct {
	Attribute string   `json:"attribute"`
	Operator  Operator `json:"operator"`
	Value     Value    `json:"value"`
}

// Validate checks the rule is well formed.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.Attribute) == "" || r.Value.IsAbsent() {
		return ErrInvalidRule
	}
	_, err := ParseOperator(string(r.Operator))
	return err
}

// Rules is the ordered, JSON encoded rule list of a policy.
type Rules []Rule

// Value implements driver.Valuer.
func (r Rules) Value() (driver.Value, error) {
	if r == nil {
		r = Rules{}
	}
	data, err := json.Marshal([]Rule(r))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (r *Rules) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*r = Rules{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Rules", src)
	}
	return json.Unmarshal(data, (*[]Rule)(r))
}

// Policy targets one (resource type, action) pair. All rules must match for the effect to apply.
type Policy struct {
	ID           uuid.UUID
	Name         string
	ResourceType string
	Action       string
	Effect       Effect
	Rules        Rules
	Priority     int
	Enabled      bool
	CreatedBy    uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PolicyInput creates or replaces a policy.
type PolicyInput struct {
	Name         string
	ResourceType string
	Action       string
	Effect       Effect
	Rules        Rules
	Priority     int
	Enabled      bool
}

// Validate checks the effect and every rule.
func (in *PolicyInput) Validate() error {
	if strings.TrimSpace(in.ResourceType) == "" || strings.TrimSpace(in.Action) == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "policy resource type and action are required")
	}
	if _, err := ParseEffect(string(in.Effect)); err != nil {
		return err
	}
	for i, rule := range in.Rules {
		if err := rule.Validate(); err != nil {
			return apperrors.Wrapf(err, "rule %d", i)
		}
	}
	return nil
}
