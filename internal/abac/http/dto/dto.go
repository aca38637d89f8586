// Package dto provides data transfer objects for the attribute-based policy endpoints.
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	abacDomain "github.com/allisson/sentinel/internal/abac/domain"
	customValidation "github.com/allisson/sentinel/internal/validation"
)

var presentValue = validation.By(func(value any) error {
	if v, ok := value.(abacDomain.Value); ok && v.IsAbsent() {
		return validation.NewError("validation_value_required", "is required")
	}
	return nil
})

// RuleRequest is one attribute comparison of a policy.
type RuleRequest struct {
	Attribute string           `json:"attribute"`
	Operator  string           `json:"operator"`
	Value     abacDomain.Value `json:"value"`
}

// Validate checks the rule is well formed.
func (r RuleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Attribute, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.Operator, validation.Required, customValidation.ParsedBy(abacDomain.ParseOperator)),
		validation.Field(&r.Value, presentValue),
	)
}

// PolicyRequest creates or replaces a policy. Enabled defaults to true.
type PolicyRequest struct {
	Name         string        `json:"name"`
	ResourceType string        `json:"resource_type"`
	Action       string        `json:"action"`
	Effect       string        `json:"effect"`
	Rules        []RuleRequest `json:"rules"`
	Priority     int           `json:"priority"`
	Enabled      *bool         `json:"enabled"`
}

// Validate checks if the policy request is valid.
func (r *PolicyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.ResourceType, validation.Required, customValidation.NotBlank, validation.Length(1, 100)),
		validation.Field(&r.Action, validation.Required, customValidation.NotBlank, validation.Length(1, 100)),
		validation.Field(&r.Effect, validation.Required, customValidation.ParsedBy(abacDomain.ParseEffect)),
		validation.Field(&r.Rules),
	)
}

// ToDomain converts the request with normalized effect and operators.
func (r *PolicyRequest) ToDomain() *abacDomain.PolicyInput {
	effect, _ := abacDomain.ParseEffect(r.Effect)
	rules := make(abacDomain.Rules, 0, len(r.Rules))
	for _, rule := range r.Rules {
		op, _ := abacDomain.ParseOperator(rule.Operator)
		rules = append(rules, abacDomain.Rule{
			Attribute: strings.TrimSpace(rule.Attribute),
			Operator:  op,
			Value:     rule.Value,
		})
	}
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	return &abacDomain.PolicyInput{
		Name:         r.Name,
		ResourceType: r.ResourceType,
		Action:       r.Action,
		Effect:       effect,
		Rules:        rules,
		Priority:     r.Priority,
		Enabled:      enabled,
	}
}

// SetAttributeRequest stores a user attribute.
type SetAttributeRequest struct {
	Value     abacDomain.Value `json:"value"`
	Source    string           `json:"source"`
	ExpiresAt *time.Time       `json:"expires_at"`
}

// Validate checks if the attribute request is valid.
func (r *SetAttributeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Value, presentValue),
		validation.Field(&r.Source, validation.Length(0, 100)),
	)
}

// ToDomain converts the request for the addressed user and attribute name.
func (r *SetAttributeRequest) ToDomain(userID uuid.UUID, name string) *abacDomain.SetAttributeInput {
	return &abacDomain.SetAttributeInput{
		UserID:    userID,
		Name:      name,
		Value:     r.Value,
		Source:    r.Source,
		ExpiresAt: r.ExpiresAt,
	}
}

// PolicyResponse represents a policy in API responses.
type PolicyResponse struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	ResourceType string            `json:"resource_type"`
	Action       string            `json:"action"`
	Effect       string            `json:"effect"`
	Rules        []abacDomain.Rule `json:"rules"`
	Priority     int               `json:"priority"`
	Enabled      bool              `json:"enabled"`
	CreatedBy    string            `json:"created_by"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// MapPolicyToResponse converts a policy to an API response.
func MapPolicyToResponse(p *abacDomain.Policy) PolicyResponse {
	return PolicyResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		ResourceType: p.ResourceType,
		Action:       p.Action,
		Effect:       string(p.Effect),
		Rules:        append([]abacDomain.Rule{}, p.Rules...),
		Priority:     p.Priority,
		Enabled:      p.Enabled,
		CreatedBy:    p.CreatedBy.String(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ListPoliciesResponse wraps a list of policies.
type ListPoliciesResponse struct {
	Data []PolicyResponse `json:"data"`
}

// MapPoliciesToResponse converts a list of policies.
func MapPoliciesToResponse(items []*abacDomain.Policy) ListPoliciesResponse {
	data := make([]PolicyResponse, 0, len(items))
	for _, item := range items {
		data = append(data, MapPolicyToResponse(item))
	}
	return ListPoliciesResponse{Data: data}
}

// AttributeResponse represents a user attribute.
type AttributeResponse struct {
	Name      string           `json:"name"`
	Value     abacDomain.Value `json:"value"`
	Source    string           `json:"source,omitempty"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// MapAttributeToResponse converts an attribute to an API response.
func MapAttributeToResponse(a *abacDomain.UserAttribute) AttributeResponse {
	return AttributeResponse{
		Name:      a.Name,
		Value:     a.Value,
		Source:    a.Source,
		ExpiresAt: a.ExpiresAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// ListAttributesResponse wraps a user's attributes.
type ListAttributesResponse struct {
	UserID string              `json:"user_id"`
	Data   []AttributeResponse `json:"data"`
}

// MapAttributesToResponse converts a user's attributes.
func MapAttributesToResponse(userID uuid.UUID, items []*abacDomain.UserAttribute) ListAttributesResponse {
	data := make([]AttributeResponse, 0, len(items))
	for _, item := range items {
		data = append(data, MapAttributeToResponse(item))
	}
	return ListAttributesResponse{UserID: userID.String(), Data: data}
}
