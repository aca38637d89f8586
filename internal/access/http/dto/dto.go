// Package dto provides data transfer objects for the access check endpoint.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	abacDomain "github.com/allisson/sentinel/internal/abac/domain"
	accessDomain "github.com/allisson/sentinel/internal/access/domain"
	customValidation "github.com/allisson/sentinel/internal/validation"
)

// CheckAccessRequest asks whether the caller may perform an action on a resource.
type CheckAccessRequest struct {
	ResourceType string                `json:"resource_type"`
	ResourceID   string                `json:"resource_id"`
	Action       string                `json:"action"`
	Checks       []string              `json:"checks"`
	DeviceID     string                `json:"device_id"`
	Attributes   abacDomain.Attributes `json:"attributes"`
}

// Validate checks if the check request is valid.
func (r *CheckAccessRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ResourceType, validation.Required, customValidation.NotBlank, validation.Length(1, 100)),
		validation.Field(&r.ResourceID, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.Action, validation.Required, customValidation.NotBlank, validation.Length(1, 100)),
		validation.Field(&r.Checks, validation.Each(validation.By(func(value any) error {
			s, _ := value.(string)
			_, err := accessDomain.ParseModel(s)
			return err
		}))),
		validation.Field(&r.DeviceID, validation.Length(0, 255)),
	)
}

// Models converts the requested checks. Call after Validate.
func (r *CheckAccessRequest) Models() []accessDomain.Model {
	models := make([]accessDomain.Model, 0, len(r.Checks))
	for _, s := range r.Checks {
		m, _ := accessDomain.ParseModel(s)
		models = append(models, m)
	}
	return models
}

// DecisionResponse is the combined access decision.
type DecisionResponse struct {
	Allowed   bool           `json:"allowed"`
	DeniedBy  string         `json:"denied_by,omitempty"`
	Reason    string         `json:"reason"`
	Bypassed  bool           `json:"bypassed"`
	Evaluated []string       `json:"evaluated"`
	Details   map[string]any `json:"details,omitempty"`
	DecidedAt time.Time      `json:"decided_at"`
}

// MapDecisionToResponse converts a domain decision to an API response.
func MapDecisionToResponse(d *accessDomain.Decision) DecisionResponse {
	evaluated := make([]string, 0, len(d.Evaluated))
	for _, m := range d.Evaluated {
		evaluated = append(evaluated, string(m))
	}
	return DecisionResponse{
		Allowed:   d.Allowed,
		DeniedBy:  string(d.DeniedBy),
		Reason:    d.Reason,
		Bypassed:  d.Bypassed,
		Evaluated: evaluated,
		Details:   d.Details,
		DecidedAt: d.DecidedAt,
	}
}
