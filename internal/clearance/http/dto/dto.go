// Package dto provides data transfer objects for the clearance endpoints.
package dto

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	clearanceDomain "github.com/allisson/sentinel/internal/clearance/domain"
	macDomain "github.com/allisson/sentinel/internal/mac/domain"
	customValidation "github.com/allisson/sentinel/internal/validation"
)

var levelRule = customValidation.ParsedBy(macDomain.ParseSecurityLevel)

func parseLevel(s string) macDomain.SecurityLevel {
	level, _ := macDomain.ParseSecurityLevel(s)
	return level
}

// AssignClearanceRequest sets a user's clearance.
type AssignClearanceRequest struct {
	Level          string     `json:"level"`
	Compartments   []string   `json:"compartments"`
	TrustedSubject bool       `json:"trusted_subject"`
	Reason         string     `json:"reason"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

// Validate checks if the assign request is valid.
func (r *AssignClearanceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Level, validation.Required, levelRule),
		validation.Field(&r.Compartments, validation.Each(customValidation.NotBlank, validation.Length(1, 64))),
		validation.Field(&r.Reason, validation.Required, customValidation.NotBlank, validation.Length(1, 1000)),
	)
}

// ToDomain converts the request for userID.
func (r *AssignClearanceRequest) ToDomain(userID uuid.UUID) *clearanceDomain.AssignInput {
	return &clearanceDomain.AssignInput{
		UserID:         userID,
		Level:          parseLevel(r.Level),
		Compartments:   macDomain.NewCompartments(r.Compartments...),
		TrustedSubject: r.TrustedSubject,
		Reason:         r.Reason,
		ExpiresAt:      r.ExpiresAt,
	}
}

// RequestEscalationRequest asks for a higher clearance for the caller.
type RequestEscalationRequest struct {
	TargetLevel        string   `json:"target_level"`
	TargetCompartments []string `json:"target_compartments"`
	Reason             string   `json:"reason"`
}

// Validate checks if the escalation request is valid.
func (r *RequestEscalationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TargetLevel, validation.Required, levelRule),
		validation.Field(&r.TargetCompartments, validation.Each(customValidation.NotBlank, validation.Length(1, 64))),
		validation.Field(&r.Reason, validation.Required, customValidation.NotBlank, validation.Length(1, 1000)),
	)
}

// ToDomain converts the request.
func (r *RequestEscalationRequest) ToDomain() *clearanceDomain.EscalationInput {
	return &clearanceDomain.EscalationInput{
		TargetLevel:        parseLevel(r.TargetLevel),
		TargetCompartments: macDomain.NewCompartments(r.TargetCompartments...),
		Reason:             r.Reason,
	}
}

// DecideEscalationRequest approves or rejects an escalation.
type DecideEscalationRequest struct {
	Approved *bool  `json:"approved"`
	Notes    string `json:"notes"`
}

// Validate checks if the decision is valid.
func (r *DecideEscalationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Approved, validation.NotNil),
		validation.Field(&r.Notes, validation.Length(0, 1000)),
	)
}

// ReviewClearanceRequest records a periodic review. A rejected review may downgrade the clearance.
type ReviewClearanceRequest struct {
	Approved        *bool    `json:"approved"`
	NewLevel        string   `json:"new_level"`
	NewCompartments []string `json:"new_compartments"`
	Notes           string   `json:"notes"`
}

// Validate checks if the review is valid.
func (r *ReviewClearanceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Approved, validation.NotNil),
		validation.Field(&r.NewLevel, levelRule),
		validation.Field(&r.NewCompartments, validation.Each(customValidation.NotBlank, validation.Length(1, 64))),
		validation.Field(&r.Notes, validation.Length(0, 1000)),
	)
}

// ToDomain converts the review for userID.
func (r *ReviewClearanceRequest) ToDomain(userID uuid.UUID) *clearanceDomain.ReviewInput {
	input := &clearanceDomain.ReviewInput{
		UserID:   userID,
		Approved: *r.Approved,
		Notes:    r.Notes,
	}
	if r.NewLevel != "" {
		level := parseLevel(r.NewLevel)
		input.NewLevel = &level
	}
	if r.NewCompartments != nil {
		input.NewCompartments = macDomain.NewCompartments(r.NewCompartments...)
	}
	return input
}

// ClearanceResponse represents a clearance in API responses.
type ClearanceResponse struct {
	UserID         string     `json:"user_id"`
	Level          string     `json:"level"`
	Compartments   []string   `json:"compartments"`
	TrustedSubject bool       `json:"trusted_subject"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	ReviewDueAt    *time.Time `json:"review_due_at,omitempty"`
	AssignedBy     string     `json:"assigned_by"`
	Reason         string     `json:"reason"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// MapClearanceToResponse converts a clearance to an API response.
func MapClearanceToResponse(c *macDomain.Clearance) ClearanceResponse {
	compartments := []string(c.Compartments)
	if compartments == nil {
		compartments = []string{}
	}
	return ClearanceResponse{
		UserID:         c.UserID.String(),
		Level:          c.Level.String(),
		Compartments:   compartments,
		TrustedSubject: c.TrustedSubject,
		ExpiresAt:      c.ExpiresAt,
		ReviewDueAt:    c.ReviewDueAt,
		AssignedBy:     c.AssignedBy.String(),
		Reason:         c.Reason,
		UpdatedAt:      c.UpdatedAt,
	}
}

// ListClearancesResponse wraps a list of clearances.
type ListClearancesResponse struct {
	Data []ClearanceResponse `json:"data"`
}

// MapClearancesToResponse converts a list of clearances.
func MapClearancesToResponse(items []*macDomain.Clearance) ListClearancesResponse {
	data := make([]ClearanceResponse, 0, len(items))
	for _, c := range items {
		data = append(data, MapClearanceToResponse(c))
	}
	return ListClearancesResponse{Data: data}
}

// EscalationResponse represents an escalation request in API responses.
type EscalationResponse struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	TargetLevel        string     `json:"target_level"`
	TargetCompartments []string   `json:"target_compartments"`
	Reason             string     `json:"reason"`
	Status             string     `json:"status"`
	DecidedBy          *string    `json:"decided_by,omitempty"`
	DecidedAt          *time.Time `json:"decided_at,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// MapEscalationToResponse converts an escalation to an API response.
func MapEscalationToResponse(e *clearanceDomain.Escalation) EscalationResponse {
	resp := EscalationResponse{
		ID:                 e.ID.String(),
		UserID:             e.UserID.String(),
		TargetLevel:        e.TargetLevel.String(),
		TargetCompartments: append([]string{}, e.TargetCompartments...),
		Reason:             e.Reason,
		Status:             string(e.Status),
		DecidedAt:          e.DecidedAt,
		Notes:              e.Notes,
		CreatedAt:          e.CreatedAt,
	}
	if e.DecidedBy != nil {
		s := e.DecidedBy.String()
		resp.DecidedBy = &s
	}
	return resp
}

// ListEscalationsResponse wraps a list of escalations.
type ListEscalationsResponse struct {
	Data []EscalationResponse `json:"data"`
}

// MapEscalationsToResponse converts a list of escalations.
func MapEscalationsToResponse(items []*clearanceDomain.Escalation) ListEscalationsResponse {
	data := make([]EscalationResponse, 0, len(items))
	for _, e := range items {
		data = append(data, MapEscalationToResponse(e))
	}
	return ListEscalationsResponse{Data: data}
}

// ReviewResponse represents a recorded review.
type ReviewResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	ReviewerID    string    `json:"reviewer_id"`
	Approved      bool      `json:"approved"`
	PreviousLevel string    `json:"previous_level"`
	NewLevel      *string   `json:"new_level,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// MapReviewToResponse converts a review to an API response.
func MapReviewToResponse(r *clearanceDomain.Review) ReviewResponse {
	resp := ReviewResponse{
		ID:            r.ID.String(),
		UserID:        r.UserID.String(),
		ReviewerID:    r.ReviewerID.String(),
		Approved:      r.Approved,
		PreviousLevel: r.PreviousLevel.String(),
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
	}
	if r.NewLevel != nil {
		s := r.NewLevel.String()
		resp.NewLevel = &s
	}
	return resp
}
