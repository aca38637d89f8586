// Package dto provides data transfer objects for the resource registry endpoints.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	macDomain "github.com/allisson/sentinel/internal/mac/domain"
	resourceDomain "github.com/allisson/sentinel/internal/resource/domain"
	customValidation "github.com/allisson/sentinel/internal/validation"
)

var levelRule = customValidation.ParsedBy(macDomain.ParseSecurityLevel)

func parseLevel(s string) macDomain.SecurityLevel {
	level, _ := macDomain.ParseSecurityLevel(s)
	return level
}

// RegisterResourceRequest registers a resource owned by the caller.
type RegisterResourceRequest struct {
	ResourceType   string   `json:"resource_type"`
	ResourceID     string   `json:"resource_id"`
	Classification string   `json:"classification"`
	Compartments   []string `json:"compartments"`
}

// Validate checks if the register request is valid.
func (r *RegisterResourceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ResourceType, validation.Required, customValidation.NotBlank, validation.Length(1, 100)),
		validation.Field(&r.ResourceID, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.Classification, levelRule),
		validation.Field(&r.Compartments, validation.Each(customValidation.NotBlank, validation.Length(1, 64))),
	)
}

// ToDomain converts the request. An omitted classification is UNCLASSIFIED.
func (r *RegisterResourceRequest) ToDomain() *resourceDomain.RegisterInput {
	return &resourceDomain.RegisterInput{
		ResourceType:   r.ResourceType,
		ResourceID:     r.ResourceID,
		Classification: parseLevel(r.Classification),
		Compartments:   macDomain.NewCompartments(r.Compartments...),
	}
}

// ReclassifyResourceRequest changes the MAC label of a resource.
type ReclassifyResourceRequest struct {
	Classification string   `json:"classification"`
	Compartments   []string `json:"compartments"`
}

// Validate checks if the reclassification is valid.
func (r *ReclassifyResourceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Classification, validation.Required, levelRule),
		validation.Field(&r.Compartments, validation.Each(customValidation.NotBlank, validation.Length(1, 64))),
	)
}

// ToDomain converts the request for the addressed resource.
func (r *ReclassifyResourceRequest) ToDomain(resourceType, resourceID string) *resourceDomain.ReclassifyInput {
	return &resourceDomain.ReclassifyInput{
		ResourceType:   resourceType,
		ResourceID:     resourceID,
		Classification: parseLevel(r.Classification),
		Compartments:   macDomain.NewCompartments(r.Compartments...),
	}
}

// ResourceResponse represents a registered resource in API responses.
type ResourceResponse struct {
	ID             string    `json:"id"`
	ResourceType   string    `json:"resource_type"`
	ResourceID     string    `json:"resource_id"`
	OwnerID        string    `json:"owner_id"`
	Classification string    `json:"classification"`
	Compartments   []string  `json:"compartments"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MapResourceToResponse converts a resource to an API response.
func MapResourceToResponse(r *resourceDomain.Resource) ResourceResponse {
	return ResourceResponse{
		ID:             r.ID.String(),
		ResourceType:   r.ResourceType,
		ResourceID:     r.ResourceID,
		OwnerID:        r.OwnerID.String(),
		Classification: r.Classification.String(),
		Compartments:   append([]string{}, r.Compartments...),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// ListResourcesResponse wraps a list of resources.
type ListResourcesResponse struct {
	Data []ResourceResponse `json:"data"`
}

// MapResourcesToResponse converts a list of resources.
func MapResourcesToResponse(items []*resourceDomain.Resource) ListResourcesResponse {
	data := make([]ResourceResponse, 0, len(items))
	for _, item := range items {
		data = append(data, MapResourceToResponse(item))
	}
	return ListResourcesResponse{Data: data}
}
