// Package dto provides data transfer objects for the discretionary access endpoints.
package dto

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	dacDomain "github.com/allisson/sentinel/internal/dac/domain"
	customValidation "github.com/allisson/sentinel/internal/validation"
)

var rightRule = customValidation.ParsedBy(func(name string) (dacDomain.Permission, error) {
	return dacDomain.ParsePermissions([]string{name})
})

func parseRights(names []string) dacDomain.Permission {
	perm, _ := dacDomain.ParsePermissions(names)
	return perm
}

// GrantPermissionRequest sets a user's rights on a resource.
type GrantPermissionRequest struct {
	Permissions []string   `json:"permissions"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Reason      string     `json:"reason"`
}

// Validate checks if the grant is valid.
func (r *GrantPermissionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Permissions, validation.Required, validation.Each(rightRule)),
		validation.Field(&r.Reason, validation.Length(0, 1000)),
	)
}

// ToDomain converts the request for the addressed resource and user.
func (r *GrantPermissionRequest) ToDomain(
	resourceType, resourceID string,
	userID uuid.UUID,
) *dacDomain.GrantPermissionInput {
	return &dacDomain.GrantPermissionInput{
		ResourceType: resourceType,
		ResourceID:   resourceID,
		UserID:       userID,
		Permissions:  parseRights(r.Permissions),
		ExpiresAt:    r.ExpiresAt,
		Reason:       r.Reason,
	}
}

// PermissionResponse represents a grant in API responses.
type PermissionResponse struct {
	ID           string     `json:"id"`
	ResourceType string     `json:"resource_type"`
	ResourceID   string     `json:"resource_id"`
	UserID       string     `json:"user_id"`
	Permissions  []string   `json:"permissions"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	GrantedBy    string     `json:"granted_by"`
	Reason       string     `json:"reason,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// MapPermissionToResponse converts a grant to an API response.
func MapPermissionToResponse(g *dacDomain.ResourcePermission) PermissionResponse {
	return PermissionResponse{
		ID:           g.ID.String(),
		ResourceType: g.ResourceType,
		ResourceID:   g.ResourceID,
		UserID:       g.UserID.String(),
		Permissions:  g.Permissions.Names(),
		ExpiresAt:    g.ExpiresAt,
		GrantedBy:    g.GrantedBy.String(),
		Reason:       g.Reason,
		UpdatedAt:    g.UpdatedAt,
	}
}

// ListPermissionsResponse wraps the grants on a resource.
type ListPermissionsResponse struct {
	Data []PermissionResponse `json:"data"`
}

// MapPermissionsToResponse converts a list of grants.
func MapPermissionsToResponse(items []*dacDomain.ResourcePermission) ListPermissionsResponse {
	data := make([]PermissionResponse, 0, len(items))
	for _, item := range items {
		data = append(data, MapPermissionToResponse(item))
	}
	return ListPermissionsResponse{Data: data}
}
