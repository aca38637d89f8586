// Package dto provides data transfer objects for the role endpoints.
package dto

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	rbacDomain "github.com/allisson/sentinel/internal/rbac/domain"
	customValidation "github.com/allisson/sentinel/internal/validation"
)

var permissionRule = customValidation.ParsedBy(rbacDomain.ParsePermission)

// CreateRoleRequest contains the parameters for creating a role.
type CreateRoleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// Validate checks if the create role request is valid.
func (r *CreateRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.Description, validation.Length(0, 1000)),
		validation.Field(&r.Permissions, validation.Required, validation.Each(permissionRule)),
	)
}

// ToDomain converts the request.
func (r *CreateRoleRequest) ToDomain() *rbacDomain.CreateRoleInput {
	return &rbacDomain.CreateRoleInput{
		Name:        r.Name,
		Description: r.Description,
		Permissions: r.Permissions,
	}
}

// AssignRoleRequest grants a role directly.
type AssignRoleRequest struct {
	UserID      string     `json:"user_id"`
	RoleID      string     `json:"role_id"`
	IsTemporary bool       `json:"is_temporary"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Reason      string     `json:"reason"`
}

// Validate checks if the assignment is valid.
func (r *AssignRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, validation.Required, customValidation.UUID),
		validation.Field(&r.RoleID, validation.Required, customValidation.UUID),
		validation.Field(&r.ExpiresAt, validation.When(r.IsTemporary, validation.Required)),
		validation.Field(&r.Reason, validation.Length(0, 1000)),
	)
}

// ToDomain converts the request. Call Validate first.
func (r *AssignRoleRequest) ToDomain() *rbacDomain.AssignRoleInput {
	return &rbacDomain.AssignRoleInput{
		UserID:      uuid.MustParse(r.UserID),
		RoleID:      uuid.MustParse(r.RoleID),
		IsTemporary: r.IsTemporary,
		ExpiresAt:   r.ExpiresAt,
		Reason:      r.Reason,
	}
}

// RevokeRoleRequest revokes a user's active assignments of a role.
type RevokeRoleRequest struct {
	UserID string `json:"user_id"`
	RoleID string `json:"role_id"`
	Reason string `json:"reason"`
}

// Validate checks if the revocation is valid.
func (r *RevokeRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, validation.Required, customValidation.UUID),
		validation.Field(&r.RoleID, validation.Required, customValidation.UUID),
		validation.Field(&r.Reason, validation.Required, customValidation.NotBlank, validation.Length(1, 1000)),
	)
}

// ToDomain converts the request. Call Validate first.
func (r *RevokeRoleRequest) ToDomain() *rbacDomain.RevokeRoleInput {
	return &rbacDomain.RevokeRoleInput{
		UserID: uuid.MustParse(r.UserID),
		RoleID: uuid.MustParse(r.RoleID),
		Reason: r.Reason,
	}
}

// CreateRoleRequestRequest opens a role request. UserID defaults to the caller.
type CreateRoleRequestRequest struct {
	UserID             string     `json:"user_id"`
	RoleID             string     `json:"role_id"`
	Reason             string     `json:"reason"`
	Justification      string     `json:"justification"`
	IsTemporary        bool       `json:"is_temporary"`
	RequestedExpiresAt *time.Time `json:"requested_expires_at"`
}

// Validate checks if the role request is valid.
func (r *CreateRoleRequestRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, customValidation.UUID),
		validation.Field(&r.RoleID, validation.Required, customValidation.UUID),
		validation.Field(&r.Reason, validation.Required, customValidation.NotBlank, validation.Length(1, 1000)),
		validation.Field(&r.Justification, validation.Length(0, 4000)),
		validation.Field(&r.RequestedExpiresAt, validation.When(r.IsTemporary, validation.Required)),
	)
}

// ToDomain converts the request for caller. Call Validate first.
func (r *CreateRoleRequestRequest) ToDomain(caller uuid.UUID) *rbacDomain.RequestRoleInput {
	userID := caller
	if r.UserID != "" {
		userID = uuid.MustParse(r.UserID)
	}
	return &rbacDomain.RequestRoleInput{
		UserID:             userID,
		RoleID:             uuid.MustParse(r.RoleID),
		Reason:             r.Reason,
		Justification:      r.Justification,
		IsTemporary:        r.IsTemporary,
		RequestedExpiresAt: r.RequestedExpiresAt,
	}
}

// ApproveRoleRequestRequest optionally overrides the requested duration.
type ApproveRoleRequestRequest struct {
	IsTemporary *bool      `json:"is_temporary"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// Validate checks if the approval is valid.
func (r *ApproveRoleRequestRequest) Validate() error {
	temporary := r.IsTemporary != nil && *r.IsTemporary
	return validation.ValidateStruct(r,
		validation.Field(&r.ExpiresAt, validation.When(temporary, validation.Required)),
	)
}

// RejectRoleRequestRequest records why a request was rejected.
type RejectRoleRequestRequest struct {
	Reason string `json:"reason"`
}

// Validate checks if the rejection is valid.
func (r *RejectRoleRequestRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Reason, validation.Required, customValidation.NotBlank, validation.Length(1, 1000)),
	)
}

// RoleResponse represents a role in API responses.
type RoleResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

// MapRoleToResponse converts a role to an API response.
func MapRoleToResponse(role *rbacDomain.Role) RoleResponse {
	return RoleResponse{
		ID:          role.ID.String(),
		Name:        role.Name,
		Description: role.Description,
		Permissions: append([]string{}, role.Permissions.Strings()...),
		CreatedAt:   role.CreatedAt,
	}
}

// ListRolesResponse wraps a list of roles.
type ListRolesResponse struct {
	Data []RoleResponse `json:"data"`
}

// MapRolesToResponse converts a list of roles.
func MapRolesToResponse(roles []*rbacDomain.Role) ListRolesResponse {
	data := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		data = append(data, MapRoleToResponse(role))
	}
	return ListRolesResponse{Data: data}
}

// AssignmentResponse represents a role assignment.
type AssignmentResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	RoleID      string     `json:"role_id"`
	RoleName    string     `json:"role_name,omitempty"`
	IsTemporary bool       `json:"is_temporary"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	GrantedBy   string     `json:"granted_by"`
	RequestID   *string    `json:"request_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// MapAssignmentToResponse converts an assignment to an API response.
func MapAssignmentToResponse(a *rbacDomain.RoleAssignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:          a.ID.String(),
		UserID:      a.UserID.String(),
		RoleID:      a.RoleID.String(),
		IsTemporary: a.IsTemporary,
		ExpiresAt:   a.ExpiresAt,
		GrantedBy:   a.GrantedBy.String(),
		CreatedAt:   a.CreatedAt,
	}
	if a.RequestID != nil {
		id := a.RequestID.String()
		resp.RequestID = &id
	}
	return resp
}

// ListAssignmentsResponse wraps a user's active assignments.
type ListAssignmentsResponse struct {
	Data []AssignmentResponse `json:"data"`
}

// MapActiveAssignmentsToResponse converts active assignments, naming each role.
func MapActiveAssignmentsToResponse(items []*rbacDomain.ActiveAssignment) ListAssignmentsResponse {
	data := make([]AssignmentResponse, 0, len(items))
	for _, item := range items {
		resp := MapAssignmentToResponse(&item.Assignment)
		resp.RoleName = item.Role.Name
		data = append(data, resp)
	}
	return ListAssignmentsResponse{Data: data}
}

// RoleRequestResponse represents a role request.
type RoleRequestResponse struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	RoleID             string     `json:"role_id"`
	RequestedBy        string     `json:"requested_by"`
	Reason             string     `json:"reason"`
	Justification      string     `json:"justification,omitempty"`
	IsTemporary        bool       `json:"is_temporary"`
	RequestedExpiresAt *time.Time `json:"requested_expires_at,omitempty"`
	Status             string     `json:"status"`
	DecidedBy          *string    `json:"decided_by,omitempty"`
	DecidedAt          *time.Time `json:"decided_at,omitempty"`
	DecisionReason     string     `json:"decision_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// MapRoleRequestToResponse converts a role request to an API response.
func MapRoleRequestToResponse(r *rbacDomain.RoleRequest) RoleRequestResponse {
	resp := RoleRequestResponse{
		ID:                 r.ID.String(),
		UserID:             r.UserID.String(),
		RoleID:             r.RoleID.String(),
		RequestedBy:        r.RequestedBy.String(),
		Reason:             r.Reason,
		Justification:      r.Justification,
		IsTemporary:        r.IsTemporary,
		RequestedExpiresAt: r.RequestedExpiresAt,
		Status:             string(r.Status),
		DecidedAt:          r.DecidedAt,
		DecisionReason:     r.DecisionReason,
		CreatedAt:          r.CreatedAt,
	}
	if r.DecidedBy != nil {
		id := r.DecidedBy.String()
		resp.DecidedBy = &id
	}
	return resp
}

// ListRoleRequestsResponse wraps a list of role requests.
type ListRoleRequestsResponse struct {
	Data []RoleRequestResponse `json:"data"`
}

// MapRoleRequestsToResponse converts a list of role requests.
func MapRoleRequestsToResponse(items []*rbacDomain.RoleRequest) ListRoleRequestsResponse {
	data := make([]RoleRequestResponse, 0, len(items))
	for _, item := range items {
		data = append(data, MapRoleRequestToResponse(item))
	}
	return ListRoleRequestsResponse{Data: data}
}

// EffectivePermissionsResponse is the union of a user's active grants.
type EffectivePermissionsResponse struct {
	UserID      string   `json:"user_id"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// MapEffectivePermissionsToResponse converts effective permissions to an API response.
func MapEffectivePermissionsToResponse(p *rbacDomain.EffectivePermissions) EffectivePermissionsResponse {
	return EffectivePermissionsResponse{
		UserID:      p.UserID.String(),
		Roles:       append([]string{}, p.Roles...),
		Permissions: append([]string{}, p.Permissions.Strings()...),
	}
}
