package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	dacDomain "github.com/allisson/sentinel/internal/dac/domain"
	customValidation "github.com/allisson/sentinel/internal/validation"
)

// linkPasswordRule is the minimum strength of an optional link password.
var linkPasswordRule = customValidation.PasswordStrength{MinLength: 8, RequireNumber: true}

// positiveWhenSet rejects an explicit max_uses below one. validation.Min skips zero
// values, so an explicit 0 would otherwise pass.
func positiveWhenSet(value any) error {
	maxUses, ok := value.(*int)
	if !ok || maxUses == nil {
		return nil
	}
	if *maxUses < 1 {
		return validation.NewError("validation_min_greater_equal_than_required", "must be no less than 1")
	}
	return nil
}

// CreateSharingLinkRequest describes a new sharing link.
type CreateSharingLinkRequest struct {
	Permissions    []string   `json:"permissions"`
	ExpiresAt      *time.Time `json:"expires_at"`
	MaxUses        *int       `json:"max_uses"`
	Password       string     `json:"password"`
	RequireAuth    bool       `json:"require_auth"`
	AllowedEmails  []string   `json:"allowed_emails"`
	AllowedDomains []string   `json:"allowed_domains"`
}

// Validate checks if the link request is valid.
func (r *CreateSharingLinkRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Permissions, validation.Required, validation.Each(rightRule)),
		validation.Field(&r.MaxUses, validation.By(positiveWhenSet)),
		validation.Field(&r.Password,
			validation.Length(0, 128),
			validation.When(r.Password != "", linkPasswordRule),
		),
		validation.Field(&r.AllowedEmails, validation.Each(customValidation.Email)),
		validation.Field(&r.AllowedDomains, validation.Each(customValidation.NotBlank, customValidation.NoWhitespace, validation.Length(1, 253))),
	)
}

// ToDomain converts the request for the addressed resource.
func (r *CreateSharingLinkRequest) ToDomain(resourceType, resourceID string) *dacDomain.CreateLinkInput {
	return &dacDomain.CreateLinkInput{
		ResourceType:   resourceType,
		ResourceID:     resourceID,
		Permissions:    parseRights(r.Permissions),
		ExpiresAt:      r.ExpiresAt,
		MaxUses:        r.MaxUses,
		Password:       r.Password,
		RequireAuth:    r.RequireAuth,
		AllowedEmails:  r.AllowedEmails,
		AllowedDomains: r.AllowedDomains,
	}
}

// RedeemSharingLinkRequest is the optional body presented with a link token.
type RedeemSharingLinkRequest struct {
	Password string `json:"password"`
}

// SharingLinkResponse represents a sharing link. Token is only set on creation.
type SharingLinkResponse struct {
	ID             string     `json:"id"`
	Token          string     `json:"token,omitempty"`
	ResourceType   string     `json:"resource_type"`
	ResourceID     string     `json:"resource_id"`
	CreatedBy      string     `json:"created_by"`
	Permissions    []string   `json:"permissions"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	MaxUses        *int       `json:"max_uses,omitempty"`
	UsesSoFar      int        `json:"uses_so_far"`
	PasswordSet    bool       `json:"password_protected"`
	RequireAuth    bool       `json:"require_auth"`
	AllowedEmails  []string   `json:"allowed_emails"`
	AllowedDomains []string   `json:"allowed_domains"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// MapSharingLinkToResponse converts a link to an API response. The token hash and password
// hash never leave the service.
func MapSharingLinkToResponse(l *dacDomain.SharingLink) SharingLinkResponse {
	return SharingLinkResponse{
		ID:             l.ID.String(),
		ResourceType:   l.ResourceType,
		ResourceID:     l.ResourceID,
		CreatedBy:      l.CreatedBy.String(),
		Permissions:    l.Permissions.Names(),
		ExpiresAt:      l.ExpiresAt,
		MaxUses:        l.MaxUses,
		UsesSoFar:      l.UsesSoFar,
		PasswordSet:    l.PasswordHash != nil,
		RequireAuth:    l.RequireAuth,
		AllowedEmails:  append([]string{}, l.AllowedEmails...),
		AllowedDomains: append([]string{}, l.AllowedDomains...),
		RevokedAt:      l.RevokedAt,
		CreatedAt:      l.CreatedAt,
	}
}

// MapCreateLinkOutputToResponse includes the plain token, returned exactly once.
func MapCreateLinkOutputToResponse(out *dacDomain.CreateLinkOutput) SharingLinkResponse {
	resp := MapSharingLinkToResponse(out.Link)
	resp.Token = out.Token
	return resp
}

// ListSharingLinksResponse wraps the links on a resource.
type ListSharingLinksResponse struct {
	Data []SharingLinkResponse `json:"data"`
}

// MapSharingLinksToResponse converts a list of links.
func MapSharingLinksToResponse(items []*dacDomain.SharingLink) ListSharingLinksResponse {
	data := make([]SharingLinkResponse, 0, len(items))
	for _, item := range items {
		data = append(data, MapSharingLinkToResponse(item))
	}
	return ListSharingLinksResponse{Data: data}
}

// ShareGrantResponse tells a link holder what the link grants.
type ShareGrantResponse struct {
	ResourceType string   `json:"resource_type"`
	ResourceID   string   `json:"resource_id"`
	Permissions  []string `json:"permissions"`
	UsesSoFar    int      `json:"uses_so_far"`
	MaxUses      *int     `json:"max_uses,omitempty"`
}

// MapShareGrantToResponse converts a verified link for its holder.
func MapShareGrantToResponse(l *dacDomain.SharingLink) ShareGrantResponse {
	return ShareGrantResponse{
		ResourceType: l.ResourceType,
		ResourceID:   l.ResourceID,
		Permissions:  l.Permissions.Names(),
		UsesSoFar:    l.UsesSoFar,
		MaxUses:      l.MaxUses,
	}
}
