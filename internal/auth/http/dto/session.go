// Package dto provides data transfer objects for the session endpoints.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	customValidation "github.com/allisson/sentinel/internal/validation"
)

// RevokeSessionRequest names a session for administrative revocation.
type RevokeSessionRequest struct {
	SessionID string `json:"session_id"`
}

// Validate checks if the revoke request is valid.
func (r *RevokeSessionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SessionID,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 64),
		),
	)
}

// SessionResponse describes the caller's session.
type SessionResponse struct {
	UserID      string    `json:"user_id"`
	SessionID   string    `json:"session_id"`
	Email       string    `json:"email,omitempty"`
	TrustLevel  string    `json:"trust_level"`
	IsAdmin     bool      `json:"is_admin"`
	MFAVerified bool      `json:"mfa_verified"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// MapSessionToResponse converts a session to an API response.
func MapSessionToResponse(session *authDomain.Session) SessionResponse {
	p := session.Principal
	return SessionResponse{
		UserID:      p.UserID.String(),
		SessionID:   p.SessionID,
		Email:       p.Email,
		TrustLevel:  string(p.TrustLevel),
		IsAdmin:     p.IsAdmin,
		MFAVerified: p.MFAVerified,
		ExpiresAt:   session.ExpiresAt,
	}
}
