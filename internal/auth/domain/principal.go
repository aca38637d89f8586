package domain

import (
	"github.com/google/uuid"
)

// Principal is the authenticated subject of a request.
type Principal struct {
	UserID      uuid.UUID
	SessionID   string
	Email       string
	TrustLevel  TrustLevel
	IsAdmin     bool
	MFAVerified bool
}

// IsSuperAdmin reports whether the principal bypasses access checks.
func (p *Principal) IsSuperAdmin() bool {
	return p != nil && p.TrustLevel == TrustSuperAdmin
}

// CanAdminister reports whether the principal may run administrative workflows.
func (p *Principal) CanAdminister() bool {
	return p != nil && (p.IsAdmin || p.IsSuperAdmin())
}

// IsSelfOrAdmin reports whether the principal is userID or may administer on their behalf.
func (p *Principal) IsSelfOrAdmin(userID uuid.UUID) bool {
	return p != nil && (p.UserID == userID || p.CanAdminister())
}
