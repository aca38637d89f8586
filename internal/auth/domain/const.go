// Package domain defines the authenticated principal and the bearer token model.
// Principals are produced by the authentication middleware and consumed by every
// workflow and by the access orchestrator.
package domain

// TrustLevel classifies how much the platform trusts an authenticated session.
type TrustLevel string

const (
	// TrustStandard is the default level for ordinary sessions.
	TrustStandard TrustLevel = "standard"

	// TrustElevated marks sessions that passed step-up verification.
	TrustElevated TrustLevel = "elevated"

	// TrustSuperAdmin bypasses every access check. Assigned only through issued tokens.
	TrustSuperAdmin TrustLevel = "super_admin"
)

// IsValid reports whether t is a known trust level.
func (t TrustLevel) IsValid() bool {
	switch t {
	case TrustStandard, TrustElevated, TrustSuperAdmin:
		return true
	}
	return false
}
