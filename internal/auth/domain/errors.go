package domain

import (
	"github.com/allisson/sentinel/internal/errors"
)

// Authentication errors.
var (
	// ErrInvalidToken indicates a bearer token that is malformed, badly signed or expired.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrSessionRevoked indicates the token's session was logged out.
	ErrSessionRevoked = errors.Wrap(errors.ErrUnauthorized, "session revoked")

	// ErrSessionStore indicates the revocation store could not be reached. Authentication
	// fails closed when it is returned.
	ErrSessionStore = errors.Wrap(errors.ErrIntegrity, "session store unavailable")

	// ErrAdminRequired indicates an administrative operation attempted by a non-admin.
	ErrAdminRequired = errors.Wrap(errors.ErrForbidden, "admin privileges required")
)
