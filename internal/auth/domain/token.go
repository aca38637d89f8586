package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/sentinel/internal/errors"
)

// ErrInvalidTokenRequest indicates an issue-token request that cannot be honored.
var ErrInvalidTokenRequest = errors.Wrap(errors.ErrInvalidInput, "invalid token request")

// IssueTokenInput describes the principal a signed bearer token asserts.
// A zero TTL selects the configured default.
type IssueTokenInput struct {
	UserID      uuid.UUID
	Email       string
	TrustLevel  TrustLevel
	IsAdmin     bool
	MFAVerified bool
	TTL         time.Duration
}

// Validate checks the subject and trust level.
func (i *IssueTokenInput) Validate() error {
	if i.UserID == uuid.Nil {
		return errors.Wrap(ErrInvalidTokenRequest, "user id is required")
	}
	if i.TrustLevel != "" && !i.TrustLevel.IsValid() {
		return errors.Wrapf(ErrInvalidTokenRequest, "unknown trust level %q", i.TrustLevel)
	}
	if i.TTL < 0 {
		return errors.Wrap(ErrInvalidTokenRequest, "ttl must not be negative")
	}
	return nil
}

// IssueTokenOutput holds a freshly signed token.
type IssueTokenOutput struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
}

// Session is the validated content of a bearer token.
type Session struct {
	Principal Principal
	ExpiresAt time.Time
}
