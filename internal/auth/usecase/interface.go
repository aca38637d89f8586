// Package usecase issues bearer tokens, authenticates them and revokes sessions.
package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
)

// SessionRepository tracks revoked sessions.
type SessionRepository interface {
	// Revoke marks sessionID as revoked for ttl.
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error

	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// AuditRecorder appends events to the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, input *auditDomain.RecordInput) (*auditDomain.AuditEvent, error)
}

// AuthUseCase defines subject authentication operations.
type AuthUseCase interface {
	// IssueToken signs a token for a new session. Used by operators through the CLI.
	IssueToken(ctx context.Context, input *authDomain.IssueTokenInput) (*authDomain.IssueTokenOutput, error)

	// Authenticate validates a bearer token and rejects revoked sessions.
	Authenticate(ctx context.Context, token string) (*authDomain.Session, error)

	// RevokeSession logs out the caller's own session until its token expires.
	RevokeSession(ctx context.Context, session *authDomain.Session) error

	// RevokeSessionByID lets an administrator revoke any session. The revocation is kept for
	// the longest token lifetime since the token's expiry is unknown.
	RevokeSessionByID(ctx context.Context, actor *authDomain.Principal, sessionID string) error
}
