// Package http provides authentication middleware and session endpoints.
package http

import (
	"context"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
)

// sessionKey is a context key type for storing the authenticated session.
type sessionKey struct{}

// WithSession stores an authenticated session in the context.
func WithSession(ctx context.Context, session *authDomain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSession retrieves the authenticated session from the context.
func GetSession(ctx context.Context) (*authDomain.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(*authDomain.Session)
	return session, ok && session != nil
}

// GetPrincipal returns the authenticated principal, or nil for anonymous requests.
func GetPrincipal(ctx context.Context) *authDomain.Principal {
	session, ok := GetSession(ctx)
	if !ok {
		return nil
	}
	return &session.Principal
}
