// Package service signs and verifies the bearer tokens that carry a principal.
package service

import (
	"time"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
)

// TokenService issues and validates signed bearer tokens.
type TokenService interface {
	// Sign produces a compact token asserting principal until expiresAt.
	Sign(principal *authDomain.Principal, expiresAt time.Time) (string, error)

	// Parse validates signature, issuer, audience and expiry and returns the asserted session.
	// Every validation failure is reported as ErrInvalidToken.
	Parse(token string) (*authDomain.Session, error)
}
