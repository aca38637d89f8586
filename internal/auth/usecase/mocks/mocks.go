// Package mocks provides testify mocks for the auth use cases and their dependencies.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
)

// MockSessionRepository is a mock implementation of usecase.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

// Revoke mocks the Revoke method.
func (m *MockSessionRepository) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	args := m.Called(ctx, sessionID, ttl)
	return args.Error(0)
}

// IsRevoked mocks the IsRevoked method.
func (m *MockSessionRepository) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

// MockTokenService is a mock implementation of service.TokenService.
type MockTokenService struct {
	mock.Mock
}

// Sign mocks the Sign method.
func (m *MockTokenService) Sign(principal *authDomain.Principal, expiresAt time.Time) (string, error) {
	args := m.Called(principal, expiresAt)
	return args.String(0), args.Error(1)
}

// Parse mocks the Parse method.
func (m *MockTokenService) Parse(token string) (*authDomain.Session, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Session), args.Error(1)
}

// MockAuthUseCase is a mock implementation of usecase.AuthUseCase.
type MockAuthUseCase struct {
	mock.Mock
}

// IssueToken mocks the IssueToken method.
func (m *MockAuthUseCase) IssueToken(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.IssueTokenOutput), args.Error(1)
}

// Authenticate mocks the Authenticate method.
func (m *MockAuthUseCase) Authenticate(ctx context.Context, token string) (*authDomain.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Session), args.Error(1)
}

// RevokeSession mocks the RevokeSession method.
func (m *MockAuthUseCase) RevokeSession(ctx context.Context, session *authDomain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

// RevokeSessionByID mocks the RevokeSessionByID method.
func (m *MockAuthUseCase) RevokeSessionByID(
	ctx context.Context,
	actor *authDomain.Principal,
	sessionID string,
) error {
	args := m.Called(ctx, actor, sessionID)
	return args.Error(0)
}
