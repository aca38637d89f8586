// Package mocks provides testify mocks for the access use case.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	accessDomain "github.com/allisson/sentinel/internal/access/domain"
)

// MockAccessUseCase is a mock implementation of usecase.AccessUseCase.
type MockAccessUseCase struct {
	mock.Mock
}

func (m *MockAccessUseCase) CheckAccess(
	ctx context.Context,
	req *accessDomain.Request,
) (*accessDomain.Decision, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessDomain.Decision), args.Error(1)
}
