// Package mocks provides testify mocks for the audit use cases.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
)

// MockAuditUseCase is a mock implementation of usecase.AuditUseCase.
type MockAuditUseCase struct {
	mock.Mock
}

// Record mocks the Record method.
func (m *MockAuditUseCase) Record(
	ctx context.Context,
	input *auditDomain.RecordInput,
) (*auditDomain.AuditEvent, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.AuditEvent), args.Error(1)
}

// Get mocks the Get method.
func (m *MockAuditUseCase) Get(ctx context.Context, id uuid.UUID) (*auditDomain.AuditEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.AuditEvent), args.Error(1)
}

// List mocks the List method.
func (m *MockAuditUseCase) List(
	ctx context.Context,
	filter auditDomain.ListFilter,
	offset, limit int,
) ([]*auditDomain.AuditEvent, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.AuditEvent), args.Error(1)
}

// VerifyChain mocks the VerifyChain method.
func (m *MockAuditUseCase) VerifyChain(ctx context.Context) (*auditDomain.VerificationReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.VerificationReport), args.Error(1)
}

// AcceptAll registers an expectation that records every event successfully.
func (m *MockAuditUseCase) AcceptAll() *MockAuditUseCase {
	m.On("Record", mock.Anything, mock.Anything).Return(&auditDomain.AuditEvent{}, nil).Maybe()
	return m
}
