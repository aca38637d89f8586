package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	"github.com/allisson/sentinel/internal/auth/usecase/mocks"
	"github.com/allisson/sentinel/internal/metrics"
)

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

func expectOperation(m *mockBusinessMetrics, ctx context.Context, operation, status string) {
	m.On("RecordOperation", ctx, "auth", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "auth", operation, mock.AnythingOfType("time.Duration"), status).Return().Once()
}

func TestAuthUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Authenticate", func(t *testing.T) {
		next := &mocks.MockAuthUseCase{}
		m := &mockBusinessMetrics{}
		session := testSession()
		next.On("Authenticate", ctx, "tok").Return(session, nil).Once()
		expectOperation(m, ctx, "authenticate", "success")

		got, err := NewAuthUseCaseWithMetrics(next, m).Authenticate(ctx, "tok")

		assert.NoError(t, err)
		assert.Equal(t, session, got)
		m.AssertExpectations(t)
	})

	t.Run("Error_Authenticate", func(t *testing.T) {
		next := &mocks.MockAuthUseCase{}
		m := &mockBusinessMetrics{}
		next.On("Authenticate", ctx, "tok").Return(nil, authDomain.ErrInvalidToken).Once()
		expectOperation(m, ctx, "authenticate", "error")

		_, err := NewAuthUseCaseWithMetrics(next, m).Authenticate(ctx, "tok")

		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
		m.AssertExpectations(t)
	})

	t.Run("Success_IssueToken", func(t *testing.T) {
		next := &mocks.MockAuthUseCase{}
		m := &mockBusinessMetrics{}
		input := &authDomain.IssueTokenInput{}
		next.On("IssueToken", ctx, input).Return(&authDomain.IssueTokenOutput{Token: "t"}, nil).Once()
		expectOperation(m, ctx, "token_issue", "success")

		_, err := NewAuthUseCaseWithMetrics(next, m).IssueToken(ctx, input)

		assert.NoError(t, err)
		m.AssertExpectations(t)
	})

	t.Run("Success_RevokeSession", func(t *testing.T) {
		next := &mocks.MockAuthUseCase{}
		m := &mockBusinessMetrics{}
		session := testSession()
		next.On("RevokeSession", ctx, session).Return(nil).Once()
		expectOperation(m, ctx, "session_revoke", "success")

		assert.NoError(t, NewAuthUseCaseWithMetrics(next, m).RevokeSession(ctx, session))
		m.AssertExpectations(t)
	})
}
