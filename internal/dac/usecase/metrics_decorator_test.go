package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	dacDomain "github.com/allisson/sentinel/internal/dac/domain"
	"github.com/allisson/sentinel/internal/dac/usecase/mocks"
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

func TestSharingLinkMetricsDecorator(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RecordsSuccess", func(t *testing.T) {
		next := &mocks.MockSharingLinkUseCase{}
		m := &mockBusinessMetrics{}
		input := &dacDomain.VerifyLinkInput{Token: "tok"}
		link := &dacDomain.SharingLink{ID: uuid.Must(uuid.NewV7())}

		next.On("UseSharingLink", ctx, input).Return(link, nil).Once()
		m.On("RecordOperation", ctx, "dac", "sharing_link_use", "success").Return().Once()
		m.On("RecordDuration", ctx, "dac", "sharing_link_use", mock.AnythingOfType("time.Duration"), "success").
			Return().Once()

		got, err := NewSharingLinkUseCaseWithMetrics(next, m).UseSharingLink(ctx, input)

		assert.NoError(t, err)
		assert.Equal(t, link, got)
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("Error_RecordsError", func(t *testing.T) {
		next := &mocks.MockSharingLinkUseCase{}
		m := &mockBusinessMetrics{}
		linkID := uuid.Must(uuid.NewV7())
		expectedErr := errors.New("boom")

		next.On("RevokeSharingLink", ctx, mock.Anything, linkID).Return(expectedErr).Once()
		m.On("RecordOperation", ctx, "dac", "sharing_link_revoke", "error").Return().Once()
		m.On("RecordDuration", ctx, "dac", "sharing_link_revoke", mock.AnythingOfType("time.Duration"), "error").
			Return().Once()

		err := NewSharingLinkUseCaseWithMetrics(next, m).RevokeSharingLink(ctx, newUser(), linkID)

		assert.ErrorIs(t, err, expectedErr)
		m.AssertExpectations(t)
	})
}
