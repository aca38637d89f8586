package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	clearanceMocks "github.com/allisson/sentinel/internal/clearance/usecase/mocks"
	macDomain "github.com/allisson/sentinel/internal/mac/domain"
)

func TestRunReviewDue(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	clearance := &macDomain.Clearance{
		UserID:       uuid.New(),
		Level:        macDomain.Secret,
		Compartments: macDomain.NewCompartments("NUCLEAR", "CRYPTO"),
		ReviewDueAt:  &due,
	}

	t.Run("success-text", func(t *testing.T) {
		mockUseCase := &clearanceMocks.MockClearanceUseCase{}
		mockUseCase.On("GetUsersRequiringReview", ctx, 30).
			Return([]*macDomain.Clearance{clearance}, nil)

		var out bytes.Buffer
		err := RunReviewDue(ctx, mockUseCase, logger, &out, 30, "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "1 clearance(s) due for review in the next 30 day(s)")
		require.Contains(t, out.String(), clearance.UserID.String())
		require.Contains(t, out.String(), "due 2026-11-01")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("success-json", func(t *testing.T) {
		mockUseCase := &clearanceMocks.MockClearanceUseCase{}
		mockUseCase.On("GetUsersRequiringReview", ctx, 30).
			Return([]*macDomain.Clearance{clearance}, nil)

		var out bytes.Buffer
		err := RunReviewDue(ctx, mockUseCase, logger, &out, 30, "json")
		require.NoError(t, err)

		var result struct {
			Count      int              `json:"count"`
			Clearances []map[string]any `json:"clearances"`
		}
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, 1, result.Count)
		require.Equal(t, "SECRET", result.Clearances[0]["level"])
		require.Equal(t, "2026-11-01T00:00:00Z", result.Clearances[0]["review_due_at"])
		require.Nil(t, result.Clearances[0]["expires_at"])
	})

	t.Run("nothing-due", func(t *testing.T) {
		mockUseCase := &clearanceMocks.MockClearanceUseCase{}
		mockUseCase.On("GetUsersRequiringReview", ctx, 7).Return([]*macDomain.Clearance{}, nil)

		var out bytes.Buffer
		err := RunReviewDue(ctx, mockUseCase, logger, &out, 7, "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "No clearances due for review in the next 7 day(s)")
	})

	t.Run("negative-days", func(t *testing.T) {
		err := RunReviewDue(ctx, nil, logger, nil, -1, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "days must be a positive number")
	})

	t.Run("use-case-error", func(t *testing.T) {
		mockUseCase := &clearanceMocks.MockClearanceUseCase{}
		mockUseCase.On("GetUsersRequiringReview", ctx, 30).Return(nil, errors.New("database down"))

		var out bytes.Buffer
		err := RunReviewDue(ctx, mockUseCase, logger, &out, 30, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to list clearances due for review")
	})
}
