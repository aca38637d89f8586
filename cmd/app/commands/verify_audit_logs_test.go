package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	auditMocks "github.com/allisson/sentinel/internal/audit/usecase/mocks"
)

func TestRunVerifyAuditLogs(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	report := &auditDomain.VerificationReport{
		TotalChecked: 10,
		ValidCount:   10,
		HeadSequence: 10,
	}

	t.Run("success-text", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditUseCase{}
		mockUseCase.On("VerifyChain", ctx).Return(report, nil)

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, mockUseCase, logger, &out, "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "Audit Chain Integrity Verification")
		require.Contains(t, out.String(), "Status: PASSED")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("success-json", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditUseCase{}
		mockUseCase.On("VerifyChain", ctx).Return(report, nil)

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, mockUseCase, logger, &out, "json")
		require.NoError(t, err)

		var result map[string]interface{}
		err = json.Unmarshal(out.Bytes(), &result)
		require.NoError(t, err)
		require.Equal(t, float64(10), result["total_checked"])
		require.Equal(t, true, result["passed"])
		mockUseCase.AssertExpectations(t)
	})

	t.Run("empty-chain", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditUseCase{}
		mockUseCase.On("VerifyChain", ctx).Return(&auditDomain.VerificationReport{}, nil)

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, mockUseCase, logger, &out, "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "No events recorded")
	})

	t.Run("invalid-format", func(t *testing.T) {
		err := RunVerifyAuditLogs(ctx, nil, logger, nil, "yaml")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid format")
	})

	t.Run("integrity-failure", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditUseCase{}
		failureReport := &auditDomain.VerificationReport{
			TotalChecked:  10,
			ValidCount:    8,
			InvalidCount:  2,
			InvalidEvents: []uuid.UUID{uuid.New(), uuid.New()},
		}
		mockUseCase.On("VerifyChain", ctx).Return(failureReport, nil)

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, mockUseCase, logger, &out, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "integrity check failed")
		require.Contains(t, out.String(), "WARNING: 2 event(s) failed integrity check!")
		require.Contains(t, out.String(), failureReport.InvalidEvents[0].String())
	})

	t.Run("truncated-chain", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditUseCase{}
		mockUseCase.On("VerifyChain", ctx).Return(&auditDomain.VerificationReport{
			TotalChecked: 5,
			ValidCount:   5,
			HeadSequence: 7,
			HeadMismatch: true,
		}, nil)

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, mockUseCase, logger, &out, "json")
		require.Error(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, true, result["head_mismatch"])
		require.Equal(t, false, result["passed"])
	})

	t.Run("verify-error", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditUseCase{}
		mockUseCase.On("VerifyChain", ctx).Return(nil, errors.New("database down"))

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, mockUseCase, logger, &out, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to verify audit logs")
		require.Empty(t, out.String())
	})
}
