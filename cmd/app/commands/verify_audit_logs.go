package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	auditUseCase "github.com/allisson/sentinel/internal/audit/usecase"
)

// RunVerifyAuditLogs walks the whole audit hash chain and reports tampered events.
// Returns an error when any event fails verification or the chain is truncated.
func RunVerifyAuditLogs(
	ctx context.Context,
	auditUC auditUseCase.AuditUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("verifying audit chain")

	report, err := auditUC.VerifyChain(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify audit logs: %w", err)
	}

	if format == "json" {
		if err := outputVerifyJSON(writer, report); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputVerifyText(writer, report)
	}

	logger.Info("verification completed",
		slog.Int64("total_checked", report.TotalChecked),
		slog.Int64("valid", report.ValidCount),
		slog.Int64("invalid", report.InvalidCount),
		slog.Bool("head_mismatch", report.HeadMismatch),
	)

	if !report.Passed() {
		return fmt.Errorf(
			"integrity check failed: %d invalid event(s), head mismatch: %t",
			report.InvalidCount,
			report.HeadMismatch,
		)
	}

	return nil
}

// outputVerifyText outputs the verification result in human-readable text format.
func outputVerifyText(writer io.Writer, report *auditDomain.VerificationReport) {
	_, _ = fmt.Fprintf(writer, "Audit Chain Integrity Verification\n")
	_, _ = fmt.Fprintf(writer, "==================================\n\n")

	_, _ = fmt.Fprintf(writer, "Total Checked:  %d\n", report.TotalChecked)
	_, _ = fmt.Fprintf(writer, "Valid:          %d\n", report.ValidCount)
	_, _ = fmt.Fprintf(writer, "Invalid:        %d\n", report.InvalidCount)
	_, _ = fmt.Fprintf(writer, "Head Sequence:  %d\n\n", report.HeadSequence)

	switch {
	case !report.Passed():
		if report.InvalidCount > 0 {
			_, _ = fmt.Fprintf(writer, "WARNING: %d event(s) failed integrity check!\n\n", report.InvalidCount)
			_, _ = fmt.Fprintf(writer, "Invalid Event IDs:\n")
			for _, id := range report.InvalidEvents {
				_, _ = fmt.Fprintf(writer, "  - %s\n", id)
			}
			_, _ = fmt.Fprintln(writer)
		}
		if report.HeadMismatch {
			_, _ = fmt.Fprintf(writer, "WARNING: chain does not reach the recorded head, events were removed\n\n")
		}
		_, _ = fmt.Fprintf(writer, "Status: FAILED\n")
	case report.TotalChecked == 0:
		_, _ = fmt.Fprintf(writer, "Status: No events recorded\n")
	default:
		_, _ = fmt.Fprintf(writer, "Status: PASSED\n")
	}
}

// outputVerifyJSON outputs the verification result in JSON format for machine consumption.
func outputVerifyJSON(writer io.Writer, report *auditDomain.VerificationReport) error {
	invalid := make([]string, 0, len(report.InvalidEvents))
	for _, id := range report.InvalidEvents {
		invalid = append(invalid, id.String())
	}

	return writeJSON(writer, map[string]any{
		"total_checked":  report.TotalChecked,
		"valid_count":    report.ValidCount,
		"invalid_count":  report.InvalidCount,
		"invalid_events": invalid,
		"head_sequence":  report.HeadSequence,
		"head_mismatch":  report.HeadMismatch,
		"passed":         report.Passed(),
	})
}
