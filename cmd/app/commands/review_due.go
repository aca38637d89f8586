package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	clearanceUseCase "github.com/allisson/sentinel/internal/clearance/usecase"
)

// RunReviewDue lists clearances whose periodic review falls within the next days days.
// Intended for a scheduled job feeding the security office's review queue.
func RunReviewDue(
	ctx context.Context,
	clearanceUC clearanceUseCase.ClearanceUseCase,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("listing clearances due for review", slog.Int("days", days))

	clearances, err := clearanceUC.GetUsersRequiringReview(ctx, days)
	if err != nil {
		return fmt.Errorf("failed to list clearances due for review: %w", err)
	}

	if format == "json" {
		items := make([]map[string]any, 0, len(clearances))
		for _, c := range clearances {
			item := map[string]any{
				"user_id":         c.UserID.String(),
				"level":           c.Level.String(),
				"compartments":    []string(c.Compartments),
				"trusted_subject": c.TrustedSubject,
				"review_due_at":   nil,
				"expires_at":      nil,
			}
			if c.ReviewDueAt != nil {
				item["review_due_at"] = c.ReviewDueAt.UTC().Format(time.RFC3339)
			}
			if c.ExpiresAt != nil {
				item["expires_at"] = c.ExpiresAt.UTC().Format(time.RFC3339)
			}
			items = append(items, item)
		}
		if err := writeJSON(writer, map[string]any{"days": days, "count": len(items), "clearances": items}); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		if len(clearances) == 0 {
			_, _ = fmt.Fprintf(writer, "No clearances due for review in the next %d day(s)\n", days)
		} else {
			_, _ = fmt.Fprintf(writer, "%d clearance(s) due for review in the next %d day(s):\n\n", len(clearances), days)
			for _, c := range clearances {
				due := "-"
				if c.ReviewDueAt != nil {
					due = c.ReviewDueAt.UTC().Format("2006-01-02")
				}
				_, _ = fmt.Fprintf(writer, "  %s  %-12s  due %s  [%s]\n",
					c.UserID, c.Level, due, strings.Join(c.Compartments, ","))
			}
		}
	}

	logger.Info("review listing completed", slog.Int("count", len(clearances)))
	return nil
}
