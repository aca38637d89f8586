package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	authUseCase "github.com/allisson/sentinel/internal/auth/usecase"
)

// IssueTokenParams holds the identity asserted by an operator for a new bearer token.
type IssueTokenParams struct {
	UserID      string
	Email       string
	TrustLevel  string
	IsAdmin     bool
	MFAVerified bool
	TTL         time.Duration
}

// RunIssueToken signs a bearer token for a subject. Sentinel trusts the identity provider
// in front of it, so operators use this to bootstrap administrators and service callers.
func RunIssueToken(
	ctx context.Context,
	authUC authUseCase.AuthUseCase,
	logger *slog.Logger,
	writer io.Writer,
	params IssueTokenParams,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	userID, err := uuid.Parse(params.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	output, err := authUC.IssueToken(ctx, &authDomain.IssueTokenInput{
		UserID:      userID,
		Email:       params.Email,
		TrustLevel:  authDomain.TrustLevel(params.TrustLevel),
		IsAdmin:     params.IsAdmin,
		MFAVerified: params.MFAVerified,
		TTL:         params.TTL,
	})
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{
			"token":      output.Token,
			"session_id": output.SessionID,
			"expires_at": output.ExpiresAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Token issued successfully\n\n")
		_, _ = fmt.Fprintf(writer, "Session ID: %s\n", output.SessionID)
		_, _ = fmt.Fprintf(writer, "Expires At: %s\n", output.ExpiresAt.UTC().Format(time.RFC3339))
		_, _ = fmt.Fprintf(writer, "Token:      %s\n", output.Token)
	}

	logger.Info("token issued",
		slog.String("user_id", userID.String()),
		slog.String("session_id", output.SessionID),
		slog.Bool("is_admin", params.IsAdmin),
	)
	return nil
}
