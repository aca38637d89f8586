package usecase

import (
	"context"
	"time"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	"github.com/allisson/sentinel/internal/metrics"
)

// authUseCaseWithMetrics decorates AuthUseCase with metrics instrumentation.
type authUseCaseWithMetrics struct {
	next    AuthUseCase
	metrics metrics.BusinessMetrics
}

// NewAuthUseCaseWithMetrics wraps an AuthUseCase with metrics recording.
func NewAuthUseCaseWithMetrics(useCase AuthUseCase, m metrics.BusinessMetrics) AuthUseCase {
	return &authUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *authUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	a.metrics.RecordOperation(ctx, "auth", operation, status)
	a.metrics.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}

// IssueToken records metrics for token issuance.
func (a *authUseCaseWithMetrics) IssueToken(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	start := time.Now()
	output, err := a.next.IssueToken(ctx, input)
	a.record(ctx, "token_issue", start, err)
	return output, err
}

// Authenticate records metrics for token authentication.
func (a *authUseCaseWithMetrics) Authenticate(ctx context.Context, token string) (*authDomain.Session, error) {
	start := time.Now()
	session, err := a.next.Authenticate(ctx, token)
	a.record(ctx, "authenticate", start, err)
	return session, err
}

// RevokeSession records metrics for logouts.
func (a *authUseCaseWithMetrics) RevokeSession(ctx context.Context, session *authDomain.Session) error {
	start := time.Now()
	err := a.next.RevokeSession(ctx, session)
	a.record(ctx, "session_revoke", start, err)
	return err
}

// RevokeSessionByID records metrics for administrative revocations.
func (a *authUseCaseWithMetrics) RevokeSessionByID(
	ctx context.Context,
	actor *authDomain.Principal,
	sessionID string,
) error {
	start := time.Now()
	err := a.next.RevokeSessionByID(ctx, actor, sessionID)
	a.record(ctx, "session_revoke", start, err)
	return err
}
