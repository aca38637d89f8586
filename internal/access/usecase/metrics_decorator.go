package usecase

import (
	"context"
	"time"

	accessDomain "github.com/allisson/sentinel/internal/access/domain"
	"github.com/allisson/sentinel/internal/metrics"
)

const metricsDomain = "access"

// accessUseCaseWithMetrics decorates AccessUseCase with metrics instrumentation.
type accessUseCaseWithMetrics struct {
	next    AccessUseCase
	metrics metrics.BusinessMetrics
}

// NewAccessUseCaseWithMetrics wraps an AccessUseCase with metrics recording.
func NewAccessUseCaseWithMetrics(useCase AccessUseCase, m metrics.BusinessMetrics) AccessUseCase {
	return &accessUseCaseWithMetrics{next: useCase, metrics: m}
}

// CheckAccess records the call status plus the decision outcome, labeled by the denying model.
func (a *accessUseCaseWithMetrics) CheckAccess(
	ctx context.Context,
	req *accessDomain.Request,
) (*accessDomain.Decision, error) {
	start := time.Now()
	decision, err := a.next.CheckAccess(ctx, req)

	status := "success"
	if err != nil {
		status = "error"
	}
	a.metrics.RecordOperation(ctx, metricsDomain, "check_access", status)
	a.metrics.RecordDuration(ctx, metricsDomain, "check_access", time.Since(start), status)

	if decision != nil {
		outcome := "allowed"
		switch {
		case decision.Bypassed:
			outcome = "bypassed"
		case !decision.Allowed:
			outcome = "denied_" + string(decision.DeniedBy)
		}
		a.metrics.RecordOperation(ctx, metricsDomain, "decision", outcome)
	}
	return decision, err
}
