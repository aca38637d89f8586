package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	dacDomain "github.com/allisson/sentinel/internal/dac/domain"
	"github.com/allisson/sentinel/internal/metrics"
)

const metricsDomain = "dac"

// sharingLinkUseCaseWithMetrics decorates SharingLinkUseCase with metrics instrumentation.
type sharingLinkUseCaseWithMetrics struct {
	next    SharingLinkUseCase
	metrics metrics.BusinessMetrics
}

// NewSharingLinkUseCaseWithMetrics wraps a SharingLinkUseCase with metrics recording.
func NewSharingLinkUseCaseWithMetrics(useCase SharingLinkUseCase, m metrics.BusinessMetrics) SharingLinkUseCase {
	return &sharingLinkUseCaseWithMetrics{next: useCase, metrics: m}
}

func (s *sharingLinkUseCaseWithMetrics) observe(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	s.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

func (s *sharingLinkUseCaseWithMetrics) CreateSharingLink(
	ctx context.Context,
	actor *authDomain.Principal,
	input *dacDomain.CreateLinkInput,
) (*dacDomain.CreateLinkOutput, error) {
	start := time.Now()
	output, err := s.next.CreateSharingLink(ctx, actor, input)
	s.observe(ctx, "sharing_link_create", start, err)
	return output, err
}

func (s *sharingLinkUseCaseWithMetrics) VerifySharingLink(
	ctx context.Context,
	input *dacDomain.VerifyLinkInput,
) (*dacDomain.SharingLink, error) {
	start := time.Now()
	link, err := s.next.VerifySharingLink(ctx, input)
	s.observe(ctx, "sharing_link_verify", start, err)
	return link, err
}

func (s *sharingLinkUseCaseWithMetrics) UseSharingLink(
	ctx context.Context,
	input *dacDomain.VerifyLinkInput,
) (*dacDomain.SharingLink, error) {
	start := time.Now()
	link, err := s.next.UseSharingLink(ctx, input)
	s.observe(ctx, "sharing_link_use", start, err)
	return link, err
}

func (s *sharingLinkUseCaseWithMetrics) RevokeSharingLink(
	ctx context.Context,
	actor *authDomain.Principal,
	linkID uuid.UUID,
) error {
	start := time.Now()
	err := s.next.RevokeSharingLink(ctx, actor, linkID)
	s.observe(ctx, "sharing_link_revoke", start, err)
	return err
}

func (s *sharingLinkUseCaseWithMetrics) ListSharingLinks(
	ctx context.Context,
	actor *authDomain.Principal,
	resourceType, resourceID string,
) ([]*dacDomain.SharingLink, error) {
	start := time.Now()
	links, err := s.next.ListSharingLinks(ctx, actor, resourceType, resourceID)
	s.observe(ctx, "sharing_link_list", start, err)
	return links, err
}
