package usecase

import (
	"context"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	"github.com/allisson/sentinel/internal/clock"
	dacDomain "github.com/allisson/sentinel/internal/dac/domain"
	"github.com/allisson/sentinel/internal/dac/service"
	"github.com/allisson/sentinel/internal/database"
)

type sharingLinkUseCase struct {
	txManager      database.TxManager
	linkRepo       LinkRepository
	permissionRepo PermissionRepository
	resourceRepo   ResourceRepository
	secrets        service.LinkSecrets
	audit          AuditRecorder
	clock          clock.Clock
}

func (s *sharingLinkUseCase) CreateSharingLink(
	ctx context.Context,
	actor *authDomain.Principal,
	input *dacDomain.CreateLinkInput,
) (*dacDomain.CreateLinkOutput, error) {
	if !input.Permissions.IsValid() {
		return nil, dacDomain.ErrInvalidPermission
	}
	if input.MaxUses != nil && *input.MaxUses <= 0 {
		return nil, dacDomain.ErrInvalidMaxUses
	}
	now := s.clock.Now()
	if input.ExpiresAt != nil && !input.ExpiresAt.After(now) {
		return nil, dacDomain.ErrExpiryInPast
	}

	token, tokenHash, err := s.secrets.GenerateToken()
	if err != nil {
		return nil, err
	}

	var passwordHash *string
	if input.Password != "" {
		hashed, err := s.secrets.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = &hashed
	}

	var link *dacDomain.SharingLink
	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		resource, err := s.resourceRepo.Get(ctx, input.ResourceType, input.ResourceID)
		if err != nil {
			return err
		}

		held, err := effectivePermission(ctx, s.permissionRepo, resource, actor.UserID, now)
		if err != nil {
			return err
		}
		if !input.Permissions.IsSubsetOf(held) {
			return dacDomain.ErrPrivilegeAmplification
		}

		link = &dacDomain.SharingLink{
			ID:             uuid.Must(uuid.NewV7()),
			TokenHash:      tokenHash,
			ResourceType:   resource.ResourceType,
			ResourceID:     resource.ResourceID,
			CreatedBy:      actor.UserID,
			Permissions:    input.Permissions,
			ExpiresAt:      input.ExpiresAt,
			MaxUses:        input.MaxUses,
			PasswordHash:   passwordHash,
			RequireAuth:    input.RequireAuth,
			AllowedEmails:  dacDomain.NewStringList(input.AllowedEmails...),
			AllowedDomains: dacDomain.NewStringList(input.AllowedDomains...),
			CreatedAt:      now,
		}
		if err := s.linkRepo.Create(ctx, link); err != nil {
			return err
		}

		_, err = s.audit.Record(ctx, &auditDomain.RecordInput{
			ActorID:      actor.UserID,
			Action:       auditDomain.ActionSharingLinkCreated,
			ResourceType: link.ResourceType,
			ResourceID:   link.ResourceID,
			Outcome:      auditDomain.OutcomeSuccess,
			Details: map[string]any{
				"link_id":      link.ID.String(),
				"permissions":  link.Permissions.Names(),
				"max_uses":     link.MaxUses,
				"require_auth": link.RequireAuth,
				"has_password": passwordHash != nil,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return &dacDomain.CreateLinkOutput{Link: link, Token: token}, nil
}

// VerifySharingLink applies the checks in a fixed order and reports the first failure.
func (s *sharingLinkUseCase) VerifySharingLink(
	ctx context.Context,
	input *dacDomain.VerifyLinkInput,
) (*dacDomain.SharingLink, error) {
	link, err := s.linkRepo.GetByTokenHash(ctx, s.secrets.HashToken(input.Token))
	if err != nil {
		return nil, err
	}

	switch {
	case link.RevokedAt != nil:
		return nil, dacDomain.ErrLinkRevoked
	case link.IsExpired(s.clock.Now()):
		return nil, dacDomain.ErrLinkExpired
	case !link.HasUsesRemaining():
		return nil, dacDomain.ErrLinkExhausted
	case link.PasswordHash != nil && !s.secrets.ComparePassword(input.Password, *link.PasswordHash):
		return nil, dacDomain.ErrLinkPasswordMismatch
	case link.RequireAuth && !input.Authenticated:
		return nil, dacDomain.ErrLinkAuthRequired
	case !link.AllowsEmail(input.CallerEmail):
		return nil, dacDomain.ErrLinkEmailNotAllowed
	}
	return link, nil
}

// UseSharingLink consumes a use through the repository's conditional increment; the
// verification above is advisory and the increment is what enforces MaxUses.
func (s *sharingLinkUseCase) UseSharingLink(
	ctx context.Context,
	input *dacDomain.VerifyLinkInput,
) (*dacDomain.SharingLink, error) {
	link, err := s.VerifySharingLink(ctx, input)
	if err != nil {
		return nil, err
	}

	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.linkRepo.IncrementUses(ctx, link.ID, s.clock.Now()); err != nil {
			return err
		}

		actorID := uuid.Nil
		if input.CallerID != nil {
			actorID = *input.CallerID
		}
		_, err := s.audit.Record(ctx, &auditDomain.RecordInput{
			ActorID:      actorID,
			Action:       auditDomain.ActionSharingLinkUsed,
			ResourceType: link.ResourceType,
			ResourceID:   link.ResourceID,
			Outcome:      auditDomain.OutcomeSuccess,
			Details: map[string]any{
				"link_id":      link.ID.String(),
				"caller_email": input.CallerEmail,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	link.UsesSoFar++
	return link, nil
}

func (s *sharingLinkUseCase) RevokeSharingLink(ctx context.Context, actor *authDomain.Principal, linkID uuid.UUID) error {
	return s.txManager.WithTx(ctx, func(ctx context.Context) error {
		link, err := s.linkRepo.Get(ctx, linkID)
		if err != nil {
			return err
		}
		if link.CreatedBy != actor.UserID && !actor.CanAdminister() {
			resource, err := s.resourceRepo.Get(ctx, link.ResourceType, link.ResourceID)
			if err != nil {
				return err
			}
			if !resource.IsOwnedBy(actor.UserID) {
				return dacDomain.ErrLinkRevokeForbidden
			}
		}
		if link.RevokedAt != nil {
			return nil
		}

		if err := s.linkRepo.Revoke(ctx, link.ID, actor.UserID, s.clock.Now()); err != nil {
			return err
		}

		_, err = s.audit.Record(ctx, &auditDomain.RecordInput{
			ActorID:      actor.UserID,
			Action:       auditDomain.ActionSharingLinkRevoked,
			ResourceType: link.ResourceType,
			ResourceID:   link.ResourceID,
			Outcome:      auditDomain.OutcomeSuccess,
			Details:      map[string]any{"link_id": link.ID.String()},
		})
		return err
	})
}

func (s *sharingLinkUseCase) ListSharingLinks(
	ctx context.Context,
	actor *authDomain.Principal,
	resourceType, resourceID string,
) ([]*dacDomain.SharingLink, error) {
	resource, err := s.resourceRepo.Get(ctx, resourceType, resourceID)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, resource) {
		return nil, dacDomain.ErrOwnerOrAdminRequired
	}
	return s.linkRepo.ListByResource(ctx, resourceType, resourceID)
}

// NewSharingLinkUseCase creates a new SharingLinkUseCase with the provided dependencies.
func NewSharingLinkUseCase(
	txManager database.TxManager,
	linkRepo LinkRepository,
	permissionRepo PermissionRepository,
	resourceRepo ResourceRepository,
	secrets service.LinkSecrets,
	audit AuditRecorder,
	clk clock.Clock,
) SharingLinkUseCase {
	return &sharingLinkUseCase{
		txManager:      txManager,
		linkRepo:       linkRepo,
		permissionRepo: permissionRepo,
		resourceRepo:   resourceRepo,
		secrets:        secrets,
		audit:          audit,
		clock:          clk,
	}
}
