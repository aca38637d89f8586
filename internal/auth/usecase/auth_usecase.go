package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	authService "github.com/allisson/sentinel/internal/auth/service"
	"github.com/allisson/sentinel/internal/clock"
	apperrors "github.com/allisson/sentinel/internal/errors"
)

const auditResourceSession = "session"

type authUseCase struct {
	tokenService authService.TokenService
	sessionRepo  SessionRepository
	audit        AuditRecorder
	clock        clock.Clock
	tokenTTL     time.Duration
	maxTokenTTL  time.Duration
}

func (a *authUseCase) IssueToken(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	ttl := input.TTL
	if ttl == 0 {
		ttl = a.tokenTTL
	}
	if ttl > a.maxTokenTTL {
		return nil, apperrors.Wrapf(authDomain.ErrInvalidTokenRequest, "ttl exceeds maximum of %s", a.maxTokenTTL)
	}
	trust := input.TrustLevel
	if trust == "" {
		trust = authDomain.TrustStandard
	}

	principal := &authDomain.Principal{
		UserID:      input.UserID,
		SessionID:   uuid.Must(uuid.NewV7()).String(),
		Email:       input.Email,
		TrustLevel:  trust,
		IsAdmin:     input.IsAdmin,
		MFAVerified: input.MFAVerified,
	}
	expiresAt := a.clock.Now().Add(ttl).Truncate(time.Second)

	token, err := a.tokenService.Sign(principal, expiresAt)
	if err != nil {
		return nil, err
	}
	return &authDomain.IssueTokenOutput{
		Token:     token,
		SessionID: principal.SessionID,
		ExpiresAt: expiresAt,
	}, nil
}

func (a *authUseCase) Authenticate(ctx context.Context, token string) (*authDomain.Session, error) {
	session, err := a.tokenService.Parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := a.sessionRepo.IsRevoked(ctx, session.Principal.SessionID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, authDomain.ErrSessionRevoked
	}
	return session, nil
}

func (a *authUseCase) RevokeSession(ctx context.Context, session *authDomain.Session) error {
	if session == nil {
		return apperrors.ErrUnauthorized
	}
	ttl := session.ExpiresAt.Sub(a.clock.Now())
	return a.revoke(ctx, &session.Principal, session.Principal.SessionID, ttl, "logout")
}

func (a *authUseCase) RevokeSessionByID(
	ctx context.Context,
	actor *authDomain.Principal,
	sessionID string,
) error {
	if !actor.CanAdminister() {
		return authDomain.ErrAdminRequired
	}
	if sessionID == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "session id is required")
	}
	return a.revoke(ctx, actor, sessionID, a.maxTokenTTL, "admin")
}

func (a *authUseCase) revoke(
	ctx context.Context,
	actor *authDomain.Principal,
	sessionID string,
	ttl time.Duration,
	via string,
) error {
	if err := a.sessionRepo.Revoke(ctx, sessionID, ttl); err != nil {
		return err
	}

	_, err := a.audit.Record(ctx, &auditDomain.RecordInput{
		ActorID:      actor.UserID,
		Action:       auditDomain.ActionSessionRevoked,
		ResourceType: auditResourceSession,
		ResourceID:   sessionID,
		Outcome:      auditDomain.OutcomeSuccess,
		Details: map[string]any{
			"via":         via,
			"ttl_seconds": int64(max(ttl, 0) / time.Second),
		},
	})
	return err
}

// NewAuthUseCase creates an AuthUseCase. tokenTTL is the default lifetime of issued tokens and
// maxTokenTTL caps any requested lifetime.
func NewAuthUseCase(
	tokenService authService.TokenService,
	sessionRepo SessionRepository,
	audit AuditRecorder,
	clk clock.Clock,
	tokenTTL time.Duration,
	maxTokenTTL time.Duration,
) AuthUseCase {
	if maxTokenTTL < tokenTTL {
		maxTokenTTL = tokenTTL
	}
	return &authUseCase{
		tokenService: tokenService,
		sessionRepo:  sessionRepo,
		audit:        audit,
		clock:        clk,
		tokenTTL:     tokenTTL,
		maxTokenTTL:  maxTokenTTL,
	}
}
