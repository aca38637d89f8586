package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	"github.com/allisson/sentinel/internal/clock"
	apperrors "github.com/allisson/sentinel/internal/errors"
)

// minSecretLength is the HS256 key length floor.
const minSecretLength = 32

// ErrWeakSecret indicates a signing secret shorter than the HS256 floor.
var ErrWeakSecret = apperrors.Wrap(apperrors.ErrInvalidInput, "jwt secret must be at least 32 bytes")

// claims is the token payload. The subject carries the user ID.
type claims struct {
	SessionID   string                `json:"sid"`
	Email       string                `json:"email,omitempty"`
	TrustLevel  authDomain.TrustLevel `json:"trust"`
	IsAdmin     bool                  `json:"adm"`
	MFAVerified bool                  `json:"mfa"`
	jwt.RegisteredClaims
}

type jwtTokenService struct {
	secret   []byte
	issuer   string
	audience string
	clock    clock.Clock
}

// Sign creates an HS256 token for principal.
func (s *jwtTokenService) Sign(principal *authDomain.Principal, expiresAt time.Time) (string, error) {
	now := s.clock.Now()
	c := &claims{
		SessionID:   principal.SessionID,
		Email:       principal.Email,
		TrustLevel:  principal.TrustLevel,
		IsAdmin:     principal.IsAdmin,
		MFAVerified: principal.MFAVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserID.String(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// Parse verifies token and maps its claims back to a session.
func (s *jwtTokenService) Parse(token string) (*authDomain.Session, error) {
	c := &claims{}
	parsed, err := jwt.ParseWithClaims(
		token,
		c,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return nil, apperrors.Wrap(authDomain.ErrInvalidToken, err.Error())
	}
	if !parsed.Valid {
		return nil, authDomain.ErrInvalidToken
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, apperrors.Wrap(authDomain.ErrInvalidToken, "subject is not a valid user id")
	}
	if c.SessionID == "" {
		return nil, apperrors.Wrap(authDomain.ErrInvalidToken, "missing session id")
	}
	trust := c.TrustLevel
	if trust == "" {
		trust = authDomain.TrustStandard
	}
	if !trust.IsValid() {
		return nil, apperrors.Wrapf(authDomain.ErrInvalidToken, "unknown trust level %q", trust)
	}

	return &authDomain.Session{
		Principal: authDomain.Principal{
			UserID:      userID,
			SessionID:   c.SessionID,
			Email:       c.Email,
			TrustLevel:  trust,
			IsAdmin:     c.IsAdmin,
			MFAVerified: c.MFAVerified,
		},
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

// NewJWTTokenService creates a TokenService signing HS256 tokens with secret.
func NewJWTTokenService(secret []byte, issuer, audience string, clk clock.Clock) (TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, ErrWeakSecret
	}
	return &jwtTokenService{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
		clock:    clk,
	}, nil
}
