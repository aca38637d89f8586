package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authUseCase "github.com/allisson/sentinel/internal/auth/usecase"
	apperrors "github.com/allisson/sentinel/internal/errors"
	"github.com/allisson/sentinel/internal/httputil"
)

const bearerPrefix = "bearer "

// bearerToken extracts the token from an Authorization header. The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// AuthenticationMiddleware requires a valid Bearer token and stores the session in the request context.
//
// Error handling:
//   - Missing or malformed Authorization header → 401 Unauthorized
//   - Invalid, expired or revoked token → 401 Unauthorized
//   - Revocation store unavailable → 503 Service Unavailable
func AuthenticationMiddleware(authUC authUseCase.AuthUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.Debug("authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		authenticate(c, authUC, token, logger)
	}
}

// OptionalAuthenticationMiddleware authenticates the request when an Authorization header is
// present and lets anonymous requests through. A present but invalid token is still rejected.
func OptionalAuthenticationMiddleware(authUC authUseCase.AuthUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token, ok := bearerToken(header)
		if !ok {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		authenticate(c, authUC, token, logger)
	}
}

func authenticate(c *gin.Context, authUC authUseCase.AuthUseCase, token string, logger *slog.Logger) {
	session, err := authUC.Authenticate(c.Request.Context(), token)
	if err != nil {
		logger.Debug("authentication failed", slog.Any("error", err))
		httputil.HandleErrorGin(c, err, logger)
		c.Abort()
		return
	}

	c.Request = c.Request.WithContext(WithSession(c.Request.Context(), session))

	logger.Debug("authentication successful",
		slog.String("user_id", session.Principal.UserID.String()),
		slog.String("session_id", session.Principal.SessionID))

	c.Next()
}

// RequireAdminMiddleware rejects principals that cannot run administrative workflows.
// It must run after AuthenticationMiddleware.
func RequireAdminMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c.Request.Context())
		if principal == nil {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}
		if !principal.CanAdminister() {
			logger.Debug("authorization failed: admin privileges required",
				slog.String("user_id", principal.UserID.String()),
				slog.String("path", c.Request.URL.Path))
			httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrForbidden, "admin privileges required"), logger)
			c.Abort()
			return
		}
		c.Next()
	}
}
