package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/sentinel/internal/auth/http/dto"
	authUseCase "github.com/allisson/sentinel/internal/auth/usecase"
	apperrors "github.com/allisson/sentinel/internal/errors"
	"github.com/allisson/sentinel/internal/httputil"
	customValidation "github.com/allisson/sentinel/internal/validation"
)

// SessionHandler handles HTTP requests for the caller's session.
type SessionHandler struct {
	authUseCase authUseCase.AuthUseCase
	logger      *slog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(authUseCase authUseCase.AuthUseCase, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

// GetCurrentHandler returns the authenticated session.
// GET /v1/sessions/current - Returns 200 OK.
func (h *SessionHandler) GetCurrentHandler(c *gin.Context) {
	session, ok := GetSession(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapSessionToResponse(session))
}

// RevokeCurrentHandler logs out the caller's session.
// POST /v1/sessions/revoke - Returns 204 No Content.
func (h *SessionHandler) RevokeCurrentHandler(c *gin.Context) {
	session, ok := GetSession(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	if err := h.authUseCase.RevokeSession(c.Request.Context(), session); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RevokeHandler revokes any session by ID. Requires an administrator.
// POST /v1/sessions/revoke-by-id - Returns 204 No Content.
func (h *SessionHandler) RevokeHandler(c *gin.Context) {
	var req dto.RevokeSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	err := h.authUseCase.RevokeSessionByID(c.Request.Context(), GetPrincipal(c.Request.Context()), req.SessionID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
