// Package http provides the HTTP handler for unified access checks.
package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	accessDomain "github.com/allisson/sentinel/internal/access/domain"
	"github.com/allisson/sentinel/internal/access/http/dto"
	accessUseCase "github.com/allisson/sentinel/internal/access/usecase"
	authHTTP "github.com/allisson/sentinel/internal/auth/http"
	apperrors "github.com/allisson/sentinel/internal/errors"
	"github.com/allisson/sentinel/internal/httputil"
	customValidation "github.com/allisson/sentinel/internal/validation"
)

// AccessHandler handles access check requests.
type AccessHandler struct {
	accessUseCase accessUseCase.AccessUseCase
	logger        *slog.Logger
}

// NewAccessHandler creates a new access handler.
func NewAccessHandler(accessUseCase accessUseCase.AccessUseCase, logger *slog.Logger) *AccessHandler {
	return &AccessHandler{
		accessUseCase: accessUseCase,
		logger:        logger,
	}
}

// CheckHandler evaluates the caller's access to a resource.
// POST /v1/access/check - Returns 200 OK with the decision, allowed or not.
// A decision that could not be fully evaluated returns 503. A decision that was made but not
// audited is still returned, with a Warning header.
func (h *AccessHandler) CheckHandler(c *gin.Context) {
	var req dto.CheckAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	accessReq := &accessDomain.Request{
		Subject:      authHTTP.GetPrincipal(c.Request.Context()),
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		Action:       req.Action,
		Checks:       req.Models(),
		Context: accessDomain.RequestContext{
			ClientIP:   c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			DeviceID:   req.DeviceID,
			TLS:        isTLS(c),
			Attributes: req.Attributes,
		},
	}

	decision, err := h.accessUseCase.CheckAccess(c.Request.Context(), accessReq)
	if err != nil {
		if decision == nil || !auditOnlyFailure(err) {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		h.logger.Error("access decision not audited",
			slog.String("resource_type", req.ResourceType),
			slog.String("resource_id", req.ResourceID),
			slog.Bool("allowed", decision.Allowed),
			slog.Any("error", err),
		)
		c.Header("Warning", `199 sentinel "decision was not recorded in the audit trail"`)
	}

	c.JSON(http.StatusOK, dto.MapDecisionToResponse(decision))
}

// auditOnlyFailure reports whether err means the decision was fully evaluated and only its
// audit event was lost.
func auditOnlyFailure(err error) bool {
	return apperrors.Is(err, accessDomain.ErrAuditEmission) && !apperrors.Is(err, accessDomain.ErrEvaluationFailed)
}

// isTLS reports whether the request arrived over TLS, directly or through a terminating proxy.
// X-Forwarded-Proto from untrusted peers is removed by the router before it gets here.
func isTLS(c *gin.Context) bool {
	return c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https")
}
