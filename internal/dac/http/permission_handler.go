// Package http provides HTTP handlers for discretionary access control: permission grants,
// ownership transfers and sharing links.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/sentinel/internal/auth/http"
	dacDomain "github.com/allisson/sentinel/internal/dac/domain"
	"github.com/allisson/sentinel/internal/dac/http/dto"
	dacUseCase "github.com/allisson/sentinel/internal/dac/usecase"
	"github.com/allisson/sentinel/internal/httputil"
	customValidation "github.com/allisson/sentinel/internal/validation"
)

// PermissionHandler handles HTTP requests for per-user resource grants.
type PermissionHandler struct {
	permissionUseCase dacUseCase.PermissionUseCase
	logger            *slog.Logger
}

// NewPermissionHandler creates a new permission handler.
func NewPermissionHandler(permissionUseCase dacUseCase.PermissionUseCase, logger *slog.Logger) *PermissionHandler {
	return &PermissionHandler{
		permissionUseCase: permissionUseCase,
		logger:            logger,
	}
}

// GrantHandler sets a user's rights on a resource, replacing any previous grant.
// PUT /v1/resources/:resource_type/:resource_id/permissions/:user_id - Returns 200 OK.
func (h *PermissionHandler) GrantHandler(c *gin.Context) {
	userID, err := httputil.ParseUUIDParam(c, "user_id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.GrantPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	grant, err := h.permissionUseCase.GrantPermission(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		req.ToDomain(c.Param("resource_type"), c.Param("resource_id"), userID),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPermissionToResponse(grant))
}

// RevokeHandler clears a user's grant on a resource.
// DELETE /v1/resources/:resource_type/:resource_id/permissions/:user_id - Returns 204 No Content.
func (h *PermissionHandler) RevokeHandler(c *gin.Context) {
	userID, err := httputil.ParseUUIDParam(c, "user_id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	err = h.permissionUseCase.RevokePermission(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		&dacDomain.RevokePermissionInput{
			ResourceType: c.Param("resource_type"),
			ResourceID:   c.Param("resource_id"),
			UserID:       userID,
		},
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListHandler lists the grants on a resource.
// GET /v1/resources/:resource_type/:resource_id/permissions - Returns 200 OK.
func (h *PermissionHandler) ListHandler(c *gin.Context) {
	grants, err := h.permissionUseCase.ListPermissions(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		c.Param("resource_type"),
		c.Param("resource_id"),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPermissionsToResponse(grants))
}
