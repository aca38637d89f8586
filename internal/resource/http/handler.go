// Package http provides HTTP handlers for the resource registry.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	authHTTP "github.com/allisson/sentinel/internal/auth/http"
	apperrors "github.com/allisson/sentinel/internal/errors"
	"github.com/allisson/sentinel/internal/httputil"
	"github.com/allisson/sentinel/internal/resource/http/dto"
	resourceUseCase "github.com/allisson/sentinel/internal/resource/usecase"
	customValidation "github.com/allisson/sentinel/internal/validation"
)

// ResourceHandler handles HTTP requests for registered resources.
type ResourceHandler struct {
	resourceUseCase resourceUseCase.ResourceUseCase
	logger          *slog.Logger
}

// NewResourceHandler creates a new resource handler.
func NewResourceHandler(resourceUseCase resourceUseCase.ResourceUseCase, logger *slog.Logger) *ResourceHandler {
	return &ResourceHandler{
		resourceUseCase: resourceUseCase,
		logger:          logger,
	}
}

// RegisterHandler registers a resource owned by the caller.
// POST /v1/resources - Returns 201 Created.
func (h *ResourceHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	resource, err := h.resourceUseCase.Register(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		req.ToDomain(),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapResourceToResponse(resource))
}

// GetHandler returns a registered resource.
// GET /v1/resources/:resource_type/:resource_id - Returns 200 OK.
func (h *ResourceHandler) GetHandler(c *gin.Context) {
	resource, err := h.resourceUseCase.Get(c.Request.Context(), c.Param("resource_type"), c.Param("resource_id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapResourceToResponse(resource))
}

// ReclassifyHandler changes the MAC label of a resource. Requires an administrator.
// PUT /v1/resources/:resource_type/:resource_id/classification - Returns 200 OK.
func (h *ResourceHandler) ReclassifyHandler(c *gin.Context) {
	var req dto.ReclassifyResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	resource, err := h.resourceUseCase.Reclassify(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		req.ToDomain(c.Param("resource_type"), c.Param("resource_id")),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapResourceToResponse(resource))
}

// ListOwnedHandler lists resources owned by the caller, or by owner_id for administrators.
// GET /v1/resources?owner_id=&offset=0&limit=50 - Returns 200 OK.
func (h *ResourceHandler) ListOwnedHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	principal := authHTTP.GetPrincipal(c.Request.Context())
	ownerID := principal.UserID
	if raw := c.Query("owner_id"); raw != "" {
		ownerID, err = uuid.Parse(raw)
		if err != nil {
			httputil.HandleValidationErrorGin(c, apperrors.Wrap(err, "invalid owner_id"), h.logger)
			return
		}
	}
	if !principal.IsSelfOrAdmin(ownerID) {
		httputil.HandleErrorGin(c, authDomain.ErrAdminRequired, h.logger)
		return
	}

	resources, err := h.resourceUseCase.ListOwned(c.Request.Context(), ownerID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapResourcesToResponse(resources))
}
