// Package http provides HTTP handlers for attribute-based policies and user attributes.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/sentinel/internal/abac/http/dto"
	abacUseCase "github.com/allisson/sentinel/internal/abac/usecase"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	authHTTP "github.com/allisson/sentinel/internal/auth/http"
	"github.com/allisson/sentinel/internal/httputil"
	customValidation "github.com/allisson/sentinel/internal/validation"
)

// PolicyHandler handles HTTP requests for ABAC policies and user attributes.
type PolicyHandler struct {
	abacUseCase abacUseCase.ABACUseCase
	logger      *slog.Logger
}

// NewPolicyHandler creates a new policy handler.
func NewPolicyHandler(abacUseCase abacUseCase.ABACUseCase, logger *slog.Logger) *PolicyHandler {
	return &PolicyHandler{
		abacUseCase: abacUseCase,
		logger:      logger,
	}
}

// CreatePolicyHandler creates a policy.
// POST /v1/policies - Returns 201 Created.
func (h *PolicyHandler) CreatePolicyHandler(c *gin.Context) {
	var req dto.PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	policy, err := h.abacUseCase.CreatePolicy(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		req.ToDomain(),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapPolicyToResponse(policy))
}

// UpdatePolicyHandler replaces a policy.
// PUT /v1/policies/:id - Returns 200 OK.
func (h *PolicyHandler) UpdatePolicyHandler(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	policy, err := h.abacUseCase.UpdatePolicy(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		id,
		req.ToDomain(),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPolicyToResponse(policy))
}

// DeletePolicyHandler deletes a policy.
// DELETE /v1/policies/:id - Returns 204 No Content.
func (h *PolicyHandler) DeletePolicyHandler(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.abacUseCase.DeletePolicy(c.Request.Context(), authHTTP.GetPrincipal(c.Request.Context()), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetPolicyHandler returns a policy.
// GET /v1/policies/:id - Returns 200 OK.
func (h *PolicyHandler) GetPolicyHandler(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	policy, err := h.abacUseCase.GetPolicy(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPolicyToResponse(policy))
}

// ListPoliciesHandler lists policies.
// GET /v1/policies?offset=0&limit=50 - Returns 200 OK.
func (h *PolicyHandler) ListPoliciesHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	policies, err := h.abacUseCase.ListPolicies(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPoliciesToResponse(policies))
}

// SetAttributeHandler creates or replaces a user attribute.
// PUT /v1/users/:user_id/attributes/:name - Returns 200 OK.
func (h *PolicyHandler) SetAttributeHandler(c *gin.Context) {
	userID, err := httputil.ParseUUIDParam(c, "user_id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.SetAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	attribute, err := h.abacUseCase.SetAttribute(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		req.ToDomain(userID, c.Param("name")),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAttributeToResponse(attribute))
}

// DeleteAttributeHandler removes a user attribute.
// DELETE /v1/users/:user_id/attributes/:name - Returns 204 No Content.
func (h *PolicyHandler) DeleteAttributeHandler(c *gin.Context) {
	userID, err := httputil.ParseUUIDParam(c, "user_id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	err = h.abacUseCase.DeleteAttribute(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		userID,
		c.Param("name"),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListAttributesHandler lists a user's unexpired attributes. Self or administrator.
// GET /v1/users/:user_id/attributes - Returns 200 OK.
func (h *PolicyHandler) ListAttributesHandler(c *gin.Context) {
	userID, err := httputil.ParseUUIDParam(c, "user_id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if !authHTTP.GetPrincipal(c.Request.Context()).IsSelfOrAdmin(userID) {
		httputil.HandleErrorGin(c, authDomain.ErrAdminRequired, h.logger)
		return
	}

	attributes, err := h.abacUseCase.ListAttributes(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAttributesToResponse(userID, attributes))
}
