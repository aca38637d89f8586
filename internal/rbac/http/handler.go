// Package http provides HTTP handlers for roles, role assignments and role requests.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	authHTTP "github.com/allisson/sentinel/internal/auth/http"
	"github.com/allisson/sentinel/internal/httputil"
	rbacDomain "github.com/allisson/sentinel/internal/rbac/domain"
	"github.com/allisson/sentinel/internal/rbac/http/dto"
	rbacUseCase "github.com/allisson/sentinel/internal/rbac/usecase"
	customValidation "github.com/allisson/sentinel/internal/validation"
)

// RoleHandler handles HTTP requests for role-based access control.
type RoleHandler struct {
	rbacUseCase rbacUseCase.RBACUseCase
	logger      *slog.Logger
}

// NewRoleHandler creates a new role handler.
func NewRoleHandler(rbacUseCase rbacUseCase.RBACUseCase, logger *slog.Logger) *RoleHandler {
	return &RoleHandler{
		rbacUseCase: rbacUseCase,
		logger:      logger,
	}
}

// CreateRoleHandler creates a role.
// POST /v1/roles - Returns 201 Created.
func (h *RoleHandler) CreateRoleHandler(c *gin.Context) {
	var req dto.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	role, err := h.rbacUseCase.CreateRole(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		req.ToDomain(),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRoleToResponse(role))
}

// GetRoleHandler returns a role.
// GET /v1/roles/:id - Returns 200 OK.
func (h *RoleHandler) GetRoleHandler(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	role, err := h.rbacUseCase.GetRole(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRoleToResponse(role))
}

// ListRolesHandler lists roles ordered by name.
// GET /v1/roles?offset=0&limit=50 - Returns 200 OK.
func (h *RoleHandler) ListRolesHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	roles, err := h.rbacUseCase.ListRoles(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRolesToResponse(roles))
}

// AssignRoleHandler grants a role directly.
// POST /v1/role-assignments - Returns 201 Created.
func (h *RoleHandler) AssignRoleHandler(c *gin.Context) {
	var req dto.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	assignment, err := h.rbacUseCase.AssignRole(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		req.ToDomain(),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapAssignmentToResponse(assignment))
}

// RevokeRoleHandler revokes a user's active assignments of a role.
// POST /v1/role-assignments/revoke - Returns 204 No Content.
func (h *RoleHandler) RevokeRoleHandler(c *gin.Context) {
	var req dto.RevokeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	err := h.rbacUseCase.RevokeRole(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		req.ToDomain(),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RequestRoleHandler opens a role request.
// POST /v1/role-requests - Returns 201 Created.
func (h *RoleHandler) RequestRoleHandler(c *gin.Context) {
	var req dto.CreateRoleRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	principal := authHTTP.GetPrincipal(c.Request.Context())
	request, err := h.rbacUseCase.RequestRole(c.Request.Context(), principal, req.ToDomain(principal.UserID))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRoleRequestToResponse(request))
}

// ListPendingRequestsHandler lists undecided role requests. Requires an administrator.
// GET /v1/role-requests?offset=0&limit=50 - Returns 200 OK.
func (h *RoleHandler) ListPendingRequestsHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	requests, err := h.rbacUseCase.ListPendingRequests(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRoleRequestsToResponse(requests))
}

// ApproveRequestHandler approves a role request and creates its assignment.
// POST /v1/role-requests/:id/approve - Returns 201 Created.
func (h *RoleHandler) ApproveRequestHandler(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.ApproveRoleRequestRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.HandleBadRequestGin(c, err, h.logger)
			return
		}
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	assignment, err := h.rbacUseCase.ApproveRoleRequest(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		&rbacDomain.ApproveRoleRequestInput{
			RequestID:   id,
			IsTemporary: req.IsTemporary,
			ExpiresAt:   req.ExpiresAt,
		},
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapAssignmentToResponse(assignment))
}

// RejectRequestHandler rejects a role request.
// POST /v1/role-requests/:id/reject - Returns 200 OK.
func (h *RoleHandler) RejectRequestHandler(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.RejectRoleRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	request, err := h.rbacUseCase.RejectRoleRequest(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		&rbacDomain.RejectRoleRequestInput{RequestID: id, Reason: req.Reason},
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRoleRequestToResponse(request))
}

// ListUserAssignmentsHandler lists a user's active assignments. Self or administrator.
// GET /v1/users/:user_id/roles - Returns 200 OK.
func (h *RoleHandler) ListUserAssignmentsHandler(c *gin.Context) {
	userID, err := httputil.ParseUUIDParam(c, "user_id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if !authHTTP.GetPrincipal(c.Request.Context()).IsSelfOrAdmin(userID) {
		httputil.HandleErrorGin(c, authDomain.ErrAdminRequired, h.logger)
		return
	}

	assignments, err := h.rbacUseCase.ListAssignments(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapActiveAssignmentsToResponse(assignments))
}

// EffectivePermissionsHandler returns the union of a user's active grants. Self or administrator.
// GET /v1/users/:user_id/permissions - Returns 200 OK.
func (h *RoleHandler) EffectivePermissionsHandler(c *gin.Context) {
	userID, err := httputil.ParseUUIDParam(c, "user_id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if !authHTTP.GetPrincipal(c.Request.Context()).IsSelfOrAdmin(userID) {
		httputil.HandleErrorGin(c, authDomain.ErrAdminRequired, h.logger)
		return
	}

	perms, err := h.rbacUseCase.EffectivePermissions(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEffectivePermissionsToResponse(perms))
}
