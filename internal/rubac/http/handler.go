// Package http provides HTTP handlers for context rules, the holiday calendar and device profiles.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	authHTTP "github.com/allisson/sentinel/internal/auth/http"
	apperrors "github.com/allisson/sentinel/internal/errors"
	"github.com/allisson/sentinel/internal/httputil"
	"github.com/allisson/sentinel/internal/rubac/http/dto"
	rubacUseCase "github.com/allisson/sentinel/internal/rubac/usecase"
	customValidation "github.com/allisson/sentinel/internal/validation"
)

// ContextHandler handles HTTP requests for rule-based context administration.
type ContextHandler struct {
	rubacUseCase rubacUseCase.RuBACUseCase
	logger       *slog.Logger
}

// NewContextHandler creates a new context handler.
func NewContextHandler(rubacUseCase rubacUseCase.RuBACUseCase, logger *slog.Logger) *ContextHandler {
	return &ContextHandler{
		rubacUseCase: rubacUseCase,
		logger:       logger,
	}
}

// CreateRuleHandler creates a context rule.
// POST /v1/context-rules - Returns 201 Created.
func (h *ContextHandler) CreateRuleHandler(c *gin.Context) {
	var req dto.RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	rule, err := h.rubacUseCase.CreateRule(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		req.ToDomain(),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRuleToResponse(rule))
}

// UpdateRuleHandler replaces a context rule.
// PUT /v1/context-rules/:id - Returns 200 OK.
func (h *ContextHandler) UpdateRuleHandler(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	rule, err := h.rubacUseCase.UpdateRule(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		id,
		req.ToDomain(),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRuleToResponse(rule))
}

// DeleteRuleHandler deletes a context rule.
// DELETE /v1/context-rules/:id - Returns 204 No Content.
func (h *ContextHandler) DeleteRuleHandler(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.rubacUseCase.DeleteRule(c.Request.Context(), authHTTP.GetPrincipal(c.Request.Context()), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListRulesHandler lists context rules.
// GET /v1/context-rules?offset=0&limit=50 - Returns 200 OK.
func (h *ContextHandler) ListRulesHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	rules, err := h.rubacUseCase.ListRules(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRulesToResponse(rules))
}

// AddHolidayHandler adds a day to the holiday calendar.
// POST /v1/holidays - Returns 201 Created.
func (h *ContextHandler) AddHolidayHandler(c *gin.Context) {
	var req dto.HolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	day, _ := dto.ParseDay(req.Day)
	holiday, err := h.rubacUseCase.AddHoliday(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		day,
		req.Name,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapHolidayToResponse(holiday))
}

// DeleteHolidayHandler removes a day from the holiday calendar.
// DELETE /v1/holidays/:day - Returns 204 No Content.
func (h *ContextHandler) DeleteHolidayHandler(c *gin.Context) {
	day, err := dto.ParseDay(c.Param("day"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, apperrors.Wrap(err, "invalid day"), h.logger)
		return
	}

	if err := h.rubacUseCase.DeleteHoliday(c.Request.Context(), authHTTP.GetPrincipal(c.Request.Context()), day); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListHolidaysHandler lists the holiday calendar.
// GET /v1/holidays - Returns 200 OK.
func (h *ContextHandler) ListHolidaysHandler(c *gin.Context) {
	holidays, err := h.rubacUseCase.ListHolidays(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapHolidaysToResponse(holidays))
}

// RegisterDeviceHandler registers one of the caller's devices. New devices start UNKNOWN.
// POST /v1/devices - Returns 200 OK.
func (h *ContextHandler) RegisterDeviceHandler(c *gin.Context) {
	var req dto.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	device, err := h.rubacUseCase.RegisterDevice(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		req.ToDomain(),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDeviceToResponse(device))
}

// UpdateDeviceTrustHandler sets a device's trust level. Requires an administrator.
// PUT /v1/users/:user_id/devices/:device_id/trust - Returns 200 OK.
func (h *ContextHandler) UpdateDeviceTrustHandler(c *gin.Context) {
	userID, err := httputil.ParseUUIDParam(c, "user_id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.UpdateTrustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	device, err := h.rubacUseCase.UpdateDeviceTrust(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		req.ToDomain(userID, c.Param("device_id")),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDeviceToResponse(device))
}

// ListDevicesHandler lists a user's devices. Self or administrator.
// GET /v1/users/:user_id/devices - Returns 200 OK.
func (h *ContextHandler) ListDevicesHandler(c *gin.Context) {
	userID, err := httputil.ParseUUIDParam(c, "user_id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if !authHTTP.GetPrincipal(c.Request.Context()).IsSelfOrAdmin(userID) {
		httputil.HandleErrorGin(c, authDomain.ErrAdminRequired, h.logger)
		return
	}

	devices, err := h.rubacUseCase.ListDevices(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDevicesToResponse(devices))
}
