// Package http provides HTTP handlers for the clearance lifecycle.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	authHTTP "github.com/allisson/sentinel/internal/auth/http"
	clearanceDomain "github.com/allisson/sentinel/internal/clearance/domain"
	"github.com/allisson/sentinel/internal/clearance/http/dto"
	clearanceUseCase "github.com/allisson/sentinel/internal/clearance/usecase"
	"github.com/allisson/sentinel/internal/httputil"
	customValidation "github.com/allisson/sentinel/internal/validation"
)

const defaultReviewWindowDays = 30

// ClearanceHandler handles HTTP requests for clearances, escalations and reviews.
type ClearanceHandler struct {
	clearanceUseCase clearanceUseCase.ClearanceUseCase
	logger           *slog.Logger
}

// NewClearanceHandler creates a new clearance handler.
func NewClearanceHandler(
	clearanceUseCase clearanceUseCase.ClearanceUseCase,
	logger *slog.Logger,
) *ClearanceHandler {
	return &ClearanceHandler{
		clearanceUseCase: clearanceUseCase,
		logger:           logger,
	}
}

// AssignHandler sets a user's clearance.
// PUT /v1/clearances/users/:user_id - Returns 200 OK.
func (h *ClearanceHandler) AssignHandler(c *gin.Context) {
	userID, err := httputil.ParseUUIDParam(c, "user_id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.AssignClearanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	clearance, err := h.clearanceUseCase.Assign(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		req.ToDomain(userID),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapClearanceToResponse(clearance))
}

// GetHandler returns a user's effective clearance. Callers may read their own clearance;
// administrators may read any.
// GET /v1/clearances/users/:user_id - Returns 200 OK.
func (h *ClearanceHandler) GetHandler(c *gin.Context) {
	userID, err := httputil.ParseUUIDParam(c, "user_id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if !authHTTP.GetPrincipal(c.Request.Context()).IsSelfOrAdmin(userID) {
		httputil.HandleErrorGin(c, authDomain.ErrAdminRequired, h.logger)
		return
	}

	clearance, err := h.clearanceUseCase.Get(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapClearanceToResponse(clearance))
}

// RequestEscalationHandler asks for a higher clearance for the caller.
// POST /v1/clearances/escalations - Returns 201 Created.
func (h *ClearanceHandler) RequestEscalationHandler(c *gin.Context) {
	var req dto.RequestEscalationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	escalation, err := h.clearanceUseCase.RequestEscalation(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		req.ToDomain(),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapEscalationToResponse(escalation))
}

// ListPendingEscalationsHandler lists undecided escalations. Requires an administrator.
// GET /v1/clearances/escalations?offset=0&limit=50 - Returns 200 OK.
func (h *ClearanceHandler) ListPendingEscalationsHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	escalations, err := h.clearanceUseCase.ListPendingEscalations(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEscalationsToResponse(escalations))
}

// DecideEscalationHandler approves or rejects an escalation.
// POST /v1/clearances/escalations/:id/decide - Returns 200 OK.
func (h *ClearanceHandler) DecideEscalationHandler(c *gin.Context) {
	escalationID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.DecideEscalationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	escalation, err := h.clearanceUseCase.DecideEscalation(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		&clearanceDomain.DecideEscalationInput{
			EscalationID: escalationID,
			Approved:     *req.Approved,
			Notes:        req.Notes,
		},
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEscalationToResponse(escalation))
}

// ReviewHandler records a periodic clearance review.
// POST /v1/clearances/users/:user_id/review - Returns 201 Created.
func (h *ClearanceHandler) ReviewHandler(c *gin.Context) {
	userID, err := httputil.ParseUUIDParam(c, "user_id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.ReviewClearanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	review, err := h.clearanceUseCase.Review(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		req.ToDomain(userID),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapReviewToResponse(review))
}

// ReviewDueHandler lists clearances whose review is due within the window. Requires an administrator.
// GET /v1/clearances/review-due?days=30 - Returns 200 OK.
func (h *ClearanceHandler) ReviewDueHandler(c *gin.Context) {
	days := defaultReviewWindowDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid days: must be an integer"), h.logger)
			return
		}
		days = parsed
	}

	clearances, err := h.clearanceUseCase.GetUsersRequiringReview(c.Request.Context(), days)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapClearancesToResponse(clearances))
}
