// Package http provides HTTP handlers for reading and verifying the audit trail.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	"github.com/allisson/sentinel/internal/audit/http/dto"
	auditUseCase "github.com/allisson/sentinel/internal/audit/usecase"
	"github.com/allisson/sentinel/internal/httputil"
)

// AuditHandler handles HTTP requests for audit events. All routes require an administrator.
type AuditHandler struct {
	auditUseCase auditUseCase.AuditUseCase
	logger       *slog.Logger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(auditUseCase auditUseCase.AuditUseCase, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		auditUseCase: auditUseCase,
		logger:       logger,
	}
}

// ListHandler retrieves audit events, newest first.
// GET /v1/audit-events?offset=0&limit=50&actor_id=&action=&resource_type=&resource_id=
// &created_at_from=2026-02-01T00:00:00Z&created_at_to=2026-02-14T23:59:59Z - Returns 200 OK.
// Both time boundaries are inclusive.
func (h *AuditHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	from, err := httputil.ParseTimeQuery(c, "created_at_from")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	to, err := httputil.ParseTimeQuery(c, "created_at_to")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if from != nil && to != nil && from.After(*to) {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("created_at_from must be before or equal to created_at_to"),
			h.logger)
		return
	}

	actorID, err := dto.ParseActorID(c.Query("actor_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid actor_id: must be a valid UUID"), h.logger)
		return
	}

	filter := auditDomain.ListFilter{
		ActorID:      actorID,
		Action:       c.Query("action"),
		ResourceType: c.Query("resource_type"),
		ResourceID:   c.Query("resource_id"),
		From:         from,
		To:           to,
	}
	events, err := h.auditUseCase.List(c.Request.Context(), filter, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditEventsToResponse(events))
}

// GetHandler returns one audit event.
// GET /v1/audit-events/:id - Returns 200 OK.
func (h *AuditHandler) GetHandler(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	event, err := h.auditUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditEventToResponse(event))
}

// VerifyHandler walks the whole chain and reports events that fail verification.
// POST /v1/audit-events/verify - Returns 200 OK whether or not the chain passed.
func (h *AuditHandler) VerifyHandler(c *gin.Context) {
	report, err := h.auditUseCase.VerifyChain(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if !report.Passed() {
		h.logger.Warn("audit chain verification failed",
			slog.Int64("invalid_count", report.InvalidCount),
			slog.Bool("head_mismatch", report.HeadMismatch),
		)
	}
	c.JSON(http.StatusOK, dto.MapVerificationToResponse(report))
}
