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

// SharingLinkHandler handles HTTP requests for sharing links, including redemption by
// link holders who may be anonymous.
type SharingLinkHandler struct {
	sharingLinkUseCase dacUseCase.SharingLinkUseCase
	logger             *slog.Logger
}

// NewSharingLinkHandler creates a new sharing link handler.
func NewSharingLinkHandler(sharingLinkUseCase dacUseCase.SharingLinkUseCase, logger *slog.Logger) *SharingLinkHandler {
	return &SharingLinkHandler{
		sharingLinkUseCase: sharingLinkUseCase,
		logger:             logger,
	}
}

// CreateHandler mints a sharing link. The plain token is only present in this response.
// POST /v1/resources/:resource_type/:resource_id/links - Returns 201 Created.
func (h *SharingLinkHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateSharingLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	out, err := h.sharingLinkUseCase.CreateSharingLink(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		req.ToDomain(c.Param("resource_type"), c.Param("resource_id")),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapCreateLinkOutputToResponse(out))
}

// ListHandler lists the links on a resource.
// GET /v1/resources/:resource_type/:resource_id/links - Returns 200 OK.
func (h *SharingLinkHandler) ListHandler(c *gin.Context) {
	links, err := h.sharingLinkUseCase.ListSharingLinks(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		c.Param("resource_type"),
		c.Param("resource_id"),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSharingLinksToResponse(links))
}

// RevokeHandler revokes a link.
// DELETE /v1/links/:id - Returns 204 No Content.
func (h *SharingLinkHandler) RevokeHandler(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	err = h.sharingLinkUseCase.RevokeSharingLink(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		id,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// VerifyHandler checks a link without consuming a use.
// POST /v1/share/:token/verify - Returns 200 OK. Authentication is optional.
func (h *SharingLinkHandler) VerifyHandler(c *gin.Context) {
	input, ok := h.bindVerifyInput(c)
	if !ok {
		return
	}

	link, err := h.sharingLinkUseCase.VerifySharingLink(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapShareGrantToResponse(link))
}

// RedeemHandler verifies a link and consumes one use.
// POST /v1/share/:token/redeem - Returns 200 OK. Authentication is optional.
func (h *SharingLinkHandler) RedeemHandler(c *gin.Context) {
	input, ok := h.bindVerifyInput(c)
	if !ok {
		return
	}

	link, err := h.sharingLinkUseCase.UseSharingLink(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapShareGrantToResponse(link))
}

func (h *SharingLinkHandler) bindVerifyInput(c *gin.Context) (*dacDomain.VerifyLinkInput, bool) {
	var req dto.RedeemSharingLinkRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.HandleBadRequestGin(c, err, h.logger)
			return nil, false
		}
	}

	input := &dacDomain.VerifyLinkInput{
		Token:    c.Param("token"),
		Password: req.Password,
	}
	if principal := authHTTP.GetPrincipal(c.Request.Context()); principal != nil {
		userID := principal.UserID
		input.Authenticated = true
		input.CallerEmail = principal.Email
		input.CallerID = &userID
	}
	return input, true
}
