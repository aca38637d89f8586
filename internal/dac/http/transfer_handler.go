package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	authHTTP "github.com/allisson/sentinel/internal/auth/http"
	dacDomain "github.com/allisson/sentinel/internal/dac/domain"
	"github.com/allisson/sentinel/internal/dac/http/dto"
	dacUseCase "github.com/allisson/sentinel/internal/dac/usecase"
	"github.com/allisson/sentinel/internal/httputil"
	customValidation "github.com/allisson/sentinel/internal/validation"
)

// TransferHandler handles HTTP requests for ownership transfers.
type TransferHandler struct {
	transferUseCase dacUseCase.TransferUseCase
	logger          *slog.Logger
}

// NewTransferHandler creates a new transfer handler.
func NewTransferHandler(transferUseCase dacUseCase.TransferUseCase, logger *slog.Logger) *TransferHandler {
	return &TransferHandler{
		transferUseCase: transferUseCase,
		logger:          logger,
	}
}

// RequestHandler opens an ownership transfer from the caller.
// POST /v1/resources/:resource_type/:resource_id/transfers - Returns 201 Created.
func (h *TransferHandler) RequestHandler(c *gin.Context) {
	var req dto.RequestTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	transfer, err := h.transferUseCase.RequestOwnershipTransfer(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		req.ToDomain(c.Param("resource_type"), c.Param("resource_id")),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapTransferToResponse(transfer))
}

// ListPendingHandler lists undecided transfers the caller takes part in.
// GET /v1/transfers - Returns 200 OK.
func (h *TransferHandler) ListPendingHandler(c *gin.Context) {
	principal := authHTTP.GetPrincipal(c.Request.Context())
	transfers, err := h.transferUseCase.ListPendingTransfers(c.Request.Context(), principal.UserID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTransfersToResponse(transfers))
}

// ApproveHandler approves a transfer. Only the receiving user may approve.
// POST /v1/transfers/:id/approve - Returns 200 OK.
func (h *TransferHandler) ApproveHandler(c *gin.Context) {
	h.decide(c, h.transferUseCase.ApproveOwnershipTransfer)
}

// RejectHandler rejects a transfer. Either party may reject.
// POST /v1/transfers/:id/reject - Returns 200 OK.
func (h *TransferHandler) RejectHandler(c *gin.Context) {
	h.decide(c, h.transferUseCase.RejectOwnershipTransfer)
}

type decideFunc func(
	ctx context.Context,
	actor *authDomain.Principal,
	input *dacDomain.DecideTransferInput,
) (*dacDomain.OwnershipTransfer, error)

func (h *TransferHandler) decide(c *gin.Context, decide decideFunc) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.DecideTransferRequest
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

	transfer, err := decide(
		c.Request.Context(),
		authHTTP.GetPrincipal(c.Request.Context()),
		&dacDomain.DecideTransferInput{TransferID: id, Reason: req.Reason},
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTransferToResponse(transfer))
}
