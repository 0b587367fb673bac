package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/microfin-loan-engine/internal/domain/partner"
	"github.com/microfin-loan-engine/internal/engine/service"
)

// PartnerHandler handles HTTP requests for partner operations
type PartnerHandler struct {
	partnerService service.PartnerService
	logger         *slog.Logger
}

// NewPartnerHandler creates a new partner handler
func NewPartnerHandler(logger *slog.Logger, partnerService service.PartnerService) *PartnerHandler {
	return &PartnerHandler{
		partnerService: partnerService,
		logger:         logger,
	}
}

// Create registers a capital partner with a fixed share ratio
func (h *PartnerHandler) Create(c *gin.Context) {
	var req CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	p, err := h.partnerService.Create(c.Request.Context(), req.CompanyID, req.Name, req.ShareRatio)
	if err != nil {
		if errors.Is(err, partner.ErrEmptyName) || errors.Is(err, partner.ErrInvalidRatio) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create partner", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, p)
}

// AddTransaction records a capital investment or withdrawal for a partner
func (h *PartnerHandler) AddTransaction(c *gin.Context) {
	idParam := c.Param("id")
	partnerID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid partner ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid partner ID")
		return
	}

	var req PartnerTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	t, err := h.partnerService.AddTransaction(c.Request.Context(), req.CompanyID, partnerID, partner.TransactionType(req.Type), req.Amount, req.Date)
	if err != nil {
		switch {
		case errors.Is(err, partner.ErrPartnerNotFound{}):
			RespondNotFound(c, "Partner not found")
		case errors.Is(err, partner.ErrInvalidAmount), errors.Is(err, partner.ErrInvalidTransactionType):
			RespondBadRequest(c, err.Error())
		default:
			h.logger.Error("Failed to record partner transaction", "partner_id", partnerID, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, t)
}
