package handler

import (
	"errors"
	"net/http"

	"github.com/rmoralez/pos-sub000/internal/apierror"
	"github.com/rmoralez/pos-sub000/internal/middleware"
	"github.com/rmoralez/pos-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type InvoicesHandler struct{ svc *service.InvoiceService }

func NewInvoicesHandler(svc *service.InvoiceService) *InvoicesHandler {
	return &InvoicesHandler{svc: svc}
}

// GetBySale godoc
// @Summary      Fiscal invoice of a sale
// @Description  Returns the invoice once issuance succeeded. A 404 while the sale's fiscal status is pending is expected.
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200 {object} model.Invoice
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id}/invoice [get]
func (h *InvoicesHandler) GetBySale(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	invoice, err := h.svc.GetBySale(c.Request.Context(), claims.TenantID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, apierror.New("no invoice issued for this sale"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// Retry godoc
// @Summary      Retry fiscal issuance
// @Description  Re-enqueues issuance for a sale whose fiscal status is rejected or error. Issued sales are rejected.
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      202
// @Failure      400 {object} apierror.APIError
// @Router       /v1/sales/{id}/invoice/retry [post]
func (h *InvoicesHandler) Retry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	if err := h.svc.Retry(c.Request.Context(), claims.TenantID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
