package handler

import (
	"context"
	"net/http"

	"github.com/rmoralez/pos-sub000/internal/apierror"
	"github.com/rmoralez/pos-sub000/internal/dto"
	"github.com/rmoralez/pos-sub000/internal/middleware"
	"github.com/rmoralez/pos-sub000/internal/model"
	"github.com/rmoralez/pos-sub000/internal/repository"
	"github.com/rmoralez/pos-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PurchasesHandler struct{ svc *service.PurchaseService }

func NewPurchasesHandler(svc *service.PurchaseService) *PurchasesHandler {
	return &PurchasesHandler{svc: svc}
}

// CreateSupplier godoc
// @Summary      Create a supplier
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.SupplierRequest true "Supplier"
// @Success      201  {object} model.Supplier
// @Failure      400  {object} apierror.APIError
// @Router       /v1/suppliers [post]
func (h *PurchasesHandler) CreateSupplier(c *gin.Context) {
	var req dto.SupplierRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	supplier := &model.Supplier{
		TenantID: claims.TenantID,
		Name:     req.Name,
		TaxID:    req.TaxID,
		Email:    req.Email,
		Phone:    req.Phone,
		IsActive: true,
	}
	if err := h.svc.CreateSupplier(c.Request.Context(), supplier); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

// ListSuppliers godoc
// @Summary      List suppliers
// @Tags         purchases
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} model.Supplier
// @Router       /v1/suppliers [get]
func (h *PurchasesHandler) ListSuppliers(c *gin.Context) {
	claims := middleware.GetClaims(c)

	suppliers, err := h.svc.ListSuppliers(c.Request.Context(), claims.TenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list suppliers"))
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

// CreateOrder godoc
// @Summary      Create a purchase order
// @Description  Prices the items at catalog cost (or the given override) and stores the order as DRAFT.
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreatePurchaseRequest true "Order detail"
// @Success      201  {object} model.PurchaseOrder
// @Failure      400  {object} apierror.APIError
// @Router       /v1/purchase-orders [post]
func (h *PurchasesHandler) CreateOrder(c *gin.Context) {
	var req dto.CreatePurchaseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	items := make([]service.PurchaseItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.PurchaseItemInput{
			ProductID: mustUUID(it.ProductID),
			VariantID: uuidPtr(it.VariantID),
			Quantity:  it.Quantity,
			UnitCost:  it.UnitCost,
		}
	}
	order, err := h.svc.CreateOrder(c.Request.Context(), service.PurchaseInput{
		TenantID:   claims.TenantID,
		SupplierID: mustUUID(req.SupplierID),
		LocationID: mustUUID(req.LocationID),
		UserID:     claims.UserID,
		Items:      items,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// SendOrder godoc
// @Summary      Mark an order as sent to the supplier
// @Tags         purchases
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Order UUID"
// @Success      200 {object} model.PurchaseOrder
// @Failure      400 {object} apierror.APIError
// @Router       /v1/purchase-orders/{id}/send [post]
func (h *PurchasesHandler) SendOrder(c *gin.Context) {
	h.transition(c, h.svc.Send)
}

// CancelOrder godoc
// @Summary      Cancel an order
// @Description  Cancels a DRAFT or SENT order. Received orders cannot be cancelled.
// @Tags         purchases
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Order UUID"
// @Success      200 {object} model.PurchaseOrder
// @Failure      400 {object} apierror.APIError
// @Router       /v1/purchase-orders/{id}/cancel [post]
func (h *PurchasesHandler) CancelOrder(c *gin.Context) {
	h.transition(c, h.svc.Cancel)
}

// ReceiveOrder godoc
// @Summary      Receive an order
// @Description  Increments stock for every line and raises the supplier invoice that treasury later settles.
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                     true "Order UUID"
// @Param        body body dto.ReceivePurchaseRequest true "Supplier invoice number"
// @Success      200  {object} map[string]interface{}
// @Failure      400  {object} apierror.APIError
// @Router       /v1/purchase-orders/{id}/receive [post]
func (h *PurchasesHandler) ReceiveOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ReceivePurchaseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	order, invoice, err := h.svc.Receive(c.Request.Context(), claims.TenantID, id, req.InvoiceNumber, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "invoice": invoice})
}

// GetOrder godoc
// @Summary      Get a purchase order
// @Tags         purchases
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Order UUID"
// @Success      200 {object} model.PurchaseOrder
// @Failure      404 {object} apierror.APIError
// @Router       /v1/purchase-orders/{id} [get]
func (h *PurchasesHandler) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	order, err := h.svc.GetOrder(c.Request.Context(), claims.TenantID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListOrders godoc
// @Summary      List purchase orders
// @Tags         purchases
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "DRAFT | SENT | RECEIVED | CANCELLED | all"
// @Param        page   query int    false "Page (default 1)"
// @Param        limit  query int    false "Rows per page (default 50)"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} apierror.APIError
// @Router       /v1/purchase-orders [get]
func (h *PurchasesHandler) ListOrders(c *gin.Context) {
	var filter dto.PurchaseFilter
	if !bindQuery(c, &filter) {
		return
	}
	claims := middleware.GetClaims(c)

	orders, total, err := h.svc.ListOrders(c.Request.Context(), repository.PurchaseOrderFilter{
		TenantID: claims.TenantID,
		Status:   filter.Status,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list orders"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders, "total": total, "page": filter.Page, "limit": filter.Limit})
}

// ListSupplierInvoices godoc
// @Summary      List supplier invoices
// @Tags         purchases
// @Produce      json
// @Security     BearerAuth
// @Param        supplier_id query string false "Supplier UUID"
// @Param        status      query string false "pending | partial | paid | all"
// @Success      200 {array} model.SupplierInvoice
// @Router       /v1/supplier-invoices [get]
func (h *PurchasesHandler) ListSupplierInvoices(c *gin.Context) {
	var filter dto.SupplierInvoiceFilter
	if !bindQuery(c, &filter) {
		return
	}
	claims := middleware.GetClaims(c)

	invoices, err := h.svc.ListSupplierInvoices(c.Request.Context(), claims.TenantID, uuidPtr(filter.SupplierID), filter.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list supplier invoices"))
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *PurchasesHandler) transition(c *gin.Context, op orderOp) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	order, err := op(c.Request.Context(), claims.TenantID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type orderOp = func(ctx context.Context, tenantID, orderID uuid.UUID) (*model.PurchaseOrder, error)
