package handler

import (
	"net/http"

	"github.com/rmoralez/pos-sub000/internal/apierror"
	"github.com/rmoralez/pos-sub000/internal/dto"
	"github.com/rmoralez/pos-sub000/internal/middleware"
	"github.com/rmoralez/pos-sub000/internal/repository"
	"github.com/rmoralez/pos-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductsHandler struct{ svc *service.ProductService }

func NewProductsHandler(svc *service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// CreateProduct godoc
// @Summary      Create a product
// @Description  Adds a catalog entry with optional variants. Prices are tax inclusive.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ProductRequest true "Product"
// @Success      201  {object} model.Product
// @Failure      400  {object} apierror.APIError
// @Router       /v1/products [post]
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	var req dto.ProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	product, err := h.svc.CreateProduct(c.Request.Context(), productInput(claims.TenantID, req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct godoc
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string             true "Product UUID"
// @Param        body body dto.ProductRequest true "Product"
// @Success      200  {object} model.Product
// @Failure      404  {object} apierror.APIError
// @Router       /v1/products/{id} [put]
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	product, err := h.svc.UpdateProduct(c.Request.Context(), claims.TenantID, id, productInput(claims.TenantID, req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeactivateProduct godoc
// @Summary      Deactivate a product
// @Description  Hides the product from the catalog. Settled documents keep their denormalized data.
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Product UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/products/{id} [delete]
func (h *ProductsHandler) DeactivateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	if err := h.svc.Deactivate(c.Request.Context(), claims.TenantID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetProduct godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Product UUID"
// @Success      200 {object} model.Product
// @Failure      404 {object} apierror.APIError
// @Router       /v1/products/{id} [get]
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	product, err := h.svc.GetProduct(c.Request.Context(), claims.TenantID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// ListProducts godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        sku    query string false "Exact SKU"
// @Param        name   query string false "Name substring"
// @Param        active query string false "true | false | all"
// @Param        page   query int    false "Page (default 1)"
// @Param        limit  query int    false "Rows per page (default 50)"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} apierror.APIError
// @Router       /v1/products [get]
func (h *ProductsHandler) ListProducts(c *gin.Context) {
	var filter dto.ProductFilter
	if !bindQuery(c, &filter) {
		return
	}
	claims := middleware.GetClaims(c)

	products, total, err := h.svc.ListProducts(c.Request.Context(), repository.ProductFilter{
		TenantID: claims.TenantID,
		Name:     filter.Name,
		SKU:      filter.SKU,
		Active:   filter.Active,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list products"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": products, "total": total, "page": filter.Page, "limit": filter.Limit})
}

func productInput(tenantID uuid.UUID, req dto.ProductRequest) service.ProductInput {
	in := service.ProductInput{
		TenantID:    tenantID,
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		CostPrice:   req.CostPrice,
		TaxRate:     req.TaxRate,
	}
	for _, v := range req.Variants {
		in.Variants = append(in.Variants, service.VariantInput{Name: v.Name, UnitPrice: v.UnitPrice})
	}
	return in
}
