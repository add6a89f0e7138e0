package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	vendorapp "github.com/storefront/backend/internal/application/vendor"
)

// ProductHandler handles back-office product management. Vendors operate on
// their own catalog; platform staff operate without ownership restriction.
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	vendorService  *vendorapp.VendorService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService, vendorService *vendorapp.VendorService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		vendorService:  vendorService,
	}
}

// transition applies an ownership-checked status transition to a product
func (h *ProductHandler) transition(
	c *gin.Context,
	op func(context.Context, *uuid.UUID, uuid.UUID) (*catalogapp.ProductResponse, error),
) {
	ownerID, err := resolveOwnerProfileID(c, h.vendorService)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	productID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	resp, err := op(c.Request.Context(), ownerID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Create creates a new draft product
func (h *ProductHandler) Create(c *gin.Context) {
	ownerID, err := resolveOwnerProfileID(c, h.vendorService)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.productService.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetByID returns a single owned product
func (h *ProductHandler) GetByID(c *gin.Context) {
	ownerID, err := resolveOwnerProfileID(c, h.vendorService)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	productID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	resp, err := h.productService.GetByID(c.Request.Context(), ownerID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns the caller's products, filtered and paginated
func (h *ProductHandler) List(c *gin.Context) {
	ownerID, err := resolveOwnerProfileID(c, h.vendorService)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filter := catalogapp.ProductListFilter{
		Page:         queryInt(c, "page", 1),
		PageSize:     queryInt(c, "page_size", 20),
		OrderBy:      c.Query("order_by"),
		OrderDir:     c.Query("order_dir"),
		Search:       c.Query("search"),
		Status:       c.Query("status"),
		CategoryID:   queryUUIDPtr(c, "category_id"),
		FreeShipping: queryBoolPtr(c, "free_shipping"),
		OnSale:       queryBoolPtr(c, "on_sale"),
		MinPrice:     queryDecimalPtr(c, "min_price"),
		MaxPrice:     queryDecimalPtr(c, "max_price"),
	}

	products, total, err := h.productService.List(c.Request.Context(), ownerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// Update updates an owned product
func (h *ProductHandler) Update(c *gin.Context) {
	ownerID, err := resolveOwnerProfileID(c, h.vendorService)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	productID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req catalogapp.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.productService.Update(c.Request.Context(), ownerID, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Activate publishes a product to the storefront
func (h *ProductHandler) Activate(c *gin.Context) {
	h.transition(c, h.productService.Activate)
}

// Archive withdraws a product from the storefront
func (h *ProductHandler) Archive(c *gin.Context) {
	h.transition(c, h.productService.Archive)
}

// Delete permanently removes an owned product
func (h *ProductHandler) Delete(c *gin.Context) {
	ownerID, err := resolveOwnerProfileID(c, h.vendorService)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	productID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.productService.Delete(c.Request.Context(), ownerID, productID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
