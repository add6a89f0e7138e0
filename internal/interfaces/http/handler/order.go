package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	orderapp "github.com/storefront/backend/internal/application/order"
	vendorapp "github.com/storefront/backend/internal/application/vendor"
	"github.com/storefront/backend/internal/domain/order"
)

// OrderHandler handles order endpoints for customers, vendors and platform
// staff
type OrderHandler struct {
	BaseHandler
	orderService  *orderapp.OrderService
	vendorService *vendorapp.VendorService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService, vendorService *vendorapp.VendorService) *OrderHandler {
	return &OrderHandler{
		orderService:  orderService,
		vendorService: vendorService,
	}
}

// UpdateOrderStatusRequest moves an order along its fulfilment lifecycle
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) listFilter(c *gin.Context) orderapp.OrderListFilter {
	return orderapp.OrderListFilter{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
		OrderBy:  c.Query("order_by"),
		OrderDir: c.Query("order_dir"),
		Status:   c.Query("status"),
	}
}

// TrackByNumber returns an order by its public order number. Guest orders
// are visible to anyone holding the number; account orders only to their
// owner.
func (h *OrderHandler) TrackByNumber(c *gin.Context) {
	orderNumber := c.Param("order_number")
	if orderNumber == "" {
		h.BadRequest(c, "Missing order number")
		return
	}

	userID := getOptionalUserID(c)

	resp, err := h.orderService.TrackByNumber(c.Request.Context(), orderNumber, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListForCustomer returns the authenticated customer's orders
func (h *OrderHandler) ListForCustomer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.orderService.ListForCustomer(c.Request.Context(), userID, h.listFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, resp.Orders, resp.Total, resp.Page, resp.PageSize)
}

// GetForCustomer returns one of the authenticated customer's orders
func (h *OrderHandler) GetForCustomer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orderService.GetForCustomer(c.Request.Context(), userID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// CancelForCustomer cancels a pending order owned by the caller
func (h *OrderHandler) CancelForCustomer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orderService.CancelForCustomer(c.Request.Context(), userID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListForVendor returns orders containing the caller's products
func (h *OrderHandler) ListForVendor(c *gin.Context) {
	profileID, err := h.requireProfileID(c)
	if err != nil {
		return
	}

	resp, err := h.orderService.ListForVendor(c.Request.Context(), profileID, h.listFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, resp.Orders, resp.Total, resp.Page, resp.PageSize)
}

// GetForVendor returns one order containing the caller's products
func (h *OrderHandler) GetForVendor(c *gin.Context) {
	profileID, err := h.requireProfileID(c)
	if err != nil {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orderService.GetForVendor(c.Request.Context(), profileID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns all orders for the admin back office
func (h *OrderHandler) List(c *gin.Context) {
	resp, err := h.orderService.List(c.Request.Context(), h.listFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, resp.Orders, resp.Total, resp.Page, resp.PageSize)
}

// GetByID returns any order for the admin back office
func (h *OrderHandler) GetByID(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orderService.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateStatus moves an order along its fulfilment lifecycle
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	target := order.OrderStatus(strings.ToUpper(req.Status))
	if !target.IsValid() {
		h.BadRequest(c, "Invalid order status")
		return
	}

	resp, err := h.orderService.UpdateStatus(c.Request.Context(), orderID, target)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// requireProfileID resolves the caller's vendor profile ID, writing the
// error response itself on failure
func (h *OrderHandler) requireProfileID(c *gin.Context) (uuid.UUID, error) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, err
	}

	profile, err := h.vendorService.GetOwnProfile(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, err
	}

	return profile.ID, nil
}
