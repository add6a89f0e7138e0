package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	cartapp "github.com/storefront/backend/internal/application/cart"
)

// CartHandler handles cart API endpoints. Carts are keyed by the anonymous
// session header for guests and by the account for signed-in customers.
type CartHandler struct {
	BaseHandler
	cartService *cartapp.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *cartapp.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// requireSession resolves the cart session identity or writes a 400
func (h *CartHandler) requireSession(c *gin.Context) (string, bool) {
	sessionID := getSessionID(c)
	if sessionID == "" {
		h.BadRequest(c, "Missing X-Session-ID header")
		return "", false
	}
	return sessionID, true
}

// Get returns the current cart
func (h *CartHandler) Get(c *gin.Context) {
	sessionID, ok := h.requireSession(c)
	if !ok {
		return
	}

	resp, err := h.cartService.Get(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// AddItem adds a product variant to the cart or bumps its quantity
func (h *CartHandler) AddItem(c *gin.Context) {
	sessionID, ok := h.requireSession(c)
	if !ok {
		return
	}

	var req cartapp.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.cartService.AddItem(c.Request.Context(), sessionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// SetQuantity sets the quantity of a cart line. Quantity zero removes it.
func (h *CartHandler) SetQuantity(c *gin.Context) {
	sessionID, ok := h.requireSession(c)
	if !ok {
		return
	}

	var req cartapp.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.cartService.SetQuantity(c.Request.Context(), sessionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RemoveItem removes a cart line identified by product and variant query params
func (h *CartHandler) RemoveItem(c *gin.Context) {
	sessionID, ok := h.requireSession(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product_id")
		return
	}
	size := c.Query("size")
	color := c.Query("color")

	resp, err := h.cartService.RemoveItem(c.Request.Context(), sessionID, productID, size, color)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Clear empties the cart
func (h *CartHandler) Clear(c *gin.Context) {
	sessionID, ok := h.requireSession(c)
	if !ok {
		return
	}

	if err := h.cartService.Clear(c.Request.Context(), sessionID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
