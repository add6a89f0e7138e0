package handler

import (
	"github.com/gin-gonic/gin"

	checkoutapp "github.com/storefront/backend/internal/application/checkout"
)

// CheckoutHandler handles shipping quotes and order submission
type CheckoutHandler struct {
	BaseHandler
	checkoutService *checkoutapp.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *checkoutapp.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

// Quote prices shipping for the current cart against a destination region.
// The client-supplied sequence number lets stale responses be discarded.
func (h *CheckoutHandler) Quote(c *gin.Context) {
	sessionID := getSessionID(c)
	if sessionID == "" {
		h.BadRequest(c, "Missing X-Session-ID header")
		return
	}

	var req checkoutapp.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.checkoutService.Quote(c.Request.Context(), sessionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Submit places an order from the current cart. Quoting stays open to guests,
// but submission requires a signed-in customer; the account is re-checked by
// the service so a blocked user cannot place an order with a stale token.
func (h *CheckoutHandler) Submit(c *gin.Context) {
	sessionID := getSessionID(c)
	if sessionID == "" {
		h.BadRequest(c, "Missing X-Session-ID header")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Sign in to place an order")
		return
	}

	var req checkoutapp.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	idempotencyKey := c.GetHeader("Idempotency-Key")

	resp, err := h.checkoutService.SubmitWithIdempotencyKey(c.Request.Context(), sessionID, &userID, idempotencyKey, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}
