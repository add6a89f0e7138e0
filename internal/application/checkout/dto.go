package checkout

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shipping"
)

// QuoteRequest asks for a shipping quote for the session's cart. Sequence is
// a client-chosen monotonic counter echoed back in the quote so the client
// can discard responses that arrive out of order.
type QuoteRequest struct {
	Region   string `json:"region" binding:"required,max=50"`
	Sequence int64  `json:"sequence"`
}

// SubmitOrderRequest places an order from the session's cart
type SubmitOrderRequest struct {
	CustomerName  string `json:"customer_name" binding:"required,min=1,max=100"`
	CustomerEmail string `json:"customer_email" binding:"required,email,max=255"`
	CustomerPhone string `json:"customer_phone" binding:"required,min=5,max=30"`
	Governorate   string `json:"governorate" binding:"required,max=50"`
	City          string `json:"city" binding:"required,max=100"`
	Street        string `json:"street" binding:"required,max=300"`
	AddressNotes  string `json:"address_notes" binding:"max=500"`
	CouponCode    string `json:"coupon_code" binding:"max=50"`
	Notes         string `json:"notes" binding:"max=1000"`
}

// QuoteResponse wraps a shipping quote with the totals the client renders
type QuoteResponse struct {
	Quote    shipping.Quote  `json:"quote"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Total    decimal.Decimal `json:"total"`
}
