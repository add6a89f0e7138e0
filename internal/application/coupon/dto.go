package coupon

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/coupon"
)

// CreateCouponRequest represents an admin request to create a coupon
type CreateCouponRequest struct {
	Code         string           `json:"code" binding:"required,min=1,max=50"`
	DiscountType string           `json:"discount_type" binding:"required,oneof=PERCENT FIXED"`
	Value        decimal.Decimal  `json:"value" binding:"required"`
	MinSubtotal  *decimal.Decimal `json:"min_subtotal"`
	ExpiresAt    *time.Time       `json:"expires_at"`
	UsageLimit   int              `json:"usage_limit" binding:"required,min=1"`
}

// UpdateCouponRequest represents an admin request to update a coupon.
// Code, type and value are immutable after creation; only the claim window
// can change.
type UpdateCouponRequest struct {
	MinSubtotal    *decimal.Decimal `json:"min_subtotal"`
	ClearSubtotal  bool             `json:"clear_min_subtotal"`
	ExpiresAt      *time.Time       `json:"expires_at"`
	ClearExpiresAt bool             `json:"clear_expires_at"`
	Active         *bool            `json:"active"`
}

// CouponListFilter holds filters for coupon listings
type CouponListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Status   string
}

// CouponResponse represents a coupon in API responses
type CouponResponse struct {
	ID           uuid.UUID        `json:"id"`
	Code         string           `json:"code"`
	DiscountType string           `json:"discount_type"`
	Value        decimal.Decimal  `json:"value"`
	MinSubtotal  *decimal.Decimal `json:"min_subtotal,omitempty"`
	ExpiresAt    *time.Time       `json:"expires_at,omitempty"`
	UsageLimit   int              `json:"usage_limit"`
	UsedCount    int              `json:"used_count"`
	Status       string           `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ToCouponResponse converts a domain coupon to a response DTO
func ToCouponResponse(c *coupon.Coupon) CouponResponse {
	return CouponResponse{
		ID:           c.ID,
		Code:         c.Code,
		DiscountType: string(c.DiscountType),
		Value:        c.Value,
		MinSubtotal:  c.MinSubtotal,
		ExpiresAt:    c.ExpiresAt,
		UsageLimit:   c.UsageLimit,
		UsedCount:    c.UsedCount,
		Status:       string(c.Status),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// ToCouponResponses converts a slice of domain coupons
func ToCouponResponses(coupons []coupon.Coupon) []CouponResponse {
	responses := make([]CouponResponse, len(coupons))
	for i := range coupons {
		responses[i] = ToCouponResponse(&coupons[i])
	}
	return responses
}

// RedemptionResponse represents one coupon redemption
type RedemptionResponse struct {
	ID        uuid.UUID       `json:"id"`
	CouponID  uuid.UUID       `json:"coupon_id"`
	Code      string          `json:"code"`
	OrderID   uuid.UUID       `json:"order_id"`
	UserID    *uuid.UUID      `json:"user_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToRedemptionResponses converts a slice of domain redemptions
func ToRedemptionResponses(redemptions []coupon.Redemption) []RedemptionResponse {
	responses := make([]RedemptionResponse, len(redemptions))
	for i, r := range redemptions {
		responses[i] = RedemptionResponse{
			ID:        r.ID,
			CouponID:  r.CouponID,
			Code:      r.Code,
			OrderID:   r.OrderID,
			UserID:    r.UserID,
			Amount:    r.Amount,
			CreatedAt: r.CreatedAt,
		}
	}
	return responses
}

// CouponListResponse is a paginated coupon listing
type CouponListResponse struct {
	Coupons  []CouponResponse `json:"coupons"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}
