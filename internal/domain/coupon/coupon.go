package coupon

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// DiscountType determines how a coupon's value is applied to the subtotal
type DiscountType string

const (
	// DiscountPercent deducts value% of the order subtotal
	DiscountPercent DiscountType = "PERCENT"
	// DiscountFixed deducts a fixed amount, capped at the subtotal
	DiscountFixed DiscountType = "FIXED"
)

// IsValid checks if the type is a valid DiscountType
func (t DiscountType) IsValid() bool {
	return t == DiscountPercent || t == DiscountFixed
}

// CouponStatus represents the lifecycle status of a coupon
type CouponStatus string

const (
	CouponStatusActive   CouponStatus = "ACTIVE"
	CouponStatusDisabled CouponStatus = "DISABLED"
)

// Coupon is a single-use-per-claim discount code. UsedCount tracks
// successful claims; a claim reserves one use and is released again if the
// order it was claimed for fails to persist.
type Coupon struct {
	shared.BaseAggregateRoot
	Code         string
	DiscountType DiscountType
	Value        decimal.Decimal
	MinSubtotal  *decimal.Decimal
	ExpiresAt    *time.Time
	UsageLimit   int
	UsedCount    int
	Status       CouponStatus
}

// NormalizeCode canonicalizes a coupon code for lookup
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewCoupon creates an active coupon
func NewCoupon(code string, discountType DiscountType, value decimal.Decimal, usageLimit int) (*Coupon, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Coupon code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Coupon code cannot exceed 50 characters")
	}
	if !discountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Unknown discount type")
	}
	if !value.IsPositive() {
		return nil, shared.NewDomainError("INVALID_VALUE", "Discount value must be positive")
	}
	if discountType == DiscountPercent && value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_VALUE", "Percent discount cannot exceed 100")
	}
	if usageLimit < 1 {
		return nil, shared.NewDomainError("INVALID_LIMIT", "Usage limit must be at least 1")
	}
	return &Coupon{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		DiscountType:      discountType,
		Value:             value,
		UsageLimit:        usageLimit,
		Status:            CouponStatusActive,
	}, nil
}

// SetExpiry sets the expiry timestamp; nil means the coupon never expires
func (c *Coupon) SetExpiry(expiresAt *time.Time) {
	c.ExpiresAt = expiresAt
	c.UpdatedAt = time.Now()
}

// SetMinSubtotal sets the minimum order subtotal required to claim
func (c *Coupon) SetMinSubtotal(min *decimal.Decimal) error {
	if min != nil && min.IsNegative() {
		return shared.NewDomainError("INVALID_VALUE", "Minimum subtotal cannot be negative")
	}
	c.MinSubtotal = min
	c.UpdatedAt = time.Now()
	return nil
}

// Disable takes the coupon out of circulation
func (c *Coupon) Disable() {
	c.Status = CouponStatusDisabled
	c.UpdatedAt = time.Now()
}

// Enable puts the coupon back in circulation
func (c *Coupon) Enable() {
	c.Status = CouponStatusActive
	c.UpdatedAt = time.Now()
}

// IsExpired reports whether the coupon's expiry has passed
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// IsExhausted reports whether all uses have been claimed
func (c *Coupon) IsExhausted() bool {
	return c.UsedCount >= c.UsageLimit
}

// Claimable returns nil if the coupon can be claimed against the given
// subtotal right now, or the refusal reason
func (c *Coupon) Claimable(subtotal decimal.Decimal, now time.Time) error {
	if c.Status != CouponStatusActive {
		return shared.ErrCouponRefused
	}
	if c.IsExpired(now) {
		return shared.ErrCouponRefused
	}
	if c.IsExhausted() {
		return shared.ErrCouponRefused
	}
	if c.MinSubtotal != nil && subtotal.LessThan(*c.MinSubtotal) {
		return shared.ErrCouponRefused
	}
	return nil
}

// Discount computes the amount deducted from the given subtotal. The result
// never exceeds the subtotal and is rounded to 2 decimal places.
func (c *Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	var d decimal.Decimal
	switch c.DiscountType {
	case DiscountPercent:
		d = subtotal.Mul(c.Value).Div(decimal.NewFromInt(100)).Round(2)
	case DiscountFixed:
		d = c.Value
	default:
		return decimal.Zero
	}
	if d.GreaterThan(subtotal) {
		return subtotal
	}
	return d
}

// Redemption records a coupon use that completed checkout
type Redemption struct {
	ID        uuid.UUID
	CouponID  uuid.UUID
	Code      string
	OrderID   uuid.UUID
	UserID    *uuid.UUID
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// NewRedemption creates a redemption record for a persisted order
func NewRedemption(c *Coupon, orderID uuid.UUID, userID *uuid.UUID, amount decimal.Decimal) Redemption {
	return Redemption{
		ID:        uuid.New(),
		CouponID:  c.ID,
		Code:      c.Code,
		OrderID:   orderID,
		UserID:    userID,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
}
