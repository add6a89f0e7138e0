package coupon

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// CouponRepository defines persistence operations for coupons. Claim and
// Release are the two halves of the checkout reservation: Claim atomically
// reserves one use, Release gives it back when order persistence fails.
type CouponRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Coupon, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Claim increments used_count by one iff the coupon is active, unexpired
	// and under its usage limit, in a single conditional update. Returns
	// shared.ErrCouponRefused when the condition does not hold.
	Claim(ctx context.Context, code string) (*Coupon, error)
	// Release decrements used_count, compensating a Claim whose order never
	// persisted. Never drives used_count below zero.
	Release(ctx context.Context, code string) error

	RecordRedemption(ctx context.Context, r Redemption) error
	FindRedemptions(ctx context.Context, couponID uuid.UUID, filter shared.Filter) ([]Redemption, error)

	Save(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error
}
