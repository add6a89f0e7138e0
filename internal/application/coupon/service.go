package coupon

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/coupon"
	"github.com/storefront/backend/internal/domain/shared"
)

// CouponService handles admin coupon management. Claiming and releasing
// happen inside the checkout flow, not here; this service only manages the
// coupon definitions and exposes the redemption audit trail.
type CouponService struct {
	couponRepo coupon.CouponRepository
}

// NewCouponService creates a new CouponService
func NewCouponService(couponRepo coupon.CouponRepository) *CouponService {
	return &CouponService{couponRepo: couponRepo}
}

// Create creates a new coupon
func (s *CouponService) Create(ctx context.Context, req CreateCouponRequest) (*CouponResponse, error) {
	code := coupon.NormalizeCode(req.Code)
	existing, err := s.couponRepo.FindByCode(ctx, code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Coupon with this code already exists")
	}

	c, err := coupon.NewCoupon(code, coupon.DiscountType(req.DiscountType), req.Value, req.UsageLimit)
	if err != nil {
		return nil, err
	}
	if req.MinSubtotal != nil {
		if err := c.SetMinSubtotal(req.MinSubtotal); err != nil {
			return nil, err
		}
	}
	if req.ExpiresAt != nil {
		c.SetExpiry(req.ExpiresAt)
	}

	if err := s.couponRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToCouponResponse(c)
	return &response, nil
}

// GetByID retrieves a coupon by ID
func (s *CouponService) GetByID(ctx context.Context, couponID uuid.UUID) (*CouponResponse, error) {
	c, err := s.couponRepo.FindByID(ctx, couponID)
	if err != nil {
		return nil, err
	}
	response := ToCouponResponse(c)
	return &response, nil
}

// List returns coupons with filtering and pagination
func (s *CouponService) List(ctx context.Context, filter CouponListFilter) (*CouponListResponse, error) {
	domainFilter := s.buildFilter(filter)

	coupons, err := s.couponRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.couponRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	return &CouponListResponse{
		Coupons:  ToCouponResponses(coupons),
		Total:    total,
		Page:     domainFilter.Page,
		PageSize: domainFilter.PageSize,
	}, nil
}

// Update updates a coupon's claim window and status
func (s *CouponService) Update(ctx context.Context, couponID uuid.UUID, req UpdateCouponRequest) (*CouponResponse, error) {
	c, err := s.couponRepo.FindByID(ctx, couponID)
	if err != nil {
		return nil, err
	}

	if req.ClearSubtotal {
		if err := c.SetMinSubtotal(nil); err != nil {
			return nil, err
		}
	} else if req.MinSubtotal != nil {
		if err := c.SetMinSubtotal(req.MinSubtotal); err != nil {
			return nil, err
		}
	}

	if req.ClearExpiresAt {
		c.SetExpiry(nil)
	} else if req.ExpiresAt != nil {
		c.SetExpiry(req.ExpiresAt)
	}

	if req.Active != nil {
		if *req.Active {
			c.Enable()
		} else {
			c.Disable()
		}
	}

	if err := s.couponRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToCouponResponse(c)
	return &response, nil
}

// Delete removes a coupon. Redemption rows survive for auditing.
func (s *CouponService) Delete(ctx context.Context, couponID uuid.UUID) error {
	if _, err := s.couponRepo.FindByID(ctx, couponID); err != nil {
		return err
	}
	return s.couponRepo.Delete(ctx, couponID)
}

// Redemptions lists a coupon's redemptions, newest first
func (s *CouponService) Redemptions(ctx context.Context, couponID uuid.UUID, page, pageSize int) ([]RedemptionResponse, error) {
	if _, err := s.couponRepo.FindByID(ctx, couponID); err != nil {
		return nil, err
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	redemptions, err := s.couponRepo.FindRedemptions(ctx, couponID, shared.Filter{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, err
	}
	return ToRedemptionResponses(redemptions), nil
}

func (s *CouponService) buildFilter(filter CouponListFilter) shared.Filter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	return domainFilter
}
