package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/coupon"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCouponRepository implements coupon.CouponRepository using GORM
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository creates a new GormCouponRepository
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// FindByID finds a coupon by its ID
func (r *GormCouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	var c coupon.Coupon
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByCode finds a coupon by its normalized code
func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	var c coupon.Coupon
	err := r.db.WithContext(ctx).
		Where("code = ?", coupon.NormalizeCode(code)).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindAll finds all coupons matching the filter
func (r *GormCouponRepository) FindAll(ctx context.Context, filter shared.Filter) ([]coupon.Coupon, error) {
	var coupons []coupon.Coupon
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&coupon.Coupon{}), filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, CouponSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

// Count counts coupons matching the filter
func (r *GormCouponRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&coupon.Coupon{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Claim atomically reserves one use of a coupon. The conditional UPDATE is
// the whole concurrency story: two simultaneous claims on the last use race
// on used_count < usage_limit and exactly one row update wins.
func (r *GormCouponRepository) Claim(ctx context.Context, code string) (*coupon.Coupon, error) {
	code = coupon.NormalizeCode(code)
	now := time.Now()

	var claimed *coupon.Coupon
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&coupon.Coupon{}).
			Where("code = ? AND status = ? AND used_count < usage_limit", code, coupon.CouponStatusActive).
			Where("expires_at IS NULL OR expires_at > ?", now).
			UpdateColumn("used_count", gorm.Expr("used_count + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Distinguish an unknown code from a refused one.
			var count int64
			if err := tx.Model(&coupon.Coupon{}).Where("code = ?", code).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrCouponRefused
		}

		var c coupon.Coupon
		if err := tx.Where("code = ?", code).First(&c).Error; err != nil {
			return err
		}
		claimed = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// Release compensates a claim whose order never persisted. The floor guard
// keeps a double release from driving used_count negative.
func (r *GormCouponRepository) Release(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).
		Model(&coupon.Coupon{}).
		Where("code = ? AND used_count > 0", coupon.NormalizeCode(code)).
		UpdateColumn("used_count", gorm.Expr("used_count - 1")).Error
}

// RecordRedemption inserts the redemption row for a persisted order
func (r *GormCouponRepository) RecordRedemption(ctx context.Context, redemption coupon.Redemption) error {
	return r.db.WithContext(ctx).Create(&redemption).Error
}

// FindRedemptions lists a coupon's redemptions, newest first
func (r *GormCouponRepository) FindRedemptions(ctx context.Context, couponID uuid.UUID, filter shared.Filter) ([]coupon.Redemption, error) {
	query := r.db.WithContext(ctx).
		Model(&coupon.Redemption{}).
		Where("coupon_id = ?", couponID)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var redemptions []coupon.Redemption
	if err := query.Order("created_at DESC").Find(&redemptions).Error; err != nil {
		return nil, err
	}
	return redemptions, nil
}

// Save creates or updates a coupon
func (r *GormCouponRepository) Save(ctx context.Context, c *coupon.Coupon) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Delete deletes a coupon by ID
func (r *GormCouponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&coupon.Coupon{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormCouponRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("code ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "discount_type":
			query = query.Where("discount_type = ?", value)
		}
	}
	return query
}
