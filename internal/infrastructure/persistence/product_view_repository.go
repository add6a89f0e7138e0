package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/vendor"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductViewRepository implements catalog.ProductViewRepository using GORM
type GormProductViewRepository struct {
	db *gorm.DB
}

// NewGormProductViewRepository creates a new GormProductViewRepository
func NewGormProductViewRepository(db *gorm.DB) *GormProductViewRepository {
	return &GormProductViewRepository{db: db}
}

// Record upserts a product view for a viewer. A repeated view refreshes the
// viewed_at timestamp instead of inserting a duplicate row, so the
// last-viewed strip stays deduplicated.
func (r *GormProductViewRepository) Record(ctx context.Context, viewerID string, productID uuid.UUID) error {
	if viewerID == "" || productID == uuid.Nil {
		return shared.ErrInvalidInput
	}
	view := catalog.ProductView{
		ID:        uuid.New(),
		ViewerID:  viewerID,
		ProductID: productID,
		ViewedAt:  time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "viewer_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"viewed_at": view.ViewedAt}),
		}).
		Create(&view).Error
}

// LastViewed returns the viewer's most recently seen active products under
// the given scope, newest first
func (r *GormProductViewRepository) LastViewed(ctx context.Context, viewerID string, scope vendor.Scope, limit int) ([]catalog.Product, error) {
	if !scope.IsResolved() {
		return nil, shared.ErrScopeUnresolved
	}
	if viewerID == "" {
		return []catalog.Product{}, nil
	}

	query := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Joins("JOIN product_views pv ON pv.product_id = products.id").
		Where("pv.viewer_id = ?", viewerID).
		Where("products.status = ?", catalog.ProductStatusActive)
	if scope.IsVendor() {
		query = query.Where(
			"products.vendor_profile_id IN (SELECT id FROM vendor_profiles WHERE vendor_id = ?)",
			scope.VendorID,
		)
	}

	var products []catalog.Product
	if err := query.Order("pv.viewed_at DESC").Limit(limit).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
