package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/vendor"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDs finds products by a list of IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindAll finds all products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByVendorProfile finds a vendor's products for the back office
func (r *GormProductRepository) FindByVendorProfile(ctx context.Context, profileID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&catalog.Product{}).
			Where("vendor_profile_id = ?", profileID),
		filter,
	)
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// scoped narrows a query to the vendor scope. An unresolved scope is a hard
// error: running the query without the vendor filter would leak
// marketplace-wide rows into a storefront that has not resolved its slug.
func (r *GormProductRepository) scoped(query *gorm.DB, scope vendor.Scope) (*gorm.DB, error) {
	if !scope.IsResolved() {
		return nil, shared.ErrScopeUnresolved
	}
	if scope.IsVendor() {
		query = query.Where(
			"vendor_profile_id IN (SELECT id FROM vendor_profiles WHERE vendor_id = ?)",
			scope.VendorID,
		)
	}
	return query, nil
}

func (r *GormProductRepository) activeScoped(ctx context.Context, scope vendor.Scope) (*gorm.DB, error) {
	query := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("status = ?", catalog.ProductStatusActive)
	return r.scoped(query, scope)
}

// BestSellers returns active products ordered by sold count. The id tiebreak
// keeps pagination stable across rows with equal counts.
func (r *GormProductRepository) BestSellers(ctx context.Context, scope vendor.Scope, limit int) ([]catalog.Product, error) {
	query, err := r.activeScoped(ctx, scope)
	if err != nil {
		return nil, err
	}
	var products []catalog.Product
	if err := query.Order("sold_count DESC, id ASC").Limit(limit).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// HotDeals returns active on-sale products ordered by discount depth
func (r *GormProductRepository) HotDeals(ctx context.Context, scope vendor.Scope, limit int) ([]catalog.Product, error) {
	query, err := r.activeScoped(ctx, scope)
	if err != nil {
		return nil, err
	}
	var products []catalog.Product
	err = query.
		Where("sale_price IS NOT NULL AND price > 0").
		Order("(price - sale_price) / price DESC, id ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// NewArrivals returns the most recently added active products
func (r *GormProductRepository) NewArrivals(ctx context.Context, scope vendor.Scope, limit int) ([]catalog.Product, error) {
	query, err := r.activeScoped(ctx, scope)
	if err != nil {
		return nil, err
	}
	var products []catalog.Product
	if err := query.Order("created_at DESC, id ASC").Limit(limit).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ByCategory returns active products in a category, newest first
func (r *GormProductRepository) ByCategory(ctx context.Context, scope vendor.Scope, categoryID uuid.UUID, filter shared.Filter) ([]catalog.Product, int64, error) {
	query, err := r.activeScoped(ctx, scope)
	if err != nil {
		return nil, 0, err
	}
	query = query.Where("category_id = ?", categoryID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	var products []catalog.Product
	if err := query.Order("created_at DESC, id ASC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Search searches active products by name and description
func (r *GormProductRepository) Search(ctx context.Context, scope vendor.Scope, searchTerm string, filter shared.Filter) ([]catalog.Product, int64, error) {
	query, err := r.activeScoped(ctx, scope)
	if err != nil {
		return nil, 0, err
	}
	if searchTerm != "" {
		pattern := "%" + searchTerm + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	var products []catalog.Product
	if err := query.Order("created_at DESC, id ASC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// IncrementViewCount bumps a product's view counter in place
func (r *GormProductRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// IncrementSoldCount bumps a product's sold counter after checkout
func (r *GormProductRepository) IncrementSoldCount(ctx context.Context, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ?", id).
		UpdateColumn("sold_count", gorm.Expr("sold_count + ?", qty)).Error
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// Delete deletes a product by ID
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ProductSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

func (r *GormProductRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "category_id":
			if value == nil {
				query = query.Where("category_id IS NULL")
			} else {
				query = query.Where("category_id = ?", value)
			}
		case "vendor_profile_id":
			if value == nil {
				query = query.Where("vendor_profile_id IS NULL")
			} else {
				query = query.Where("vendor_profile_id = ?", value)
			}
		case "free_shipping":
			query = query.Where("free_shipping = ?", value)
		case "on_sale":
			if value == true {
				query = query.Where("sale_price IS NOT NULL")
			} else {
				query = query.Where("sale_price IS NULL")
			}
		case "min_price":
			query = query.Where("price >= ?", value)
		case "max_price":
			query = query.Where("price <= ?", value)
		}
	}

	return query
}
