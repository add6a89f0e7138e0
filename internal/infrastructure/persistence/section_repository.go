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

// GormSectionRepository implements catalog.SectionRepository using GORM
type GormSectionRepository struct {
	db *gorm.DB
}

// NewGormSectionRepository creates a new GormSectionRepository
func NewGormSectionRepository(db *gorm.DB) *GormSectionRepository {
	return &GormSectionRepository{db: db}
}

// FindByID finds a section by its ID
func (r *GormSectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Section, error) {
	var section catalog.Section
	if err := r.db.WithContext(ctx).First(&section, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &section, nil
}

// FindActive returns active sections for a resolved scope, in sort order.
// Global scope sees only marketplace sections, never vendor ones, and vice
// versa.
func (r *GormSectionRepository) FindActive(ctx context.Context, scope vendor.Scope) ([]catalog.Section, error) {
	if !scope.IsResolved() {
		return nil, shared.ErrScopeUnresolved
	}

	query := r.db.WithContext(ctx).
		Model(&catalog.Section{}).
		Where("active = ?", true)
	if scope.IsVendor() {
		query = query.Where("vendor_id = ?", scope.VendorID)
	} else {
		query = query.Where("vendor_id IS NULL")
	}

	var sections []catalog.Section
	if err := query.Order("sort_order ASC, created_at ASC").Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// FindAll finds all sections matching the filter
func (r *GormSectionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Section, error) {
	var sections []catalog.Section
	query := r.db.WithContext(ctx).Model(&catalog.Section{})

	if filter.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "vendor_id":
			if value == nil {
				query = query.Where("vendor_id IS NULL")
			} else {
				query = query.Where("vendor_id = ?", value)
			}
		case "kind":
			query = query.Where("kind = ?", value)
		}
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, SectionSortFields, "sort_order")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// Save creates or updates a section
func (r *GormSectionRepository) Save(ctx context.Context, s *catalog.Section) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// Delete deletes a section by ID
func (r *GormSectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Section{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
