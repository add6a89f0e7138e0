package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/vendor"
	"gorm.io/gorm"
)

// GormVendorRepository implements vendor.VendorRepository using GORM
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// FindByID finds a vendor by its ID
func (r *GormVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error) {
	var v vendor.Vendor
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// FindActiveBySlug resolves a storefront slug to an active vendor. Unknown
// and suspended slugs both come back as store-not-found so the storefront
// never reveals that a suspended store exists.
func (r *GormVendorRepository) FindActiveBySlug(ctx context.Context, slug string) (*vendor.Vendor, error) {
	var v vendor.Vendor
	err := r.db.WithContext(ctx).
		Where("slug = ? AND status = ?", vendor.NormalizeSlug(slug), vendor.VendorStatusActive).
		First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrStoreNotFound
		}
		return nil, err
	}
	return &v, nil
}

// FindByOwner finds the vendor owned by a user
func (r *GormVendorRepository) FindByOwner(ctx context.Context, ownerUserID uuid.UUID) (*vendor.Vendor, error) {
	var v vendor.Vendor
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// FindAll finds all vendors matching the filter
func (r *GormVendorRepository) FindAll(ctx context.Context, filter shared.Filter) ([]vendor.Vendor, error) {
	var vendors []vendor.Vendor
	query := r.applyFilter(r.db.WithContext(ctx).Model(&vendor.Vendor{}), filter)
	if err := query.Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}

// Count counts vendors matching the filter
func (r *GormVendorRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&vendor.Vendor{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsBySlug checks if a slug is already taken
func (r *GormVendorRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&vendor.Vendor{}).
		Where("slug = ?", vendor.NormalizeSlug(slug)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a vendor
func (r *GormVendorRepository) Save(ctx context.Context, v *vendor.Vendor) error {
	return r.db.WithContext(ctx).Save(v).Error
}

// Delete deletes a vendor by ID
func (r *GormVendorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&vendor.Vendor{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormVendorRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, VendorSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

func (r *GormVendorRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR slug ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "owner_user_id":
			query = query.Where("owner_user_id = ?", value)
		}
	}

	return query
}

// GormVendorProfileRepository implements vendor.ProfileRepository using GORM
type GormVendorProfileRepository struct {
	db *gorm.DB
}

// NewGormVendorProfileRepository creates a new GormVendorProfileRepository
func NewGormVendorProfileRepository(db *gorm.DB) *GormVendorProfileRepository {
	return &GormVendorProfileRepository{db: db}
}

// FindByID finds a vendor profile by its ID
func (r *GormVendorProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*vendor.VendorProfile, error) {
	var p vendor.VendorProfile
	err := r.db.WithContext(ctx).
		Preload("Rates").
		First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByVendorID finds the profile attached to a vendor store
func (r *GormVendorProfileRepository) FindByVendorID(ctx context.Context, vendorID uuid.UUID) (*vendor.VendorProfile, error) {
	var p vendor.VendorProfile
	err := r.db.WithContext(ctx).
		Preload("Rates").
		Where("vendor_id = ?", vendorID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByOwnerUserID finds the profile owned by a user account
func (r *GormVendorProfileRepository) FindByOwnerUserID(ctx context.Context, ownerUserID uuid.UUID) (*vendor.VendorProfile, error) {
	var p vendor.VendorProfile
	err := r.db.WithContext(ctx).
		Preload("Rates").
		Where("owner_user_id = ?", ownerUserID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindZoneRate looks up the fee configured for (profile, region)
func (r *GormVendorProfileRepository) FindZoneRate(ctx context.Context, profileID uuid.UUID, region string) (*vendor.ShippingRate, error) {
	region = valueobject.NormalizeRegion(region)
	if strings.TrimSpace(region) == "" {
		return nil, shared.ErrNotFound
	}
	var rate vendor.ShippingRate
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND region = ?", profileID, region).
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rate, nil
}

// Save creates or updates a profile together with its zone rates
func (r *GormVendorProfileRepository) Save(ctx context.Context, p *vendor.VendorProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Rates").Save(p).Error; err != nil {
			return err
		}

		// Replace the rate set: delete rows dropped from the aggregate,
		// upsert the rest.
		currentIDs := make([]uuid.UUID, len(p.Rates))
		for i, rate := range p.Rates {
			currentIDs[i] = rate.ID
		}
		if len(currentIDs) > 0 {
			if err := tx.Where("profile_id = ? AND id NOT IN ?", p.ID, currentIDs).
				Delete(&vendor.ShippingRate{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("profile_id = ?", p.ID).
				Delete(&vendor.ShippingRate{}).Error; err != nil {
				return err
			}
		}
		for i := range p.Rates {
			p.Rates[i].ProfileID = p.ID
			if err := tx.Save(&p.Rates[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes a profile and its zone rates
func (r *GormVendorProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", id).Delete(&vendor.ShippingRate{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&vendor.VendorProfile{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}
