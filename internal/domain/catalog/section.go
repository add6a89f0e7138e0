package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// SectionKind determines how a storefront section sources its products
type SectionKind string

const (
	// SectionBestSellers lists products ordered by sold count
	SectionBestSellers SectionKind = "BEST_SELLERS"
	// SectionHotDeals lists products currently on sale
	SectionHotDeals SectionKind = "HOT_DEALS"
	// SectionNewArrivals lists the most recently activated products
	SectionNewArrivals SectionKind = "NEW_ARRIVALS"
	// SectionCategory lists products from a single category
	SectionCategory SectionKind = "CATEGORY"
	// SectionManual lists an explicitly curated set of products
	SectionManual SectionKind = "MANUAL"
)

// IsValid checks if the kind is a valid SectionKind
func (k SectionKind) IsValid() bool {
	switch k {
	case SectionBestSellers, SectionHotDeals, SectionNewArrivals, SectionCategory, SectionManual:
		return true
	}
	return false
}

// Section is a curated product strip on a landing page. VendorID nil means
// the section belongs to the global marketplace page; otherwise it renders
// only on that vendor's storefront.
type Section struct {
	shared.BaseAggregateRoot
	Title      string
	Kind       SectionKind
	VendorID   *uuid.UUID
	CategoryID *uuid.UUID
	ProductIDs []uuid.UUID `gorm:"serializer:json"`
	Limit      int
	SortOrder  int
	Active     bool
}

// NewSection creates a new active section
func NewSection(title string, kind SectionKind, vendorID *uuid.UUID) (*Section, error) {
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Section title cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Unknown section kind")
	}
	if vendorID != nil && *vendorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor ID cannot be the nil UUID")
	}
	return &Section{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Title:             title,
		Kind:              kind,
		VendorID:          vendorID,
		ProductIDs:        make([]uuid.UUID, 0),
		Limit:             10,
		Active:            true,
	}, nil
}

// SetCategory binds a CATEGORY section to its source category
func (s *Section) SetCategory(categoryID uuid.UUID) error {
	if s.Kind != SectionCategory {
		return shared.NewDomainError("INVALID_KIND", "Only category sections take a source category")
	}
	if categoryID == uuid.Nil {
		return shared.NewDomainError("INVALID_CATEGORY", "Category ID cannot be empty")
	}
	s.CategoryID = &categoryID
	s.UpdatedAt = time.Now()
	return nil
}

// SetProducts replaces the curated product list of a MANUAL section
func (s *Section) SetProducts(productIDs []uuid.UUID) error {
	if s.Kind != SectionManual {
		return shared.NewDomainError("INVALID_KIND", "Only manual sections take a curated product list")
	}
	s.ProductIDs = productIDs
	s.UpdatedAt = time.Now()
	return nil
}

// SetLimit caps how many products the section renders
func (s *Section) SetLimit(limit int) error {
	if limit < 1 || limit > 50 {
		return shared.NewDomainError("INVALID_LIMIT", "Section limit must be between 1 and 50")
	}
	s.Limit = limit
	s.UpdatedAt = time.Now()
	return nil
}

// BelongsTo reports whether the section renders under the given scope
func (s *Section) BelongsTo(vendorID *uuid.UUID) bool {
	if s.VendorID == nil {
		return vendorID == nil
	}
	return vendorID != nil && *s.VendorID == *vendorID
}

// Deactivate hides the section
func (s *Section) Deactivate() {
	s.Active = false
	s.UpdatedAt = time.Now()
}

// Activate makes the section visible again
func (s *Section) Activate() {
	s.Active = true
	s.UpdatedAt = time.Now()
}
