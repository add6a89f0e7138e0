package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "DRAFT"
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusArchived ProductStatus = "ARCHIVED"
)

// IsValid checks if the status is a valid ProductStatus
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusActive, ProductStatusArchived:
		return true
	}
	return false
}

// String returns the string representation of ProductStatus
func (s ProductStatus) String() string {
	return string(s)
}

// Variant is a purchasable size/color combination with an optional price
// adjustment relative to the product base price
type Variant struct {
	Size       string          `json:"size,omitempty"`
	Color      string          `json:"color,omitempty"`
	Adjustment decimal.Decimal `json:"adjustment"`
}

// Product represents a catalog product. VendorProfileID is the canonical
// vendor-profile reference, normalized at write time; nil means the product
// is sold by the platform itself.
type Product struct {
	shared.BaseAggregateRoot
	Name            string
	Description     string
	CategoryID      *uuid.UUID
	VendorProfileID *uuid.UUID
	Price           decimal.Decimal
	SalePrice       *decimal.Decimal
	FreeShipping    bool
	Variants        []Variant `gorm:"serializer:json"`
	Images          []string  `gorm:"serializer:json"`
	Status          ProductStatus
	SoldCount       int64
	ViewCount       int64
}

// NewProduct creates a new product in DRAFT status
func NewProduct(name string, price decimal.Decimal, vendorProfileID *uuid.UUID) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 300 {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 300 characters")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}
	if vendorProfileID != nil && *vendorProfileID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor profile ID cannot be the nil UUID")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		VendorProfileID:   vendorProfileID,
		Price:             price,
		Variants:          make([]Variant, 0),
		Images:            make([]string, 0),
		Status:            ProductStatusDraft,
	}, nil
}

// Update updates the product's editable fields
func (p *Product) Update(name, description string, categoryID *uuid.UUID, price decimal.Decimal) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}
	p.Name = name
	p.Description = description
	p.CategoryID = categoryID
	p.Price = price
	p.UpdatedAt = time.Now()
	return nil
}

// SetSalePrice puts the product on sale; nil clears the sale
func (p *Product) SetSalePrice(salePrice *decimal.Decimal) error {
	if salePrice != nil {
		if salePrice.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", "Sale price cannot be negative")
		}
		if salePrice.GreaterThanOrEqual(p.Price) {
			return shared.NewDomainError("INVALID_PRICE", "Sale price must be below the regular price")
		}
	}
	p.SalePrice = salePrice
	p.UpdatedAt = time.Now()
	return nil
}

// SetFreeShipping toggles the product's free-shipping flag
func (p *Product) SetFreeShipping(free bool) {
	p.FreeShipping = free
	p.UpdatedAt = time.Now()
}

// SetVariants replaces the variant list
func (p *Product) SetVariants(variants []Variant) {
	p.Variants = variants
	p.UpdatedAt = time.Now()
}

// SetImages replaces the image URL list
func (p *Product) SetImages(images []string) {
	p.Images = images
	p.UpdatedAt = time.Now()
}

// Activate makes the product visible on the storefront
func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Product is already active")
	}
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	return nil
}

// Archive hides the product from the storefront permanently
func (p *Product) Archive() error {
	if p.Status == ProductStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Product is already archived")
	}
	p.Status = ProductStatusArchived
	p.UpdatedAt = time.Now()
	return nil
}

// IsActive returns true if the product is purchasable
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// EffectivePrice returns the sale price when on sale, else the base price
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// VariantPrice returns the effective price adjusted for the chosen variant.
// Unknown size/color combinations price at the base effective price; the
// storefront validates availability separately.
func (p *Product) VariantPrice(size, color string) decimal.Decimal {
	price := p.EffectivePrice()
	for _, v := range p.Variants {
		if v.Size == size && v.Color == color {
			return price.Add(v.Adjustment)
		}
	}
	return price
}

// DiscountPercent returns the current discount as a percentage of the base
// price, zero when not on sale
func (p *Product) DiscountPercent() decimal.Decimal {
	if p.SalePrice == nil || !p.Price.IsPositive() {
		return decimal.Zero
	}
	return p.Price.Sub(*p.SalePrice).Div(p.Price).Mul(decimal.NewFromInt(100)).Round(2)
}

// IsOnSale returns true if a sale price is set
func (p *Product) IsOnSale() bool {
	return p.SalePrice != nil
}
