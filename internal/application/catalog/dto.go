package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name         string            `json:"name" binding:"required,min=1,max=300"`
	Description  string            `json:"description" binding:"max=5000"`
	CategoryID   *uuid.UUID        `json:"category_id"`
	Price        decimal.Decimal   `json:"price" binding:"required"`
	SalePrice    *decimal.Decimal  `json:"sale_price"`
	FreeShipping *bool             `json:"free_shipping"`
	Variants     []catalog.Variant `json:"variants"`
	Images       []string          `json:"images"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name         *string           `json:"name" binding:"omitempty,min=1,max=300"`
	Description  *string           `json:"description" binding:"omitempty,max=5000"`
	CategoryID   *uuid.UUID        `json:"category_id"`
	Price        *decimal.Decimal  `json:"price"`
	SalePrice    *decimal.Decimal  `json:"sale_price"`
	ClearSale    bool              `json:"clear_sale"`
	FreeShipping *bool             `json:"free_shipping"`
	Variants     []catalog.Variant `json:"variants"`
	Images       []string          `json:"images"`
}

// ProductListFilter holds filters for product listing
type ProductListFilter struct {
	Page         int
	PageSize     int
	OrderBy      string
	OrderDir     string
	Search       string
	Status       string
	CategoryID   *uuid.UUID
	FreeShipping *bool
	OnSale       *bool
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	CategoryID      *uuid.UUID        `json:"category_id"`
	VendorProfileID *uuid.UUID        `json:"vendor_profile_id"`
	Price           decimal.Decimal   `json:"price"`
	SalePrice       *decimal.Decimal  `json:"sale_price,omitempty"`
	EffectivePrice  decimal.Decimal   `json:"effective_price"`
	DiscountPercent decimal.Decimal   `json:"discount_percent"`
	FreeShipping    bool              `json:"free_shipping"`
	Variants        []catalog.Variant `json:"variants,omitempty"`
	Images          []string          `json:"images,omitempty"`
	Status          string            `json:"status"`
	SoldCount       int64             `json:"sold_count"`
	ViewCount       int64             `json:"view_count"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ToProductResponse converts a domain product to a response DTO
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		CategoryID:      p.CategoryID,
		VendorProfileID: p.VendorProfileID,
		Price:           p.Price,
		SalePrice:       p.SalePrice,
		EffectivePrice:  p.EffectivePrice(),
		DiscountPercent: p.DiscountPercent(),
		FreeShipping:    p.FreeShipping,
		Variants:        p.Variants,
		Images:          p.Images,
		Status:          string(p.Status),
		SoldCount:       p.SoldCount,
		ViewCount:       p.ViewCount,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of domain products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	Slug      string `json:"slug" binding:"required,min=1,max=100"`
	ImageURL  string `json:"image_url" binding:"max=500"`
	SortOrder *int   `json:"sort_order"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=100"`
	ImageURL  *string `json:"image_url" binding:"omitempty,max=500"`
	SortOrder *int    `json:"sort_order"`
	Active    *bool   `json:"active"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	ImageURL  string    `json:"image_url,omitempty"`
	SortOrder int       `json:"sort_order"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToCategoryResponse converts a domain category to a response DTO
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		ImageURL:  c.ImageURL,
		SortOrder: c.SortOrder,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToCategoryResponses converts a slice of domain categories
func ToCategoryResponses(categories []catalog.Category) []CategoryResponse {
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i])
	}
	return responses
}

// CreateSectionRequest represents a request to create a homepage section
type CreateSectionRequest struct {
	Title      string      `json:"title" binding:"required,min=1,max=200"`
	Kind       string      `json:"kind" binding:"required"`
	VendorID   *uuid.UUID  `json:"vendor_id"`
	CategoryID *uuid.UUID  `json:"category_id"`
	ProductIDs []uuid.UUID `json:"product_ids"`
	Limit      *int        `json:"limit"`
	SortOrder  *int        `json:"sort_order"`
}

// UpdateSectionRequest represents a request to update a homepage section
type UpdateSectionRequest struct {
	Title      *string     `json:"title" binding:"omitempty,min=1,max=200"`
	CategoryID *uuid.UUID  `json:"category_id"`
	ProductIDs []uuid.UUID `json:"product_ids"`
	Limit      *int        `json:"limit"`
	SortOrder  *int        `json:"sort_order"`
	Active     *bool       `json:"active"`
}

// SectionResponse represents a section in API responses
type SectionResponse struct {
	ID         uuid.UUID   `json:"id"`
	Title      string      `json:"title"`
	Kind       string      `json:"kind"`
	VendorID   *uuid.UUID  `json:"vendor_id,omitempty"`
	CategoryID *uuid.UUID  `json:"category_id,omitempty"`
	ProductIDs []uuid.UUID `json:"product_ids,omitempty"`
	Limit      int         `json:"limit"`
	SortOrder  int         `json:"sort_order"`
	Active     bool        `json:"active"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// ToSectionResponse converts a domain section to a response DTO
func ToSectionResponse(s *catalog.Section) SectionResponse {
	return SectionResponse{
		ID:         s.ID,
		Title:      s.Title,
		Kind:       string(s.Kind),
		VendorID:   s.VendorID,
		CategoryID: s.CategoryID,
		ProductIDs: s.ProductIDs,
		Limit:      s.Limit,
		SortOrder:  s.SortOrder,
		Active:     s.Active,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// ToSectionResponses converts a slice of domain sections
func ToSectionResponses(sections []catalog.Section) []SectionResponse {
	responses := make([]SectionResponse, len(sections))
	for i := range sections {
		responses[i] = ToSectionResponse(&sections[i])
	}
	return responses
}

// InitiateImageUploadRequest asks for a presigned upload URL
type InitiateImageUploadRequest struct {
	Kind        string    `json:"kind" binding:"required"`
	OwnerID     uuid.UUID `json:"owner_id" binding:"required"`
	FileName    string    `json:"file_name" binding:"required,max=255"`
	ContentType string    `json:"content_type" binding:"required"`
	Size        int64     `json:"size" binding:"required"`
}

// InitiateImageUploadResponse carries the presigned upload URL
type InitiateImageUploadResponse struct {
	StorageKey string    `json:"storage_key"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}
