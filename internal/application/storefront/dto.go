package storefront

import (
	"time"

	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/vendor"
)

// StoreResponse is the public storefront view of a vendor
type StoreResponse struct {
	ID          uuid.UUID       `json:"id"`
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Branding    vendor.Branding `json:"branding"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToStoreResponse converts a domain vendor to a public response
func ToStoreResponse(v *vendor.Vendor) StoreResponse {
	return StoreResponse{
		ID:          v.ID,
		Slug:        v.Slug,
		Name:        v.Name,
		Description: v.Description,
		Branding:    v.Branding,
		CreatedAt:   v.CreatedAt,
	}
}

// SectionResponse is a rendered landing-page section with its products
// already resolved
type SectionResponse struct {
	ID       uuid.UUID                    `json:"id"`
	Title    string                       `json:"title"`
	Kind     string                       `json:"kind"`
	Products []catalogapp.ProductResponse `json:"products"`
}

// CategoryResponse is the public storefront view of a category
type CategoryResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	ImageURL string    `json:"image_url,omitempty"`
}

// ToCategoryResponse converts a domain category to a public response
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:       c.ID,
		Name:     c.Name,
		Slug:     c.Slug,
		ImageURL: c.ImageURL,
	}
}

// SoldByResponse is the vendor summary attached to a product detail page so
// the client can link to the originating store
type SoldByResponse struct {
	ID       uuid.UUID       `json:"id"`
	Slug     string          `json:"slug"`
	Name     string          `json:"name"`
	Branding vendor.Branding `json:"branding"`
}

// ProductDetailResponse is a product page with its "sold by" vendor resolved
type ProductDetailResponse struct {
	catalogapp.ProductResponse
	SoldBy *SoldByResponse `json:"sold_by,omitempty"`
}

// ProductListResponse is a paginated product listing
type ProductListResponse struct {
	Products []catalogapp.ProductResponse `json:"products"`
	Total    int64                        `json:"total"`
	Page     int                          `json:"page"`
	PageSize int                          `json:"page_size"`
}

// ProductListQuery holds pagination for public product listings
type ProductListQuery struct {
	Page     int
	PageSize int
}

func (q ProductListQuery) normalized() ProductListQuery {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	return q
}
