package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/vendor"
)

// ProductRepository defines persistence operations for products. The scoped
// query methods take an explicit vendor.Scope and must return
// shared.ErrScopeUnresolved when the scope has not been resolved, so an
// unresolved storefront can never fall through to marketplace-wide results.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	FindByVendorProfile(ctx context.Context, profileID uuid.UUID, filter shared.Filter) ([]Product, error)

	BestSellers(ctx context.Context, scope vendor.Scope, limit int) ([]Product, error)
	HotDeals(ctx context.Context, scope vendor.Scope, limit int) ([]Product, error)
	NewArrivals(ctx context.Context, scope vendor.Scope, limit int) ([]Product, error)
	ByCategory(ctx context.Context, scope vendor.Scope, categoryID uuid.UUID, filter shared.Filter) ([]Product, int64, error)
	Search(ctx context.Context, scope vendor.Scope, query string, filter shared.Filter) ([]Product, int64, error)

	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	IncrementSoldCount(ctx context.Context, id uuid.UUID, qty int) error

	Save(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository defines persistence operations for categories
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	FindActive(ctx context.Context) ([]Category, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, error)
	Save(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SectionRepository defines persistence operations for landing-page sections
type SectionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Section, error)
	// FindActive returns the active sections for the given scope ordered by
	// sort order; global scope returns only marketplace sections, vendor
	// scope only that vendor's sections
	FindActive(ctx context.Context, scope vendor.Scope) ([]Section, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Section, error)
	Save(ctx context.Context, s *Section) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductView records that a viewer looked at a product. ViewerID is the
// authenticated user ID or the anonymous session ID.
type ProductView struct {
	ID        uuid.UUID
	ViewerID  string
	ProductID uuid.UUID
	ViewedAt  time.Time
}

// ProductViewRepository tracks per-viewer browsing history for the
// "last viewed" storefront strip
type ProductViewRepository interface {
	// Record upserts the view so repeated views refresh recency instead of
	// duplicating rows
	Record(ctx context.Context, viewerID string, productID uuid.UUID) error
	// LastViewed returns the viewer's most recently seen products under the
	// given scope, newest first
	LastViewed(ctx context.Context, viewerID string, scope vendor.Scope, limit int) ([]Product, error)
}
