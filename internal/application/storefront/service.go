package storefront

import (
	"context"

	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/vendor"
	"go.uber.org/zap"
)

const defaultStripLimit = 10

// StorefrontService serves the public read side: slug resolution, landing
// sections, product strips, category pages, search, product detail and the
// per-viewer last-viewed strip. Every query takes an explicit vendor.Scope;
// the service never widens an unresolved scope to global.
type StorefrontService struct {
	vendorRepo   vendor.VendorRepository
	profileRepo  vendor.ProfileRepository
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	sectionRepo  catalog.SectionRepository
	viewRepo     catalog.ProductViewRepository

	lastViewedLimit int
	logger          *zap.Logger
}

// StorefrontServiceOption configures a StorefrontService
type StorefrontServiceOption func(*StorefrontService)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) StorefrontServiceOption {
	return func(s *StorefrontService) {
		s.logger = logger
	}
}

// WithLastViewedLimit caps the last-viewed strip length
func WithLastViewedLimit(limit int) StorefrontServiceOption {
	return func(s *StorefrontService) {
		if limit > 0 {
			s.lastViewedLimit = limit
		}
	}
}

// NewStorefrontService creates a new StorefrontService
func NewStorefrontService(
	vendorRepo vendor.VendorRepository,
	profileRepo vendor.ProfileRepository,
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	sectionRepo catalog.SectionRepository,
	viewRepo catalog.ProductViewRepository,
	opts ...StorefrontServiceOption,
) *StorefrontService {
	s := &StorefrontService{
		vendorRepo:      vendorRepo,
		profileRepo:     profileRepo,
		productRepo:     productRepo,
		categoryRepo:    categoryRepo,
		sectionRepo:     sectionRepo,
		viewRepo:        viewRepo,
		lastViewedLimit: defaultStripLimit,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveScope resolves a storefront slug to a vendor scope. An empty slug is
// the global marketplace. Unknown or suspended slugs return
// shared.ErrStoreNotFound, never a silent fallthrough to global.
func (s *StorefrontService) ResolveScope(ctx context.Context, slug string) (vendor.Scope, *StoreResponse, error) {
	if slug == "" {
		return vendor.GlobalScope(), nil, nil
	}
	v, err := s.vendorRepo.FindActiveBySlug(ctx, vendor.NormalizeSlug(slug))
	if err != nil {
		return vendor.UnresolvedScope(), nil, err
	}
	store := ToStoreResponse(v)
	return vendor.VendorScope(v.ID), &store, nil
}

// GetStore returns the public store page data for a slug
func (s *StorefrontService) GetStore(ctx context.Context, slug string) (*StoreResponse, error) {
	v, err := s.vendorRepo.FindActiveBySlug(ctx, vendor.NormalizeSlug(slug))
	if err != nil {
		return nil, err
	}
	store := ToStoreResponse(v)
	return &store, nil
}

// Landing renders the active sections for the scope, resolving each
// section's products. A section whose product query fails is skipped rather
// than failing the whole page.
func (s *StorefrontService) Landing(ctx context.Context, scope vendor.Scope) ([]SectionResponse, error) {
	if !scope.IsResolved() {
		return nil, shared.ErrScopeUnresolved
	}

	sections, err := s.sectionRepo.FindActive(ctx, scope)
	if err != nil {
		return nil, err
	}

	responses := make([]SectionResponse, 0, len(sections))
	for i := range sections {
		sec := &sections[i]
		products, err := s.resolveSection(ctx, scope, sec)
		if err != nil {
			s.logger.Warn("Skipping section with failing product query",
				zap.String("section_id", sec.ID.String()),
				zap.String("kind", string(sec.Kind)),
				zap.Error(err),
			)
			continue
		}
		responses = append(responses, SectionResponse{
			ID:       sec.ID,
			Title:    sec.Title,
			Kind:     string(sec.Kind),
			Products: catalogapp.ToProductResponses(products),
		})
	}
	return responses, nil
}

func (s *StorefrontService) resolveSection(ctx context.Context, scope vendor.Scope, sec *catalog.Section) ([]catalog.Product, error) {
	limit := sec.Limit
	if limit <= 0 {
		limit = defaultStripLimit
	}

	switch sec.Kind {
	case catalog.SectionBestSellers:
		return s.productRepo.BestSellers(ctx, scope, limit)
	case catalog.SectionHotDeals:
		return s.productRepo.HotDeals(ctx, scope, limit)
	case catalog.SectionNewArrivals:
		return s.productRepo.NewArrivals(ctx, scope, limit)
	case catalog.SectionCategory:
		if sec.CategoryID == nil {
			return []catalog.Product{}, nil
		}
		products, _, err := s.productRepo.ByCategory(ctx, scope, *sec.CategoryID, shared.Filter{Page: 1, PageSize: limit})
		return products, err
	case catalog.SectionManual:
		products, err := s.productRepo.FindByIDs(ctx, sec.ProductIDs)
		if err != nil {
			return nil, err
		}
		// Manual picks keep their curated order and drop inactive products
		byID := make(map[uuid.UUID]catalog.Product, len(products))
		for _, p := range products {
			if p.Status == catalog.ProductStatusActive {
				byID[p.ID] = p
			}
		}
		ordered := make([]catalog.Product, 0, len(sec.ProductIDs))
		for _, id := range sec.ProductIDs {
			if p, ok := byID[id]; ok {
				ordered = append(ordered, p)
				if len(ordered) >= limit {
					break
				}
			}
		}
		return ordered, nil
	default:
		return []catalog.Product{}, nil
	}
}

// BestSellers returns the scope's best-selling active products
func (s *StorefrontService) BestSellers(ctx context.Context, scope vendor.Scope, limit int) ([]catalogapp.ProductResponse, error) {
	if limit <= 0 {
		limit = defaultStripLimit
	}
	products, err := s.productRepo.BestSellers(ctx, scope, limit)
	if err != nil {
		return nil, err
	}
	return catalogapp.ToProductResponses(products), nil
}

// HotDeals returns the scope's on-sale products ordered by discount depth
func (s *StorefrontService) HotDeals(ctx context.Context, scope vendor.Scope, limit int) ([]catalogapp.ProductResponse, error) {
	if limit <= 0 {
		limit = defaultStripLimit
	}
	products, err := s.productRepo.HotDeals(ctx, scope, limit)
	if err != nil {
		return nil, err
	}
	return catalogapp.ToProductResponses(products), nil
}

// NewArrivals returns the scope's most recently added products
func (s *StorefrontService) NewArrivals(ctx context.Context, scope vendor.Scope, limit int) ([]catalogapp.ProductResponse, error) {
	if limit <= 0 {
		limit = defaultStripLimit
	}
	products, err := s.productRepo.NewArrivals(ctx, scope, limit)
	if err != nil {
		return nil, err
	}
	return catalogapp.ToProductResponses(products), nil
}

// Categories returns the active categories for navigation
func (s *StorefrontService) Categories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i])
	}
	return responses, nil
}

// ByCategory returns a category's products under the scope, paginated
func (s *StorefrontService) ByCategory(ctx context.Context, scope vendor.Scope, categoryID uuid.UUID, query ProductListQuery) (*ProductListResponse, error) {
	query = query.normalized()
	products, total, err := s.productRepo.ByCategory(ctx, scope, categoryID, shared.Filter{
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		return nil, err
	}
	return &ProductListResponse{
		Products: catalogapp.ToProductResponses(products),
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}

// Search searches active products by name and description under the scope
func (s *StorefrontService) Search(ctx context.Context, scope vendor.Scope, term string, query ProductListQuery) (*ProductListResponse, error) {
	query = query.normalized()
	products, total, err := s.productRepo.Search(ctx, scope, term, shared.Filter{
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		return nil, err
	}
	return &ProductListResponse{
		Products: catalogapp.ToProductResponses(products),
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}

// ProductDetail returns an active product with its "sold by" vendor summary
// and records the view. ViewerID is the user ID or anonymous session ID; view
// tracking and vendor resolution are best effort and never fail the page.
func (s *StorefrontService) ProductDetail(ctx context.Context, productID uuid.UUID, viewerID string) (*ProductDetailResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Status != catalog.ProductStatusActive {
		return nil, shared.ErrNotFound
	}

	if viewerID != "" {
		if err := s.viewRepo.Record(ctx, viewerID, product.ID); err != nil {
			s.logger.Warn("Failed to record product view",
				zap.String("product_id", product.ID.String()),
				zap.Error(err),
			)
		}
	}
	if err := s.productRepo.IncrementViewCount(ctx, product.ID); err != nil {
		s.logger.Warn("Failed to increment view count",
			zap.String("product_id", product.ID.String()),
			zap.Error(err),
		)
	}

	return &ProductDetailResponse{
		ProductResponse: catalogapp.ToProductResponse(product),
		SoldBy:          s.soldBy(ctx, product),
	}, nil
}

// soldBy resolves the product's vendor profile reference to the public store
// summary. Platform-sold products have no vendor; a failed lookup degrades to
// none rather than failing the product page.
func (s *StorefrontService) soldBy(ctx context.Context, product *catalog.Product) *SoldByResponse {
	if product.VendorProfileID == nil {
		return nil
	}
	profile, err := s.profileRepo.FindByID(ctx, *product.VendorProfileID)
	if err != nil {
		s.logger.Warn("Failed to resolve vendor profile for product page",
			zap.String("product_id", product.ID.String()),
			zap.String("vendor_profile_id", product.VendorProfileID.String()),
			zap.Error(err),
		)
		return nil
	}
	v, err := s.vendorRepo.FindByID(ctx, profile.VendorID)
	if err != nil {
		s.logger.Warn("Failed to resolve vendor for product page",
			zap.String("product_id", product.ID.String()),
			zap.String("vendor_id", profile.VendorID.String()),
			zap.Error(err),
		)
		return nil
	}
	return &SoldByResponse{
		ID:       v.ID,
		Slug:     v.Slug,
		Name:     v.Name,
		Branding: v.Branding,
	}
}

// LastViewed returns the viewer's recently seen products under the scope
func (s *StorefrontService) LastViewed(ctx context.Context, scope vendor.Scope, viewerID string) ([]catalogapp.ProductResponse, error) {
	if viewerID == "" {
		return []catalogapp.ProductResponse{}, nil
	}
	products, err := s.viewRepo.LastViewed(ctx, viewerID, scope, s.lastViewedLimit)
	if err != nil {
		return nil, err
	}
	return catalogapp.ToProductResponses(products), nil
}
