package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductService handles back-office product operations. Vendor callers pass
// their own profile ID and may only touch their own products; admin callers
// pass a nil owner and manage the platform catalog.
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// Create creates a new product in DRAFT status. ownerProfileID is the vendor
// profile the product belongs to, nil for a platform-sold product.
func (s *ProductService) Create(ctx context.Context, ownerProfileID *uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	// Validate category exists (if provided)
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_CATEGORY", "Category not found")
			}
			return nil, err
		}
	}

	product, err := catalog.NewProduct(req.Name, req.Price, ownerProfileID)
	if err != nil {
		return nil, err
	}

	if req.Description != "" || req.CategoryID != nil {
		if err := product.Update(req.Name, req.Description, req.CategoryID, req.Price); err != nil {
			return nil, err
		}
	}
	if req.SalePrice != nil {
		if err := product.SetSalePrice(req.SalePrice); err != nil {
			return nil, err
		}
	}
	if req.FreeShipping != nil {
		product.SetFreeShipping(*req.FreeShipping)
	}
	if len(req.Variants) > 0 {
		product.SetVariants(req.Variants)
	}
	if len(req.Images) > 0 {
		product.SetImages(req.Images)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product, enforcing ownership for vendor callers
func (s *ProductService) GetByID(ctx context.Context, ownerProfileID *uuid.UUID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.findOwned(ctx, ownerProfileID, productID)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination. Vendor callers see
// only their own products regardless of the filter they send.
func (s *ProductService) List(ctx context.Context, ownerProfileID *uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := s.buildFilter(filter)
	if ownerProfileID != nil {
		domainFilter.Filters["vendor_profile_id"] = *ownerProfileID
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToProductResponses(products), total, nil
}

// Update updates a product
func (s *ProductService) Update(ctx context.Context, ownerProfileID *uuid.UUID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.findOwned(ctx, ownerProfileID, productID)
	if err != nil {
		return nil, err
	}

	name := product.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := product.Description
	if req.Description != nil {
		description = *req.Description
	}
	categoryID := product.CategoryID
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_CATEGORY", "Category not found")
			}
			return nil, err
		}
		categoryID = req.CategoryID
	}
	price := product.Price
	if req.Price != nil {
		price = *req.Price
	}

	if err := product.Update(name, description, categoryID, price); err != nil {
		return nil, err
	}

	if req.ClearSale {
		if err := product.SetSalePrice(nil); err != nil {
			return nil, err
		}
	} else if req.SalePrice != nil {
		if err := product.SetSalePrice(req.SalePrice); err != nil {
			return nil, err
		}
	}

	if req.FreeShipping != nil {
		product.SetFreeShipping(*req.FreeShipping)
	}
	if req.Variants != nil {
		product.SetVariants(req.Variants)
	}
	if req.Images != nil {
		product.SetImages(req.Images)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Activate publishes a product to the storefront
func (s *ProductService) Activate(ctx context.Context, ownerProfileID *uuid.UUID, productID uuid.UUID) (*ProductResponse, error) {
	return s.transition(ctx, ownerProfileID, productID, (*catalog.Product).Activate)
}

// Archive removes a product from sale while keeping its history
func (s *ProductService) Archive(ctx context.Context, ownerProfileID *uuid.UUID, productID uuid.UUID) (*ProductResponse, error) {
	return s.transition(ctx, ownerProfileID, productID, (*catalog.Product).Archive)
}

// Delete removes a product entirely. Archived products with order history
// should be kept; deletion is for drafts and mistakes.
func (s *ProductService) Delete(ctx context.Context, ownerProfileID *uuid.UUID, productID uuid.UUID) error {
	if _, err := s.findOwned(ctx, ownerProfileID, productID); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, productID)
}

func (s *ProductService) transition(ctx context.Context, ownerProfileID *uuid.UUID, productID uuid.UUID, op func(*catalog.Product) error) (*ProductResponse, error) {
	product, err := s.findOwned(ctx, ownerProfileID, productID)
	if err != nil {
		return nil, err
	}

	if err := op(product); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// findOwned loads a product and rejects vendor access to someone else's
// product with a not-found rather than a forbidden, so vendors cannot probe
// for other vendors' product IDs.
func (s *ProductService) findOwned(ctx context.Context, ownerProfileID *uuid.UUID, productID uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if ownerProfileID != nil {
		if product.VendorProfileID == nil || *product.VendorProfileID != *ownerProfileID {
			return nil, shared.ErrNotFound
		}
	}
	return product, nil
}

func (s *ProductService) buildFilter(filter ProductListFilter) shared.Filter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.CategoryID != nil {
		domainFilter.Filters["category_id"] = *filter.CategoryID
	}
	if filter.FreeShipping != nil {
		domainFilter.Filters["free_shipping"] = *filter.FreeShipping
	}
	if filter.OnSale != nil {
		domainFilter.Filters["on_sale"] = *filter.OnSale
	}
	if filter.MinPrice != nil {
		domainFilter.Filters["min_price"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		domainFilter.Filters["max_price"] = *filter.MaxPrice
	}

	return domainFilter
}
