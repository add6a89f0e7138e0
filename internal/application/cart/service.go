package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// CartService manages session carts. Prices and vendor references are
// snapshotted from the catalog when a line enters the cart; the checkout flow
// re-reads them, so a stale snapshot can only ever affect the displayed cart.
type CartService struct {
	store       cart.CartStore
	productRepo catalog.ProductRepository
}

// NewCartService creates a new CartService
func NewCartService(store cart.CartStore, productRepo catalog.ProductRepository) *CartService {
	return &CartService{
		store:       store,
		productRepo: productRepo,
	}
}

// Get returns the cart for a session; a missing cart reads back empty
func (s *CartService) Get(ctx context.Context, sessionID string) (*CartResponse, error) {
	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	response := ToCartResponse(c)
	return &response, nil
}

// AddItem adds a product to the cart. The line snapshots the product's
// current effective price (including the variant adjustment), image and
// free-shipping flag. Negative quantities decrement the existing line.
func (s *CartService) AddItem(ctx context.Context, sessionID string, req AddItemRequest) (*CartResponse, error) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, shared.ErrNotFound
	}

	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	item := cart.CartItem{
		ProductID:       product.ID,
		Name:            product.Name,
		Size:            req.Size,
		Color:           req.Color,
		UnitPrice:       product.VariantPrice(req.Size, req.Color),
		VendorProfileID: product.VendorProfileID,
		FreeShipping:    product.FreeShipping,
	}
	if len(product.Images) > 0 {
		item.ImageURL = product.Images[0]
	}

	if err := c.AddItem(item, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToCartResponse(c)
	return &response, nil
}

// SetQuantity sets a line's absolute quantity; zero removes the line
func (s *CartService) SetQuantity(ctx context.Context, sessionID string, req SetQuantityRequest) (*CartResponse, error) {
	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := c.SetQuantity(req.ProductID, req.Size, req.Color, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToCartResponse(c)
	return &response, nil
}

// RemoveItem deletes a line from the cart
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID, size, color string) (*CartResponse, error) {
	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := c.RemoveItem(productID, size, color); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToCartResponse(c)
	return &response, nil
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

// MergeOnLogin merges the anonymous session cart into the user's cart and
// links it to the account. guestSessionID and userSessionID differ when the
// client rotated its session at login; same-ID calls just attach the user.
func (s *CartService) MergeOnLogin(ctx context.Context, guestSessionID, userSessionID string, userID uuid.UUID) (*CartResponse, error) {
	target, err := s.store.Get(ctx, userSessionID)
	if err != nil {
		return nil, err
	}

	if guestSessionID != "" && guestSessionID != userSessionID {
		guest, err := s.store.Get(ctx, guestSessionID)
		if err != nil {
			return nil, err
		}
		for _, it := range guest.Items {
			if err := target.AddItem(it, it.Quantity); err != nil {
				return nil, err
			}
		}
		if err := s.store.Delete(ctx, guestSessionID); err != nil {
			return nil, err
		}
	}

	target.AttachUser(userID)
	if err := s.store.Save(ctx, target); err != nil {
		return nil, err
	}

	response := ToCartResponse(target)
	return &response, nil
}
