package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// CartItem is one line in a cart. Lines are identified by the
// (product, size, color) triple; adding the same triple again merges
// quantities instead of creating a duplicate line. VendorProfileID is the
// canonical vendor profile, normalized when the line entered the cart, nil
// for platform-sold products.
type CartItem struct {
	ProductID       uuid.UUID       `json:"product_id"`
	Name            string          `json:"name"`
	ImageURL        string          `json:"image_url,omitempty"`
	Size            string          `json:"size,omitempty"`
	Color           string          `json:"color,omitempty"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Quantity        int             `json:"quantity"`
	VendorProfileID *uuid.UUID      `json:"vendor_profile_id,omitempty"`
	FreeShipping    bool            `json:"free_shipping"`
}

// SameVariant reports whether two lines refer to the same purchasable unit
func (i CartItem) SameVariant(other CartItem) bool {
	return i.ProductID == other.ProductID && i.Size == other.Size && i.Color == other.Color
}

// LineTotal returns unit price times quantity
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is a session-scoped shopping cart. It lives in the cache keyed by the
// session ID and is merged into the user's identity at login.
type Cart struct {
	SessionID string     `json:"session_id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart creates an empty cart for a session
func NewCart(sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, shared.NewDomainError("INVALID_SESSION", "Cart session ID cannot be empty")
	}
	return &Cart{
		SessionID: sessionID,
		Items:     make([]CartItem, 0),
		UpdatedAt: time.Now(),
	}, nil
}

// AddItem adds a line to the cart. If a line with the same product, size and
// color already exists its quantity is increased; a resulting quantity of
// zero or less removes the line.
func (c *Cart) AddItem(item CartItem, qty int) error {
	if item.ProductID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Cart item product ID cannot be empty")
	}
	if item.UnitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Cart item price cannot be negative")
	}

	for idx := range c.Items {
		if c.Items[idx].SameVariant(item) {
			newQty := c.Items[idx].Quantity + qty
			if newQty <= 0 {
				c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			} else {
				c.Items[idx].Quantity = newQty
				c.Items[idx].UnitPrice = item.UnitPrice
			}
			c.UpdatedAt = time.Now()
			return nil
		}
	}

	if qty <= 0 {
		return nil
	}
	item.Quantity = qty
	c.Items = append(c.Items, item)
	c.UpdatedAt = time.Now()
	return nil
}

// SetQuantity sets the absolute quantity of a line; zero or less removes it
func (c *Cart) SetQuantity(productID uuid.UUID, size, color string, qty int) error {
	for idx := range c.Items {
		it := c.Items[idx]
		if it.ProductID == productID && it.Size == size && it.Color == color {
			if qty <= 0 {
				c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			} else {
				c.Items[idx].Quantity = qty
			}
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.ErrNotFound
}

// RemoveItem deletes a line from the cart
func (c *Cart) RemoveItem(productID uuid.UUID, size, color string) error {
	return c.SetQuantity(productID, size, color, 0)
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = make([]CartItem, 0)
	c.UpdatedAt = time.Now()
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount returns the total number of units across all lines
func (c *Cart) ItemCount() int {
	count := 0
	for _, it := range c.Items {
		count += it.Quantity
	}
	return count
}

// Subtotal returns the sum of all line totals
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// AttachUser links the cart to an authenticated user
func (c *Cart) AttachUser(userID uuid.UUID) {
	c.UserID = &userID
	c.UpdatedAt = time.Now()
}

// VendorGroup is the slice of cart lines fulfilled by one vendor; the nil
// key groups platform-sold lines
type VendorGroup struct {
	VendorProfileID *uuid.UUID
	Items           []CartItem
}

// GroupByVendor partitions cart lines by fulfilling vendor profile, in
// first-seen order. Shipping is quoted per group.
func (c *Cart) GroupByVendor() []VendorGroup {
	groups := make([]VendorGroup, 0)
	index := make(map[uuid.UUID]int)
	platformIdx := -1

	for _, it := range c.Items {
		if it.VendorProfileID == nil {
			if platformIdx < 0 {
				groups = append(groups, VendorGroup{})
				platformIdx = len(groups) - 1
			}
			groups[platformIdx].Items = append(groups[platformIdx].Items, it)
			continue
		}
		pos, ok := index[*it.VendorProfileID]
		if !ok {
			id := *it.VendorProfileID
			groups = append(groups, VendorGroup{VendorProfileID: &id})
			pos = len(groups) - 1
			index[id] = pos
		}
		groups[pos].Items = append(groups[pos].Items, it)
	}
	return groups
}
