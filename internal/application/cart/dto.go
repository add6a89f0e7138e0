package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
)

// AddItemRequest represents a request to add a product to the cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Size      string    `json:"size" binding:"max=50"`
	Color     string    `json:"color" binding:"max=50"`
	Quantity  int       `json:"quantity" binding:"required"`
}

// SetQuantityRequest represents a request to set a line's absolute quantity
type SetQuantityRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Size      string    `json:"size" binding:"max=50"`
	Color     string    `json:"color" binding:"max=50"`
	Quantity  int       `json:"quantity" binding:"min=0"`
}

// CartItemResponse represents one cart line in API responses
type CartItemResponse struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Name         string          `json:"name"`
	ImageURL     string          `json:"image_url,omitempty"`
	Size         string          `json:"size,omitempty"`
	Color        string          `json:"color,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	LineTotal    decimal.Decimal `json:"line_total"`
	FreeShipping bool            `json:"free_shipping"`
}

// CartResponse represents the cart in API responses
type CartResponse struct {
	SessionID string             `json:"session_id"`
	Items     []CartItemResponse `json:"items"`
	ItemCount int                `json:"item_count"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// ToCartResponse converts a domain cart to a response DTO
func ToCartResponse(c *cart.Cart) CartResponse {
	items := make([]CartItemResponse, len(c.Items))
	for i, it := range c.Items {
		items[i] = CartItemResponse{
			ProductID:    it.ProductID,
			Name:         it.Name,
			ImageURL:     it.ImageURL,
			Size:         it.Size,
			Color:        it.Color,
			UnitPrice:    it.UnitPrice,
			Quantity:     it.Quantity,
			LineTotal:    it.LineTotal(),
			FreeShipping: it.FreeShipping,
		}
	}
	return CartResponse{
		SessionID: c.SessionID,
		Items:     items,
		ItemCount: c.ItemCount(),
		Subtotal:  c.Subtotal(),
		UpdatedAt: c.UpdatedAt,
	}
}
