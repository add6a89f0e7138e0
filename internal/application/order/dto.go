package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// OrderItemResponse represents one order line in API responses
type OrderItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	VendorProfileID *uuid.UUID      `json:"vendor_profile_id,omitempty"`
	Name            string          `json:"name"`
	Size            string          `json:"size,omitempty"`
	Color           string          `json:"color,omitempty"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Quantity        int             `json:"quantity"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// AddressResponse represents the delivery address in API responses
type AddressResponse struct {
	Governorate string `json:"governorate"`
	City        string `json:"city"`
	Street      string `json:"street"`
	Notes       string `json:"notes,omitempty"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	UserID        *uuid.UUID          `json:"user_id,omitempty"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	CustomerPhone string              `json:"customer_phone"`
	Address       AddressResponse     `json:"address"`
	Items         []OrderItemResponse `json:"items"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	ShippingTotal decimal.Decimal     `json:"shipping_total"`
	Discount      decimal.Decimal     `json:"discount"`
	Total         decimal.Decimal     `json:"total"`
	PaymentMethod string              `json:"payment_method"`
	CouponCode    *string             `json:"coupon_code,omitempty"`
	Status        string              `json:"status"`
	Notes         string              `json:"notes,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ToAddressResponse converts an address value object to a response DTO
func ToAddressResponse(a valueobject.Address) AddressResponse {
	return AddressResponse{
		Governorate: a.Governorate(),
		City:        a.City(),
		Street:      a.Street(),
		Notes:       a.Notes(),
	}
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			VendorProfileID: it.VendorProfileID,
			Name:            it.Name,
			Size:            it.Size,
			Color:           it.Color,
			UnitPrice:       it.UnitPrice,
			Quantity:        it.Quantity,
			LineTotal:       it.LineTotal,
		}
	}
	return OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		CustomerName:  o.Customer.Name,
		CustomerEmail: o.Customer.Email,
		CustomerPhone: o.Customer.Phone,
		Address:       ToAddressResponse(o.Address),
		Items:         items,
		Subtotal:      o.Subtotal,
		ShippingTotal: o.ShippingTotal,
		Discount:      o.Discount,
		Total:         o.Total,
		PaymentMethod: string(o.PaymentMethod),
		CouponCode:    o.CouponCode,
		Status:        string(o.Status),
		Notes:         o.Notes,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// ToOrderResponses converts a slice of domain orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses
}

// OrderListFilter holds filters for order listings
type OrderListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Status   string
}

// OrderListResponse is a paginated order listing
type OrderListResponse struct {
	Orders   []OrderResponse `json:"orders"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}
