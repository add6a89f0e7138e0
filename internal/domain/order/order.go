package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can move to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	transitions := map[OrderStatus][]OrderStatus{
		OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
		OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
		OrderStatusShipped:   {OrderStatusDelivered},
		OrderStatusDelivered: {},
		OrderStatusCancelled: {},
	}
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// PaymentMethod is how the customer pays. Cash on delivery is currently the
// only supported method.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
)

// OrderItem is an immutable snapshot of a purchased line at placement time
type OrderItem struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	ProductID       uuid.UUID
	VendorProfileID *uuid.UUID
	Name            string
	Size            string
	Color           string
	UnitPrice       decimal.Decimal
	Quantity        int
	LineTotal       decimal.Decimal
	CreatedAt       time.Time
}

// Customer is the contact snapshot captured at checkout
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Order is a placed storefront order. Everything except Status is immutable
// after placement; totals are snapshots of the checkout arithmetic.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber   string
	UserID        *uuid.UUID
	Customer      Customer            `gorm:"embedded;embeddedPrefix:customer_"`
	Address       valueobject.Address `gorm:"type:json"`
	Items         []OrderItem         `gorm:"foreignKey:OrderID"`
	Subtotal      decimal.Decimal
	ShippingTotal decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	CouponCode    *string
	Status        OrderStatus
	Notes         string
}

// NewOrder creates a pending order from checkout snapshots. Total is
// recomputed here so a drifted caller cannot persist inconsistent amounts.
func NewOrder(orderNumber string, customer Customer, address valueobject.Address,
	items []OrderItem, shippingTotal, discount decimal.Decimal) (*Order, error) {

	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customer.Name == "" || customer.Phone == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer name and phone are required")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	if shippingTotal.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Shipping total cannot be negative")
	}
	if discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Discount cannot be negative")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		Customer:          customer,
		Address:           address,
		PaymentMethod:     PaymentCashOnDelivery,
		Status:            OrderStatusPending,
	}

	subtotal := decimal.Zero
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Order item quantity must be at least 1")
		}
		it.ID = uuid.New()
		it.OrderID = o.ID
		it.LineTotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		it.CreatedAt = o.CreatedAt
		o.Items = append(o.Items, it)
		subtotal = subtotal.Add(it.LineTotal)
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	o.Subtotal = subtotal
	o.ShippingTotal = shippingTotal
	o.Discount = discount
	o.Total = subtotal.Sub(discount).Add(shippingTotal)
	return o, nil
}

// AttachUser links the order to the authenticated customer account
func (o *Order) AttachUser(userID uuid.UUID) {
	o.UserID = &userID
}

// AttachCoupon records the claimed coupon code on the order
func (o *Order) AttachCoupon(code string) {
	o.CouponCode = &code
}

// TransitionTo moves the order to a new status if the transition is allowed
func (o *Order) TransitionTo(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			"Cannot transition order from "+o.Status.String()+" to "+target.String())
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// Confirm moves a pending order to confirmed
func (o *Order) Confirm() error {
	return o.TransitionTo(OrderStatusConfirmed)
}

// Ship moves a confirmed order to shipped
func (o *Order) Ship() error {
	return o.TransitionTo(OrderStatusShipped)
}

// Deliver moves a shipped order to delivered
func (o *Order) Deliver() error {
	return o.TransitionTo(OrderStatusDelivered)
}

// Cancel cancels the order; allowed from pending and confirmed only
func (o *Order) Cancel() error {
	return o.TransitionTo(OrderStatusCancelled)
}

// BelongsTo reports whether the order was placed by the given user
func (o *Order) BelongsTo(userID uuid.UUID) bool {
	return o.UserID != nil && *o.UserID == userID
}

// ContainsVendor reports whether any line is fulfilled by the given profile
func (o *Order) ContainsVendor(profileID uuid.UUID) bool {
	for _, it := range o.Items {
		if it.VendorProfileID != nil && *it.VendorProfileID == profileID {
			return true
		}
	}
	return false
}
