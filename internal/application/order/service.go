package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderService serves order listings and status management. Customers see
// their own orders, vendors the orders containing their lines, admins
// everything; status transitions go through the domain state machine under
// optimistic locking.
type OrderService struct {
	orderRepo order.OrderRepository
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo order.OrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

// GetByID returns an order for an admin caller
func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// GetForCustomer returns an order only if the given user placed it
func (s *OrderService) GetForCustomer(ctx context.Context, userID, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.BelongsTo(userID) {
		return nil, shared.ErrNotFound
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// GetForVendor returns an order only if it contains a line fulfilled by the
// given vendor profile
func (s *OrderService) GetForVendor(ctx context.Context, profileID, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.ContainsVendor(profileID) {
		return nil, shared.ErrNotFound
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// TrackByNumber returns an order looked up by its public order number,
// restricted to the placing user when one is given
func (s *OrderService) TrackByNumber(ctx context.Context, orderNumber string, userID *uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if o.UserID != nil && (userID == nil || !o.BelongsTo(*userID)) {
		return nil, shared.ErrNotFound
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// ListForCustomer returns the user's orders, newest first
func (s *OrderService) ListForCustomer(ctx context.Context, userID uuid.UUID, filter OrderListFilter) (*OrderListResponse, error) {
	domainFilter := s.buildFilter(filter)
	orders, total, err := s.orderRepo.FindByUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, err
	}
	return &OrderListResponse{
		Orders:   ToOrderResponses(orders),
		Total:    total,
		Page:     domainFilter.Page,
		PageSize: domainFilter.PageSize,
	}, nil
}

// ListForVendor returns orders containing the vendor profile's lines
func (s *OrderService) ListForVendor(ctx context.Context, profileID uuid.UUID, filter OrderListFilter) (*OrderListResponse, error) {
	domainFilter := s.buildFilter(filter)
	orders, total, err := s.orderRepo.FindByVendorProfile(ctx, profileID, domainFilter)
	if err != nil {
		return nil, err
	}
	return &OrderListResponse{
		Orders:   ToOrderResponses(orders),
		Total:    total,
		Page:     domainFilter.Page,
		PageSize: domainFilter.PageSize,
	}, nil
}

// List returns all orders for the admin back office
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) (*OrderListResponse, error) {
	domainFilter := s.buildFilter(filter)
	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	return &OrderListResponse{
		Orders:   ToOrderResponses(orders),
		Total:    total,
		Page:     domainFilter.Page,
		PageSize: domainFilter.PageSize,
	}, nil
}

// UpdateStatus transitions an order through the status state machine. The
// save uses optimistic locking; a concurrent transition surfaces as
// shared.ErrConcurrencyConflict for the caller to retry.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, target order.OrderStatus) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.TransitionTo(target); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// CancelForCustomer cancels an order on behalf of the user who placed it.
// Customers may only cancel while the order is still pending; once a vendor
// confirms it, cancellation goes through support (admin status transition).
func (s *OrderService) CancelForCustomer(ctx context.Context, userID, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.BelongsTo(userID) {
		return nil, shared.ErrNotFound
	}
	if o.Status != order.OrderStatusPending {
		return nil, shared.NewDomainError("ORDER_NOT_CANCELLABLE",
			"Only pending orders can be cancelled")
	}
	if err := o.Cancel(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

func (s *OrderService) buildFilter(filter OrderListFilter) shared.Filter {
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
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		status := order.OrderStatus(filter.Status)
		if status.IsValid() {
			domainFilter.Filters["status"] = status
		}
	}
	return domainFilter
}

// ParseStatus maps a request string to the closed status enum
func ParseStatus(s string) (order.OrderStatus, error) {
	status := order.OrderStatus(s)
	if !status.IsValid() {
		return "", shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	return status, nil
}
