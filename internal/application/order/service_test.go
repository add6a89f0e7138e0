package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of order.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]order.Order, int64, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) FindByVendorProfile(ctx context.Context, profileID uuid.UUID, filter shared.Filter) ([]order.Order, int64, error) {
	args := m.Called(ctx, profileID, filter)
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) NextOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func testOrder(t *testing.T, profileID *uuid.UUID) *order.Order {
	t.Helper()
	address, err := valueobject.NewAddress("Cairo", "Nasr City", "12 Abbas El Akkad")
	require.NoError(t, err)
	o, err := order.NewOrder("ORD-2026-00001", order.Customer{
		Name:  "Nour Hassan",
		Phone: "+201001234567",
	}, address, []order.OrderItem{
		{ProductID: uuid.New(), VendorProfileID: profileID, Name: "Lamp", UnitPrice: decimal.NewFromInt(125), Quantity: 2},
	}, decimal.NewFromInt(30), decimal.Zero)
	require.NoError(t, err)
	return o
}

func TestGetForCustomer_OwnOrder(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	ctx := context.Background()

	userID := uuid.New()
	o := testOrder(t, nil)
	o.AttachUser(userID)
	repo.On("FindByID", ctx, o.ID).Return(o, nil)

	result, err := service.GetForCustomer(ctx, userID, o.ID)

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "ORD-2026-00001", result.OrderNumber)
}

func TestGetForCustomer_ForeignOrderReadsAsNotFound(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	ctx := context.Background()

	o := testOrder(t, nil)
	o.AttachUser(uuid.New())
	repo.On("FindByID", ctx, o.ID).Return(o, nil)

	result, err := service.GetForCustomer(ctx, uuid.New(), o.ID)

	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Nil(t, result)
}

func TestGetForVendor_RequiresOwnLine(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	ctx := context.Background()

	profileID := uuid.New()
	o := testOrder(t, &profileID)
	repo.On("FindByID", ctx, o.ID).Return(o, nil)

	result, err := service.GetForVendor(ctx, profileID, o.ID)
	assert.NoError(t, err)
	assert.NotNil(t, result)

	result, err = service.GetForVendor(ctx, uuid.New(), o.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Nil(t, result)
}

func TestTrackByNumber_GuestOrderIsPublic(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	ctx := context.Background()

	o := testOrder(t, nil)
	repo.On("FindByOrderNumber", ctx, "ORD-2026-00001").Return(o, nil)

	result, err := service.TrackByNumber(ctx, "ORD-2026-00001", nil)

	assert.NoError(t, err)
	assert.NotNil(t, result)
}

func TestTrackByNumber_OwnedOrderHiddenFromStrangers(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	ctx := context.Background()

	ownerID := uuid.New()
	o := testOrder(t, nil)
	o.AttachUser(ownerID)
	repo.On("FindByOrderNumber", ctx, "ORD-2026-00001").Return(o, nil)

	result, err := service.TrackByNumber(ctx, "ORD-2026-00001", nil)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Nil(t, result)

	strangerID := uuid.New()
	result, err = service.TrackByNumber(ctx, "ORD-2026-00001", &strangerID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Nil(t, result)

	result, err = service.TrackByNumber(ctx, "ORD-2026-00001", &ownerID)
	assert.NoError(t, err)
	assert.NotNil(t, result)
}

func TestUpdateStatus_ValidTransition(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	ctx := context.Background()

	o := testOrder(t, nil)
	repo.On("FindByID", ctx, o.ID).Return(o, nil)
	repo.On("SaveWithLock", ctx, o).Return(nil)

	result, err := service.UpdateStatus(ctx, o.ID, order.OrderStatusConfirmed)

	assert.NoError(t, err)
	assert.Equal(t, "CONFIRMED", result.Status)
}

func TestUpdateStatus_IllegalTransition(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	ctx := context.Background()

	o := testOrder(t, nil)
	repo.On("FindByID", ctx, o.ID).Return(o, nil)

	result, err := service.UpdateStatus(ctx, o.ID, order.OrderStatusDelivered)

	assert.Error(t, err)
	assert.Nil(t, result)
	repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestUpdateStatus_ConcurrentTransition(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	ctx := context.Background()

	o := testOrder(t, nil)
	repo.On("FindByID", ctx, o.ID).Return(o, nil)
	repo.On("SaveWithLock", ctx, o).Return(shared.ErrConcurrencyConflict)

	result, err := service.UpdateStatus(ctx, o.ID, order.OrderStatusConfirmed)

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.Nil(t, result)
}

func TestCancelForCustomer_OnlyOwner(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	ctx := context.Background()

	ownerID := uuid.New()
	o := testOrder(t, nil)
	o.AttachUser(ownerID)
	repo.On("FindByID", ctx, o.ID).Return(o, nil)
	repo.On("SaveWithLock", ctx, o).Return(nil)

	result, err := service.CancelForCustomer(ctx, ownerID, o.ID)

	assert.NoError(t, err)
	assert.Equal(t, "CANCELLED", result.Status)
}

func TestCancelForCustomer_ConfirmedOrderCannotBeCancelled(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	ctx := context.Background()

	ownerID := uuid.New()
	o := testOrder(t, nil)
	o.AttachUser(ownerID)
	require.NoError(t, o.Confirm())
	repo.On("FindByID", ctx, o.ID).Return(o, nil)

	result, err := service.CancelForCustomer(ctx, ownerID, o.ID)

	assert.Nil(t, result)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ORDER_NOT_CANCELLABLE", domainErr.Code)
	repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestCancelForCustomer_ShippedOrderCannotBeCancelled(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	ctx := context.Background()

	ownerID := uuid.New()
	o := testOrder(t, nil)
	o.AttachUser(ownerID)
	require.NoError(t, o.Confirm())
	require.NoError(t, o.Ship())
	repo.On("FindByID", ctx, o.ID).Return(o, nil)

	result, err := service.CancelForCustomer(ctx, ownerID, o.ID)

	assert.Error(t, err)
	assert.Nil(t, result)
	repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestOrderList_IgnoresUnknownStatusFilter(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	ctx := context.Background()

	expected := shared.Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  map[string]interface{}{},
	}
	repo.On("FindAll", ctx, expected).Return([]order.Order{}, nil)
	repo.On("Count", ctx, expected).Return(int64(0), nil)

	result, err := service.List(ctx, OrderListFilter{Status: "TELEPORTED"})

	assert.NoError(t, err)
	assert.Equal(t, int64(0), result.Total)
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("SHIPPED")
	assert.NoError(t, err)
	assert.Equal(t, order.OrderStatusShipped, status)

	_, err = ParseStatus("TELEPORTED")
	assert.Error(t, err)
}
