package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/coupon"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/domain/vendor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockCartStore is a mock implementation of cart.CartStore
type MockCartStore struct {
	mock.Mock
}

func (m *MockCartStore) Get(ctx context.Context, sessionID string) (*cart.Cart, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartStore) Save(ctx context.Context, c *cart.Cart) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCartStore) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) FindByVendorProfile(ctx context.Context, profileID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, profileID, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) BestSellers(ctx context.Context, scope vendor.Scope, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, scope, limit)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) HotDeals(ctx context.Context, scope vendor.Scope, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, scope, limit)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) NewArrivals(ctx context.Context, scope vendor.Scope, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, scope, limit)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) ByCategory(ctx context.Context, scope vendor.Scope, categoryID uuid.UUID, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, scope, categoryID, filter)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Search(ctx context.Context, scope vendor.Scope, query string, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, scope, query, filter)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) IncrementSoldCount(ctx context.Context, id uuid.UUID, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *MockProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCouponRepository is a mock implementation of coupon.CouponRepository
type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupon.Coupon), args.Error(1)
}

func (m *MockCouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupon.Coupon), args.Error(1)
}

func (m *MockCouponRepository) FindAll(ctx context.Context, filter shared.Filter) ([]coupon.Coupon, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]coupon.Coupon), args.Error(1)
}

func (m *MockCouponRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCouponRepository) Claim(ctx context.Context, code string) (*coupon.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupon.Coupon), args.Error(1)
}

func (m *MockCouponRepository) Release(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockCouponRepository) RecordRedemption(ctx context.Context, r coupon.Redemption) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockCouponRepository) FindRedemptions(ctx context.Context, couponID uuid.UUID, filter shared.Filter) ([]coupon.Redemption, error) {
	args := m.Called(ctx, couponID, filter)
	return args.Get(0).([]coupon.Redemption), args.Error(1)
}

func (m *MockCouponRepository) Save(ctx context.Context, c *coupon.Coupon) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCouponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

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

// MockProfileSource is a mock implementation of shipping.ProfileSource
type MockProfileSource struct {
	mock.Mock
}

func (m *MockProfileSource) FindByID(ctx context.Context, id uuid.UUID) (*vendor.VendorProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vendor.VendorProfile), args.Error(1)
}

func (m *MockProfileSource) FindByVendorID(ctx context.Context, vendorID uuid.UUID) (*vendor.VendorProfile, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vendor.VendorProfile), args.Error(1)
}

func (m *MockProfileSource) FindByOwnerUserID(ctx context.Context, ownerUserID uuid.UUID) (*vendor.VendorProfile, error) {
	args := m.Called(ctx, ownerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vendor.VendorProfile), args.Error(1)
}

func (m *MockProfileSource) FindZoneRate(ctx context.Context, profileID uuid.UUID, region string) (*vendor.ShippingRate, error) {
	args := m.Called(ctx, profileID, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vendor.ShippingRate), args.Error(1)
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, u *identity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type checkoutFixture struct {
	cartStore   *MockCartStore
	productRepo *MockProductRepository
	couponRepo  *MockCouponRepository
	orderRepo   *MockOrderRepository
	userRepo    *MockUserRepository
	profiles    *MockProfileSource
	service     *CheckoutService
}

func newCheckoutFixture(fallbackFee decimal.Decimal) *checkoutFixture {
	f := &checkoutFixture{
		cartStore:   new(MockCartStore),
		productRepo: new(MockProductRepository),
		couponRepo:  new(MockCouponRepository),
		orderRepo:   new(MockOrderRepository),
		userRepo:    new(MockUserRepository),
		profiles:    new(MockProfileSource),
	}
	resolver := shipping.NewResolver(f.profiles, fallbackFee)
	f.service = NewCheckoutService(f.cartStore, f.productRepo, f.couponRepo, f.orderRepo, f.userRepo, resolver, zap.NewNop())
	return f
}

// signedInCustomer registers an active customer account with the user mock
// and returns its ID for Submit calls
func (f *checkoutFixture) signedInCustomer(t *testing.T) *uuid.UUID {
	t.Helper()
	u, err := identity.NewUser("customer@example.com", "Nour Hassan", "s3cretpass", identity.RoleCustomer)
	require.NoError(t, err)
	f.userRepo.On("FindByID", mock.Anything, u.ID).Return(u, nil)
	return &u.ID
}

func activeProduct(name string, price int64) *catalog.Product {
	p, _ := catalog.NewProduct(name, decimal.NewFromInt(price), nil)
	_ = p.Activate()
	return p
}

func cartWith(t *testing.T, items ...cart.CartItem) *cart.Cart {
	t.Helper()
	c, err := cart.NewCart("sess-1")
	require.NoError(t, err)
	for _, it := range items {
		require.NoError(t, c.AddItem(it, it.Quantity))
	}
	return c
}

func submitRequest() SubmitOrderRequest {
	return SubmitOrderRequest{
		CustomerName:  "Nour Hassan",
		CustomerEmail: "nour@example.com",
		CustomerPhone: "+201001234567",
		Governorate:   "Cairo",
		City:          "Nasr City",
		Street:        "12 Abbas El Akkad",
	}
}

func TestQuote_EchoesSequence(t *testing.T) {
	f := newCheckoutFixture(decimal.NewFromInt(60))
	ctx := context.Background()

	product := activeProduct("Mug", 100)
	c := cartWith(t, cart.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: decimal.NewFromInt(100),
		Quantity:  2,
	})
	f.cartStore.On("Get", ctx, "sess-1").Return(c, nil)

	result, err := f.service.Quote(ctx, "sess-1", QuoteRequest{Region: "Cairo", Sequence: 7})

	assert.NoError(t, err)
	assert.Equal(t, int64(7), result.Quote.Sequence)
	assert.Equal(t, "cairo", result.Quote.Region)
	// Platform-sold lines quote at the platform fallback fee
	require.Len(t, result.Quote.Groups, 1)
	assert.Equal(t, shipping.TierPlatformFallback, result.Quote.Groups[0].Tier)
	assert.True(t, result.Quote.Total.Equal(decimal.NewFromInt(60)))
	assert.True(t, result.Subtotal.Equal(decimal.NewFromInt(200)))
	assert.True(t, result.Total.Equal(decimal.NewFromInt(260)))
}

func TestQuote_FreeShippingItemZeroesGroup(t *testing.T) {
	f := newCheckoutFixture(decimal.NewFromInt(60))
	ctx := context.Background()

	profileID := uuid.New()
	c := cartWith(t, cart.CartItem{
		ProductID:       uuid.New(),
		Name:            "Rug",
		UnitPrice:       decimal.NewFromInt(500),
		Quantity:        1,
		VendorProfileID: &profileID,
		FreeShipping:    true,
	})
	f.cartStore.On("Get", ctx, "sess-1").Return(c, nil)

	result, err := f.service.Quote(ctx, "sess-1", QuoteRequest{Region: "Giza", Sequence: 1})

	assert.NoError(t, err)
	require.Len(t, result.Quote.Groups, 1)
	assert.Equal(t, shipping.TierFreeShipping, result.Quote.Groups[0].Tier)
	assert.True(t, result.Quote.Total.IsZero())
	// The free-shipping short-circuit never touches the profile store
	f.profiles.AssertNotCalled(t, "FindByOwnerUserID", mock.Anything, mock.Anything)
}

func TestQuote_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(decimal.NewFromInt(60))
	ctx := context.Background()

	empty, _ := cart.NewCart("sess-1")
	f.cartStore.On("Get", ctx, "sess-1").Return(empty, nil)

	result, err := f.service.Quote(ctx, "sess-1", QuoteRequest{Region: "Cairo"})

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestSubmit_Success(t *testing.T) {
	f := newCheckoutFixture(decimal.NewFromInt(30))
	ctx := context.Background()

	product := activeProduct("Lamp", 125)
	c := cartWith(t, cart.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: decimal.NewFromInt(125),
		Quantity:  2,
	})

	f.cartStore.On("Get", ctx, "sess-1").Return(c, nil)
	f.productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
	f.orderRepo.On("NextOrderNumber", ctx).Return("ORD-2026-00042", nil)
	f.orderRepo.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
	f.cartStore.On("Delete", ctx, "sess-1").Return(nil)
	f.productRepo.On("IncrementSoldCount", ctx, product.ID, 2).Return(nil)

	result, err := f.service.Submit(ctx, "sess-1", f.signedInCustomer(t), submitRequest())

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "ORD-2026-00042", result.OrderNumber)
	assert.Equal(t, "PENDING", result.Status)
	assert.Equal(t, "CASH_ON_DELIVERY", result.PaymentMethod)
	assert.True(t, result.Subtotal.Equal(decimal.NewFromInt(250)))
	assert.True(t, result.ShippingTotal.Equal(decimal.NewFromInt(30)))
	assert.True(t, result.Total.Equal(decimal.NewFromInt(280)))
	f.cartStore.AssertCalled(t, "Delete", ctx, "sess-1")
}

func TestSubmit_WithCoupon(t *testing.T) {
	f := newCheckoutFixture(decimal.NewFromInt(30))
	ctx := context.Background()

	product := activeProduct("Lamp", 125)
	c := cartWith(t, cart.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: decimal.NewFromInt(125),
		Quantity:  2,
	})

	cpn, err := coupon.NewCoupon("SAVE10", coupon.DiscountPercent, decimal.NewFromInt(10), 100)
	require.NoError(t, err)

	f.cartStore.On("Get", ctx, "sess-1").Return(c, nil)
	f.productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
	f.couponRepo.On("FindByCode", ctx, "SAVE10").Return(cpn, nil)
	f.couponRepo.On("Claim", ctx, "SAVE10").Return(cpn, nil)
	f.orderRepo.On("NextOrderNumber", ctx).Return("ORD-2026-00043", nil)
	f.orderRepo.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
	f.couponRepo.On("RecordRedemption", ctx, mock.AnythingOfType("coupon.Redemption")).Return(nil)
	f.cartStore.On("Delete", ctx, "sess-1").Return(nil)
	f.productRepo.On("IncrementSoldCount", ctx, product.ID, 2).Return(nil)

	req := submitRequest()
	req.CouponCode = "save10"

	result, err := f.service.Submit(ctx, "sess-1", f.signedInCustomer(t), req)

	assert.NoError(t, err)
	require.NotNil(t, result)
	// 250 subtotal - 10% coupon + 30 shipping
	assert.True(t, result.Discount.Equal(decimal.NewFromInt(25)))
	assert.True(t, result.Total.Equal(decimal.NewFromInt(255)))
	require.NotNil(t, result.CouponCode)
	assert.Equal(t, "SAVE10", *result.CouponCode)
	f.couponRepo.AssertCalled(t, "RecordRedemption", ctx, mock.AnythingOfType("coupon.Redemption"))
	f.couponRepo.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestSubmit_CouponRefused_NoOrderWritten(t *testing.T) {
	f := newCheckoutFixture(decimal.NewFromInt(30))
	ctx := context.Background()

	product := activeProduct("Lamp", 125)
	c := cartWith(t, cart.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: decimal.NewFromInt(125),
		Quantity:  2,
	})

	exhausted, err := coupon.NewCoupon("GONE", coupon.DiscountPercent, decimal.NewFromInt(10), 1)
	require.NoError(t, err)
	exhausted.UsedCount = 1

	f.cartStore.On("Get", ctx, "sess-1").Return(c, nil)
	f.productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
	f.couponRepo.On("FindByCode", ctx, "GONE").Return(exhausted, nil)

	req := submitRequest()
	req.CouponCode = "GONE"

	result, err := f.service.Submit(ctx, "sess-1", f.signedInCustomer(t), req)

	assert.ErrorIs(t, err, shared.ErrCouponRefused)
	assert.Nil(t, result)
	f.orderRepo.AssertNotCalled(t, "NextOrderNumber", mock.Anything)
	f.orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubmit_PersistFailure_ReleasesCoupon(t *testing.T) {
	f := newCheckoutFixture(decimal.NewFromInt(30))
	ctx := context.Background()

	product := activeProduct("Lamp", 125)
	c := cartWith(t, cart.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: decimal.NewFromInt(125),
		Quantity:  2,
	})

	cpn, err := coupon.NewCoupon("SAVE10", coupon.DiscountPercent, decimal.NewFromInt(10), 100)
	require.NoError(t, err)

	f.cartStore.On("Get", ctx, "sess-1").Return(c, nil)
	f.productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
	f.couponRepo.On("FindByCode", ctx, "SAVE10").Return(cpn, nil)
	f.couponRepo.On("Claim", ctx, "SAVE10").Return(cpn, nil)
	f.orderRepo.On("NextOrderNumber", ctx).Return("ORD-2026-00044", nil)
	f.orderRepo.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(errors.New("connection reset"))
	f.couponRepo.On("Release", ctx, "SAVE10").Return(nil)

	req := submitRequest()
	req.CouponCode = "SAVE10"

	result, err := f.service.Submit(ctx, "sess-1", f.signedInCustomer(t), req)

	assert.Error(t, err)
	assert.Nil(t, result)
	f.couponRepo.AssertCalled(t, "Release", ctx, "SAVE10")
	f.cartStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSubmit_RepricesFromCatalog(t *testing.T) {
	f := newCheckoutFixture(decimal.NewFromInt(30))
	ctx := context.Background()

	product := activeProduct("Lamp", 125)
	sale := decimal.NewFromInt(100)
	require.NoError(t, product.SetSalePrice(&sale))

	// The cart snapshot still carries the old price
	c := cartWith(t, cart.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: decimal.NewFromInt(125),
		Quantity:  1,
	})

	f.cartStore.On("Get", ctx, "sess-1").Return(c, nil)
	f.productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
	f.orderRepo.On("NextOrderNumber", ctx).Return("ORD-2026-00045", nil)
	f.orderRepo.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
	f.cartStore.On("Delete", ctx, "sess-1").Return(nil)
	f.productRepo.On("IncrementSoldCount", ctx, product.ID, 1).Return(nil)

	result, err := f.service.Submit(ctx, "sess-1", f.signedInCustomer(t), submitRequest())

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Subtotal.Equal(decimal.NewFromInt(100)),
		"order must use the catalog price, not the cart snapshot")
}

func TestSubmit_InactiveProduct(t *testing.T) {
	f := newCheckoutFixture(decimal.NewFromInt(30))
	ctx := context.Background()

	product, _ := catalog.NewProduct("Draft", decimal.NewFromInt(50), nil)
	c := cartWith(t, cart.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: decimal.NewFromInt(50),
		Quantity:  1,
	})

	f.cartStore.On("Get", ctx, "sess-1").Return(c, nil)
	f.productRepo.On("FindByID", ctx, product.ID).Return(product, nil)

	result, err := f.service.Submit(ctx, "sess-1", f.signedInCustomer(t), submitRequest())

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PRODUCT_UNAVAILABLE", domainErr.Code)
}

func TestSubmit_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(decimal.NewFromInt(30))
	ctx := context.Background()

	empty, _ := cart.NewCart("sess-1")
	f.cartStore.On("Get", ctx, "sess-1").Return(empty, nil)

	result, err := f.service.Submit(ctx, "sess-1", f.signedInCustomer(t), submitRequest())

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestSubmit_AnonymousRejected(t *testing.T) {
	f := newCheckoutFixture(decimal.NewFromInt(30))

	result, err := f.service.Submit(context.Background(), "sess-1", nil, submitRequest())

	assert.Nil(t, result)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
	// Rejected before any state is touched
	f.cartStore.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	f.orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubmit_UnknownUserRejected(t *testing.T) {
	f := newCheckoutFixture(decimal.NewFromInt(30))

	userID := uuid.New()
	f.userRepo.On("FindByID", mock.Anything, userID).Return(nil, shared.ErrNotFound)

	result, err := f.service.Submit(context.Background(), "sess-1", &userID, submitRequest())

	assert.Nil(t, result)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
	f.cartStore.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestSubmit_BlockedUserRejected(t *testing.T) {
	f := newCheckoutFixture(decimal.NewFromInt(30))

	u, err := identity.NewUser("blocked@example.com", "Blocked Account", "s3cretpass", identity.RoleCustomer)
	require.NoError(t, err)
	require.NoError(t, u.Block())
	f.userRepo.On("FindByID", mock.Anything, u.ID).Return(u, nil)

	result, err := f.service.Submit(context.Background(), "sess-1", &u.ID, submitRequest())

	assert.Nil(t, result)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ACCOUNT_BLOCKED", domainErr.Code)
	f.cartStore.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	f.orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubmit_AttachesAuthenticatedUser(t *testing.T) {
	f := newCheckoutFixture(decimal.NewFromInt(30))
	ctx := context.Background()

	product := activeProduct("Lamp", 125)
	c := cartWith(t, cart.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: decimal.NewFromInt(125),
		Quantity:  1,
	})

	f.cartStore.On("Get", ctx, "sess-1").Return(c, nil)
	f.productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
	f.orderRepo.On("NextOrderNumber", ctx).Return("ORD-2026-00046", nil)
	f.orderRepo.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
	f.cartStore.On("Delete", ctx, "sess-1").Return(nil)
	f.productRepo.On("IncrementSoldCount", ctx, product.ID, 1).Return(nil)

	userID := f.signedInCustomer(t)
	result, err := f.service.Submit(ctx, "sess-1", userID, submitRequest())

	assert.NoError(t, err)
	require.NotNil(t, result)
	require.NotNil(t, result.UserID)
	assert.Equal(t, *userID, *result.UserID)
}

type fakeIdempotencyStore struct {
	seen map[string]bool
	err  error
}

func (s *fakeIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func TestCheckoutService_SubmitWithIdempotencyKey_Duplicate(t *testing.T) {
	f := newCheckoutFixture(decimal.NewFromInt(60))
	f.service.SetIdempotencyStore(&fakeIdempotencyStore{
		seen: map[string]bool{"checkout:submit:retry-1": true},
	})

	_, err := f.service.SubmitWithIdempotencyKey(context.Background(), "sess-1", nil, "retry-1", SubmitOrderRequest{})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DUPLICATE_SUBMISSION", domainErr.Code)
	f.cartStore.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestCheckoutService_SubmitWithIdempotencyKey_EmptyKeySkipsGuard(t *testing.T) {
	f := newCheckoutFixture(decimal.NewFromInt(60))
	f.service.SetIdempotencyStore(&fakeIdempotencyStore{})

	emptyCart, err := cart.NewCart("sess-1")
	require.NoError(t, err)
	f.cartStore.On("Get", mock.Anything, "sess-1").Return(emptyCart, nil)

	_, err = f.service.SubmitWithIdempotencyKey(context.Background(), "sess-1", f.signedInCustomer(t), "", SubmitOrderRequest{})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "EMPTY_CART", domainErr.Code)
}

func TestCheckoutService_SubmitWithIdempotencyKey_StoreErrorDegrades(t *testing.T) {
	f := newCheckoutFixture(decimal.NewFromInt(60))
	f.service.SetIdempotencyStore(&fakeIdempotencyStore{err: errors.New("redis down")})

	emptyCart, err := cart.NewCart("sess-1")
	require.NoError(t, err)
	f.cartStore.On("Get", mock.Anything, "sess-1").Return(emptyCart, nil)

	_, err = f.service.SubmitWithIdempotencyKey(context.Background(), "sess-1", f.signedInCustomer(t), "retry-1", SubmitOrderRequest{})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "EMPTY_CART", domainErr.Code, "a store failure should not block checkout")
}
