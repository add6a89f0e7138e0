package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/coupon"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

func TestCouponCreate_NormalizesCode(t *testing.T) {
	repo := new(MockCouponRepository)
	service := NewCouponService(repo)
	ctx := context.Background()

	repo.On("FindByCode", ctx, "SAVE10").Return(nil, shared.ErrNotFound)
	repo.On("Save", ctx, mock.AnythingOfType("*coupon.Coupon")).Return(nil)

	result, err := service.Create(ctx, CreateCouponRequest{
		Code:         "  save10 ",
		DiscountType: "PERCENT",
		Value:        decimal.NewFromInt(10),
		UsageLimit:   100,
	})

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "SAVE10", result.Code)
	assert.Equal(t, "ACTIVE", result.Status)
	assert.Equal(t, 0, result.UsedCount)
}

func TestCouponCreate_DuplicateCode(t *testing.T) {
	repo := new(MockCouponRepository)
	service := NewCouponService(repo)
	ctx := context.Background()

	existing, err := coupon.NewCoupon("SAVE10", coupon.DiscountPercent, decimal.NewFromInt(10), 100)
	require.NoError(t, err)
	repo.On("FindByCode", ctx, "SAVE10").Return(existing, nil)

	result, err := service.Create(ctx, CreateCouponRequest{
		Code:         "SAVE10",
		DiscountType: "PERCENT",
		Value:        decimal.NewFromInt(20),
		UsageLimit:   50,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCouponCreate_WithClaimWindow(t *testing.T) {
	repo := new(MockCouponRepository)
	service := NewCouponService(repo)
	ctx := context.Background()

	repo.On("FindByCode", ctx, "FIXED50").Return(nil, shared.ErrNotFound)
	repo.On("Save", ctx, mock.AnythingOfType("*coupon.Coupon")).Return(nil)

	minSubtotal := decimal.NewFromInt(200)
	expiresAt := time.Now().Add(72 * time.Hour)

	result, err := service.Create(ctx, CreateCouponRequest{
		Code:         "FIXED50",
		DiscountType: "FIXED",
		Value:        decimal.NewFromInt(50),
		MinSubtotal:  &minSubtotal,
		ExpiresAt:    &expiresAt,
		UsageLimit:   10,
	})

	assert.NoError(t, err)
	require.NotNil(t, result)
	require.NotNil(t, result.MinSubtotal)
	assert.True(t, result.MinSubtotal.Equal(minSubtotal))
	require.NotNil(t, result.ExpiresAt)
}

func TestCouponUpdate_ClearExpiry(t *testing.T) {
	repo := new(MockCouponRepository)
	service := NewCouponService(repo)
	ctx := context.Background()

	c, err := coupon.NewCoupon("SAVE10", coupon.DiscountPercent, decimal.NewFromInt(10), 100)
	require.NoError(t, err)
	expiresAt := time.Now().Add(time.Hour)
	c.SetExpiry(&expiresAt)

	repo.On("FindByID", ctx, c.ID).Return(c, nil)
	repo.On("Save", ctx, c).Return(nil)

	result, err := service.Update(ctx, c.ID, UpdateCouponRequest{ClearExpiresAt: true})

	assert.NoError(t, err)
	assert.Nil(t, result.ExpiresAt)
}

func TestCouponUpdate_Disable(t *testing.T) {
	repo := new(MockCouponRepository)
	service := NewCouponService(repo)
	ctx := context.Background()

	c, err := coupon.NewCoupon("SAVE10", coupon.DiscountPercent, decimal.NewFromInt(10), 100)
	require.NoError(t, err)

	repo.On("FindByID", ctx, c.ID).Return(c, nil)
	repo.On("Save", ctx, c).Return(nil)

	inactive := false
	result, err := service.Update(ctx, c.ID, UpdateCouponRequest{Active: &inactive})

	assert.NoError(t, err)
	assert.Equal(t, "DISABLED", result.Status)
}

func TestCouponDelete_UnknownCoupon(t *testing.T) {
	repo := new(MockCouponRepository)
	service := NewCouponService(repo)
	ctx := context.Background()
	couponID := uuid.New()

	repo.On("FindByID", ctx, couponID).Return(nil, shared.ErrNotFound)

	err := service.Delete(ctx, couponID)

	assert.ErrorIs(t, err, shared.ErrNotFound)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCouponRedemptions_DefaultsPagination(t *testing.T) {
	repo := new(MockCouponRepository)
	service := NewCouponService(repo)
	ctx := context.Background()

	c, err := coupon.NewCoupon("SAVE10", coupon.DiscountPercent, decimal.NewFromInt(10), 100)
	require.NoError(t, err)

	repo.On("FindByID", ctx, c.ID).Return(c, nil)
	repo.On("FindRedemptions", ctx, c.ID, shared.Filter{Page: 1, PageSize: 20}).
		Return([]coupon.Redemption{}, nil)

	result, err := service.Redemptions(ctx, c.ID, 0, 0)

	assert.NoError(t, err)
	assert.Empty(t, result)
}
