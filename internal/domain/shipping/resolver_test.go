package shipping

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/vendor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

var fallback = decimal.NewFromInt(60)

func newProfile(t *testing.T) *vendor.VendorProfile {
	t.Helper()
	p, err := vendor.NewVendorProfile(uuid.New(), uuid.New())
	require.NoError(t, err)
	return p
}

func groupFor(profileID *uuid.UUID, items ...cart.CartItem) cart.VendorGroup {
	return cart.VendorGroup{VendorProfileID: profileID, Items: items}
}

func TestResolvePlatformBucket(t *testing.T) {
	src := new(MockProfileSource)
	r := NewResolver(src, fallback)

	res := r.ResolveGroup(context.Background(), groupFor(nil, cart.CartItem{ProductID: uuid.New()}), "cairo")
	assert.Equal(t, TierPlatformFallback, res.Tier)
	assert.True(t, res.Fee.Equal(fallback))
	src.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestResolveFreeShippingItem(t *testing.T) {
	src := new(MockProfileSource)
	r := NewResolver(src, fallback)
	id := uuid.New()

	group := groupFor(&id,
		cart.CartItem{ProductID: uuid.New()},
		cart.CartItem{ProductID: uuid.New(), FreeShipping: true},
	)
	res := r.ResolveGroup(context.Background(), group, "cairo")
	assert.Equal(t, TierFreeShipping, res.Tier)
	assert.True(t, res.Fee.IsZero())
}

func TestResolveZoneRate(t *testing.T) {
	src := new(MockProfileSource)
	profile := newProfile(t)
	ref := profile.ID

	src.On("FindByOwnerUserID", mock.Anything, ref).Return(nil, shared.ErrNotFound)
	src.On("FindByVendorID", mock.Anything, ref).Return(nil, shared.ErrNotFound)
	src.On("FindByID", mock.Anything, ref).Return(profile, nil)
	rate := vendor.NewShippingRate(profile.ID, "cairo", decimal.NewFromInt(30))
	src.On("FindZoneRate", mock.Anything, profile.ID, "cairo").Return(&rate, nil)

	r := NewResolver(src, fallback)
	res := r.ResolveGroup(context.Background(), groupFor(&ref, cart.CartItem{ProductID: uuid.New()}), "Cairo")
	assert.Equal(t, TierZoneRate, res.Tier)
	assert.True(t, res.Fee.Equal(decimal.NewFromInt(30)))
}

func TestResolveVendorDefault(t *testing.T) {
	src := new(MockProfileSource)
	profile := newProfile(t)
	def := decimal.NewFromInt(40)
	require.NoError(t, profile.SetDefaultShippingFee(&def))
	ref := profile.ID

	src.On("FindByOwnerUserID", mock.Anything, ref).Return(nil, shared.ErrNotFound)
	src.On("FindByVendorID", mock.Anything, ref).Return(nil, shared.ErrNotFound)
	src.On("FindByID", mock.Anything, ref).Return(profile, nil)
	src.On("FindZoneRate", mock.Anything, profile.ID, "sinai").Return(nil, shared.ErrNotFound)

	r := NewResolver(src, fallback)
	res := r.ResolveGroup(context.Background(), groupFor(&ref, cart.CartItem{ProductID: uuid.New()}), "sinai")
	assert.Equal(t, TierVendorDefault, res.Tier)
	assert.True(t, res.Fee.Equal(def))
}

func TestResolveFallsBackWhenProfileMissing(t *testing.T) {
	src := new(MockProfileSource)
	ref := uuid.New()
	src.On("FindByOwnerUserID", mock.Anything, ref).Return(nil, shared.ErrNotFound)
	src.On("FindByVendorID", mock.Anything, ref).Return(nil, shared.ErrNotFound)
	src.On("FindByID", mock.Anything, ref).Return(nil, shared.ErrNotFound)

	r := NewResolver(src, fallback)
	res := r.ResolveGroup(context.Background(), groupFor(&ref, cart.CartItem{ProductID: uuid.New()}), "cairo")
	assert.Equal(t, TierPlatformFallback, res.Tier)
	assert.True(t, res.Fee.Equal(fallback))
}

func TestResolveFallsBackOnLookupError(t *testing.T) {
	src := new(MockProfileSource)
	ref := uuid.New()
	src.On("FindByOwnerUserID", mock.Anything, ref).Return(nil, errors.New("connection reset"))

	r := NewResolver(src, fallback)
	res := r.ResolveGroup(context.Background(), groupFor(&ref, cart.CartItem{ProductID: uuid.New()}), "cairo")
	assert.Equal(t, TierPlatformFallback, res.Tier)
	assert.True(t, res.Fee.Equal(fallback))
}

func TestResolveLegacyOwnerReference(t *testing.T) {
	src := new(MockProfileSource)
	profile := newProfile(t)
	ownerRef := profile.OwnerUserID

	src.On("FindByOwnerUserID", mock.Anything, ownerRef).Return(profile, nil)
	src.On("FindZoneRate", mock.Anything, profile.ID, "cairo").Return(nil, shared.ErrNotFound)

	r := NewResolver(src, fallback)
	res := r.ResolveGroup(context.Background(), groupFor(&ownerRef, cart.CartItem{ProductID: uuid.New()}), "cairo")
	assert.Equal(t, TierPlatformFallback, res.Tier)
	src.AssertNotCalled(t, "FindByVendorID", mock.Anything, mock.Anything)
}

func TestResolveFreeShippingThreshold(t *testing.T) {
	src := new(MockProfileSource)
	profile := newProfile(t)
	threshold := decimal.NewFromInt(200)
	require.NoError(t, profile.SetFreeShippingThreshold(&threshold))
	ref := profile.ID

	src.On("FindByOwnerUserID", mock.Anything, ref).Return(nil, shared.ErrNotFound)
	src.On("FindByVendorID", mock.Anything, ref).Return(nil, shared.ErrNotFound)
	src.On("FindByID", mock.Anything, ref).Return(profile, nil)

	r := NewResolver(src, fallback)
	group := groupFor(&ref, cart.CartItem{ProductID: uuid.New(), UnitPrice: decimal.NewFromInt(120), Quantity: 2})
	res := r.ResolveGroup(context.Background(), group, "cairo")
	assert.Equal(t, TierFreeShipping, res.Tier)
	assert.True(t, res.Fee.IsZero())
}

func TestResolveQuoteTotalsAndSequence(t *testing.T) {
	src := new(MockProfileSource)
	profile := newProfile(t)
	ref := profile.ID

	src.On("FindByOwnerUserID", mock.Anything, ref).Return(nil, shared.ErrNotFound)
	src.On("FindByVendorID", mock.Anything, ref).Return(nil, shared.ErrNotFound)
	src.On("FindByID", mock.Anything, ref).Return(profile, nil)
	rate := vendor.NewShippingRate(profile.ID, "cairo", decimal.NewFromInt(30))
	src.On("FindZoneRate", mock.Anything, profile.ID, "cairo").Return(&rate, nil)

	freeVendor := uuid.New()
	groups := []cart.VendorGroup{
		groupFor(&ref, cart.CartItem{ProductID: uuid.New(), UnitPrice: decimal.NewFromInt(100), Quantity: 2}),
		groupFor(&freeVendor, cart.CartItem{ProductID: uuid.New(), UnitPrice: decimal.NewFromInt(50), Quantity: 1, FreeShipping: true}),
	}

	r := NewResolver(src, fallback)
	quote := r.Resolve(context.Background(), groups, "Cairo", 7)

	assert.Equal(t, int64(7), quote.Sequence)
	assert.Equal(t, "cairo", quote.Region)
	require.Len(t, quote.Groups, 2)
	assert.True(t, quote.Total.Equal(decimal.NewFromInt(30)))
}
