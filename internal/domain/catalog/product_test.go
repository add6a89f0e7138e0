package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	profileID := uuid.New()

	p, err := NewProduct("Linen Shirt", decimal.NewFromInt(100), &profileID)
	require.NoError(t, err)
	assert.Equal(t, ProductStatusDraft, p.Status)
	assert.False(t, p.IsActive())
	assert.Equal(t, profileID, *p.VendorProfileID)

	_, err = NewProduct("", decimal.NewFromInt(10), nil)
	assert.Error(t, err)

	_, err = NewProduct("x", decimal.NewFromInt(-1), nil)
	assert.Error(t, err)

	nilID := uuid.Nil
	_, err = NewProduct("x", decimal.NewFromInt(10), &nilID)
	assert.Error(t, err)
}

func TestProductSalePrice(t *testing.T) {
	p, err := NewProduct("Shirt", decimal.NewFromInt(100), nil)
	require.NoError(t, err)
	assert.False(t, p.IsOnSale())
	assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(100)))

	sale := decimal.NewFromInt(75)
	require.NoError(t, p.SetSalePrice(&sale))
	assert.True(t, p.IsOnSale())
	assert.True(t, p.EffectivePrice().Equal(sale))
	assert.True(t, p.DiscountPercent().Equal(decimal.NewFromInt(25)))

	over := decimal.NewFromInt(100)
	assert.Error(t, p.SetSalePrice(&over), "sale price must be below regular price")

	require.NoError(t, p.SetSalePrice(nil))
	assert.False(t, p.IsOnSale())
	assert.True(t, p.DiscountPercent().IsZero())
}

func TestProductVariantPrice(t *testing.T) {
	p, err := NewProduct("Shirt", decimal.NewFromInt(100), nil)
	require.NoError(t, err)
	p.SetVariants([]Variant{
		{Size: "XL", Color: "black", Adjustment: decimal.NewFromInt(20)},
		{Size: "M", Color: "black", Adjustment: decimal.Zero},
	})

	assert.True(t, p.VariantPrice("XL", "black").Equal(decimal.NewFromInt(120)))
	assert.True(t, p.VariantPrice("M", "black").Equal(decimal.NewFromInt(100)))
	assert.True(t, p.VariantPrice("S", "red").Equal(decimal.NewFromInt(100)))

	// Sale price applies before the variant adjustment.
	sale := decimal.NewFromInt(80)
	require.NoError(t, p.SetSalePrice(&sale))
	assert.True(t, p.VariantPrice("XL", "black").Equal(decimal.NewFromInt(100)))
}

func TestProductLifecycle(t *testing.T) {
	p, err := NewProduct("Shirt", decimal.NewFromInt(100), nil)
	require.NoError(t, err)

	require.NoError(t, p.Activate())
	assert.True(t, p.IsActive())
	assert.Error(t, p.Activate())

	require.NoError(t, p.Archive())
	assert.False(t, p.IsActive())
	assert.Error(t, p.Archive())
}

func TestSection(t *testing.T) {
	vendorID := uuid.New()

	s, err := NewSection("Best Sellers", SectionBestSellers, &vendorID)
	require.NoError(t, err)
	assert.True(t, s.Active)
	assert.True(t, s.BelongsTo(&vendorID))
	assert.False(t, s.BelongsTo(nil))

	global, err := NewSection("Hot Deals", SectionHotDeals, nil)
	require.NoError(t, err)
	assert.True(t, global.BelongsTo(nil))
	assert.False(t, global.BelongsTo(&vendorID))

	_, err = NewSection("", SectionHotDeals, nil)
	assert.Error(t, err)
	_, err = NewSection("x", SectionKind("WEIRD"), nil)
	assert.Error(t, err)

	assert.Error(t, s.SetCategory(uuid.New()), "only category sections take a category")
	assert.Error(t, s.SetProducts([]uuid.UUID{uuid.New()}), "only manual sections take products")

	manual, err := NewSection("Picks", SectionManual, nil)
	require.NoError(t, err)
	require.NoError(t, manual.SetProducts([]uuid.UUID{uuid.New(), uuid.New()}))
	assert.Len(t, manual.ProductIDs, 2)

	assert.Error(t, s.SetLimit(0))
	require.NoError(t, s.SetLimit(8))
	assert.Equal(t, 8, s.Limit)
}
