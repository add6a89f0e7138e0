package shipping

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/vendor"
)

// ProfileSource is the subset of vendor.ProfileRepository the resolver needs
type ProfileSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*vendor.VendorProfile, error)
	FindByVendorID(ctx context.Context, vendorID uuid.UUID) (*vendor.VendorProfile, error)
	FindByOwnerUserID(ctx context.Context, ownerUserID uuid.UUID) (*vendor.VendorProfile, error)
	FindZoneRate(ctx context.Context, profileID uuid.UUID, region string) (*vendor.ShippingRate, error)
}

// Resolver computes shipping fees per vendor group through a fixed cascade:
// free-shipping item, then zone rate for the destination region, then the
// vendor's default fee, then the platform fallback. Lookup failures degrade
// the group to the platform fallback; resolution never blocks checkout.
type Resolver struct {
	profiles    ProfileSource
	fallbackFee decimal.Decimal
}

// NewResolver creates a resolver with the platform fallback fee
func NewResolver(profiles ProfileSource, fallbackFee decimal.Decimal) *Resolver {
	if fallbackFee.IsNegative() {
		fallbackFee = decimal.Zero
	}
	return &Resolver{profiles: profiles, fallbackFee: fallbackFee}
}

// FallbackFee returns the platform-wide fixed fee
func (r *Resolver) FallbackFee() decimal.Decimal {
	return r.fallbackFee
}

// Resolve quotes shipping for the given vendor groups destined to region,
// echoing the caller's sequence number in the quote
func (r *Resolver) Resolve(ctx context.Context, groups []cart.VendorGroup, region string, sequence int64) Quote {
	region = valueobject.NormalizeRegion(region)
	quote := Quote{
		Sequence: sequence,
		Region:   region,
		Groups:   make([]Resolution, 0, len(groups)),
		Total:    decimal.Zero,
	}
	for _, g := range groups {
		res := r.ResolveGroup(ctx, g, region)
		quote.Groups = append(quote.Groups, res)
		quote.Total = quote.Total.Add(res.Fee)
	}
	return quote
}

// ResolveGroup runs the cascade for a single vendor group
func (r *Resolver) ResolveGroup(ctx context.Context, group cart.VendorGroup, region string) Resolution {
	res := Resolution{VendorProfileID: group.VendorProfileID}

	// Platform-sold lines skip the vendor cascade entirely.
	if group.VendorProfileID == nil {
		res.Fee = r.fallbackFee
		res.Tier = TierPlatformFallback
		return res
	}

	for _, it := range group.Items {
		if it.FreeShipping {
			res.Fee = decimal.Zero
			res.Tier = TierFreeShipping
			return res
		}
	}

	profile, err := r.lookupProfile(ctx, *group.VendorProfileID)
	if err != nil || profile == nil {
		res.Fee = r.fallbackFee
		res.Tier = TierPlatformFallback
		return res
	}

	if profile.FreeShippingThreshold != nil {
		subtotal := decimal.Zero
		for _, it := range group.Items {
			subtotal = subtotal.Add(it.LineTotal())
		}
		if subtotal.GreaterThanOrEqual(*profile.FreeShippingThreshold) {
			res.Fee = decimal.Zero
			res.Tier = TierFreeShipping
			return res
		}
	}

	rate, err := r.profiles.FindZoneRate(ctx, profile.ID, region)
	switch {
	case err == nil && rate != nil:
		res.Fee = rate.Fee
		res.Tier = TierZoneRate
		return res
	case err != nil && !errors.Is(err, shared.ErrNotFound):
		res.Fee = r.fallbackFee
		res.Tier = TierPlatformFallback
		return res
	}

	if profile.DefaultShippingFee != nil {
		res.Fee = *profile.DefaultShippingFee
		res.Tier = TierVendorDefault
		return res
	}

	res.Fee = r.fallbackFee
	res.Tier = TierPlatformFallback
	return res
}

// lookupProfile resolves a cart line's vendor reference to a profile. Rows
// written before vendor references were normalized may carry the owner user
// ID or the store ID instead of the profile ID, so the lookup tries
// owner-user-id, then store-id, then profile-id.
func (r *Resolver) lookupProfile(ctx context.Context, ref uuid.UUID) (*vendor.VendorProfile, error) {
	if p, err := r.profiles.FindByOwnerUserID(ctx, ref); err == nil && p != nil {
		return p, nil
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if p, err := r.profiles.FindByVendorID(ctx, ref); err == nil && p != nil {
		return p, nil
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return r.profiles.FindByID(ctx, ref)
}
