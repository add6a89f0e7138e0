package shipping

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tier identifies which rung of the shipping cascade produced a fee
type Tier string

const (
	// TierFreeShipping means the vendor group contained a free-shipping item
	TierFreeShipping Tier = "free_shipping"
	// TierZoneRate means a configured (profile, region) rate matched
	TierZoneRate Tier = "zone_rate"
	// TierVendorDefault means the vendor profile's default fee applied
	TierVendorDefault Tier = "vendor_default"
	// TierPlatformFallback means the platform-wide fixed fee applied
	TierPlatformFallback Tier = "platform_fallback"
)

// Resolution is the shipping outcome for one vendor group
type Resolution struct {
	VendorProfileID *uuid.UUID      `json:"vendor_profile_id,omitempty"`
	Fee             decimal.Decimal `json:"fee"`
	Tier            Tier            `json:"tier"`
}

// Quote is a full shipping quote for a cart destined to one region. Sequence
// echoes the caller-supplied request sequence so clients can discard stale
// quotes that arrive out of order.
type Quote struct {
	Sequence int64           `json:"sequence"`
	Region   string          `json:"region"`
	Groups   []Resolution    `json:"groups"`
	Total    decimal.Decimal `json:"total"`
}
