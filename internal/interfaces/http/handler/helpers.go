package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	vendorapp "github.com/storefront/backend/internal/application/vendor"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent or malformed
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// queryBoolPtr parses an optional boolean query parameter
func queryBoolPtr(c *gin.Context, name string) *bool {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// queryUUIDPtr parses an optional UUID query parameter
func queryUUIDPtr(c *gin.Context, name string) *uuid.UUID {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &v
}

// queryDecimalPtr parses an optional decimal query parameter
func queryDecimalPtr(c *gin.Context, name string) *decimal.Decimal {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &v
}

// callerRole resolves the authenticated caller's role from JWT claims.
// Unauthenticated callers come back as GUEST.
func callerRole(c *gin.Context) identity.Role {
	return identity.ParseRole(middleware.GetJWTRole(c))
}

// resolveOwnerProfileID maps the caller to the vendor profile whose catalog
// they may manage. Platform staff get nil, meaning no ownership restriction.
func resolveOwnerProfileID(c *gin.Context, vendors *vendorapp.VendorService) (*uuid.UUID, error) {
	if callerRole(c).CanManagePlatform() {
		return nil, nil
	}
	userID, err := getUserID(c)
	if err != nil {
		return nil, err
	}
	profile, err := vendors.GetOwnProfile(c.Request.Context(), userID)
	if err != nil {
		return nil, err
	}
	id := profile.ID
	return &id, nil
}

// resolveOwnerVendorID maps the caller to their store ID. Platform staff get
// nil, meaning no ownership restriction.
func resolveOwnerVendorID(c *gin.Context, vendors *vendorapp.VendorService) (*uuid.UUID, error) {
	if callerRole(c).CanManagePlatform() {
		return nil, nil
	}
	userID, err := getUserID(c)
	if err != nil {
		return nil, err
	}
	store, err := vendors.GetOwnStore(c.Request.Context(), userID)
	if err != nil {
		return nil, err
	}
	id := store.ID
	return &id, nil
}
