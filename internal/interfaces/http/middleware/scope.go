package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/vendor"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Scope context keys
const (
	ScopeKey      = "catalog_scope"
	ScopeStoreKey = "catalog_scope_store"
	// VendorSlugParam is the route parameter carrying the store slug
	VendorSlugParam = "vendor_slug"
)

// ScopeResolver resolves a storefront slug to a catalog scope
type ScopeResolver interface {
	ResolveScope(ctx context.Context, slug string) (vendor.Scope, *storefront.StoreResponse, error)
}

// ScopeMiddlewareConfig holds configuration for the scope middleware
type ScopeMiddlewareConfig struct {
	// Resolver is required for slug resolution
	Resolver ScopeResolver
	// Logger for middleware logging
	Logger *zap.Logger
}

// VendorScopeMiddleware resolves the :vendor_slug route parameter to a vendor
// scope. Unknown or inactive slugs abort with 404 before any handler runs.
// The resolved scope and store summary are stored in the gin context.
func VendorScopeMiddleware(cfg ScopeMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param(VendorSlugParam)
		if slug == "" {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ERR_STORE_NOT_FOUND",
					"message": "Store not found",
				},
			})
			return
		}

		scope, store, err := cfg.Resolver.ResolveScope(c.Request.Context(), slug)
		if err != nil {
			if cfg.Logger != nil && !errors.Is(err, shared.ErrStoreNotFound) {
				cfg.Logger.Error("Scope resolution failed",
					zap.String("slug", slug),
					zap.Error(err))
			}
			status := http.StatusNotFound
			code := "ERR_STORE_NOT_FOUND"
			message := "Store not found"
			if !errors.Is(err, shared.ErrStoreNotFound) {
				status = http.StatusInternalServerError
				code = "ERR_INTERNAL"
				message = "Failed to resolve store"
			}
			c.AbortWithStatusJSON(status, gin.H{
				"success": false,
				"error": gin.H{
					"code":    code,
					"message": message,
				},
			})
			return
		}

		c.Set(ScopeKey, scope)
		if store != nil {
			c.Set(ScopeStoreKey, store)
		}

		// Tag the request logger with the vendor for downstream log lines
		if scope.IsVendor() {
			ctx := c.Request.Context()
			log := logger.FromContext(ctx)
			ctx, _ = logger.WithVendorID(ctx, log, scope.VendorID.String())
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}

// GlobalScopeMiddleware marks the request as platform-wide browsing
func GlobalScopeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ScopeKey, vendor.GlobalScope())
		c.Next()
	}
}

// GetScope retrieves the resolved catalog scope from gin.Context.
// Returns an unresolved scope when no middleware has run.
func GetScope(c *gin.Context) vendor.Scope {
	if v, exists := c.Get(ScopeKey); exists {
		if scope, ok := v.(vendor.Scope); ok {
			return scope
		}
	}
	return vendor.UnresolvedScope()
}

// GetScopeStore retrieves the resolved store summary, if any
func GetScopeStore(c *gin.Context) *storefront.StoreResponse {
	if v, exists := c.Get(ScopeStoreKey); exists {
		if store, ok := v.(*storefront.StoreResponse); ok {
			return store
		}
	}
	return nil
}
