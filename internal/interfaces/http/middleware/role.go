package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/identity"
	"go.uber.org/zap"
)

// RoleConfig holds configuration for role middleware
type RoleConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
	// OnDenied is called when access is denied (optional)
	OnDenied func(c *gin.Context)
}

// RoleCheckFunc decides whether a role may pass
type RoleCheckFunc func(role identity.Role) bool

// RequireRole creates middleware that requires one of the listed roles
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return RequireRoleCheck(func(role identity.Role) bool {
		for _, r := range roles {
			if role == r {
				return true
			}
		}
		return false
	})
}

// RequireCustomer creates middleware for routes that require a signed-in customer
func RequireCustomer() gin.HandlerFunc {
	return RequireRoleCheck(identity.Role.CanPlaceOrders)
}

// RequireVendor creates middleware for vendor back-office routes
func RequireVendor() gin.HandlerFunc {
	return RequireRoleCheck(identity.Role.CanManageOwnStore)
}

// RequireAdmin creates middleware for platform administration routes
func RequireAdmin() gin.HandlerFunc {
	return RequireRoleCheck(identity.Role.CanManagePlatform)
}

// RequireSuperAdmin creates middleware for admin-management routes
func RequireSuperAdmin() gin.HandlerFunc {
	return RequireRoleCheck(identity.Role.CanManageAdmins)
}

// RequireRoleCheck creates middleware with a custom role predicate
func RequireRoleCheck(check RoleCheckFunc) gin.HandlerFunc {
	return RequireRoleCheckWithConfig(check, RoleConfig{})
}

// RequireRoleCheckWithConfig creates role middleware with custom config
func RequireRoleCheckWithConfig(check RoleCheckFunc, cfg RoleConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handleRoleDenied(c, cfg, "No authentication claims found")
			return
		}

		if !check(claims.GetRole()) {
			handleRoleDenied(c, cfg, "Role lacks required capability")
			return
		}

		c.Next()
	}
}

// handleRoleDenied handles access denied scenarios
func handleRoleDenied(c *gin.Context, cfg RoleConfig, reason string) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c)
		return
	}

	if cfg.Logger != nil {
		claims := GetJWTClaims(c)
		role := ""
		if claims != nil {
			role = claims.Role
		}
		cfg.Logger.Warn("Access denied",
			zap.String("reason", reason),
			zap.String("role", role),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "ERR_FORBIDDEN",
			"message": "Access denied: insufficient role",
		},
	})
}

// HasRole is a helper to check the caller's role in handlers
func HasRole(c *gin.Context, role identity.Role) bool {
	claims := GetJWTClaims(c)
	if claims == nil {
		return false
	}
	return claims.GetRole() == role
}
