package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	storefrontapp "github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// defaultSectionLimit caps how many products a landing rail returns when the
// client does not ask for a specific count
const defaultSectionLimit = 12

// StorefrontHandler handles the public browsing API. The same handlers serve
// the platform-wide storefront and per-vendor storefronts; the scope
// middleware decides which catalog slice a request sees.
type StorefrontHandler struct {
	BaseHandler
	storefrontService *storefrontapp.StorefrontService
}

// NewStorefrontHandler creates a new StorefrontHandler
func NewStorefrontHandler(storefrontService *storefrontapp.StorefrontService) *StorefrontHandler {
	return &StorefrontHandler{
		storefrontService: storefrontService,
	}
}

// GetStore returns the resolved store's public summary
func (h *StorefrontHandler) GetStore(c *gin.Context) {
	store := middleware.GetScopeStore(c)
	if store == nil {
		h.NotFound(c, "Store not found")
		return
	}
	h.Success(c, store)
}

// emptyStrip logs the failed strip query and serves an empty list. Landing
// rails are decorative; a failing query must not take down the page around it.
func (h *StorefrontHandler) emptyStrip(c *gin.Context, strip string, err error) {
	logger.GetGinLogger(c).Warn("Storefront strip query failed, serving empty result",
		zap.String("strip", strip),
		zap.Error(err),
	)
	h.Success(c, []any{})
}

// Landing returns the homepage sections with their resolved products
func (h *StorefrontHandler) Landing(c *gin.Context) {
	scope := middleware.GetScope(c)

	sections, err := h.storefrontService.Landing(c.Request.Context(), scope)
	if err != nil {
		h.emptyStrip(c, "landing", err)
		return
	}

	h.Success(c, sections)
}

// BestSellers returns the top products by units sold within the scope
func (h *StorefrontHandler) BestSellers(c *gin.Context) {
	scope := middleware.GetScope(c)
	limit := queryInt(c, "limit", defaultSectionLimit)

	products, err := h.storefrontService.BestSellers(c.Request.Context(), scope, limit)
	if err != nil {
		h.emptyStrip(c, "best_sellers", err)
		return
	}

	h.Success(c, products)
}

// HotDeals returns discounted products ordered by discount depth
func (h *StorefrontHandler) HotDeals(c *gin.Context) {
	scope := middleware.GetScope(c)
	limit := queryInt(c, "limit", defaultSectionLimit)

	products, err := h.storefrontService.HotDeals(c.Request.Context(), scope, limit)
	if err != nil {
		h.emptyStrip(c, "hot_deals", err)
		return
	}

	h.Success(c, products)
}

// NewArrivals returns the most recently activated products
func (h *StorefrontHandler) NewArrivals(c *gin.Context) {
	scope := middleware.GetScope(c)
	limit := queryInt(c, "limit", defaultSectionLimit)

	products, err := h.storefrontService.NewArrivals(c.Request.Context(), scope, limit)
	if err != nil {
		h.emptyStrip(c, "new_arrivals", err)
		return
	}

	h.Success(c, products)
}

// Categories returns the active category tree
func (h *StorefrontHandler) Categories(c *gin.Context) {
	categories, err := h.storefrontService.Categories(c.Request.Context())
	if err != nil {
		h.emptyStrip(c, "categories", err)
		return
	}

	h.Success(c, categories)
}

// ByCategory returns active products in a category, paginated
func (h *StorefrontHandler) ByCategory(c *gin.Context) {
	scope := middleware.GetScope(c)

	categoryID, ok := parseIDParam(c, "category_id")
	if !ok {
		h.BadRequest(c, "Invalid category ID")
		return
	}

	query := storefrontapp.ProductListQuery{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}

	resp, err := h.storefrontService.ByCategory(c.Request.Context(), scope, categoryID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, resp.Products, resp.Total, resp.Page, resp.PageSize)
}

// Search searches active products by name within the scope
func (h *StorefrontHandler) Search(c *gin.Context) {
	scope := middleware.GetScope(c)

	term := c.Query("q")
	if term == "" {
		h.BadRequest(c, "Missing search term")
		return
	}

	query := storefrontapp.ProductListQuery{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}

	resp, err := h.storefrontService.Search(c.Request.Context(), scope, term, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, resp.Products, resp.Total, resp.Page, resp.PageSize)
}

// ProductDetail returns a single active product and records the view for
// the caller's recently-viewed list
func (h *StorefrontHandler) ProductDetail(c *gin.Context) {
	productID, ok := parseIDParam(c, "product_id")
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	viewerID := getSessionID(c)

	resp, err := h.storefrontService.ProductDetail(c.Request.Context(), productID, viewerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// LastViewed returns the caller's recently viewed products within the scope
func (h *StorefrontHandler) LastViewed(c *gin.Context) {
	scope := middleware.GetScope(c)

	viewerID := getSessionID(c)
	if viewerID == "" {
		h.Success(c, []any{})
		return
	}

	products, err := h.storefrontService.LastViewed(c.Request.Context(), scope, viewerID)
	if err != nil {
		h.emptyStrip(c, "last_viewed", err)
		return
	}

	h.Success(c, products)
}
