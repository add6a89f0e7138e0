package handler

import (
	"github.com/gin-gonic/gin"

	couponapp "github.com/storefront/backend/internal/application/coupon"
)

// CouponHandler handles platform coupon administration
type CouponHandler struct {
	BaseHandler
	couponService *couponapp.CouponService
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(couponService *couponapp.CouponService) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
	}
}

// Create creates a coupon
func (h *CouponHandler) Create(c *gin.Context) {
	var req couponapp.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.couponService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetByID returns a single coupon
func (h *CouponHandler) GetByID(c *gin.Context) {
	couponID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid coupon ID")
		return
	}

	resp, err := h.couponService.GetByID(c.Request.Context(), couponID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns coupons, filtered and paginated
func (h *CouponHandler) List(c *gin.Context) {
	filter := couponapp.CouponListFilter{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
		OrderBy:  c.Query("order_by"),
		OrderDir: c.Query("order_dir"),
		Search:   c.Query("search"),
		Status:   c.Query("status"),
	}

	resp, err := h.couponService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, resp.Coupons, resp.Total, resp.Page, resp.PageSize)
}

// Update updates a coupon's claim window. Code, type and value are
// immutable.
func (h *CouponHandler) Update(c *gin.Context) {
	couponID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid coupon ID")
		return
	}

	var req couponapp.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.couponService.Update(c.Request.Context(), couponID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete removes a coupon that has never been redeemed
func (h *CouponHandler) Delete(c *gin.Context) {
	couponID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid coupon ID")
		return
	}

	if err := h.couponService.Delete(c.Request.Context(), couponID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Redemptions returns a coupon's redemption history
func (h *CouponHandler) Redemptions(c *gin.Context) {
	couponID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid coupon ID")
		return
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	redemptions, err := h.couponService.Redemptions(c.Request.Context(), couponID, page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, redemptions)
}
