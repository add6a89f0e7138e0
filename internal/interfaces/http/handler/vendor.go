package handler

import (
	"github.com/gin-gonic/gin"

	vendorapp "github.com/storefront/backend/internal/application/vendor"
)

// VendorHandler handles vendor self-service and platform vendor
// administration
type VendorHandler struct {
	BaseHandler
	vendorService *vendorapp.VendorService
}

// NewVendorHandler creates a new VendorHandler
func NewVendorHandler(vendorService *vendorapp.VendorService) *VendorHandler {
	return &VendorHandler{
		vendorService: vendorService,
	}
}

// Register opens a store for the authenticated account and promotes it to
// the vendor role
func (h *VendorHandler) Register(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req vendorapp.RegisterVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.vendorService.Register(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetOwnStore returns the caller's store
func (h *VendorHandler) GetOwnStore(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.vendorService.GetOwnStore(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateOwnStore updates the caller's store details and branding
func (h *VendorHandler) UpdateOwnStore(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req vendorapp.UpdateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.vendorService.UpdateOwnStore(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetOwnProfile returns the caller's fulfilment profile
func (h *VendorHandler) GetOwnProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.vendorService.GetOwnProfile(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateOwnProfile updates the caller's shipping defaults and COD setting
func (h *VendorHandler) UpdateOwnProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req vendorapp.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.vendorService.UpdateOwnProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// SetZoneRate creates or replaces a per-region shipping rate
func (h *VendorHandler) SetZoneRate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req vendorapp.SetZoneRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.vendorService.SetZoneRate(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RemoveZoneRate drops a per-region shipping rate
func (h *VendorHandler) RemoveZoneRate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	region := c.Param("region")
	if region == "" {
		h.BadRequest(c, "Missing region")
		return
	}

	resp, err := h.vendorService.RemoveZoneRate(c.Request.Context(), userID, region)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns vendors for the admin back office
func (h *VendorHandler) List(c *gin.Context) {
	filter := vendorapp.VendorListFilter{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
		OrderBy:  c.Query("order_by"),
		OrderDir: c.Query("order_dir"),
		Search:   c.Query("search"),
		Status:   c.Query("status"),
	}

	resp, err := h.vendorService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, resp.Vendors, resp.Total, resp.Page, resp.PageSize)
}

// GetByID returns a single vendor for the admin back office
func (h *VendorHandler) GetByID(c *gin.Context) {
	vendorID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid vendor ID")
		return
	}

	resp, err := h.vendorService.GetByID(c.Request.Context(), vendorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Suspend takes a vendor's storefront offline
func (h *VendorHandler) Suspend(c *gin.Context) {
	vendorID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid vendor ID")
		return
	}

	resp, err := h.vendorService.Suspend(c.Request.Context(), vendorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Activate brings a suspended vendor back online
func (h *VendorHandler) Activate(c *gin.Context) {
	vendorID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid vendor ID")
		return
	}

	resp, err := h.vendorService.Activate(c.Request.Context(), vendorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
