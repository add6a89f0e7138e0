package handler

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	vendorapp "github.com/storefront/backend/internal/application/vendor"
	"github.com/storefront/backend/internal/domain/shared"
)

// SectionHandler handles homepage section management. Vendors curate their
// own storefront sections; platform staff curate the global landing page.
type SectionHandler struct {
	BaseHandler
	sectionService *catalogapp.SectionService
	vendorService  *vendorapp.VendorService
}

// NewSectionHandler creates a new SectionHandler
func NewSectionHandler(sectionService *catalogapp.SectionService, vendorService *vendorapp.VendorService) *SectionHandler {
	return &SectionHandler{
		sectionService: sectionService,
		vendorService:  vendorService,
	}
}

// Create creates a homepage section
func (h *SectionHandler) Create(c *gin.Context) {
	ownerID, err := resolveOwnerVendorID(c, h.vendorService)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req catalogapp.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.sectionService.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetByID returns a single owned section
func (h *SectionHandler) GetByID(c *gin.Context) {
	ownerID, err := resolveOwnerVendorID(c, h.vendorService)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	sectionID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid section ID")
		return
	}

	resp, err := h.sectionService.GetByID(c.Request.Context(), ownerID, sectionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns the caller's sections
func (h *SectionHandler) List(c *gin.Context) {
	ownerID, err := resolveOwnerVendorID(c, h.vendorService)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filter := shared.Filter{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 50),
		OrderBy:  c.Query("order_by"),
		OrderDir: c.Query("order_dir"),
	}

	sections, err := h.sectionService.List(c.Request.Context(), ownerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sections)
}

// Update updates an owned section
func (h *SectionHandler) Update(c *gin.Context) {
	ownerID, err := resolveOwnerVendorID(c, h.vendorService)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	sectionID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid section ID")
		return
	}

	var req catalogapp.UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.sectionService.Update(c.Request.Context(), ownerID, sectionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete removes an owned section
func (h *SectionHandler) Delete(c *gin.Context) {
	ownerID, err := resolveOwnerVendorID(c, h.vendorService)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	sectionID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid section ID")
		return
	}

	if err := h.sectionService.Delete(c.Request.Context(), ownerID, sectionID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
