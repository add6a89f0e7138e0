package handler

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

// MediaHandler handles presigned image upload flows for product and store
// imagery
type MediaHandler struct {
	BaseHandler
	mediaService *catalogapp.MediaService
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(mediaService *catalogapp.MediaService) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
	}
}

// ConfirmImageUploadRequest confirms that a presigned upload completed
type ConfirmImageUploadRequest struct {
	StorageKey string `json:"storage_key" binding:"required,max=500"`
}

// DeleteImageRequest removes an uploaded image
type DeleteImageRequest struct {
	StorageKey string `json:"storage_key" binding:"required,max=500"`
}

// InitiateUpload validates the upload and returns a presigned URL
func (h *MediaHandler) InitiateUpload(c *gin.Context) {
	var req catalogapp.InitiateImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.mediaService.InitiateImageUpload(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// ConfirmUpload verifies the object landed in storage and returns its
// public URL
func (h *MediaHandler) ConfirmUpload(c *gin.Context) {
	var req ConfirmImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	url, err := h.mediaService.ConfirmImageUpload(c.Request.Context(), req.StorageKey)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"storage_key": req.StorageKey, "url": url})
}

// DeleteImage removes an uploaded image from storage
func (h *MediaHandler) DeleteImage(c *gin.Context) {
	var req DeleteImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.mediaService.DeleteImage(c.Request.Context(), req.StorageKey); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
