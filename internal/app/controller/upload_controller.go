package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/jchoi/storefront-backend/internal/errors"
	"github.com/jchoi/storefront-backend/internal/storage"
)

type UploadController struct {
	storage *storage.S3Storage
}

// NewUploadController accepts a nil storage; requests then fail with a
// clear configuration error instead of a panic.
func NewUploadController(s *storage.S3Storage) *UploadController {
	return &UploadController{storage: s}
}

type PresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// GetPresignedURL handles POST /upload/presigned-url (admin)
func (ctrl *UploadController) GetPresignedURL(c *gin.Context) {
	if ctrl.storage == nil {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable,
			apperrors.UploadNotConfigured, "Object storage is not configured")
		return
	}

	var req PresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	upload, err := ctrl.storage.GeneratePresignedUploadURL(c.Request.Context(), req.Filename, req.ContentType)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedContentType) {
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only image uploads are allowed")
			return
		}
		apperrors.HandleError(c, err, "upload")
		return
	}

	c.JSON(http.StatusOK, upload)
}
