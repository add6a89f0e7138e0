package catalog

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// allowedImageTypes lists the content types accepted for product and store
// imagery. Anything else is rejected before a presigned URL is issued.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ObjectStorageService defines the interface for object storage operations
// This interface will be implemented by the infrastructure layer (S3, MinIO, etc.)
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	// Returns the upload URL and expiration time
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	// Returns the download URL and expiration time
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// MediaServiceConfig holds configuration for the media service
type MediaServiceConfig struct {
	// UploadURLExpiry is the duration for which upload URLs are valid
	UploadURLExpiry time.Duration
	// MaxImageSize is the maximum accepted image size in bytes
	MaxImageSize int64
	// PublicBaseURL prefixes storage keys when rendering image URLs
	PublicBaseURL string
}

// DefaultMediaServiceConfig returns the default media service configuration
func DefaultMediaServiceConfig() MediaServiceConfig {
	return MediaServiceConfig{
		UploadURLExpiry: 15 * time.Minute,
		MaxImageSize:    10 << 20, // 10 MiB
	}
}

// MediaService issues presigned upload URLs for product and store images and
// turns confirmed uploads into public image URLs
type MediaService struct {
	storageService ObjectStorageService
	config         MediaServiceConfig
}

// NewMediaService creates a new MediaService
func NewMediaService(storageService ObjectStorageService) *MediaService {
	return &MediaService{
		storageService: storageService,
		config:         DefaultMediaServiceConfig(),
	}
}

// SetConfig sets the service configuration
func (s *MediaService) SetConfig(config MediaServiceConfig) {
	s.config = config
}

// InitiateImageUpload validates the request and returns a presigned upload
// URL together with the storage key the client must confirm afterwards
func (s *MediaService) InitiateImageUpload(ctx context.Context, req InitiateImageUploadRequest) (*InitiateImageUploadResponse, error) {
	ext, ok := allowedImageTypes[strings.ToLower(req.ContentType)]
	if !ok {
		return nil, shared.NewDomainError("UNSUPPORTED_IMAGE_TYPE",
			fmt.Sprintf("Content type %q is not an accepted image format", req.ContentType))
	}
	if req.Size <= 0 {
		return nil, shared.NewDomainError("INVALID_IMAGE_SIZE", "Image size must be positive")
	}
	if s.config.MaxImageSize > 0 && req.Size > s.config.MaxImageSize {
		return nil, shared.NewDomainError("IMAGE_TOO_LARGE",
			fmt.Sprintf("Image exceeds the maximum size of %d bytes", s.config.MaxImageSize))
	}

	folder, err := imageFolder(req.Kind)
	if err != nil {
		return nil, err
	}
	if req.OwnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Image owner ID cannot be empty")
	}

	storageKey := path.Join(folder, req.OwnerID.String(), uuid.New().String()+ext)

	uploadURL, expiresAt, err := s.storageService.GenerateUploadURL(ctx, storageKey, req.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	return &InitiateImageUploadResponse{
		StorageKey: storageKey,
		UploadURL:  uploadURL,
		ExpiresAt:  expiresAt,
	}, nil
}

// ConfirmImageUpload verifies the object landed in storage and returns the
// public URL to store on the product or vendor profile
func (s *MediaService) ConfirmImageUpload(ctx context.Context, storageKey string) (string, error) {
	if storageKey == "" {
		return "", shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}

	exists, err := s.storageService.ObjectExists(ctx, storageKey)
	if err != nil {
		return "", fmt.Errorf("failed to verify upload: %w", err)
	}
	if !exists {
		return "", shared.NewDomainError("UPLOAD_NOT_FOUND", "No uploaded object found for this storage key")
	}

	return s.PublicURL(storageKey), nil
}

// PublicURL returns the public-facing URL for a stored image
func (s *MediaService) PublicURL(storageKey string) string {
	base := strings.TrimRight(s.config.PublicBaseURL, "/")
	if base == "" {
		return "/" + storageKey
	}
	return base + "/" + storageKey
}

// DeleteImage removes a stored image
func (s *MediaService) DeleteImage(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}
	return s.storageService.DeleteObject(ctx, storageKey)
}

func imageFolder(kind string) (string, error) {
	switch kind {
	case "product":
		return "products", nil
	case "vendor":
		return "vendors", nil
	case "category":
		return "categories", nil
	default:
		return "", shared.NewDomainError("INVALID_IMAGE_KIND", "Image kind must be product, vendor or category")
	}
}
