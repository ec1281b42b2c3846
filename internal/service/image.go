package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/pageza/circlekitchen/backend/internal/logger"
)

// MaxImageBytes caps uploaded recipe images.
const MaxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ObjectStorage stores a blob and returns a URL it can be fetched from.
type ObjectStorage interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// ImageService handles image storage for user-authored recipes
type ImageService struct {
	storage ObjectStorage
	log     logger.Logger
}

// NewImageService creates a new ImageService instance
func NewImageService(storage ObjectStorage, log logger.Logger) *ImageService {
	return &ImageService{storage: storage, log: log}
}

// UploadRecipeImage sniffs the image type, stores it and returns the public URL
// and the image type (file extension).
func (s *ImageService) UploadRecipeImage(ctx context.Context, recipeID string, data []byte) (string, string, error) {
	if len(data) == 0 {
		return "", "", fmt.Errorf("%w: empty file", ErrInvalidImage)
	}
	if len(data) > MaxImageBytes {
		return "", "", fmt.Errorf("%w: larger than %d bytes", ErrInvalidImage, MaxImageBytes)
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", "", fmt.Errorf("%w: unsupported type %s", ErrInvalidImage, contentType)
	}

	key := fmt.Sprintf("recipe-images/%s/%s.%s", recipeID, uuid.NewString(), ext)
	url, err := s.storage.PutObject(ctx, key, contentType, data)
	if err != nil {
		return "", "", fmt.Errorf("failed to upload recipe image: %w", err)
	}
	logger.ForRequest(ctx, s.log).Info("Uploaded recipe image", "recipe_id", recipeID, "url", url)
	return url, ext, nil
}
