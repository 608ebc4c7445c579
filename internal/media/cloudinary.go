package media

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore deletes images through the Cloudinary upload API
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore creates a new Cloudinary client. An empty baseURL uses the public API.
func NewCloudinaryStore(cloudName, apiKey, apiSecret, baseURL string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	if baseURL != "" {
		cld.Config.API.UploadPrefix = baseURL
	}
	return &CloudinaryStore{cld: cld}, nil
}

// Destroy deletes an image resource by public id
func (c *CloudinaryStore) Destroy(ctx context.Context, publicID string) (DestroyResult, error) {
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to call destroy: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("destroy failed: %s", res.Error.Message)
	}
	return DestroyResult(res.Result), nil
}
