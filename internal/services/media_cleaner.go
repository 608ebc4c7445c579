package services

import (
	"context"
	"fmt"

	"couple-backend/internal/media"

	"github.com/rs/zerolog/log"
)

// MediaCleaner deletes hosted images
type MediaCleaner struct {
	store media.Store
	host  string
}

// NewMediaCleaner creates a media cleaner for images served from host
func NewMediaCleaner(store media.Store, host string) *MediaCleaner {
	return &MediaCleaner{store: store, host: host}
}

// DeleteByPublicID destroys an image. An image that is already gone counts as deleted.
func (c *MediaCleaner) DeleteByPublicID(ctx context.Context, publicID string) error {
	if publicID == "" {
		return fmt.Errorf("%w: missing publicId", ErrInvalidArgument)
	}

	result, err := c.store.Destroy(ctx, publicID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMediaDeleteFailed, err)
	}
	if result != media.ResultOK && result != media.ResultNotFound {
		return fmt.Errorf("%w: unexpected result %q", ErrMediaDeleteFailed, result)
	}

	log.Info().Str("public_id", publicID).Str("result", string(result)).Msg("Image destroyed")
	return nil
}

// DeleteByProfileURL destroys the image behind a hosted URL. It reports false,
// without error, when the URL is not one of ours or cannot be parsed.
func (c *MediaCleaner) DeleteByProfileURL(ctx context.Context, rawURL string) (bool, error) {
	publicID, ok := media.PublicIDFromURL(rawURL, c.host)
	if !ok {
		log.Debug().Str("url", rawURL).Msg("Profile image URL not hosted here, skipping")
		return false, nil
	}
	if err := c.DeleteByPublicID(ctx, publicID); err != nil {
		return false, err
	}
	return true, nil
}
