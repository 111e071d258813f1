package optimcache

import "fmt"

// VideoKey returns the cache key for an encoded video rendition.
func VideoKey(format, qualityTier, videoID string) string {
	return fmt.Sprintf("%s/%s/%s", format, qualityTier, videoID)
}

// ThumbnailKey returns the cache key for an encoded thumbnail.
func ThumbnailKey(qualityTier, videoID string) string {
	return fmt.Sprintf("thumbnails/%s/%s", qualityTier, videoID)
}
