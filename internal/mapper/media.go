package mapper

import (
	"strings"

	"github.com/abgdnv/storefront-indexer/internal/catalog"
	"github.com/abgdnv/storefront-indexer/internal/document"
)

// BuildMediaGallery returns one entry per image that has a storage path.
// Positions start at 1 and only count the images that were kept.
func BuildMediaGallery(images []catalog.Image) []document.MediaGalleryEntry {
	gallery := make([]document.MediaGalleryEntry, 0, len(images))
	position := 1
	for _, image := range images {
		if strings.TrimSpace(image.StoragePath) == "" {
			continue
		}
		gallery = append(gallery, document.MediaGalleryEntry{
			Image:    image.StoragePath,
			Position: position,
			Type:     document.MediaTypeImage,
		})
		position++
	}
	return gallery
}
