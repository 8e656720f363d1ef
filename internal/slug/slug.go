// Package slug builds URL keys for product documents.
package slug

import (
	"fmt"
	"strings"

	perrors "github.com/abgdnv/storefront-indexer/internal/errors"
	"github.com/gosimple/slug"
)

// Slugifier turns text into lower-case, transliterated, dash-separated URL keys.
type Slugifier struct {
	maxLength int
}

// NewSlugifier creates a Slugifier. A maxLength of 0 leaves slugs untruncated.
func NewSlugifier(maxLength int) *Slugifier {
	return &Slugifier{maxLength: maxLength}
}

// Slugify returns the slug of text using the substitutions of language when gosimple/slug knows it.
func (s *Slugifier) Slugify(text, language string) (string, error) {
	var result string
	if language == "" {
		result = slug.Make(text)
	} else {
		result = slug.MakeLang(text, language)
	}
	if s.maxLength > 0 && len(result) > s.maxLength {
		// slugs are ASCII, cutting bytes is safe
		result = strings.TrimRight(result[:s.maxLength], "-")
	}
	if result == "" {
		return "", fmt.Errorf("text %q: %w", text, perrors.ErrEmptySlug)
	}
	return result, nil
}
