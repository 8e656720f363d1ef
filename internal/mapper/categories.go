// Package mapper translates catalog products into storefront search documents.
// All functions are pure: they read their inputs, never mutate them and hold no state between calls.
package mapper

import (
	"fmt"

	"github.com/abgdnv/storefront-indexer/internal/catalog"
	"github.com/abgdnv/storefront-indexer/internal/document"
	perrors "github.com/abgdnv/storefront-indexer/internal/errors"
)

// CategoryLookup resolves categories by id. Implementations must be safe for concurrent reads.
type CategoryLookup interface {
	Category(id int64) (catalog.Category, bool)
}

// ResolveChain returns start followed by all of its ancestors, child first and root last.
// It fails with ErrCycleDetected if a parent link leads back to a category already on the chain
// and with ErrCategoryNotFound if a parent is missing from the lookup.
func ResolveChain(lookup CategoryLookup, start catalog.Category) ([]catalog.Category, error) {
	if start.ID == 0 {
		return nil, fmt.Errorf("category without id: %w", perrors.ErrMissingRequiredField)
	}

	chain := []catalog.Category{start}
	visited := map[int64]struct{}{start.ID: {}}
	current := start
	for current.ParentID != nil {
		parentID := *current.ParentID
		if _, seen := visited[parentID]; seen {
			return nil, fmt.Errorf("category %d reached again from %d: %w", parentID, current.ID, perrors.ErrCycleDetected)
		}
		parent, ok := lookup.Category(parentID)
		if !ok {
			return nil, fmt.Errorf("parent %d of category %d: %w", parentID, current.ID, perrors.ErrCategoryNotFound)
		}
		visited[parentID] = struct{}{}
		chain = append(chain, parent)
		current = parent
	}
	return chain, nil
}

// BuildCategories flattens the ancestry chains of the direct categories into one list.
// The default category comes first, then every chain in input order; an id seen before is dropped,
// so the first path that reaches a category decides its position.
// The returned ids run parallel to the returned refs.
func BuildCategories(lookup CategoryLookup, direct []catalog.Category, language string, defaultCategory document.CategoryRef) ([]document.CategoryRef, []int64, error) {
	var assigned []catalog.Category
	for _, category := range direct {
		chain, err := ResolveChain(lookup, category)
		if err != nil {
			return nil, nil, err
		}
		assigned = append(assigned, chain...)
	}

	refs := make([]document.CategoryRef, 0, len(assigned)+1)
	ids := make([]int64, 0, len(assigned)+1)
	seen := make(map[int64]struct{}, len(assigned)+1)

	refs = append(refs, defaultCategory)
	ids = append(ids, defaultCategory.ID)
	seen[defaultCategory.ID] = struct{}{}

	for _, category := range assigned {
		if _, ok := seen[category.ID]; ok {
			continue
		}
		seen[category.ID] = struct{}{}
		refs = append(refs, document.CategoryRef{ID: category.ID, Name: categoryName(category, language)})
		ids = append(ids, category.ID)
	}
	return refs, ids, nil
}

// categoryName returns the localized name, or the key when no name exists for the language.
func categoryName(category catalog.Category, language string) string {
	if name := category.Name.Get(language); name != "" {
		return name
	}
	return category.Key
}
