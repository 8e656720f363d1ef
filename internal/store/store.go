// Package store provides read access to the source catalog.
package store

import (
	"context"

	"github.com/abgdnv/storefront-indexer/internal/catalog"
)

// CatalogStore is an interface for catalog read operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type CatalogStore interface {
	// FindProductByID retrieves a product with its category assignments and images.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindProductByID(ctx context.Context, id int64) (*catalog.Product, error)

	// FindProductIDs returns up to limit product IDs greater than afterID in ascending order.
	// Returns an empty slice when there are no more products.
	FindProductIDs(ctx context.Context, afterID int64, limit int32) ([]int64, error)

	// LoadCategoryTree reads all categories into an immutable tree.
	LoadCategoryTree(ctx context.Context) (*catalog.CategoryTree, error)

	// FindStoreByID retrieves a store.
	// Returns ErrStoreNotFound if no store exists with the given ID.
	FindStoreByID(ctx context.Context, id int64) (*catalog.Store, error)
}
