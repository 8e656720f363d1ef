package store

import (
	"context"
	"slices"
	"sync"

	"github.com/abgdnv/storefront-indexer/internal/catalog"
	perrors "github.com/abgdnv/storefront-indexer/internal/errors"
)

var _ CatalogStore = (*MemoryStore)(nil)

// MemoryStore implements CatalogStore over maps.
type MemoryStore struct {
	mu         sync.RWMutex
	products   map[int64]catalog.Product
	categories []catalog.Category
	stores     map[int64]catalog.Store
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]catalog.Product),
		stores:   make(map[int64]catalog.Store),
	}
}

// PutProduct adds or replaces a product.
func (s *MemoryStore) PutProduct(p catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// PutCategories appends categories to the tree.
func (s *MemoryStore) PutCategories(categories ...catalog.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, categories...)
}

// PutStore adds or replaces a store.
func (s *MemoryStore) PutStore(st catalog.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stores[st.ID] = st
}

func (s *MemoryStore) FindProductByID(_ context.Context, id int64) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	return &p, nil
}

func (s *MemoryStore) FindProductIDs(_ context.Context, afterID int64, limit int32) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.products))
	for id := range s.products {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	if limit >= 0 && int(limit) < len(ids) {
		ids = ids[:limit]
	}
	return ids, nil
}

func (s *MemoryStore) LoadCategoryTree(_ context.Context) (*catalog.CategoryTree, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.NewCategoryTree(s.categories...), nil
}

func (s *MemoryStore) FindStoreByID(_ context.Context, id int64) (*catalog.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stores[id]
	if !ok {
		return nil, perrors.ErrStoreNotFound
	}
	return &st, nil
}
