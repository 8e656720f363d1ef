package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/abgdnv/storefront-indexer/internal/catalog"
	perrors "github.com/abgdnv/storefront-indexer/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const findProductByID = `
SELECT id, key, names, descriptions, short_descriptions, sku, ean, weight::float8, base_price::text,
       on_hand, min_order_qty, max_order_qty, main_image_path, has_variants, created_at, updated_at
FROM products
WHERE id = $1`

const findProductCategoryIDs = `
SELECT category_id
FROM product_categories
WHERE product_id = $1
ORDER BY position, category_id`

const findProductImages = `
SELECT id, COALESCE(storage_path, '')
FROM product_images
WHERE product_id = $1
ORDER BY position, id`

const findProductIDs = `
SELECT id
FROM products
WHERE id > $1
ORDER BY id
LIMIT $2`

const findAllCategories = `
SELECT id, parent_id, key, names
FROM categories`

const findStoreByID = `
SELECT id, name, currency, default_language, tax_rate::text, gross_prices, price_precision
FROM stores
WHERE id = $1`

// PgStore implements CatalogStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of CatalogStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// FindProductByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindProductByID(ctx context.Context, id int64) (*catalog.Product, error) {
	var (
		product       catalog.Product
		basePrice     string
		mainImagePath *string
	)
	err := p.db.QueryRow(ctx, findProductByID, id).Scan(
		&product.ID,
		&product.Key,
		&product.Name,
		&product.Description,
		&product.ShortDescription,
		&product.SKU,
		&product.EAN,
		&product.Weight,
		&basePrice,
		&product.OnHand,
		&product.MinimumQuantityToOrder,
		&product.MaximumQuantityToOrder,
		&mainImagePath,
		&product.HasVariants,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	product.BasePrice, err = decimal.NewFromString(basePrice)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base price of product %d: %w", id, err)
	}
	if mainImagePath != nil && *mainImagePath != "" {
		product.MainImage = &catalog.Image{StoragePath: *mainImagePath}
	}

	rows, err := p.db.Query(ctx, findProductCategoryIDs, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find categories of product %d: %w", id, err)
	}
	product.CategoryIDs, err = pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to read categories of product %d: %w", id, err)
	}

	rows, err = p.db.Query(ctx, findProductImages, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find images of product %d: %w", id, err)
	}
	product.Images, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Image, error) {
		var image catalog.Image
		err := row.Scan(&image.ID, &image.StoragePath)
		return image, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read images of product %d: %w", id, err)
	}

	return &product, nil
}

// FindProductIDs retrieves the next page of product IDs after afterID.
// It returns a slice of IDs, which may be empty if no products are left.
func (p *PgStore) FindProductIDs(ctx context.Context, afterID int64, limit int32) ([]int64, error) {
	rows, err := p.db.Query(ctx, findProductIDs, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find product IDs: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to read product IDs: %w", err)
	}
	return ids, nil
}

// LoadCategoryTree reads every category into an in-memory tree.
func (p *PgStore) LoadCategoryTree(ctx context.Context) (*catalog.CategoryTree, error) {
	rows, err := p.db.Query(ctx, findAllCategories)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Category, error) {
		var category catalog.Category
		err := row.Scan(&category.ID, &category.ParentID, &category.Key, &category.Name)
		return category, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return catalog.NewCategoryTree(categories...), nil
}

// FindStoreByID retrieves a store by its unique identifier.
// Returns ErrStoreNotFound if no store exists with the given ID.
func (p *PgStore) FindStoreByID(ctx context.Context, id int64) (*catalog.Store, error) {
	var (
		store   catalog.Store
		taxRate string
	)
	err := p.db.QueryRow(ctx, findStoreByID, id).Scan(
		&store.ID,
		&store.Name,
		&store.Currency,
		&store.DefaultLanguage,
		&taxRate,
		&store.GrossPrices,
		&store.Precision,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to find store by ID: %w", err)
	}
	store.TaxRate, err = decimal.NewFromString(taxRate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tax rate of store %d: %w", id, err)
	}
	return &store, nil
}
