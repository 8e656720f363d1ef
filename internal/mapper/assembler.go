package mapper

import (
	"context"
	"fmt"

	"github.com/abgdnv/storefront-indexer/internal/catalog"
	"github.com/abgdnv/storefront-indexer/internal/document"
	perrors "github.com/abgdnv/storefront-indexer/internal/errors"
	"github.com/shopspring/decimal"
)

// PriceProvider computes the price of a product for a store. The store may be nil.
type PriceProvider interface {
	ItemPrice(ctx context.Context, product catalog.Product, store *catalog.Store) (decimal.Decimal, error)
}

// Slugifier turns a display name into a URL-safe key.
type Slugifier interface {
	Slugify(text, language string) (string, error)
}

// Scope selects the language and store a document is built for. Both are optional.
type Scope struct {
	Language string
	Store    *catalog.Store
}

// language returns the scope language, falling back to the store default.
func (s Scope) language() string {
	if s.Language == "" && s.Store != nil {
		return s.Store.DefaultLanguage
	}
	return s.Language
}

// Assembler builds product documents. It is safe for concurrent use.
type Assembler struct {
	defaults document.Defaults
	prices   PriceProvider
	slugs    Slugifier
}

// NewAssembler creates an Assembler with the given defaults and collaborators.
func NewAssembler(defaults document.Defaults, prices PriceProvider, slugs Slugifier) *Assembler {
	return &Assembler{
		defaults: defaults,
		prices:   prices,
		slugs:    slugs,
	}
}

// Assemble maps product into a new document. Any collaborator failure aborts the call and no document is returned.
func (a *Assembler) Assemble(ctx context.Context, product catalog.Product, lookup CategoryLookup, scope Scope) (*document.Product, error) {
	if product.ID == 0 {
		return nil, fmt.Errorf("product without id: %w", perrors.ErrMissingRequiredField)
	}
	language := scope.language()

	name := product.Name.Get(language)
	if name == "" {
		name = product.Key
	}
	if name == "" {
		return nil, fmt.Errorf("product %d has neither name nor key: %w", product.ID, perrors.ErrMissingRequiredField)
	}

	// price and final price are independent fields of the schema
	price, err := a.prices.ItemPrice(ctx, product, scope.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to compute price of product %d: %w", product.ID, err)
	}
	finalPrice, err := a.prices.ItemPrice(ctx, product, scope.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to compute final price of product %d: %w", product.ID, err)
	}

	urlKey, err := a.slugs.Slugify(name, language)
	if err != nil {
		return nil, fmt.Errorf("failed to build url key of product %d: %w", product.ID, err)
	}

	direct := make([]catalog.Category, 0, len(product.CategoryIDs))
	for _, id := range product.CategoryIDs {
		category, ok := lookup.Category(id)
		if !ok {
			return nil, fmt.Errorf("category %d of product %d: %w", id, product.ID, perrors.ErrCategoryNotFound)
		}
		direct = append(direct, category)
	}
	categories, categoryIDs, err := BuildCategories(lookup, direct, language, a.defaults.DefaultCategory())
	if err != nil {
		return nil, fmt.Errorf("failed to assign categories of product %d: %w", product.ID, err)
	}

	var image string
	if product.MainImage != nil {
		image = product.MainImage.StoragePath
	}
	var weight *float64
	if product.Weight != nil {
		weight = ptr(*product.Weight)
	}

	return &document.Product{
		ID:                   product.ID,
		AttributeSetID:       a.defaults.AttributeSetID,
		Price:                price.InexactFloat64(),
		FinalPrice:           finalPrice.InexactFloat64(),
		Status:               a.defaults.Status,
		Visibility:           a.defaults.Visibility,
		TypeID:               a.defaults.TypeID,
		Name:                 name,
		CreatedAt:            product.CreatedAt.UTC().Format(document.DateTimeLayout),
		UpdatedAt:            product.UpdatedAt.UTC().Format(document.DateTimeLayout),
		Stock:                BuildStock(product, a.defaults.StockID),
		EAN:                  product.EAN,
		Availability:         a.defaults.Availability,
		OptionTextStatus:     a.defaults.OptionTextStatus,
		TaxClassID:           a.defaults.TaxClassID,
		OptionTextTaxClassID: a.defaults.OptionTextTaxClassID,
		Description:          product.Description.Get(language),
		ShortDescription:     product.ShortDescription.Get(language),
		Weight:               weight,
		SKU:                  product.SKU,
		URLKey:               urlKey,
		Image:                image,
		MediaGallery:         BuildMediaGallery(product.Images),
		Categories:           categories,
		CategoryIDs:          categoryIDs,
	}, nil
}
