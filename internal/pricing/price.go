// Package pricing computes product prices for the storefront documents.
package pricing

import (
	"context"
	"fmt"

	"github.com/abgdnv/storefront-indexer/internal/catalog"
	perrors "github.com/abgdnv/storefront-indexer/internal/errors"
	"github.com/shopspring/decimal"
)

// defaultPrecision is used when the store does not define one, or there is no store.
const defaultPrecision = 2

// StorePriceCalculator prices a product from its net base price.
// Stores that display gross prices get their tax rate applied.
type StorePriceCalculator struct{}

// NewStorePriceCalculator creates a new StorePriceCalculator.
func NewStorePriceCalculator() *StorePriceCalculator {
	return &StorePriceCalculator{}
}

// ItemPrice returns the price of one item of product in store, rounded half-even to the store precision.
func (c *StorePriceCalculator) ItemPrice(_ context.Context, product catalog.Product, store *catalog.Store) (decimal.Decimal, error) {
	if product.BasePrice.IsNegative() {
		return decimal.Zero, fmt.Errorf("product %d has base price %s: %w", product.ID, product.BasePrice, perrors.ErrInvalidPrice)
	}
	price := product.BasePrice
	precision := int32(defaultPrecision)
	if store != nil {
		if store.TaxRate.IsNegative() {
			return decimal.Zero, fmt.Errorf("store %d has tax rate %s: %w", store.ID, store.TaxRate, perrors.ErrInvalidPrice)
		}
		if store.GrossPrices {
			price = price.Mul(decimal.NewFromInt(1).Add(store.TaxRate))
		}
		if store.Precision > 0 {
			precision = store.Precision
		}
	}
	return price.RoundBank(precision), nil
}
