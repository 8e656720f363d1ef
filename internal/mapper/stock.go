package mapper

import (
	"github.com/abgdnv/storefront-indexer/internal/catalog"
	"github.com/abgdnv/storefront-indexer/internal/document"
)

// BuildStock computes the stock facet from the inventory fields of the product.
func BuildStock(product catalog.Product, stockID int64) document.Stock {
	var onHand int64
	if product.OnHand != nil {
		onHand = *product.OnHand
	}

	stock := document.Stock{
		ProductID:    product.ID,
		ItemID:       product.ID,
		IsInStock:    onHand > 0,
		Qty:          onHand,
		IsQtyDecimal: false,
		StockID:      stockID,
	}

	if product.MinimumQuantityToOrder != nil {
		minSaleQty := *product.MinimumQuantityToOrder
		stock.UseConfigMinSaleQty = ptr(true)
		stock.MinSaleQty = &minSaleQty
	}
	if product.MaximumQuantityToOrder != nil {
		maxSaleQty := *product.MaximumQuantityToOrder
		stock.UseConfigMaxSaleQty = ptr(true)
		stock.MaxSaleQty = &maxSaleQty
	}
	return stock
}

func ptr[T any](v T) *T {
	return &v
}
