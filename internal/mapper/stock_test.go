package mapper

import (
	"testing"

	"github.com/abgdnv/storefront-indexer/internal/catalog"
	"github.com/abgdnv/storefront-indexer/internal/document"
	"github.com/stretchr/testify/assert"
)

func Test_BuildStock(t *testing.T) {
	testCases := []struct {
		name     string
		product  catalog.Product
		expected document.Stock
	}{
		{
			name:    "On hand zero - out of stock",
			product: catalog.Product{ID: 7, OnHand: ptr(int64(0))},
			expected: document.Stock{
				ProductID: 7, ItemID: 7, IsInStock: false, Qty: 0, StockID: 1,
			},
		},
		{
			name:    "On hand one - in stock",
			product: catalog.Product{ID: 7, OnHand: ptr(int64(1))},
			expected: document.Stock{
				ProductID: 7, ItemID: 7, IsInStock: true, Qty: 1, StockID: 1,
			},
		},
		{
			name:    "On hand absent - zero quantity",
			product: catalog.Product{ID: 7},
			expected: document.Stock{
				ProductID: 7, ItemID: 7, IsInStock: false, Qty: 0, StockID: 1,
			},
		},
		{
			name:    "Minimum order quantity set",
			product: catalog.Product{ID: 7, OnHand: ptr(int64(3)), MinimumQuantityToOrder: ptr(int64(5))},
			expected: document.Stock{
				ProductID: 7, ItemID: 7, IsInStock: true, Qty: 3, StockID: 1,
				UseConfigMinSaleQty: ptr(true), MinSaleQty: ptr(int64(5)),
			},
		},
		{
			name:    "Maximum order quantity set",
			product: catalog.Product{ID: 7, OnHand: ptr(int64(3)), MaximumQuantityToOrder: ptr(int64(10))},
			expected: document.Stock{
				ProductID: 7, ItemID: 7, IsInStock: true, Qty: 3, StockID: 1,
				UseConfigMaxSaleQty: ptr(true), MaxSaleQty: ptr(int64(10)),
			},
		},
		{
			name: "Both quantities set",
			product: catalog.Product{
				ID: 7, OnHand: ptr(int64(3)),
				MinimumQuantityToOrder: ptr(int64(1)), MaximumQuantityToOrder: ptr(int64(10)),
			},
			expected: document.Stock{
				ProductID: 7, ItemID: 7, IsInStock: true, Qty: 3, StockID: 1,
				UseConfigMinSaleQty: ptr(true), MinSaleQty: ptr(int64(1)),
				UseConfigMaxSaleQty: ptr(true), MaxSaleQty: ptr(int64(10)),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			stock := BuildStock(tc.product, 1)
			// then
			assert.Equal(t, tc.expected, stock)
		})
	}
}

func Test_BuildStock_DoesNotAliasSource(t *testing.T) {
	// given
	minQty := int64(5)
	product := catalog.Product{ID: 7, MinimumQuantityToOrder: &minQty}

	// when
	stock := BuildStock(product, 1)
	minQty = 6

	// then
	assert.Equal(t, int64(5), *stock.MinSaleQty)
}
