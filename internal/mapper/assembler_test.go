package mapper

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abgdnv/storefront-indexer/internal/catalog"
	"github.com/abgdnv/storefront-indexer/internal/document"
	perrors "github.com/abgdnv/storefront-indexer/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPriceProvider returns the queued prices in order and counts the calls
type mockPriceProvider struct {
	prices []decimal.Decimal
	calls  int
	error  error
}

func (m *mockPriceProvider) ItemPrice(_ context.Context, product catalog.Product, _ *catalog.Store) (decimal.Decimal, error) {
	m.calls++
	if m.error != nil {
		return decimal.Zero, m.error
	}
	if len(m.prices) == 0 {
		return product.BasePrice, nil
	}
	price := m.prices[0]
	if len(m.prices) > 1 {
		m.prices = m.prices[1:]
	}
	return price, nil
}

// mockSlugifier records the text it was asked to slugify
type mockSlugifier struct {
	text     string
	language string
	error    error
}

func (m *mockSlugifier) Slugify(text, language string) (string, error) {
	m.text = text
	m.language = language
	if m.error != nil {
		return "", m.error
	}
	return "slug-" + text, nil
}

func runningShoe() catalog.Product {
	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	return catalog.Product{
		ID:               100,
		Key:              "running-shoe-key",
		Name:             catalog.Localized{"en": "Running Shoe", "de": "Laufschuh"},
		Description:      catalog.Localized{"en": "Light and fast"},
		ShortDescription: catalog.Localized{"en": "Light"},
		SKU:              "RS-100",
		EAN:              "4006381333931",
		Weight:           ptr(0.35),
		BasePrice:        decimal.RequireFromString("89.90"),
		OnHand:           ptr(int64(4)),
		CategoryIDs:      []int64{11},
		MainImage:        &catalog.Image{ID: 1, StoragePath: "/products/rs-main.jpg"},
		Images: []catalog.Image{
			{ID: 1, StoragePath: "/products/rs-main.jpg"},
			{ID: 2},
			{ID: 3, StoragePath: "/products/rs-side.jpg"},
		},
		CreatedAt: created,
		UpdatedAt: created.Add(time.Hour),
	}
}

func Test_Assembler_Assemble(t *testing.T) {
	// given
	prices := &mockPriceProvider{}
	slugs := &mockSlugifier{}
	assembler := NewAssembler(document.DefaultDefaults(), prices, slugs)

	// when
	doc, err := assembler.Assemble(context.Background(), runningShoe(), shoesTree(), Scope{Language: "en"})

	// then
	require.NoError(t, err)
	assert.Equal(t, &document.Product{
		ID:                   100,
		AttributeSetID:       4,
		Price:                89.9,
		FinalPrice:           89.9,
		Status:               1,
		Visibility:           4,
		TypeID:               "simple",
		Name:                 "Running Shoe",
		CreatedAt:            "2024-03-01 10:30:00",
		UpdatedAt:            "2024-03-01 11:30:00",
		Stock:                document.Stock{ProductID: 100, ItemID: 100, IsInStock: true, Qty: 4, StockID: 1},
		EAN:                  "4006381333931",
		Availability:         "1",
		OptionTextStatus:     "Enabled",
		TaxClassID:           2,
		OptionTextTaxClassID: "Taxable Goods",
		Description:          "Light and fast",
		ShortDescription:     "Light",
		Weight:               ptr(0.35),
		SKU:                  "RS-100",
		URLKey:               "slug-Running Shoe",
		Image:                "/products/rs-main.jpg",
		MediaGallery: []document.MediaGalleryEntry{
			{Image: "/products/rs-main.jpg", Position: 1, Type: "image"},
			{Image: "/products/rs-side.jpg", Position: 2, Type: "image"},
		},
		Categories: []document.CategoryRef{
			{ID: 2, Name: "Default Category"},
			{ID: 11, Name: "Running"},
			{ID: 10, Name: "Shoes"},
			{ID: 1, Name: "Root"},
		},
		CategoryIDs: []int64{2, 11, 10, 1},
	}, doc)
	assert.Equal(t, 2, prices.calls, "price and final price are computed separately")
	assert.Equal(t, "en", slugs.language)
}

func Test_Assembler_PriceAndFinalPriceIndependent(t *testing.T) {
	// given
	prices := &mockPriceProvider{prices: []decimal.Decimal{
		decimal.RequireFromString("100"),
		decimal.RequireFromString("80"),
	}}
	assembler := NewAssembler(document.DefaultDefaults(), prices, &mockSlugifier{})

	// when
	doc, err := assembler.Assemble(context.Background(), runningShoe(), shoesTree(), Scope{Language: "en"})

	// then
	require.NoError(t, err)
	assert.Equal(t, 100.0, doc.Price)
	assert.Equal(t, 80.0, doc.FinalPrice)
}

func Test_Assembler_NameFallback(t *testing.T) {
	testCases := []struct {
		name         string
		scope        Scope
		expectedName string
	}{
		{name: "Localized name", scope: Scope{Language: "de"}, expectedName: "Laufschuh"},
		{name: "Missing translation falls back to key", scope: Scope{Language: "fr"}, expectedName: "running-shoe-key"},
		{name: "Store default language", scope: Scope{Store: &catalog.Store{ID: 1, DefaultLanguage: "de"}}, expectedName: "Laufschuh"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			slugs := &mockSlugifier{}
			assembler := NewAssembler(document.DefaultDefaults(), &mockPriceProvider{}, slugs)
			// when
			doc, err := assembler.Assemble(context.Background(), runningShoe(), shoesTree(), tc.scope)
			// then
			require.NoError(t, err)
			assert.Equal(t, tc.expectedName, doc.Name)
			assert.Equal(t, tc.expectedName, slugs.text, "url key is built from the resolved name")
		})
	}
}

func Test_Assembler_Errors(t *testing.T) {
	errPrice := errors.New("price service down")
	errSlug := errors.New("slug failed")
	testCases := []struct {
		name        string
		product     func() catalog.Product
		prices      *mockPriceProvider
		slugs       *mockSlugifier
		expectError error
	}{
		{
			name:        "Product without id",
			product:     func() catalog.Product { p := runningShoe(); p.ID = 0; return p },
			prices:      &mockPriceProvider{},
			slugs:       &mockSlugifier{},
			expectError: perrors.ErrMissingRequiredField,
		},
		{
			name: "Product without name and key",
			product: func() catalog.Product {
				p := runningShoe()
				p.Name = nil
				p.Key = ""
				return p
			},
			prices:      &mockPriceProvider{},
			slugs:       &mockSlugifier{},
			expectError: perrors.ErrMissingRequiredField,
		},
		{
			name:        "Price provider failure",
			product:     runningShoe,
			prices:      &mockPriceProvider{error: errPrice},
			slugs:       &mockSlugifier{},
			expectError: errPrice,
		},
		{
			name:        "Slugifier failure",
			product:     runningShoe,
			prices:      &mockPriceProvider{},
			slugs:       &mockSlugifier{error: errSlug},
			expectError: errSlug,
		},
		{
			name:        "Unknown direct category",
			product:     func() catalog.Product { p := runningShoe(); p.CategoryIDs = []int64{404}; return p },
			prices:      &mockPriceProvider{},
			slugs:       &mockSlugifier{},
			expectError: perrors.ErrCategoryNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			assembler := NewAssembler(document.DefaultDefaults(), tc.prices, tc.slugs)
			// when
			doc, err := assembler.Assemble(context.Background(), tc.product(), shoesTree(), Scope{Language: "en"})
			// then
			assert.ErrorIs(t, err, tc.expectError)
			assert.Nil(t, doc)
		})
	}
}

func Test_Assembler_Idempotent(t *testing.T) {
	// given
	assembler := NewAssembler(document.DefaultDefaults(), &mockPriceProvider{}, &mockSlugifier{})
	product := runningShoe()
	product.CategoryIDs = []int64{11, 12, 20}
	tree := shoesTree()

	// when
	first, err := assembler.Assemble(context.Background(), product, tree, Scope{Language: "en"})
	require.NoError(t, err)
	second, err := assembler.Assemble(context.Background(), product, tree, Scope{Language: "en"})
	require.NoError(t, err)

	// then
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func Test_Assembler_NoCategories(t *testing.T) {
	// given
	assembler := NewAssembler(document.DefaultDefaults(), &mockPriceProvider{}, &mockSlugifier{})
	product := runningShoe()
	product.CategoryIDs = nil

	// when
	doc, err := assembler.Assemble(context.Background(), product, catalog.NewCategoryTree(), Scope{Language: "en"})

	// then
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, doc.CategoryIDs)
	assert.Equal(t, []document.CategoryRef{{ID: 2, Name: "Default Category"}}, doc.Categories)
}
