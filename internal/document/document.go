// Package document defines the storefront search document produced for each product.
package document

import "strconv"

// DateTimeLayout is the layout of created_at and updated_at.
const DateTimeLayout = "2006-01-02 15:04:05"

// MediaTypeImage is the media type of every gallery entry.
const MediaTypeImage = "image"

// CategoryRef is a category assigned to a product document.
type CategoryRef struct {
	ID   int64  `json:"category_id"`
	Name string `json:"name"`
}

// MediaGalleryEntry is an indexable product image and its 1-based position.
type MediaGalleryEntry struct {
	Image    string `json:"image"`
	Position int    `json:"pos"`
	Type     string `json:"typ"`
}

// Stock is the stock facet of a product document.
// The min/max sale quantity pairs are set only when the catalog defines them.
type Stock struct {
	ProductID           int64  `json:"product_id"`
	ItemID              int64  `json:"item_id"`
	IsInStock           bool   `json:"is_in_stock"`
	Qty                 int64  `json:"qty"`
	IsQtyDecimal        bool   `json:"is_qty_decimal"`
	StockID             int64  `json:"stock_id"`
	UseConfigMinSaleQty *bool  `json:"use_config_min_sale_qty,omitempty"`
	MinSaleQty          *int64 `json:"min_sale_qty,omitempty"`
	UseConfigMaxSaleQty *bool  `json:"use_config_max_sale_qty,omitempty"`
	MaxSaleQty          *int64 `json:"max_sale_qty,omitempty"`
}

// Product is the denormalized product document sent to the search index.
type Product struct {
	ID                   int64               `json:"id"`
	AttributeSetID       int64               `json:"attribute_set_id"`
	Price                float64             `json:"price"`
	FinalPrice           float64             `json:"final_price"`
	Status               int                 `json:"status"`
	Visibility           int                 `json:"visibility"`
	TypeID               string              `json:"type_id"`
	Name                 string              `json:"name"`
	CreatedAt            string              `json:"created_at"`
	UpdatedAt            string              `json:"updated_at"`
	Stock                Stock               `json:"stock"`
	EAN                  string              `json:"ean"`
	Availability         string              `json:"availability"`
	OptionTextStatus     string              `json:"option_text_status"`
	TaxClassID           int64               `json:"tax_class_id"`
	OptionTextTaxClassID string              `json:"option_text_tax_class_id"`
	Description          string              `json:"description"`
	ShortDescription     string              `json:"short_description"`
	Weight               *float64            `json:"weight"`
	SKU                  string              `json:"sku"`
	URLKey               string              `json:"url_key"`
	Image                string              `json:"image"`
	MediaGallery         []MediaGalleryEntry `json:"media_gallery"`
	Categories           []CategoryRef       `json:"category"`
	CategoryIDs          []int64             `json:"category_ids"`
}

// Key returns the identity of a product document in the index.
func Key(productID int64) string {
	return strconv.FormatInt(productID, 10)
}
