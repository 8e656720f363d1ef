// Package catalog holds the source-side model read from the catalog database.
// Values are read-only for the mapper.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Localized is a text value keyed by language code.
type Localized map[string]string

// Get returns the value for the given language or an empty string.
func (l Localized) Get(language string) string {
	if l == nil {
		return ""
	}
	return l[language]
}

// Category is a node of the category forest. A root has no parent.
type Category struct {
	ID       int64
	Key      string
	Name     Localized
	ParentID *int64
}

// Image is an asset attached to a product. StoragePath is empty for assets that cannot be indexed.
type Image struct {
	ID          int64
	StoragePath string
}

// Product is a catalog product together with its inventory fields.
type Product struct {
	ID               int64
	Key              string
	Name             Localized
	Description      Localized
	ShortDescription Localized
	SKU              string
	EAN              string
	Weight           *float64
	BasePrice        decimal.Decimal

	OnHand                 *int64
	MinimumQuantityToOrder *int64
	MaximumQuantityToOrder *int64

	// CategoryIDs are the directly assigned categories in their catalog order.
	CategoryIDs []int64
	MainImage   *Image
	Images      []Image

	HasVariants bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Store is the sales channel a document is exported for.
type Store struct {
	ID              int64
	Name            string
	Currency        string
	DefaultLanguage string
	TaxRate         decimal.Decimal
	GrossPrices     bool
	Precision       int32
}
