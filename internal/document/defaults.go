package document

import (
	"fmt"
	"strings"
)

// Defaults are the system-wide values every product document carries.
// Only simple products without variants are exported, so these are identical for all of them.
type Defaults struct {
	CategoryID           int64  `koanf:"categoryid"`
	CategoryName         string `koanf:"categoryname"`
	AttributeSetID       int64  `koanf:"attributesetid"`
	Status               int    `koanf:"status"`
	Visibility           int    `koanf:"visibility"`
	TypeID               string `koanf:"typeid"`
	Availability         string `koanf:"availability"`
	OptionTextStatus     string `koanf:"optiontextstatus"`
	TaxClassID           int64  `koanf:"taxclassid"`
	OptionTextTaxClassID string `koanf:"optiontexttaxclassid"`
	StockID              int64  `koanf:"stockid"`
}

// DefaultDefaults returns the values used by the storefront schema.
func DefaultDefaults() Defaults {
	return Defaults{
		CategoryID:           2,
		CategoryName:         "Default Category",
		AttributeSetID:       4,
		Status:               1,
		Visibility:           4,
		TypeID:               "simple",
		Availability:         "1",
		OptionTextStatus:     "Enabled",
		TaxClassID:           2,
		OptionTextTaxClassID: "Taxable Goods",
		StockID:              1,
	}
}

// DefaultCategory returns the synthetic category assigned to every product.
func (d Defaults) DefaultCategory() CategoryRef {
	return CategoryRef{ID: d.CategoryID, Name: d.CategoryName}
}

// WithFallbacks returns a copy where every unset field takes its value from DefaultDefaults.
func (d Defaults) WithFallbacks() Defaults {
	def := DefaultDefaults()
	if d.CategoryID == 0 {
		d.CategoryID = def.CategoryID
	}
	if d.CategoryName == "" {
		d.CategoryName = def.CategoryName
	}
	if d.AttributeSetID == 0 {
		d.AttributeSetID = def.AttributeSetID
	}
	if d.Status == 0 {
		d.Status = def.Status
	}
	if d.Visibility == 0 {
		d.Visibility = def.Visibility
	}
	if d.TypeID == "" {
		d.TypeID = def.TypeID
	}
	if d.Availability == "" {
		d.Availability = def.Availability
	}
	if d.OptionTextStatus == "" {
		d.OptionTextStatus = def.OptionTextStatus
	}
	if d.TaxClassID == 0 {
		d.TaxClassID = def.TaxClassID
	}
	if d.OptionTextTaxClassID == "" {
		d.OptionTextTaxClassID = def.OptionTextTaxClassID
	}
	if d.StockID == 0 {
		d.StockID = def.StockID
	}
	return d
}

// String returns a string representation of the document defaults.
func (d *Defaults) String() string {
	var b strings.Builder
	b.WriteString("\n--- Document Defaults ---\n")
	b.WriteString(fmt.Sprintf("  categoryid: %d\n", d.CategoryID))
	b.WriteString(fmt.Sprintf("  categoryname: %s\n", d.CategoryName))
	b.WriteString(fmt.Sprintf("  attributesetid: %d\n", d.AttributeSetID))
	b.WriteString(fmt.Sprintf("  typeid: %s\n", d.TypeID))
	b.WriteString(fmt.Sprintf("  stockid: %d\n", d.StockID))
	return b.String()
}

// Validate rejects values that cannot come from the fallbacks.
func (d *Defaults) Validate() error {
	if d.CategoryID < 0 {
		return fmt.Errorf("document.categoryid must not be negative: %d", d.CategoryID)
	}
	if d.StockID < 0 {
		return fmt.Errorf("document.stockid must not be negative: %d", d.StockID)
	}
	return nil
}
