package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LocalizedText holds the Hebrew and English rendition of a catalog string.
type LocalizedText struct {
	He string `json:"he"`
	En string `json:"en"`
}

// Pick returns the text for locale, falling back to the other language.
func (t LocalizedText) Pick(locale string) string {
	if locale == "en" {
		if t.En != "" {
			return t.En
		}
		return t.He
	}
	if t.He != "" {
		return t.He
	}
	return t.En
}

type Image struct {
	URL       string `json:"url"`
	Alt       string `json:"alt,omitempty"`
	IsPrimary bool   `json:"isPrimary"`
}

// DimensionSpec describes a numeric, user configurable attribute such as
// width or number of steps. Multiplier is the price per unit above or below
// Default.
type DimensionSpec struct {
	Min        decimal.Decimal `json:"min"`
	Max        decimal.Decimal `json:"max"`
	Default    decimal.Decimal `json:"default"`
	Step       decimal.Decimal `json:"step"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Unit       string          `json:"unit,omitempty"`
	Visible    bool            `json:"visible"`
	Editable   bool            `json:"editable"`
}

// OptionSpec is a boolean add-on (lacquer, handrail) with a flat cost.
type OptionSpec struct {
	Label          LocalizedText   `json:"label"`
	Cost           decimal.Decimal `json:"cost"`
	DefaultEnabled bool            `json:"defaultEnabled"`
}

type Product struct {
	ID          string                   `json:"id"`
	Slug        string                   `json:"slug"`
	Name        LocalizedText            `json:"name"`
	Description LocalizedText            `json:"description"`
	Category    string                   `json:"category"`
	BasePrice   decimal.Decimal          `json:"basePrice"`
	Currency    string                   `json:"currency"`
	InStock     bool                     `json:"inStock"`
	StockCount  int                      `json:"stockCount"`
	Images      []Image                  `json:"images"`
	Dimensions  map[string]DimensionSpec `json:"dimensions"`
	Options     map[string]OptionSpec    `json:"options"`
	Active      bool                     `json:"active"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
}

// PrimaryImage returns the image flagged primary, or the first one.
func (p *Product) PrimaryImage() (Image, bool) {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img, true
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0], true
	}
	return Image{}, false
}

type ProductFilter struct {
	Category    string
	InStockOnly bool
	// IncludeInactive is only honoured for admin listings.
	IncludeInactive bool
}

// ProductInput is the admin payload for creating or replacing a product.
type ProductInput struct {
	Slug        string                   `json:"slug" binding:"required"`
	Name        LocalizedText            `json:"name"`
	Description LocalizedText            `json:"description"`
	Category    string                   `json:"category" binding:"required"`
	BasePrice   decimal.Decimal          `json:"basePrice"`
	Currency    string                   `json:"currency" binding:"required"`
	StockCount  int                      `json:"stockCount" binding:"gte=0"`
	Images      []Image                  `json:"images"`
	Dimensions  map[string]DimensionSpec `json:"dimensions"`
	Options     map[string]OptionSpec    `json:"options"`
	Active      *bool                    `json:"active"`
}

type SetStockRequest struct {
	StockCount int `json:"stockCount" binding:"gte=0"`
}
