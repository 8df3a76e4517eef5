package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog read model. TotalStock is the sum of its variants' stock.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	TotalStock  int             `json:"total_stock"`
	Variants    []Variant       `json:"variants,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Variant is the stock-bearing unit of a product.
type Variant struct {
	ID        int64               `json:"id"`
	ProductID int64               `json:"product_id"`
	SKU       string              `json:"sku"`
	Color     string              `json:"color,omitempty"`
	Size      string              `json:"size,omitempty"`
	Price     decimal.NullDecimal `json:"price"` // optional override of the product price
	Stock     int                 `json:"stock"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// UnitPrice returns the variant override when set, otherwise base.
func (v Variant) UnitPrice(base decimal.Decimal) decimal.Decimal {
	if v.Price.Valid {
		return v.Price.Decimal
	}
	return base
}

// Variant looks up one of the product's variants by id.
func (p *Product) Variant(id int64) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

type Query struct {
	Q      string
	Limit  int
	Offset int
}

// AdjustResult is what the ledger reports back for an applied adjustment.
type AdjustResult struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

// AdjustRequest payload for an administrative stock correction.
// swagger:model AdjustRequest
type AdjustRequest struct {
	Delta    int  `json:"delta"    example:"-2"`
	Override bool `json:"override" example:"false"`
}

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	Q      string    `json:"q,omitempty"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
	Items  []Product `json:"items"`
}
