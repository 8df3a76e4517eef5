// Package pricing computes the tax and shipping charged at checkout.
package pricing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront-orders/internal/order"
)

// Flat charges a fixed tax rate and a fixed shipping fee, waived once the subtotal
// reaches FreeOver. A zero FreeOver never waives shipping.
type Flat struct {
	TaxRate  decimal.Decimal
	Shipping decimal.Decimal
	FreeOver decimal.Decimal
}

func (f Flat) Quote(_ context.Context, subtotal decimal.Decimal, _ order.ShippingInfo) (order.Charges, error) {
	ch := order.Charges{
		Tax:      subtotal.Mul(f.TaxRate).Round(2),
		Shipping: f.Shipping.Round(2),
	}
	if f.FreeOver.IsPositive() && subtotal.GreaterThanOrEqual(f.FreeOver) {
		ch.Shipping = decimal.Zero
	}
	return ch, nil
}
