package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one priced line of the cart at checkout time.
type CartLine struct {
	ProductID   int64
	VariantID   int64
	ProductName string
	SKU         string
	Color       string
	Size        string
	Quantity    int
	UnitPrice   decimal.Decimal
}

type CartSnapshot struct {
	Lines []CartLine
}

func (c CartSnapshot) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

type ShippingInfo struct {
	CustomerName string
	Phone        string
	Address      string
	Instructions string
}

// Charges are the tax and shipping figures supplied by the pricing collaborator.
type Charges struct {
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
}

func validateCart(cart CartSnapshot) error {
	if len(cart.Lines) == 0 {
		return ErrEmptyCart
	}
	for i, l := range cart.Lines {
		if l.ProductID <= 0 {
			return invalidInput("line %d: product id is required", i+1)
		}
		if l.Quantity < 1 {
			return invalidInput("line %d: quantity must be at least 1", i+1)
		}
		if l.UnitPrice.IsNegative() {
			return invalidInput("line %d: unit price must not be negative", i+1)
		}
		if !isCents(l.UnitPrice) {
			return invalidInput("line %d: unit price has more than 2 decimals", i+1)
		}
	}
	return nil
}

// validateCharges accepts only amounts the order columns store exactly: non-negative,
// at most 2 decimals.
func validateCharges(ch Charges) error {
	if ch.Tax.IsNegative() || ch.Shipping.IsNegative() {
		return invalidInput("tax and shipping must not be negative")
	}
	if !isCents(ch.Tax) || !isCents(ch.Shipping) {
		return invalidInput("tax %s and shipping %s must have at most 2 decimals", ch.Tax, ch.Shipping)
	}
	return nil
}

func isCents(d decimal.Decimal) bool { return d.Equal(d.Round(2)) }

func validateShipping(s ShippingInfo) error {
	if strings.TrimSpace(s.CustomerName) == "" {
		return invalidInput("customer name is required")
	}
	if strings.TrimSpace(s.Phone) == "" {
		return invalidInput("phone is required")
	}
	if strings.TrimSpace(s.Address) == "" {
		return invalidInput("shipping address is required")
	}
	return nil
}

// buildOrder assembles a pending order; the number and id are stamped by the store.
func buildOrder(cart CartSnapshot, ship ShippingInfo, ch Charges, now time.Time) *Order {
	o := &Order{
		CustomerName:         strings.TrimSpace(ship.CustomerName),
		Phone:                strings.TrimSpace(ship.Phone),
		ShippingAddress:      strings.TrimSpace(ship.Address),
		DeliveryInstructions: strings.TrimSpace(ship.Instructions),
		Tax:                  ch.Tax,
		ShippingCost:         ch.Shipping,
		Status:               StatusPending,
		Version:              1,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	o.Items = make([]Item, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		line := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		o.Items = append(o.Items, Item{
			ProductID:   l.ProductID,
			VariantID:   l.VariantID,
			ProductName: l.ProductName,
			SKU:         l.SKU,
			Color:       l.Color,
			Size:        l.Size,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   line,
		})
		o.ItemCount += l.Quantity
	}
	o.Subtotal = cart.Subtotal()
	o.Total = o.Subtotal.Add(o.Tax).Add(o.ShippingCost)
	return o
}
