package order

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefund     Status = "refund"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{
	StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
	StatusDelivered, StatusCancelled, StatusRefund,
}

// ParseStatus accepts any casing of a known status name.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if st == known {
			return st, nil
		}
	}
	return "", &InvalidStatusError{Value: s}
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusRefund
}

// restocks reports whether entering s hands the order's stock back to the ledger.
func (s Status) restocks() bool {
	return s == StatusCancelled || s == StatusRefund
}

type Order struct {
	ID                   int64           `json:"id"`
	Number               string          `json:"order_number"`
	CustomerName         string          `json:"customer_name"`
	Phone                string          `json:"phone"`
	ShippingAddress      string          `json:"shipping_address"`
	DeliveryInstructions string          `json:"delivery_instructions,omitempty"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	Tax                  decimal.Decimal `json:"tax"`
	ShippingCost         decimal.Decimal `json:"shipping_cost"`
	Total                decimal.Decimal `json:"total"`
	ItemCount            int             `json:"item_count"`
	Status               Status          `json:"status"`
	Version              int             `json:"version"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	Items                []Item          `json:"items,omitempty"`
}

// PhoneDigits keeps only the digits of a phone number.
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhoneMatches compares phone numbers by their digits, ignoring spacing and
// punctuation. An order without a phone matches nothing.
func (o *Order) PhoneMatches(phone string) bool {
	d := PhoneDigits(o.Phone)
	return d != "" && d == PhoneDigits(phone)
}

// Item is an immutable order line. VariantID is zero when the line has no variant.
type Item struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	VariantID   int64           `json:"variant_id,omitempty"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku,omitempty"`
	Color       string          `json:"color,omitempty"`
	Size        string          `json:"size,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// ListFilter narrows ListOrders. To is exclusive; zero values disable a criterion.
type ListFilter struct {
	Search string
	Status Status
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// Matches applies every criterion except pagination.
func (f ListFilter) Matches(o *Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && o.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !o.CreatedAt.Before(f.To) {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		hay := strings.ToLower(o.Number + " " + o.CustomerName + " " + o.Phone)
		if !strings.Contains(hay, term) {
			return false
		}
	}
	return true
}
