// Package analytics derives reporting views from a snapshot of persisted orders.
// Every function here is pure: it reads the snapshot it is given and nothing else.
package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront-orders/internal/order"
)

type Bucket string

const (
	Week  Bucket = "week"
	Month Bucket = "month"
	Year  Bucket = "year"
)

func ParseBucket(s string) (Bucket, error) {
	switch b := Bucket(strings.ToLower(strings.TrimSpace(s))); b {
	case Week, Month, Year:
		return b, nil
	case "":
		return Month, nil
	}
	return "", fmt.Errorf("%w: unknown period %q", order.ErrInvalidInput, s)
}

type SalesPoint struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

type GrowthPoint struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

type ProductUnits struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name,omitempty"`
	UnitsSold int    `json:"units_sold"`
}

// start truncates t (in UTC) to the first instant of its bucket. Weeks start on
// Monday, in line with ISO week numbering.
func (b Bucket) start(t time.Time) time.Time {
	t = t.UTC()
	y, m, d := t.Date()
	switch b {
	case Year:
		return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
	case Week:
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	default:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	}
}

func (b Bucket) next(t time.Time) time.Time {
	switch b {
	case Year:
		return t.AddDate(1, 0, 0)
	case Week:
		return t.AddDate(0, 0, 7)
	default:
		return t.AddDate(0, 1, 0)
	}
}

func (b Bucket) label(start time.Time) string {
	switch b {
	case Year:
		return start.Format("2006")
	case Week:
		y, w := start.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	default:
		return start.Format("2006-01")
	}
}

// SalesByPeriod sums order totals per bucket, earliest first. Every bucket between
// the first and the last order is emitted, empty ones with amount 0.
func SalesByPeriod(orders []order.Order, b Bucket) []SalesPoint {
	if len(orders) == 0 {
		return []SalesPoint{}
	}
	sums := map[time.Time]decimal.Decimal{}
	first, last := b.start(orders[0].CreatedAt), b.start(orders[0].CreatedAt)
	for _, o := range orders {
		k := b.start(o.CreatedAt)
		sums[k] = sums[k].Add(o.Total)
		if k.Before(first) {
			first = k
		}
		if k.After(last) {
			last = k
		}
	}

	out := []SalesPoint{}
	for k := first; !k.After(last); k = b.next(k) {
		out = append(out, SalesPoint{Label: b.label(k), Amount: sums[k]})
	}
	return out
}

// StatusDistribution counts orders per status. Every status is present.
func StatusDistribution(orders []order.Order) map[order.Status]int {
	out := make(map[order.Status]int, len(order.Statuses))
	for _, s := range order.Statuses {
		out[s] = 0
	}
	for _, o := range orders {
		out[o.Status]++
	}
	return out
}

// CustomerKey identifies a customer by the digits of their phone number, falling
// back to the lower-cased name when the order carries no phone.
func CustomerKey(o order.Order) string {
	if digits := order.PhoneDigits(o.Phone); digits != "" {
		return "tel:" + digits
	}
	return "name:" + strings.ToLower(strings.Join(strings.Fields(o.CustomerName), " "))
}

// CustomerGrowth counts, per month, the customers whose first order falls in that
// month. Months without new customers are emitted with count 0.
func CustomerGrowth(orders []order.Order) []GrowthPoint {
	firstSeen := map[string]time.Time{}
	for _, o := range orders {
		k := CustomerKey(o)
		if t, ok := firstSeen[k]; !ok || o.CreatedAt.Before(t) {
			firstSeen[k] = o.CreatedAt
		}
	}
	if len(firstSeen) == 0 {
		return []GrowthPoint{}
	}

	counts := map[time.Time]int{}
	var first, last time.Time
	for _, t := range firstSeen {
		k := Month.start(t)
		counts[k]++
		if first.IsZero() || k.Before(first) {
			first = k
		}
		if k.After(last) {
			last = k
		}
	}

	out := []GrowthPoint{}
	for k := first; !k.After(last); k = Month.next(k) {
		out = append(out, GrowthPoint{Period: Month.label(k), Count: counts[k]})
	}
	return out
}

// TopProducts ranks products by units sold, ties by ascending product id. A
// non-positive limit returns every product.
func TopProducts(orders []order.Order, limit int) []ProductUnits {
	units := map[int64]int{}
	for _, o := range orders {
		for _, it := range o.Items {
			units[it.ProductID] += it.Quantity
		}
	}

	out := make([]ProductUnits, 0, len(units))
	for id, n := range units {
		out = append(out, ProductUnits{ProductID: id, UnitsSold: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UnitsSold != out[j].UnitsSold {
			return out[i].UnitsSold > out[j].UnitsSold
		}
		return out[i].ProductID < out[j].ProductID
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}
