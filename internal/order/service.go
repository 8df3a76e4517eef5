package order

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/storefront-orders/internal/events"
)

// Pricer supplies tax and shipping for a checkout.
type Pricer interface {
	Quote(ctx context.Context, subtotal decimal.Decimal, ship ShippingInfo) (Charges, error)
}

// Observer is told about every committed domain change.
type Observer interface {
	OrderCreated()
	StatusChanged(from, to Status)
}

type noopObserver struct{}

func (noopObserver) OrderCreated()                {}
func (noopObserver) StatusChanged(from, to Status) {}

type Deps struct {
	Store    Store
	Numbers  Numberer
	Pricer   Pricer
	Events   events.Publisher
	Observer Observer
	Logger   logrus.FieldLogger
	Now      func() time.Time
}

type Service struct {
	store    Store
	numbers  Numberer
	pricer   Pricer
	events   events.Publisher
	observer Observer
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(d Deps) *Service {
	s := &Service{
		store:    d.Store,
		numbers:  d.Numbers,
		pricer:   d.Pricer,
		events:   d.Events,
		observer: d.Observer,
		log:      d.Logger,
		now:      d.Now,
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.events == nil {
		s.events = events.LogPublisher{Log: s.log}
	}
	if s.observer == nil {
		s.observer = noopObserver{}
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

type CreatedPayload struct {
	OrderID   int64           `json:"order_id"`
	Number    string          `json:"order_number"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

type StatusChangedPayload struct {
	OrderID int64  `json:"order_id"`
	Number  string `json:"order_number"`
	From    Status `json:"from"`
	To      Status `json:"to"`
}

// CreateOrder builds a pending order from the cart and takes its stock in the same
// transaction. Any line the ledger cannot cover fails the whole checkout.
func (s *Service) CreateOrder(ctx context.Context, cart CartSnapshot, ship ShippingInfo) (*Order, error) {
	if err := validateCart(cart); err != nil {
		return nil, err
	}
	if err := validateShipping(ship); err != nil {
		return nil, err
	}

	charges := Charges{Tax: decimal.Zero, Shipping: decimal.Zero}
	if s.pricer != nil {
		var err error
		if charges, err = s.pricer.Quote(ctx, cart.Subtotal(), ship); err != nil {
			return nil, errors.Wrap(err, "quote charges")
		}
	}
	if err := validateCharges(charges); err != nil {
		return nil, err
	}

	o := buildOrder(cart, ship, charges, s.now())
	number, err := s.numbers.Next(ctx)
	if err != nil {
		return nil, err
	}
	o.Number = number

	err = s.store.WithinTx(ctx, func(tx Tx) error {
		for _, m := range stockMoves(o.Items, -1) {
			if _, err := tx.AdjustStock(ctx, m.variantID, m.delta); err != nil {
				return err
			}
		}
		return tx.Insert(ctx, o)
	})
	if err != nil {
		s.log.WithError(err).WithField("order_number", number).Warn("checkout failed")
		return nil, err
	}

	s.observer.OrderCreated()
	s.log.WithFields(logrus.Fields{
		"order_id":     o.ID,
		"order_number": o.Number,
		"total":        o.Total.String(),
		"items":        o.ItemCount,
	}).Info("order created")
	s.publish(ctx, events.New(events.TypeOrderCreated, o.Number, CreatedPayload{
		OrderID: o.ID, Number: o.Number, Total: o.Total, ItemCount: o.ItemCount,
	}))
	return o, nil
}

func (s *Service) GetOrderByID(ctx context.Context, id int64) (*Order, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, f ListFilter) ([]Order, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		return nil, invalidInput("date range is empty")
	}
	return s.store.List(ctx, f)
}

// UpdateOrderStatus moves an order to status to. The order row is held for the
// duration of the transaction, so a concurrent request re-validates against the
// status this one commits. Entering cancelled or refund returns every line's stock.
func (s *Service) UpdateOrderStatus(ctx context.Context, id int64, to Status) (*Order, error) {
	to, err := ParseStatus(string(to))
	if err != nil {
		return nil, err
	}

	var (
		updated *Order
		from    Status
		changed bool
	)
	err = s.store.WithinTx(ctx, func(tx Tx) error {
		o, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		from = o.Status
		p, err := planTransition(o.Status, to)
		if err != nil {
			return err
		}
		if p.noop {
			updated = o
			return nil
		}
		if p.restock {
			for _, m := range stockMoves(o.Items, 1) {
				if _, err := tx.AdjustStock(ctx, m.variantID, m.delta); err != nil {
					return errors.Wrapf(err, "restock variant %d", m.variantID)
				}
			}
		}
		if err := tx.UpdateStatus(ctx, o, to); err != nil {
			return err
		}
		updated, changed = o, true
		return nil
	})
	entry := s.log.WithFields(logrus.Fields{"order_id": id, "from": from, "to": to})
	if err != nil {
		entry.WithError(err).Warn("status change rejected")
		return nil, err
	}
	if !changed {
		entry.Debug("status unchanged")
		return updated, nil
	}

	s.observer.StatusChanged(from, to)
	entry.WithField("order_number", updated.Number).Info("order status changed")
	s.publish(ctx, events.New(events.TypeOrderStatusChanged, updated.Number, StatusChangedPayload{
		OrderID: updated.ID, Number: updated.Number, From: from, To: to,
	}))
	return updated, nil
}

type stockMove struct {
	variantID int64
	delta     int
}

// stockMoves merges the lines of each variant into one ledger delta and orders them
// by variant id. Every transaction touching variant rows locks them in that order.
func stockMoves(items []Item, sign int) []stockMove {
	qty := map[int64]int{}
	for _, it := range items {
		if it.VariantID != 0 {
			qty[it.VariantID] += it.Quantity
		}
	}
	out := make([]stockMove, 0, len(qty))
	for id, n := range qty {
		out = append(out, stockMove{variantID: id, delta: sign * n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].variantID < out[j].variantID })
	return out
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"event_type": e.Type,
			"key":        e.Key,
		}).Error("publish event")
	}
}
