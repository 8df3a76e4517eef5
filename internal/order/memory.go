package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MikeMC777/storefront-orders/internal/inventory"
)

// MemoryStore keeps orders in process and delegates stock to an inventory.Ledger.
// Transactions are serialized by a single lock; ledger adjustments made inside a
// failed transaction are reverted before the lock is released.
type MemoryStore struct {
	mu     sync.Mutex
	ledger inventory.Ledger
	orders map[int64]*Order
	nextID int64
	itemID int64
}

func NewMemoryStore(ledger inventory.Ledger) *MemoryStore {
	return &MemoryStore{ledger: ledger, orders: make(map[int64]*Order)}
}

type stockChange struct {
	variantID int64
	delta     int
}

type memTx struct {
	s        *MemoryStore
	inserted []*Order
	updated  map[int64]*Order
	changes  []stockChange
}

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{s: s, updated: map[int64]*Order{}}
	if err := fn(tx); err != nil {
		for i := len(tx.changes) - 1; i >= 0; i-- {
			c := tx.changes[i]
			_, _ = s.ledger.Adjust(context.Background(), c.variantID, -c.delta, true)
		}
		return err
	}
	for _, o := range tx.inserted {
		s.orders[o.ID] = cloneOrder(o)
	}
	for id, o := range tx.updated {
		s.orders[id] = cloneOrder(o)
	}
	return nil
}

func (t *memTx) Insert(ctx context.Context, o *Order) error {
	t.s.nextID++
	o.ID = t.s.nextID
	for i := range o.Items {
		t.s.itemID++
		o.Items[i].ID = t.s.itemID
		o.Items[i].OrderID = o.ID
	}
	t.inserted = append(t.inserted, cloneOrder(o))
	return nil
}

func (t *memTx) GetForUpdate(ctx context.Context, id int64) (*Order, error) {
	if o, ok := t.updated[id]; ok {
		return cloneOrder(o), nil
	}
	o, ok := t.s.orders[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return cloneOrder(o), nil
}

func (t *memTx) UpdateStatus(ctx context.Context, o *Order, to Status) error {
	current, ok := t.updated[o.ID]
	if !ok {
		current, ok = t.s.orders[o.ID]
	}
	if !ok {
		return &NotFoundError{ID: o.ID}
	}
	if current.Version != o.Version {
		return ErrConcurrentModification
	}
	o.Status = to
	o.Version++
	o.UpdatedAt = time.Now().UTC()
	t.updated[o.ID] = cloneOrder(o)
	return nil
}

func (t *memTx) AdjustStock(ctx context.Context, variantID int64, delta int) (int, error) {
	qty, err := t.s.ledger.Adjust(ctx, variantID, delta, false)
	if err != nil {
		return 0, err
	}
	t.changes = append(t.changes, stockChange{variantID: variantID, delta: delta})
	return qty, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id int64) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return cloneOrder(o), nil
}

func (s *MemoryStore) List(ctx context.Context, f ListFilter) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []Order{}
	for _, o := range s.orders {
		if f.Matches(o) {
			cp := *o
			cp.Items = nil
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	if f.Offset >= len(out) {
		return []Order{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryStore) All(ctx context.Context) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, *cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func cloneOrder(o *Order) *Order {
	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	return &cp
}
