package order

import (
	"context"
	"io"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adjustCall struct {
	variantID int64
	delta     int
}

// recordingStore runs every transaction against one order and logs ledger calls.
type recordingStore struct {
	order   *Order
	adjusts []adjustCall
}

func (s *recordingStore) WithinTx(_ context.Context, fn func(Tx) error) error { return fn(s) }
func (s *recordingStore) GetByID(context.Context, int64) (*Order, error)     { return s.order, nil }
func (s *recordingStore) List(context.Context, ListFilter) ([]Order, error)  { return nil, nil }
func (s *recordingStore) All(context.Context) ([]Order, error)               { return nil, nil }

func (s *recordingStore) Insert(_ context.Context, o *Order) error {
	o.ID = 1
	s.order = o
	return nil
}

func (s *recordingStore) GetForUpdate(context.Context, int64) (*Order, error) {
	cp := *s.order
	return &cp, nil
}

func (s *recordingStore) UpdateStatus(_ context.Context, o *Order, to Status) error {
	o.Status = to
	o.Version++
	return nil
}

func (s *recordingStore) AdjustStock(_ context.Context, variantID int64, delta int) (int, error) {
	s.adjusts = append(s.adjusts, adjustCall{variantID, delta})
	return 0, nil
}

func TestStockIsTakenAndReturnedInVariantOrder(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	store := &recordingStore{}
	svc := NewService(Deps{Store: store, Numbers: NewMemoryNumberer(), Logger: log})
	ctx := context.Background()

	line := func(variantID int64, qty int) CartLine {
		return CartLine{ProductID: 1, VariantID: variantID, ProductName: "Blusa", Quantity: qty, UnitPrice: decimal.NewFromInt(10)}
	}
	cart := CartSnapshot{Lines: []CartLine{line(9, 1), line(3, 2), line(0, 5), line(9, 4), line(5, 1)}}

	o, err := svc.CreateOrder(ctx, cart, ship)
	require.NoError(t, err)
	assert.Equal(t, []adjustCall{{3, -2}, {5, -1}, {9, -5}}, store.adjusts)

	store.adjusts = nil
	_, err = svc.UpdateOrderStatus(ctx, o.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, []adjustCall{{3, 2}, {5, 1}, {9, 5}}, store.adjusts)
}

func TestStockMovesSkipsLinesWithoutVariant(t *testing.T) {
	assert.Empty(t, stockMoves([]Item{{ProductID: 1, Quantity: 3}}, -1))
}

func TestAsConflict(t *testing.T) {
	for _, code := range []string{"40P01", "40001"} {
		err := asConflict(errors.Wrap(&pgconn.PgError{Code: code, Message: "deadlock detected"}, "adjust stock of variant 3"))
		require.ErrorIs(t, err, ErrConcurrentModification, code)
	}

	other := errors.Wrap(&pgconn.PgError{Code: "23505"}, "insert order")
	assert.Same(t, other, asConflict(other))
	assert.NoError(t, asConflict(nil))
}

func TestPhoneMatches(t *testing.T) {
	o := &Order{Phone: "+57 300 555-0101"}
	assert.True(t, o.PhoneMatches("573005550101"))
	assert.False(t, o.PhoneMatches("3005550101"))
	assert.False(t, o.PhoneMatches(""))
	assert.False(t, (&Order{}).PhoneMatches(""))
}
