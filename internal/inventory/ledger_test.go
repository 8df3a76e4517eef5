package inventory

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func seed(t *testing.T, stock int) (*MemoryRepo, Variant) {
	t.Helper()
	repo := NewMemoryRepo()
	p := repo.AddProduct(Product{Name: "Camiseta", Price: decimal.RequireFromString("25")})
	v := repo.AddVariant(Variant{ProductID: p.ID, SKU: "TS-M-RED", Color: "red", Size: "M", Stock: stock})
	return repo, v
}

type countingObserver struct{ outcomes []string }

func (c *countingObserver) StockAdjusted(outcome string) { c.outcomes = append(c.outcomes, outcome) }

func TestNextQuantity(t *testing.T) {
	cases := []struct {
		name     string
		current  int
		delta    int
		override bool
		want     int
		wantErr  bool
	}{
		{"increment", 3, 2, false, 5, false},
		{"decrement to zero", 3, -3, false, 0, false},
		{"below zero rejected", 3, -4, false, 3, true},
		{"override clamps", 3, -10, true, 0, false},
		{"override positive", 3, 4, true, 7, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := nextQuantity(1, tc.current, tc.delta, tc.override)
			assert.Equal(t, tc.want, got)
			if tc.wantErr {
				var ise *InsufficientStockError
				require.ErrorAs(t, err, &ise)
				assert.Equal(t, tc.current, ise.Available)
				assert.Equal(t, -tc.delta, ise.Requested)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestAdjustRejectsNegativeAndLeavesStock(t *testing.T) {
	repo, v := seed(t, 2)

	_, err := repo.Adjust(context.Background(), v.ID, -3, false)
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 2, repo.Stock(v.ID))

	qty, err := repo.Adjust(context.Background(), v.ID, -2, false)
	require.NoError(t, err)
	assert.Equal(t, 0, qty)
}

func TestAdjustUnknownVariant(t *testing.T) {
	repo := NewMemoryRepo()
	_, err := repo.Adjust(context.Background(), 42, 1, false)

	var nf *VariantNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int64(42), nf.VariantID)
	assert.True(t, errors.Is(err, ErrVariantNotFound))
}

func TestAdjustSequenceNeverNegative(t *testing.T) {
	repo, v := seed(t, 5)
	steps := []struct {
		delta    int
		override bool
	}{{-2, false}, {-4, false}, {3, false}, {-6, false}, {-20, true}, {1, false}, {-2, false}}

	for _, s := range steps {
		_, _ = repo.Adjust(context.Background(), v.ID, s.delta, s.override)
		assert.GreaterOrEqual(t, repo.Stock(v.ID), 0)
	}
	assert.Equal(t, 1, repo.Stock(v.ID))
}

func TestConcurrentDecrementsOnLastUnit(t *testing.T) {
	repo, v := seed(t, 1)

	var ok, insufficient atomic.Int32
	var g errgroup.Group
	for i := 0; i < 2; i++ {
		g.Go(func() error {
			qty, err := repo.Adjust(context.Background(), v.ID, -1, false)
			switch {
			case err == nil:
				assert.Equal(t, 0, qty)
				ok.Add(1)
			case errors.Is(err, ErrInsufficientStock):
				insufficient.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(1), insufficient.Load())
	assert.Equal(t, 0, repo.Stock(v.ID))
}

func TestServiceAdjustStockReportsOutcome(t *testing.T) {
	repo, v := seed(t, 1)
	obs := &countingObserver{}
	svc := NewService(repo, quietLogger(), obs)

	res, err := svc.AdjustStock(context.Background(), v.ID, 4, false)
	require.NoError(t, err)
	assert.Equal(t, AdjustResult{VariantID: v.ID, Quantity: 5}, res)

	_, err = svc.AdjustStock(context.Background(), v.ID, -9, false)
	require.ErrorIs(t, err, ErrInsufficientStock)

	_, err = svc.AdjustStock(context.Background(), 999, 1, false)
	require.ErrorIs(t, err, ErrVariantNotFound)

	assert.Equal(t, []string{"applied", "insufficient_stock", "variant_not_found"}, obs.outcomes)
}

func TestListProductsAggregatesStock(t *testing.T) {
	repo := NewMemoryRepo()
	p := repo.AddProduct(Product{Name: "Vestido lino", Description: "verano", Price: decimal.RequireFromString("40")})
	repo.AddVariant(Variant{ProductID: p.ID, SKU: "VL-S", Stock: 3})
	repo.AddVariant(Variant{ProductID: p.ID, SKU: "VL-M", Stock: 4})
	repo.AddProduct(Product{Name: "Bolso", Price: decimal.RequireFromString("15")})

	svc := NewService(repo, quietLogger(), nil)
	items, err := svc.ListProducts(context.Background(), Query{Q: "VERANO"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].TotalStock)
	assert.Empty(t, items[0].Variants)

	full, err := svc.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, full.Variants, 2)
	assert.Equal(t, 7, full.TotalStock)
}

func TestUnitPriceOverride(t *testing.T) {
	base := decimal.RequireFromString("25")
	plain := Variant{}
	assert.True(t, plain.UnitPrice(base).Equal(base))

	special := Variant{Price: decimal.NewNullDecimal(decimal.RequireFromString("19.99"))}
	assert.Equal(t, "19.99", special.UnitPrice(base).String())
}
