package inventory

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// Ledger owns the authoritative stock quantity of every variant.
//
// Adjust applies a signed delta atomically with respect to other adjustments of the
// same variant. Unless override is set, a delta that would take the quantity below
// zero fails with *InsufficientStockError and leaves the quantity untouched. With
// override the correction is applied and the result is clamped at zero.
type Ledger interface {
	Adjust(ctx context.Context, variantID int64, delta int, override bool) (int, error)
}

type Repository interface {
	Ledger
	GetVariant(ctx context.Context, id int64) (*Variant, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context, q Query) ([]Product, error)
	ProductNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

// nextQuantity is the ledger precondition shared by the in-memory implementation and
// the tests; the Postgres implementation expresses the same rule in its UPDATE.
func nextQuantity(variantID int64, current, delta int, override bool) (int, error) {
	next := current + delta
	if next >= 0 {
		return next, nil
	}
	if override {
		return 0, nil
	}
	return current, &InsufficientStockError{VariantID: variantID, Available: current, Requested: -delta}
}

// Observer receives the outcome of every administrative adjustment.
type Observer interface {
	StockAdjusted(outcome string)
}

type noopObserver struct{}

func (noopObserver) StockAdjusted(string) {}

// Service is the administrative face of the ledger used by the product API.
type Service struct {
	repo     Repository
	log      logrus.FieldLogger
	observer Observer
}

func NewService(repo Repository, log logrus.FieldLogger, obs Observer) *Service {
	if obs == nil {
		obs = noopObserver{}
	}
	return &Service{repo: repo, log: log, observer: obs}
}

func (s *Service) AdjustStock(ctx context.Context, variantID int64, delta int, override bool) (AdjustResult, error) {
	qty, err := s.repo.Adjust(ctx, variantID, delta, override)
	entry := s.log.WithFields(logrus.Fields{
		"variant_id": variantID,
		"delta":      delta,
		"override":   override,
	})
	if err != nil {
		s.observer.StockAdjusted(outcomeOf(err))
		entry.WithError(err).Warn("stock adjustment rejected")
		return AdjustResult{}, err
	}
	s.observer.StockAdjusted("applied")
	entry.WithField("quantity", qty).Info("stock adjusted")
	return AdjustResult{VariantID: variantID, Quantity: qty}, nil
}

func (s *Service) GetVariant(ctx context.Context, id int64) (*Variant, error) {
	return s.repo.GetVariant(ctx, id)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, q Query) ([]Product, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return s.repo.ListProducts(ctx, q)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrVariantNotFound):
		return "variant_not_found"
	default:
		return "error"
	}
}
