package analytics

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/storefront-orders/internal/order"
)

// OrderSource loads the order snapshot the reports are computed from.
type OrderSource interface {
	All(ctx context.Context) ([]order.Order, error)
}

type ProductNamer interface {
	ProductNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

// Service recomputes every report from a fresh snapshot on each call.
type Service struct {
	orders OrderSource
	names  ProductNamer
	log    logrus.FieldLogger
}

func NewService(orders OrderSource, names ProductNamer, log logrus.FieldLogger) *Service {
	return &Service{orders: orders, names: names, log: log}
}

func (s *Service) snapshot(ctx context.Context) ([]order.Order, error) {
	all, err := s.orders.All(ctx)
	return all, errors.Wrap(err, "load orders")
}

func (s *Service) GetSalesData(ctx context.Context, period Bucket) ([]SalesPoint, error) {
	all, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return SalesByPeriod(all, period), nil
}

func (s *Service) GetOrderStatusDistribution(ctx context.Context) (map[order.Status]int, error) {
	all, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return StatusDistribution(all), nil
}

func (s *Service) GetCustomerGrowth(ctx context.Context) ([]GrowthPoint, error) {
	all, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return CustomerGrowth(all), nil
}

// GetTopProducts ranks products and attaches catalog names. A product missing from
// the catalog keeps the name recorded on its most recent order line.
func (s *Service) GetTopProducts(ctx context.Context, limit int) ([]ProductUnits, error) {
	all, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	top := TopProducts(all, limit)
	if len(top) == 0 {
		return top, nil
	}

	ids := make([]int64, len(top))
	for i, p := range top {
		ids[i] = p.ProductID
	}
	names := map[int64]string{}
	if s.names != nil {
		if names, err = s.names.ProductNames(ctx, ids); err != nil {
			s.log.WithError(err).Warn("product names unavailable, using order lines")
			names = map[int64]string{}
		}
	}
	fallback := map[int64]string{}
	for _, o := range all {
		for _, it := range o.Items {
			fallback[it.ProductID] = it.ProductName
		}
	}
	for i := range top {
		if n, ok := names[top[i].ProductID]; ok {
			top[i].Name = n
		} else {
			top[i].Name = fallback[top[i].ProductID]
		}
	}
	return top, nil
}
