package order

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/storefront-orders/internal/events"
	"github.com/MikeMC777/storefront-orders/internal/inventory"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, e events.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockPublisher) Close() error { return m.Called().Error(0) }

type mockObserver struct{ mock.Mock }

func (m *mockObserver) OrderCreated()                 { m.Called() }
func (m *mockObserver) StatusChanged(from, to Status) { m.Called(from, to) }

func eventOf(typ, key string) any {
	return mock.MatchedBy(func(e events.Event) bool { return e.Type == typ && e.Key == key })
}

func TestCommittedChangesArePublishedAndObserved(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	stock := inventory.NewMemoryRepo()
	p := stock.AddProduct(inventory.Product{Name: "Falda"})
	v := stock.AddVariant(inventory.Variant{ProductID: p.ID, SKU: "FA-S", Stock: 2})

	pub := &mockPublisher{}
	obs := &mockObserver{}
	pub.On("Publish", mock.Anything, eventOf(events.TypeOrderCreated, "ORD-101")).Return(nil).Once()
	pub.On("Publish", mock.Anything, eventOf(events.TypeOrderStatusChanged, "ORD-101")).Return(nil).Once()
	obs.On("OrderCreated").Once()
	obs.On("StatusChanged", StatusPending, StatusShipped).Once()

	svc := NewService(Deps{
		Store:    NewMemoryStore(stock),
		Numbers:  NewMemoryNumberer(),
		Events:   pub,
		Observer: obs,
		Logger:   log,
	})
	ctx := context.Background()
	cart := CartSnapshot{Lines: []CartLine{{ProductID: p.ID, VariantID: v.ID, ProductName: "Falda", Quantity: 1}}}

	o, err := svc.CreateOrder(ctx, cart, ship)
	require.NoError(t, err)
	_, err = svc.UpdateOrderStatus(ctx, o.ID, StatusShipped)
	require.NoError(t, err)

	// same status again: nothing committed, nothing published
	_, err = svc.UpdateOrderStatus(ctx, o.ID, StatusShipped)
	require.NoError(t, err)

	// rejected checkout: nothing published
	_, err = svc.CreateOrder(ctx, CartSnapshot{Lines: []CartLine{{ProductID: p.ID, VariantID: v.ID, ProductName: "Falda", Quantity: 5}}}, ship)
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	pub.AssertExpectations(t)
	pub.AssertNumberOfCalls(t, "Publish", 2)
	obs.AssertExpectations(t)
}
