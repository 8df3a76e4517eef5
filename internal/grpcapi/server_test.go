package grpcapi

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/MikeMC777/storefront-orders/internal/admin"
	"github.com/MikeMC777/storefront-orders/internal/analytics"
	"github.com/MikeMC777/storefront-orders/internal/order"
)

type snapshot []order.Order

func (s snapshot) All(context.Context) ([]order.Order, error) { return s, nil }

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func dial(t *testing.T) *grpc.ClientConn {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	admins := admin.NewService(admin.NewMemoryRepo())
	_, err := admins.Register(context.Background(), "ops@tienda.co", "s3cret-pass")
	require.NoError(t, err)

	orders := snapshot{
		{CreatedAt: day("2026-01-15"), Total: decimal.NewFromInt(20), Status: order.StatusPending, Phone: "1",
			Items: []order.Item{{ProductID: 7, Quantity: 3, ProductName: "Falda"}}},
		{CreatedAt: day("2026-02-03"), Total: decimal.NewFromInt(40), Status: order.StatusShipped, Phone: "2",
			Items: []order.Item{{ProductID: 8, Quantity: 1, ProductName: "Top"}}},
	}
	srv, _ := NewServer(analytics.NewService(orders, nil, log), admins, log)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func authed() context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", BasicAuth("ops@tienda.co", "s3cret-pass"))
}

func TestHealthNeedsNoCredentials(t *testing.T) {
	conn := dial(t)
	res, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, res.GetStatus())
}

func TestAnalyticsRequiresAdmin(t *testing.T) {
	c := NewClient(dial(t))

	_, err := c.StatusDistribution(context.Background())
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	bad := metadata.AppendToOutgoingContext(context.Background(), "authorization", BasicAuth("ops@tienda.co", "wrong"))
	_, err = c.StatusDistribution(bad)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestSalesDataOverGRPC(t *testing.T) {
	c := NewClient(dial(t))

	out, err := c.SalesData(authed(), "month")
	require.NoError(t, err)
	points := out["points"].([]any)
	require.Len(t, points, 2)
	assert.Equal(t, map[string]any{"label": "2026-01", "amount": "20.00"}, points[0])
	assert.Equal(t, map[string]any{"label": "2026-02", "amount": "40.00"}, points[1])

	_, err = c.SalesData(authed(), "fortnight")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestDistributionGrowthAndTopOverGRPC(t *testing.T) {
	c := NewClient(dial(t))

	dist, err := c.StatusDistribution(authed())
	require.NoError(t, err)
	counts := dist["counts"].(map[string]any)
	assert.Equal(t, 1.0, counts["pending"])
	assert.Equal(t, 0.0, counts["refund"])

	growth, err := c.CustomerGrowth(authed())
	require.NoError(t, err)
	assert.Len(t, growth["points"].([]any), 2)

	top, err := c.TopProducts(authed(), 1)
	require.NoError(t, err)
	products := top["products"].([]any)
	require.Len(t, products, 1)
	assert.Equal(t, map[string]any{"product_id": 7.0, "name": "Falda", "units_sold": 3.0}, products[0])
}
