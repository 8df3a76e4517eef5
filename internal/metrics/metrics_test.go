package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/storefront-orders/internal/order"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg, "orders")

	r.OrderCreated()
	r.OrderCreated()
	r.StatusChanged(order.StatusPending, order.StatusCancelled)
	r.StockAdjusted("insufficient_stock")
	r.ObserveRequest("/orders", http.MethodPost, http.StatusCreated, 12*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.OrdersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Transitions.WithLabelValues("pending", "cancelled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.StockAdjusts.WithLabelValues("insufficient_stock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Requests.WithLabelValues("/orders", "POST", "201")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg, "products").StockAdjusted("applied")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), `storefront_products_stock_adjustments_total{outcome="applied"} 1`))
}
