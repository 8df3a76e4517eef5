package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/MikeMC777/storefront-orders/docs"
	"github.com/MikeMC777/storefront-orders/internal/analytics"
	"github.com/MikeMC777/storefront-orders/internal/httpx"
	"github.com/MikeMC777/storefront-orders/internal/idempotency"
	"github.com/MikeMC777/storefront-orders/internal/inventory"
	"github.com/MikeMC777/storefront-orders/internal/metrics"
	"github.com/MikeMC777/storefront-orders/internal/order"
)

// catalog resolves cart lines to current names and prices.
type catalog interface {
	GetProduct(ctx context.Context, id int64) (*inventory.Product, error)
}

type app struct {
	orders    *order.Service
	analytics *analytics.Service
	catalog   catalog
	idem      idempotency.Store
	auth      httpx.Authenticator
	metrics   *metrics.Recorder
	gatherer  prometheus.Gatherer
	log       logrus.FieldLogger
}

func newRouter(a app) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(a.log))
	if a.metrics != nil {
		r.Use(httpx.Metrics(a.metrics))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if a.gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(a.gatherer)))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/orders", createOrderHandler(a.orders, a.catalog, a.idem, a.log))
	r.GET("/orders/:id", trackOrderHandler(a.orders))

	adm := r.Group("/admin", httpx.AdminAuth(a.auth))
	adm.GET("/orders", listOrdersHandler(a.orders))
	adm.GET("/orders/:id", getOrderHandler(a.orders))
	adm.PUT("/orders/:id/status", updateOrderStatusHandler(a.orders))
	adm.GET("/analytics/sales", salesHandler(a.analytics))
	adm.GET("/analytics/status-distribution", statusDistributionHandler(a.analytics))
	adm.GET("/analytics/customer-growth", customerGrowthHandler(a.analytics))
	adm.GET("/analytics/top-products", topProductsHandler(a.analytics))
	return r
}

// resolveCart prices every requested line from the catalog. Products that have
// variants must be ordered through one of them.
func resolveCart(ctx context.Context, cat catalog, items []order.CreateOrderItem) (order.CartSnapshot, error) {
	var cart order.CartSnapshot
	products := map[int64]*inventory.Product{}
	for i, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			var err error
			if p, err = cat.GetProduct(ctx, it.ProductID); err != nil {
				return cart, err
			}
			products[it.ProductID] = p
		}

		line := order.CartLine{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   p.Price,
		}
		switch {
		case it.VariantID != 0:
			v, ok := p.Variant(it.VariantID)
			if !ok {
				return cart, &inventory.VariantNotFoundError{VariantID: it.VariantID}
			}
			line.VariantID = v.ID
			line.SKU, line.Color, line.Size = v.SKU, v.Color, v.Size
			line.UnitPrice = v.UnitPrice(p.Price)
		case len(p.Variants) > 0:
			return cart, errInvalidf("item %d: variant_id is required for product %d", i+1, p.ID)
		}
		cart.Lines = append(cart.Lines, line)
	}
	return cart, nil
}

// @Summary  Checkout
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    Idempotency-Key header string false "retries with the same key return the first order"
// @Param    body body order.CreateOrderRequest true "cart and shipping details"
// @Success  201 {object} order.Order
// @Success  200 {object} order.Order "replayed request"
// @Failure  400 {object} httpx.HTTPError
// @Failure  409 {object} httpx.HTTPError
// @Failure  422 {object} httpx.HTTPError "key reused with another cart"
// @Router   /orders [post]
func createOrderHandler(svc *order.Service, cat catalog, idem idempotency.Store, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json")
			return
		}
		ctx := c.Request.Context()

		key, hasKey := "", false
		if raw := c.GetHeader(idempotency.Header); raw != "" && idem != nil {
			if key, hasKey = idempotency.Normalize(raw); !hasKey {
				httpx.BadRequest(c, "invalid Idempotency-Key")
				return
			}
		}
		var fp string
		if hasKey {
			var err error
			if fp, err = idempotency.Fingerprint(req); err != nil {
				httpx.WriteError(c, err)
				return
			}
			id, claimed, err := idem.Claim(ctx, key, fp)
			if err != nil {
				httpx.WriteError(c, err)
				return
			}
			if !claimed {
				o, err := svc.GetOrderByID(ctx, id)
				if err != nil {
					httpx.WriteError(c, err)
					return
				}
				c.JSON(http.StatusOK, o)
				return
			}
		}

		cart, err := resolveCart(ctx, cat, req.Items)
		if err == nil {
			var o *order.Order
			if o, err = svc.CreateOrder(ctx, cart, req.Shipping()); err == nil {
				if hasKey {
					if err := idem.Complete(ctx, key, fp, o.ID); err != nil {
						httpx.Log(c, log).WithError(err).Warn("idempotency key not recorded")
					}
				}
				c.JSON(http.StatusCreated, o)
				return
			}
		}
		if hasKey {
			if err := idem.Release(ctx, key); err != nil {
				httpx.Log(c, log).WithError(err).Warn("idempotency key not released")
			}
		}
		httpx.WriteError(c, err)
	}
}

// @Summary  Track order
// @Tags     orders
// @Produce  json
// @Param    id    path  int    true "order id"
// @Param    phone query string true "phone given at checkout"
// @Success  200 {object} order.Order
// @Failure  404 {object} httpx.HTTPError
// @Router   /orders/{id} [get]
func trackOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		phone := c.Query("phone")
		if order.PhoneDigits(phone) == "" {
			httpx.BadRequest(c, "phone is required")
			return
		}
		o, err := svc.GetOrderByID(c.Request.Context(), id)
		if err == nil && !o.PhoneMatches(phone) {
			// a phone mismatch reads as a missing order
			err = &order.NotFoundError{ID: id}
		}
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// @Summary  Get order
// @Tags     admin
// @Produce  json
// @Security BasicAuth
// @Param    id path int true "order id"
// @Success  200 {object} order.Order
// @Failure  404 {object} httpx.HTTPError
// @Router   /admin/orders/{id} [get]
func getOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		o, err := svc.GetOrderByID(c.Request.Context(), id)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// @Summary  List orders
// @Tags     admin
// @Produce  json
// @Security BasicAuth
// @Param    q      query string false "order number, customer name or phone"
// @Param    status query string false "order status"
// @Param    from   query string false "RFC3339 or YYYY-MM-DD, inclusive"
// @Param    to     query string false "RFC3339 (exclusive) or YYYY-MM-DD (inclusive day)"
// @Param    limit  query int    false "page size, max 100"
// @Param    offset query int    false "offset"
// @Success  200 {object} order.ListResponse
// @Router   /admin/orders [get]
func listOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := order.ListFilter{Search: c.Query("q")}
		if s := c.Query("status"); s != "" {
			st, err := order.ParseStatus(s)
			if err != nil {
				httpx.WriteError(c, err)
				return
			}
			f.Status = st
		}
		var err error
		if f.From, err = parseDate(c.Query("from"), false); err != nil {
			httpx.BadRequest(c, "invalid from date")
			return
		}
		if f.To, err = parseDate(c.Query("to"), true); err != nil {
			httpx.BadRequest(c, "invalid to date")
			return
		}
		f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
		f.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
		if f.Limit <= 0 || f.Limit > 100 {
			f.Limit = 20
		}
		if f.Offset < 0 {
			f.Offset = 0
		}

		items, err := svc.ListOrders(c.Request.Context(), f)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, order.ListResponse{Limit: f.Limit, Offset: f.Offset, Items: items})
	}
}

// @Summary  Change order status
// @Tags     admin
// @Accept   json
// @Produce  json
// @Security BasicAuth
// @Param    id   path int true "order id"
// @Param    body body order.UpdateStatusRequest true "target status"
// @Success  200 {object} order.Order
// @Failure  409 {object} httpx.HTTPError
// @Router   /admin/orders/{id}/status [put]
func updateOrderStatusHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req order.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Status) == "" {
			httpx.BadRequest(c, "status is required")
			return
		}
		o, err := svc.UpdateOrderStatus(c.Request.Context(), id, order.Status(req.Status))
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// @Summary  Sales per period
// @Tags     analytics
// @Produce  json
// @Security BasicAuth
// @Param    period query string false "week, month (default) or year"
// @Success  200 {array} analytics.SalesPoint
// @Router   /admin/analytics/sales [get]
func salesHandler(svc *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := analytics.ParseBucket(c.Query("period"))
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		out, err := svc.GetSalesData(c.Request.Context(), b)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Orders per status
// @Tags     analytics
// @Produce  json
// @Security BasicAuth
// @Success  200 {object} map[string]int
// @Router   /admin/analytics/status-distribution [get]
func statusDistributionHandler(svc *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.GetOrderStatusDistribution(c.Request.Context())
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  New customers per month
// @Tags     analytics
// @Produce  json
// @Security BasicAuth
// @Success  200 {array} analytics.GrowthPoint
// @Router   /admin/analytics/customer-growth [get]
func customerGrowthHandler(svc *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.GetCustomerGrowth(c.Request.Context())
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Best selling products
// @Tags     analytics
// @Produce  json
// @Security BasicAuth
// @Param    limit query int false "default 10"
// @Success  200 {array} analytics.ProductUnits
// @Router   /admin/analytics/top-products [get]
func topProductsHandler(svc *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if err != nil || limit <= 0 {
			httpx.BadRequest(c, "limit must be a positive integer")
			return
		}
		out, err := svc.GetTopProducts(c.Request.Context(), limit)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.BadRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

// parseDate accepts RFC3339 or a bare date in UTC. A bare upper bound covers the
// whole day, so it is moved to the next midnight.
func parseDate(s string, upper bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	if upper {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

func errInvalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{order.ErrInvalidInput}, args...)...)
}
