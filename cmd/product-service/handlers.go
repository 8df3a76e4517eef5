package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/storefront-orders/internal/httpx"
	"github.com/MikeMC777/storefront-orders/internal/inventory"
	"github.com/MikeMC777/storefront-orders/internal/metrics"
)

func newRouter(svc *inventory.Service, auth httpx.Authenticator, rec *metrics.Recorder, g prometheus.Gatherer, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(log))
	if rec != nil {
		r.Use(httpx.Metrics(rec))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if g != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(g)))
	}

	r.GET("/products", listProductsHandler(svc))
	r.GET("/products/:id", getProductHandler(svc))
	r.GET("/variants/:id", getVariantHandler(svc))

	adm := r.Group("/admin", httpx.AdminAuth(auth))
	adm.POST("/variants/:id/adjust", adjustStockHandler(svc, log))
	return r
}

// GET /products?q=&limit=&offset=
func listProductsHandler(svc *inventory.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		if offset < 0 {
			offset = 0
		}
		q := strings.TrimSpace(c.Query("q"))

		items, err := svc.ListProducts(c.Request.Context(), inventory.Query{Q: q, Limit: limit, Offset: offset})
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, inventory.ListResponse{Q: q, Limit: limit, Offset: offset, Items: items})
	}
}

// GET /products/:id
func getProductHandler(svc *inventory.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		p, err := svc.GetProduct(c.Request.Context(), id)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// GET /variants/:id
func getVariantHandler(svc *inventory.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		v, err := svc.GetVariant(c.Request.Context(), id)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// POST /admin/variants/:id/adjust
// Body: {"delta": -2, "override": false}
func adjustStockHandler(svc *inventory.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req inventory.AdjustRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json")
			return
		}
		if req.Delta == 0 {
			httpx.BadRequest(c, "delta must not be zero")
			return
		}
		res, err := svc.AdjustStock(c.Request.Context(), id, req.Delta, req.Override)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		if a := httpx.CurrentAdmin(c); a != nil {
			httpx.Log(c, log).WithFields(logrus.Fields{
				"admin":      a.Email,
				"variant_id": id,
				"delta":      req.Delta,
			}).Info("manual stock correction")
		}
		c.JSON(http.StatusOK, res)
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
