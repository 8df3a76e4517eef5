// Package httpx holds the gin middleware and error mapping shared by both APIs.
package httpx

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/storefront-orders/internal/metrics"
)

const ridKey = "rid"

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ridKey, rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

// RID returns the request id set by RequestID.
func RID(c *gin.Context) string { return c.GetString(ridKey) }

// Log returns a logger carrying the request id.
func Log(c *gin.Context, log logrus.FieldLogger) logrus.FieldLogger {
	return log.WithField("rid", RID(c))
}

func Logger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := log.WithFields(logrus.Fields{
			"rid":    RID(c),
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
			"dur":    time.Since(start).String(),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}
		if c.Writer.Status() >= 500 {
			entry.Error("http")
			return
		}
		entry.Info("http")
	}
}

// Metrics labels requests by route template so ids do not explode cardinality.
func Metrics(rec *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		rec.ObserveRequest(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
