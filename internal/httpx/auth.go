package httpx

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront-orders/internal/admin"
)

const adminKey = "admin"

// Authenticator checks administrative credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*admin.Admin, error)
}

// AdminAuth requires HTTP Basic credentials of a registered administrator.
func AdminAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, pw, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="storefront-admin"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, HTTPError{Error: "credentials required", Code: "unauthorized"})
			return
		}
		a, err := auth.Authenticate(c.Request.Context(), email, pw)
		if err != nil {
			c.Header("WWW-Authenticate", `Basic realm="storefront-admin"`)
			WriteError(c, err)
			return
		}
		c.Set(adminKey, a)
		c.Next()
	}
}

// CurrentAdmin returns the administrator authenticated by AdminAuth.
func CurrentAdmin(c *gin.Context) *admin.Admin {
	if v, ok := c.Get(adminKey); ok {
		if a, ok := v.(*admin.Admin); ok {
			return a
		}
	}
	return nil
}
