package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront-orders/internal/admin"
	"github.com/MikeMC777/storefront-orders/internal/idempotency"
	"github.com/MikeMC777/storefront-orders/internal/inventory"
	"github.com/MikeMC777/storefront-orders/internal/order"
)

// HTTPError is the body of every error response.
// swagger:model HTTPError
type HTTPError struct {
	Error string `json:"error" example:"order not found"`
	Code  string `json:"code"  example:"order_not_found"`
}

// StatusOf maps a domain error to its HTTP status and a stable code.
func StatusOf(err error) (int, string) {
	switch {
	case errors.Is(err, order.ErrEmptyCart):
		return http.StatusBadRequest, "empty_cart"
	case errors.Is(err, order.ErrInvalidStatus):
		return http.StatusBadRequest, "invalid_status"
	case errors.Is(err, order.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, order.ErrOrderNotFound):
		return http.StatusNotFound, "order_not_found"
	case errors.Is(err, inventory.ErrVariantNotFound):
		return http.StatusNotFound, "variant_not_found"
	case errors.Is(err, inventory.ErrProductNotFound):
		return http.StatusNotFound, "product_not_found"
	case errors.Is(err, inventory.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, order.ErrIllegalTransition):
		return http.StatusConflict, "illegal_transition"
	case errors.Is(err, order.ErrConcurrentModification):
		return http.StatusConflict, "concurrent_modification"
	case errors.Is(err, idempotency.ErrInFlight):
		return http.StatusConflict, "request_in_progress"
	case errors.Is(err, idempotency.ErrKeyReused):
		return http.StatusUnprocessableEntity, "idempotency_key_reused"
	case errors.Is(err, admin.ErrInvalidCredentials):
		return http.StatusUnauthorized, "unauthorized"
	}
	return http.StatusInternalServerError, "internal"
}

// WriteError aborts the request with the mapped status. Internal errors are not
// echoed to the client; they stay attached to the context for the request log.
func WriteError(c *gin.Context, err error) {
	status, code := StatusOf(err)
	_ = c.Error(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, HTTPError{Error: msg, Code: code})
}

func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, HTTPError{Error: msg, Code: "invalid_input"})
}
