package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront-orders/internal/order"
)

type quoteRequest struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Phone    string          `json:"phone"`
	Address  string          `json:"shipping_address"`
}

// Client asks an external pricing service for the charges of a checkout.
type Client struct {
	HTTP    *http.Client
	BaseURL string
}

func NewClient(baseURL string) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 5 * time.Second},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) Quote(ctx context.Context, subtotal decimal.Decimal, ship order.ShippingInfo) (order.Charges, error) {
	body, err := json.Marshal(quoteRequest{Subtotal: subtotal, Phone: ship.Phone, Address: ship.Address})
	if err != nil {
		return order.Charges{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/quote", bytes.NewReader(body))
	if err != nil {
		return order.Charges{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return order.Charges{}, errors.Wrap(err, "pricing request")
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return order.Charges{}, fmt.Errorf("pricing service: %s", res.Status)
	}

	var ch order.Charges
	if err := json.NewDecoder(res.Body).Decode(&ch); err != nil {
		return order.Charges{}, errors.Wrap(err, "decode quote")
	}
	if ch.Tax.IsNegative() || ch.Shipping.IsNegative() {
		return order.Charges{}, fmt.Errorf("pricing service returned negative charges")
	}
	return ch, nil
}
