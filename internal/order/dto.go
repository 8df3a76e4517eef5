package order

// CreateOrderItem is one requested cart line.
// swagger:model CreateOrderItem
type CreateOrderItem struct {
	ProductID int64 `json:"product_id" example:"12"`
	VariantID int64 `json:"variant_id,omitempty" example:"31"`
	Quantity  int   `json:"quantity"  example:"2"`
}

// CreateOrderRequest is the checkout payload.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	CustomerName         string            `json:"customer_name" example:"Ana Torres"`
	Phone                string            `json:"phone" example:"+57 300 555 0101"`
	ShippingAddress      string            `json:"shipping_address" example:"Cra 7 # 45-10, Bogotá"`
	DeliveryInstructions string            `json:"delivery_instructions,omitempty" example:"Portería"`
	Items                []CreateOrderItem `json:"items"`
}

func (r CreateOrderRequest) Shipping() ShippingInfo {
	return ShippingInfo{
		CustomerName: r.CustomerName,
		Phone:        r.Phone,
		Address:      r.ShippingAddress,
		Instructions: r.DeliveryInstructions,
	}
}

// UpdateStatusRequest payload.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" example:"shipped"`
}

// ListResponse is a page of orders.
// swagger:model OrderListResponse
type ListResponse struct {
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Items  []Order `json:"items"`
}
