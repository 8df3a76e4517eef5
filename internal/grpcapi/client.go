package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls the analytics service. Replies are returned as decoded maps.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func (c *Client) call(ctx context.Context, method string, in map[string]any) (map[string]any, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

func (c *Client) SalesData(ctx context.Context, period string) (map[string]any, error) {
	return c.call(ctx, "GetSalesData", map[string]any{"period": period})
}

func (c *Client) StatusDistribution(ctx context.Context) (map[string]any, error) {
	return c.call(ctx, "GetOrderStatusDistribution", nil)
}

func (c *Client) CustomerGrowth(ctx context.Context) (map[string]any, error) {
	return c.call(ctx, "GetCustomerGrowth", nil)
}

func (c *Client) TopProducts(ctx context.Context, limit int) (map[string]any, error) {
	return c.call(ctx, "GetTopProducts", map[string]any{"limit": limit})
}
