// Package grpcapi serves the analytics reads and the health service over gRPC.
// Messages are carried as google.protobuf.Struct so no generated stubs are needed.
package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/MikeMC777/storefront-orders/internal/analytics"
	"github.com/MikeMC777/storefront-orders/internal/order"
)

const ServiceName = "storefront.analytics.v1.Analytics"

// Analytics is the subset of analytics.Service exposed over gRPC.
type Analytics interface {
	GetSalesData(ctx context.Context, period analytics.Bucket) ([]analytics.SalesPoint, error)
	GetOrderStatusDistribution(ctx context.Context) (map[order.Status]int, error)
	GetCustomerGrowth(ctx context.Context) ([]analytics.GrowthPoint, error)
	GetTopProducts(ctx context.Context, limit int) ([]analytics.ProductUnits, error)
}

type analyticsServer struct {
	svc Analytics
}

func (s *analyticsServer) salesData(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	period, err := analytics.ParseBucket(in.GetFields()["period"].GetStringValue())
	if err != nil {
		return nil, toStatus(err)
	}
	points, err := s.svc.GetSalesData(ctx, period)
	if err != nil {
		return nil, toStatus(err)
	}
	list := make([]any, len(points))
	for i, p := range points {
		list[i] = map[string]any{"label": p.Label, "amount": p.Amount.StringFixed(2)}
	}
	return structpb.NewStruct(map[string]any{"period": string(period), "points": list})
}

func (s *analyticsServer) statusDistribution(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	dist, err := s.svc.GetOrderStatusDistribution(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	counts := make(map[string]any, len(dist))
	for st, n := range dist {
		counts[string(st)] = n
	}
	return structpb.NewStruct(map[string]any{"counts": counts})
}

func (s *analyticsServer) customerGrowth(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	points, err := s.svc.GetCustomerGrowth(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	list := make([]any, len(points))
	for i, p := range points {
		list[i] = map[string]any{"period": p.Period, "count": p.Count}
	}
	return structpb.NewStruct(map[string]any{"points": list})
}

func (s *analyticsServer) topProducts(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	limit := int(in.GetFields()["limit"].GetNumberValue())
	if limit <= 0 {
		limit = 10
	}
	top, err := s.svc.GetTopProducts(ctx, limit)
	if err != nil {
		return nil, toStatus(err)
	}
	list := make([]any, len(top))
	for i, p := range top {
		list[i] = map[string]any{"product_id": p.ProductID, "name": p.Name, "units_sold": p.UnitsSold}
	}
	return structpb.NewStruct(map[string]any{"products": list})
}

type unaryFunc func(*analyticsServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(method string, fn unaryFunc) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(*analyticsServer)
			if interceptor == nil {
				return fn(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return fn(s, ctx, req.(*structpb.Struct))
			})
		},
	}
}

var analyticsDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetSalesData", (*analyticsServer).salesData),
		unary("GetOrderStatusDistribution", (*analyticsServer).statusDistribution),
		unary("GetCustomerGrowth", (*analyticsServer).customerGrowth),
		unary("GetTopProducts", (*analyticsServer).topProducts),
	},
	Metadata: "storefront/analytics/v1/analytics.proto",
}

func RegisterAnalytics(s *grpc.Server, svc Analytics) {
	s.RegisterService(&analyticsDesc, &analyticsServer{svc: svc})
}
