package grpcapi

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/MikeMC777/storefront-orders/internal/admin"
	"github.com/MikeMC777/storefront-orders/internal/httpx"
	"github.com/MikeMC777/storefront-orders/internal/inventory"
	"github.com/MikeMC777/storefront-orders/internal/order"
)

// NewServer builds a gRPC server with health and analytics registered. Analytics
// calls require administrator credentials; health checks do not.
func NewServer(svc Analytics, auth httpx.Authenticator, log logrus.FieldLogger) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(logging(log), requireAdmin(auth)))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	RegisterAnalytics(srv, svc)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return srv, hs
}

func logging(log logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		res, err := next(ctx, req)
		entry := log.WithFields(logrus.Fields{"method": info.FullMethod, "code": status.Code(err).String()})
		if err != nil {
			entry.WithError(err).Warn("grpc")
		} else {
			entry.Debug("grpc")
		}
		return res, err
	}
}

func requireAdmin(auth httpx.Authenticator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if !strings.HasPrefix(info.FullMethod, "/"+ServiceName+"/") {
			return next(ctx, req)
		}
		email, pw, ok := basicCredentials(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "credentials required")
		}
		if _, err := auth.Authenticate(ctx, email, pw); err != nil {
			if errors.Is(err, admin.ErrInvalidCredentials) {
				return nil, status.Error(codes.Unauthenticated, "invalid credentials")
			}
			return nil, status.Error(codes.Internal, "authentication failed")
		}
		return next(ctx, req)
	}
}

func basicCredentials(ctx context.Context) (string, string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", "", false
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return "", "", false
	}
	enc, ok := strings.CutPrefix(vals[0], "Basic ")
	if !ok {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(raw), ":")
}

// BasicAuth encodes credentials as the authorization metadata value.
func BasicAuth(email, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+password))
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, order.ErrInvalidInput), errors.Is(err, order.ErrInvalidStatus), errors.Is(err, order.ErrEmptyCart):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, order.ErrOrderNotFound), errors.Is(err, inventory.ErrVariantNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, order.ErrIllegalTransition), errors.Is(err, inventory.ErrInsufficientStock):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, order.ErrConcurrentModification):
		return status.Error(codes.Aborted, err.Error())
	}
	return status.Error(codes.Internal, "internal error")
}
