package httpapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"soberhaven.org/internal/obs"
)

// GRPCHealth exposes the readiness probe over the standard gRPC health
// protocol so orchestrators can poll either plane.
type GRPCHealth struct {
	healthpb.UnimplementedHealthServer
	probe ReadyProbe
}

func (h *GRPCHealth) Check(ctx context.Context, _ *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if err := h.probe.Check(ctx); err != nil {
		obs.SetReady(false)
		return &healthpb.HealthCheckResponse{
			Status: healthpb.HealthCheckResponse_NOT_SERVING,
		}, nil
	}
	obs.SetReady(true)
	return &healthpb.HealthCheckResponse{
		Status: healthpb.HealthCheckResponse_SERVING,
	}, nil
}

func (h *GRPCHealth) Watch(_ *healthpb.HealthCheckRequest, _ healthpb.Health_WatchServer) error {
	return status.Error(codes.Unimplemented, "health watch is not supported")
}

// NewGRPCServer builds the gRPC plane with the health service registered.
func NewGRPCServer(probe ReadyProbe) *grpc.Server {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, &GRPCHealth{probe: probe})
	return srv
}
