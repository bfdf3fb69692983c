// Package server exposes contract extraction and free-form questions over gRPC.
package server

import (
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/contract-extractor/constants"
)

// MaxMessageBytes fits the largest accepted upload plus framing.
const MaxMessageBytes = constants.MaxUploadMB<<20 + 64<<10

// NewGRPCServer returns a server with the contracts service and the standard health service
// registered. The health server is returned so callers can flip it to NOT_SERVING on shutdown.
func NewGRPCServer(svc ContractsServer, logger *slog.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append([]grpc.ServerOption{
		grpc.MaxRecvMsgSize(MaxMessageBytes),
		grpc.MaxSendMsgSize(MaxMessageBytes),
		grpc.UnaryInterceptor(RequestIDInterceptor(logger)),
	}, opts...)
	grpcServer := grpc.NewServer(opts...)

	RegisterContractsServer(grpcServer, svc)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return grpcServer, healthServer
}
