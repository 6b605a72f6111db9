package service

import (
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewServer собирает gRPC-сервер с цепочкой recovery -> logging -> auth
// и регистрирует CalendarService и стандартный health-сервис.
func NewServer(logger zerolog.Logger, jwtSecret []byte, svc CalendarServer, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append(opts, grpc.ChainUnaryInterceptor(
		RecoveryInterceptor(logger),
		LoggingInterceptor(logger),
		AuthInterceptor(jwtSecret),
	))
	srv := grpc.NewServer(opts...)

	RegisterCalendarServer(srv, svc)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv, hs
}
