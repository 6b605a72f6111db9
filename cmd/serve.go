package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/reflection"

	"github.com/Leganyst/clinic-booking/internal/db"
	"github.com/Leganyst/clinic-booking/internal/ops"
	"github.com/Leganyst/clinic-booking/internal/service"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gRPC calendar server and the ops HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
				if err := a.migrate(); err != nil {
					return err
				}
			}
			return runServer(cmd.Context(), a)
		},
	}
	cmd.Flags().Bool("migrate", true, "Run schema migrations before serving")
	return cmd
}

func runServer(parent context.Context, a *app) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// gRPC-сервис календаря.
	calendarSvc := service.NewCalendarService(a.slots, a.engine)
	grpcServer, health := service.NewServer(a.logger, []byte(a.cfg.JWTSecret), calendarSvc)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", a.cfg.GRPCAddr)
	if err != nil {
		return err
	}

	opsServer := ops.NewServer(a.cfg.OpsAddr, ops.Config{
		Logger:   a.logger,
		Gatherer: a.registry,
		Ready: func(ctx context.Context) error {
			return db.Ping(ctx, a.db)
		},
	})

	errCh := make(chan error, 2)
	go func() {
		a.logger.Info().Str("addr", a.cfg.GRPCAddr).Msg("gRPC server listening")
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		a.logger.Info().Str("addr", a.cfg.OpsAddr).Msg("ops server listening")
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		a.logger.Error().Err(err).Msg("server stopped unexpectedly")
		stop()
		shutdown(a, grpcServer.GracefulStop, opsServer, health.Shutdown)
		return err
	}

	a.logger.Info().Msg("shutting down")
	shutdown(a, grpcServer.GracefulStop, opsServer, health.Shutdown)
	return nil
}

func shutdown(a *app, stopGRPC func(), opsServer *http.Server, markNotServing func()) {
	markNotServing()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := opsServer.Shutdown(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("ops server shutdown")
	}
	stopGRPC()
}
