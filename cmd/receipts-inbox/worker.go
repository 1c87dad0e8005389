package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/receipts-inbox/internal/mq"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume email.received events from RabbitMQ and store receipts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, true)
		if err != nil {
			return err
		}
		defer env.Close()

		consumer, err := mq.NewConsumer(cfg.MQ.URL, mq.Topology{
			Exchange:   cfg.MQ.Exchange,
			Queue:      cfg.MQ.Queue,
			RoutingKey: cfg.MQ.RoutingKey,
		}, env.Processor.HandleJSON, logger)
		if err != nil {
			return err
		}
		defer consumer.Close()

		// gRPC health for orchestrators
		grpcServer := grpc.NewServer()
		hs := health.NewServer()
		healthpb.RegisterHealthServer(grpcServer, hs)
		lis, err := net.Listen("tcp", cfg.Server.HealthAddr)
		if err != nil {
			return eris.Wrap(err, "health listen")
		}

		metricsSrv := &http.Server{
			Addr:              cfg.Server.MetricsAddr,
			Handler:           metricsMux(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("worker.health.serving", zap.String("addr", cfg.Server.HealthAddr))
			return grpcServer.Serve(lis)
		})
		g.Go(func() error {
			logger.Info("worker.metrics.serving", zap.String("addr", cfg.Server.MetricsAddr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
			err := consumer.Run(gctx)
			hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
			return err
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("worker.shutdown")
			hs.Shutdown()
			grpcServer.GracefulStop()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
