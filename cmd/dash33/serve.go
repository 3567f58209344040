package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/xela07ax/dash33/internal/api"
	"github.com/xela07ax/dash33/internal/dashboard"
	"github.com/xela07ax/dash33/internal/health"
	"github.com/xela07ax/dash33/internal/infra"
	"github.com/xela07ax/dash33/internal/infra/auth"
	"github.com/xela07ax/dash33/internal/metrics"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the metrics API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			return runServe(cmd.Context(), path)
		},
	}
}

func runServe(parent context.Context, cfgPath string) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := infra.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// SIGINT/SIGTERM отменяют контекст, дальше errgroup гасит все серверы
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Инфраструктура и ресурсы
	state, err := dashboard.NewDashboard(ctx, *cfg)
	if err != nil {
		var connErr *dashboard.ConnectionError
		if errors.As(err, &connErr) {
			logger.Error("database unreachable", zap.String("url", connErr.URL), zap.Error(connErr.Err))
		}
		return err
	}
	defer state.Close()

	return serve(ctx, cfg, state, logger)
}

// serve поднимает API, экспортер, gRPC health и пробы поверх готового состояния и ждет отмены ctx.
func serve(ctx context.Context, cfg *infra.DashboardConfig, state *dashboard.Dashboard, logger *zap.Logger) error {
	// Метрики
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	telemetry := api.NewTelemetry(reg)

	// 2. Хранилище: заглушка, опционально + публикация в Redis через retry/CB
	var store metrics.Store = metrics.NewPlaceholderStore()
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			// Не фатально: публикация пойдет через предохранитель
			logger.Warn("redis unreachable at startup", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		publisher := metrics.NewRedisPublisher(rdb, cfg.Redis.Channel, cfg.Network, store)
		store = metrics.NewReliableStore(publisher, metrics.DefaultReliabilitySettings(), logger, telemetry.StoreBreakerState)
	}

	// 3. Auth на запись
	var validator auth.TokenValidator
	if cfg.Auth.Enabled() {
		v, err := auth.NewValidatorFromPEM(cfg.Auth.PublicKey)
		if err != nil {
			return fmt.Errorf("failed to init auth: %w", err)
		}
		validator = v
	}

	// 4. Серверы
	apiSrv := &http.Server{
		Addr:         cfg.API.Addr(),
		Handler:      api.NewServer(state, store, logger, telemetry, validator),
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	reporter := health.NewReporter(state, cfg.Telemetry.ProbeInterval, logger)

	// Порт gRPC health занимаем до запуска горутин: при ошибке выходим, ничего не оставив работать
	grpcSrv := health.NewGRPCServer(reporter)
	var grpcLis net.Listener
	if cfg.Telemetry.GRPCHealthAddr != "" {
		lis, err := net.Listen("tcp", cfg.Telemetry.GRPCHealthAddr)
		if err != nil {
			return fmt.Errorf("failed to listen gRPC health: %w", err)
		}
		grpcLis = lis
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("dashboard API started",
			zap.String("addr", apiSrv.Addr),
			zap.String("network", cfg.Network.String()),
			zap.String("analytics_level", cfg.AnalyticsLevel.String()),
			zap.Bool("cors", cfg.API.CORSEnabled),
			zap.Bool("auth", validator != nil),
			zap.Bool("redis", cfg.Redis.Enabled()),
			zap.String("ml_model", cfg.ML.ModelName),
			zap.Duration("ml_training_period", cfg.ML.TrainingPeriod()))
		return listenAndServe(apiSrv)
	})

	g.Go(func() error { return reporter.Run(gctx) })

	var metricsSrv *http.Server
	if cfg.Telemetry.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: cfg.Telemetry.MetricsAddr, Handler: mux, ReadTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.Info("prometheus exporter started", zap.String("addr", metricsSrv.Addr))
			return listenAndServe(metricsSrv)
		})
	}

	if grpcLis != nil {
		g.Go(func() error {
			logger.Info("gRPC health server started", zap.String("addr", grpcLis.Addr().String()))
			// GracefulStop мог успеть раньше Serve
			if err := grpcSrv.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc health: %w", err)
			}
			return nil
		})
	}

	// 5. Graceful Shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("dashboard stopping...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := apiSrv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("api shutdown: %w", err))
		}
		if metricsSrv != nil {
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
			}
		}
		grpcSrv.GracefulStop()
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		logger.Error("dashboard exited with error", zap.Error(err))
		return err
	}
	logger.Info("dashboard exited properly")
	return nil
}

func listenAndServe(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	}
	return nil
}
