// Package health транслирует доступность базы в стандартный gRPC health протокол,
// чтобы оркестратор мог пробовать сервис без HTTP.
package health

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName — имя сервиса в grpc.health.v1.Health/Check.
const ServiceName = "dash33"

const probeTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type Reporter struct {
	srv      *health.Server
	db       Pinger
	interval time.Duration
	logger   *zap.Logger
}

func NewReporter(db Pinger, interval time.Duration, logger *zap.Logger) *Reporter {
	srv := health.NewServer()
	// До первой пробы считаем, что не готовы
	srv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	srv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	return &Reporter{
		srv:      srv,
		db:       db,
		interval: interval,
		logger:   logger.Named("health"),
	}
}

// Server — реализация healthpb.HealthServer для регистрации.
func (r *Reporter) Server() *health.Server {
	return r.srv
}

// Probe делает одну проверку базы и обновляет статус. Возвращает true, если база отвечает.
func (r *Reporter) Probe(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	err := r.db.Ping(pctx)
	if err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		r.logger.Warn("database probe failed", zap.Error(err))
	}

	r.srv.SetServingStatus(ServiceName, status)
	r.srv.SetServingStatus("", status)
	return err == nil
}

// Run пробует базу сразу и дальше по тикеру, пока жив ctx.
// При остановке все сервисы переводятся в NOT_SERVING.
func (r *Reporter) Run(ctx context.Context) error {
	interval := r.interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			r.srv.Shutdown()
			return nil
		case <-ticker.C:
			r.Probe(ctx)
		}
	}
}

// NewGRPCServer регистрирует health сервис на новом gRPC сервере.
func NewGRPCServer(r *Reporter, opts ...grpc.ServerOption) *grpc.Server {
	s := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(s, r.Server())
	return s
}
