package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Telemetry struct {
	// Latency: время обработки запроса по маршруту
	RequestDuration *prometheus.HistogramVec

	// Traffic: общее кол-во запросов
	TotalRequests *prometheus.CounterVec

	// Errors: классификация отказов
	ErrorTotal *prometheus.CounterVec

	// Наблюдения из POST /metrics/update (по знаку, не по metric_type — иначе кардинальность от клиента)
	MetricUpdates *prometheus.CounterVec

	// Record в хранилище не удался (запрос при этом успешен)
	RecordFailures prometheus.Counter

	// Saturation: состояние Circuit Breaker хранилища (0 - ок, 1 - выбило)
	StoreBreakerState prometheus.Gauge
}

func NewTelemetry(reg prometheus.Registerer) *Telemetry {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Telemetry{
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dash33_http_request_duration_seconds",
			Help:    "Histogram of request latencies.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"route", "method", "status"}),

		TotalRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "dash33_http_requests_total",
			Help: "Total number of processed requests.",
		}, []string{"route", "method", "status"}),

		ErrorTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "dash33_http_errors_total",
			Help: "Total number of errors by type.",
		}, []string{"type"}), // типы: invalid_json, invalid_payload, rate_limit, snapshot_failed

		MetricUpdates: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "dash33_metric_updates_total",
			Help: "Metric observations received, by sign of the value.",
		}, []string{"sign"}),

		RecordFailures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "dash33_metric_record_failures_total",
			Help: "Observations the metrics store failed to record.",
		}),

		StoreBreakerState: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "dash33_store_circuit_breaker_state",
			Help: "Current state of the metrics store circuit breaker (0=closed, 0.5=half-open, 1=open).",
		}),
	}
}
