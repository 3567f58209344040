package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/xela07ax/dash33/internal/domain"
	"github.com/xela07ax/dash33/internal/infra"
	"github.com/xela07ax/dash33/internal/metrics"
	"go.uber.org/zap"
)

const (
	maxUpdateBody = 1 << 20
	healthTimeout = 2 * time.Second
)

type MetricsHandler struct {
	store     metrics.Store
	telemetry *Telemetry
	logger    *zap.Logger
}

func NewMetricsHandler(store metrics.Store, t *Telemetry, logger *zap.Logger) *MetricsHandler {
	return &MetricsHandler{store: store, telemetry: t, logger: logger}
}

// GetMetrics отдает текущий срез. GET /metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.store.Snapshot(r.Context())
	if err != nil {
		h.telemetry.ErrorTotal.WithLabelValues(codeSnapshotFailed).Inc()
		h.logger.Error("failed to build metrics snapshot",
			zap.String("trace_id", TraceIDFromContext(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeSnapshotFailed, "failed to fetch metrics")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// updateRequest — указатели, чтобы отличить отсутствующее поле от нуля.
type updateRequest struct {
	MetricType *string    `json:"metric_type"`
	Value      *float64   `json:"value"`
	Timestamp  *time.Time `json:"timestamp"`
}

// UpdateMetrics принимает наблюдение. POST /metrics/update
// Битый JSON — 400, неверные типы или пропущенные поля — 422, иначе всегда 200 true.
func (h *MetricsHandler) UpdateMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	traceID := TraceIDFromContext(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUpdateBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.telemetry.ErrorTotal.WithLabelValues(codeBodyTooLarge).Inc()
			writeErrorDetails(w, http.StatusRequestEntityTooLarge, codeBodyTooLarge, "request body too large",
				map[string]interface{}{"limit_bytes": tooLarge.Limit})
			return
		}
		h.telemetry.ErrorTotal.WithLabelValues(codeInvalidJSON).Inc()
		writeError(w, http.StatusBadRequest, codeInvalidJSON, "failed to read request body")
		return
	}

	if !json.Valid(body) {
		h.telemetry.ErrorTotal.WithLabelValues(codeInvalidJSON).Inc()
		writeError(w, http.StatusBadRequest, codeInvalidJSON, "request body is not valid JSON")
		return
	}

	var req updateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.telemetry.ErrorTotal.WithLabelValues(codeInvalidPayload).Inc()
		var details map[string]interface{}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			details = map[string]interface{}{"field": typeErr.Field, "expected": typeErr.Type.String()}
		}
		writeErrorDetails(w, http.StatusUnprocessableEntity, codeInvalidPayload, err.Error(), details)
		return
	}
	if req.MetricType == nil || req.Value == nil {
		h.telemetry.ErrorTotal.WithLabelValues(codeInvalidPayload).Inc()
		writeErrorDetails(w, http.StatusUnprocessableEntity, codeInvalidPayload, "metric_type and value are required",
			map[string]interface{}{"required": []string{"metric_type", "value"}})
		return
	}

	update := domain.MetricUpdate{
		MetricType: *req.MetricType,
		Value:      *req.Value,
		Timestamp:  req.Timestamp,
	}

	sign := "non_negative"
	if update.IsNegative() {
		// Отрицательные значения не отклоняем: неясно, дельта это или ошибка клиента
		sign = "negative"
		h.logger.Warn("negative metric value received",
			zap.String("trace_id", traceID),
			zap.String("metric_type", update.MetricType),
			zap.Float64("value", update.Value))
	}
	h.telemetry.MetricUpdates.WithLabelValues(sign).Inc()

	if err := h.store.Record(ctx, update); err != nil {
		h.telemetry.RecordFailures.Inc()
		h.logger.Warn("metric update not recorded",
			zap.String("trace_id", traceID),
			zap.String("metric_type", update.MetricType),
			zap.Error(err))
	} else {
		h.logger.Info("metric update received",
			zap.String("trace_id", traceID),
			zap.String("metric_type", update.MetricType),
			zap.Float64("value", update.Value))
	}

	writeJSON(w, http.StatusOK, true)
}

// Pinger — проверка доступности базы.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logger *zap.Logger
}

func NewHealthHandler(db Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// Health GET /health — 200 если пул отвечает, иначе 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// StatusResponse — статическое описание узла для клиентов дашборда.
type StatusResponse struct {
	Status         string                `json:"status"`
	Network        domain.Network        `json:"network"`
	AnalyticsLevel domain.AnalyticsLevel `json:"analytics_level"`
	Features       []string              `json:"features"`
	AIEnabled      bool                  `json:"ai_enabled"` // аналитики нет, ML конфиг только переносится
}

type StatusHandler struct {
	resp StatusResponse
}

// NewStatusHandler считает ответ один раз: конфигурация после старта не меняется.
func NewStatusHandler(cfg infra.DashboardConfig, authEnabled bool) *StatusHandler {
	features := []string{"metrics"}
	if cfg.Redis.Enabled() {
		features = append(features, "metrics_publish")
	}
	if authEnabled {
		features = append(features, "write_auth")
	}
	return &StatusHandler{resp: StatusResponse{
		Status:         "ready",
		Network:        cfg.Network,
		AnalyticsLevel: cfg.AnalyticsLevel,
		Features:       features,
	}}
}

// Status GET /api/v1/wallet/status
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.resp)
}
