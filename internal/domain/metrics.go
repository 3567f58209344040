package domain

import "time"

// Metrics — снимок состояния системы, который отдает GET /metrics.
type Metrics struct {
	Transactions  uint64  `json:"transactions"`
	ActiveUsers   uint64  `json:"active_users"`
	SystemHealth  float64 `json:"system_health"`  // [0, 1]
	ModelAccuracy float64 `json:"model_accuracy"` // [0, 1]
	APILatency    float64 `json:"api_latency"`    // ms
}

// MetricUpdate — наблюдение, присланное клиентом в POST /metrics/update.
type MetricUpdate struct {
	MetricType string     `json:"metric_type"`
	Value      float64    `json:"value"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}

// IsNegative — отрицательные значения принимаются, но логируются как предупреждение.
func (u MetricUpdate) IsNegative() bool {
	return u.Value < 0
}
