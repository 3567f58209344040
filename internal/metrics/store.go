// Package metrics описывает хранилище метрик дашборда и его реализации.
//
// Хендлеры зависят только от интерфейса Store: сейчас снимок фиксированный,
// а запись наблюдений либо игнорируется, либо уходит в Redis Pub/Sub.
package metrics

import (
	"context"

	"github.com/xela07ax/dash33/internal/domain"
)

// Store — граница между HTTP слоем и будущей аналитикой.
type Store interface {
	// Record принимает наблюдение клиента.
	Record(ctx context.Context, u domain.MetricUpdate) error
	// Snapshot отдает текущий срез метрик.
	Snapshot(ctx context.Context) (domain.Metrics, error)
}

// PlaceholderMetrics — фиксированный срез, пока реальной агрегации нет.
func PlaceholderMetrics() domain.Metrics {
	return domain.Metrics{
		Transactions:  100,
		ActiveUsers:   50,
		SystemHealth:  0.99,
		ModelAccuracy: 0.95,
		APILatency:    50.0,
	}
}

// PlaceholderStore ничего не хранит: Record — no-op, Snapshot — константы.
type PlaceholderStore struct{}

func NewPlaceholderStore() *PlaceholderStore { return &PlaceholderStore{} }

func (PlaceholderStore) Record(context.Context, domain.MetricUpdate) error { return nil }

func (PlaceholderStore) Snapshot(context.Context) (domain.Metrics, error) {
	return PlaceholderMetrics(), nil
}
