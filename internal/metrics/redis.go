package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/dash33/internal/domain"
)

// Publisher — подмножество *redis.Client, нужное для публикации.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// UpdateEvent — формат сообщения в канале обновлений.
type UpdateEvent struct {
	MetricType string         `json:"metric_type"`
	Value      float64        `json:"value"`
	Timestamp  *time.Time     `json:"timestamp,omitempty"`
	Network    domain.Network `json:"network"`
	ReceivedAt time.Time      `json:"received_at"`
}

// RedisPublisher транслирует наблюдения в Pub/Sub, снимок берет у next.
type RedisPublisher struct {
	next    Store
	rdb     Publisher
	channel string
	network domain.Network
	now     func() time.Time
}

func NewRedisPublisher(rdb Publisher, channel string, network domain.Network, next Store) *RedisPublisher {
	return &RedisPublisher{
		next:    next,
		rdb:     rdb,
		channel: channel,
		network: network,
		now:     time.Now,
	}
}

func (p *RedisPublisher) Record(ctx context.Context, u domain.MetricUpdate) error {
	payload, err := json.Marshal(UpdateEvent{
		MetricType: u.MetricType,
		Value:      u.Value,
		Timestamp:  u.Timestamp,
		Network:    p.network,
		ReceivedAt: p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode update: %w", err)
	}

	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish to %s: %w", p.channel, err)
	}

	return p.next.Record(ctx, u)
}

func (p *RedisPublisher) Snapshot(ctx context.Context) (domain.Metrics, error) {
	return p.next.Snapshot(ctx)
}
