package infra

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "dash33"
)

// Каналы Pub/Sub (события)
const (
	// RedisChanMetricUpdates — наблюдения из POST /metrics/update для внешних потребителей.
	RedisChanMetricUpdates = RedisNamespace + ":metrics:updates"
)
