package metrics

import (
	"context"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"github.com/xela07ax/dash33/internal/domain"
	"go.uber.org/zap"
)

// ReliabilitySettings — ретраи и предохранитель вокруг Record.
type ReliabilitySettings struct {
	Attempts            uint          // попыток на один Record
	BaseDelay           time.Duration // задержка перед второй попыткой, дальше x2
	AttemptTimeout      time.Duration // таймаут одной попытки
	ConsecutiveFailures uint32        // после стольких неудачных Record подряд CB открывается
	OpenTimeout         time.Duration // через сколько CB попробует "закрыться"
}

func DefaultReliabilitySettings() ReliabilitySettings {
	return ReliabilitySettings{
		Attempts:            3,
		BaseDelay:           100 * time.Millisecond,
		AttemptTimeout:      2 * time.Second,
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
	}
}

// ReliableStore оборачивает Record в retry внутри circuit breaker. Snapshot проходит напрямую.
type ReliableStore struct {
	next     Store
	cb       *gobreaker.CircuitBreaker
	settings ReliabilitySettings
	logger   *zap.Logger
}

// NewReliableStore. breakerState может быть nil; иначе 0 — закрыт, 0.5 — half-open, 1 — открыт.
func NewReliableStore(next Store, settings ReliabilitySettings, logger *zap.Logger, breakerState prometheus.Gauge) *ReliableStore {
	s := &ReliableStore{
		next:     next,
		settings: settings,
		logger:   logger.Named("reliable-store"),
	}

	s.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "metrics-store",
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			if breakerState != nil {
				breakerState.Set(breakerValue(to))
			}
		},
	})

	return s
}

func breakerValue(st gobreaker.State) float64 {
	switch st {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 0.5
	default:
		return 0
	}
}

// State — текущее состояние предохранителя.
func (s *ReliableStore) State() gobreaker.State {
	return s.cb.State()
}

func (s *ReliableStore) Record(ctx context.Context, u domain.MetricUpdate) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(s.settings.Attempts),
			retry.DelayType(func(n uint, err error, config retry.DelayContext) time.Duration {
				return s.settings.BaseDelay << n
			}),
		)

		var lastErr error
		retryErr := r.Do(func() error {
			tCtx := ctx
			if s.settings.AttemptTimeout > 0 {
				var cancel context.CancelFunc
				tCtx, cancel = context.WithTimeout(ctx, s.settings.AttemptTimeout)
				defer cancel()
			}

			lastErr = s.next.Record(tCtx, u)
			return lastErr
		})
		if retryErr != nil && lastErr != nil {
			// retry склеивает ошибки всех попыток, наружу отдаем последнюю
			return nil, lastErr
		}
		return nil, retryErr
	})
	return err
}

func (s *ReliableStore) Snapshot(ctx context.Context) (domain.Metrics, error) {
	return s.next.Snapshot(ctx)
}
