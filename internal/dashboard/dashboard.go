package dashboard

import (
	"context"

	"github.com/xela07ax/dash33/internal/infra"
	"github.com/xela07ax/dash33/internal/repository/postgres"
)

// Pool — то, что состоянию нужно от пула соединений. *pgxpool.Pool подходит как есть.
type Pool interface {
	Ping(ctx context.Context) error
	Close()
}

// Dashboard — общее состояние процесса: пул БД и копия конфигурации.
// После создания только читается, поэтому делится между хендлерами без блокировок.
type Dashboard struct {
	cfg  infra.DashboardConfig
	pool Pool
}

// NewDashboard открывает пул по cfg.DatabaseURL и связывает его с конфигом.
// Любая ошибка подключения возвращается как *ConnectionError.
func NewDashboard(ctx context.Context, cfg infra.DashboardConfig) (*Dashboard, error) {
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.Database)
	if err != nil {
		return nil, &ConnectionError{URL: infra.RedactURL(cfg.DatabaseURL), Err: err}
	}
	return New(cfg, pool), nil
}

// New собирает состояние из готового пула (тесты, альтернативные драйверы).
func New(cfg infra.DashboardConfig, pool Pool) *Dashboard {
	return &Dashboard{cfg: cfg, pool: pool}
}

// Config отдает копию, менять общее состояние через нее нельзя.
func (d *Dashboard) Config() infra.DashboardConfig {
	return d.cfg
}

// Ping проверяет доступность базы (health-пробы).
func (d *Dashboard) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

func (d *Dashboard) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}
