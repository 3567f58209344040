package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/xela07ax/dash33/internal/dashboard"
	"github.com/xela07ax/dash33/internal/domain"
	"github.com/xela07ax/dash33/internal/infra/auth"
	"github.com/xela07ax/dash33/internal/metrics"
	"go.uber.org/zap"
)

type Server struct {
	router    *chi.Mux
	logger    *zap.Logger
	state     *dashboard.Dashboard
	telemetry *Telemetry

	// Проверка токенов на запись. nil — маршрут открыт.
	validator auth.TokenValidator

	metricsHandler *MetricsHandler // /metrics, /metrics/update
	healthHandler  *HealthHandler  // /health
	statusHandler  *StatusHandler  // /api/v1/wallet/status
}

// NewServer собирает API. store и telemetry могут быть nil — подставляются заглушки.
func NewServer(
	state *dashboard.Dashboard,
	store metrics.Store,
	logger *zap.Logger,
	telemetry *Telemetry,
	validator auth.TokenValidator,
) *Server {
	if store == nil {
		store = metrics.NewPlaceholderStore()
	}
	if telemetry == nil {
		telemetry = NewTelemetry(nil)
	}
	logger = logger.Named("api")

	s := &Server{
		router:         chi.NewRouter(),
		logger:         logger,
		state:          state,
		telemetry:      telemetry,
		validator:      validator,
		metricsHandler: NewMetricsHandler(store, telemetry, logger),
		healthHandler:  NewHealthHandler(state, logger),
		statusHandler:  NewStatusHandler(state.Config(), validator != nil),
	}

	s.routes()
	return s
}

// CreateRouter — роутер на заглушке хранилища, без auth и с локальными метриками.
func CreateRouter(state *dashboard.Dashboard, logger *zap.Logger) http.Handler {
	return NewServer(state, nil, logger, nil, nil)
}

func (s *Server) routes() {
	r := s.router
	cfg := s.state.Config().API

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(InstrumentMiddleware(s.telemetry, s.logger))
	r.Use(CORSMiddleware(cfg.CORSEnabled))

	// --- 2. Пробы оркестратора (без лимитера) ---
	r.Get("/health", s.healthHandler.Health)

	r.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst), s.telemetry, s.logger))

		// --- 3. Чтение (открыто) ---
		r.Get("/metrics", s.metricsHandler.GetMetrics)
		r.Get("/api/v1/wallet/status", s.statusHandler.Status)

		// --- 4. Запись (RS256 токен, если настроен ключ) ---
		r.Group(func(r chi.Router) {
			if s.validator != nil {
				r.Use(auth.NewMiddleware(s.validator, domain.ScopeMetricsWrite, s.logger))
			}
			r.Post("/metrics/update", s.metricsHandler.UpdateMetrics)
		})
	})
}

// ServeHTTP позволяет использовать Server как стандартный http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
