package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Тип для ключа в контексте (избегаем коллизий)
type ctxKey string

const traceIDKey ctxKey = "trace_id"

// TracingMiddleware инициализирует Trace-ID для каждого запроса
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Пытаемся достать ID из заголовка (если пришел от прокси)
		traceID := r.Header.Get("X-Trace-ID")

		// 2. Если его нет — генерируем новый
		if traceID == "" {
			traceID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), traceIDKey, traceID)

		// 3. Возвращаем в ответе, чтобы клиент тоже знал ID своего запроса
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TraceIDFromContext помогает безопасно достать ID в любом месте кода
func TraceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey).(string); ok {
		return id
	}
	return "00000000-0000-0000-0000-000000000000" // Fallback
}

// InstrumentMiddleware пишет RED-метрики и access log по шаблону маршрута chi.
func InstrumentMiddleware(t *Telemetry, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			code := strconv.Itoa(status)
			elapsed := time.Since(start)

			t.TotalRequests.WithLabelValues(route, r.Method, code).Inc()
			t.RequestDuration.WithLabelValues(route, r.Method, code).Observe(elapsed.Seconds())

			logger.Debug("request served",
				zap.String("trace_id", TraceIDFromContext(r.Context())),
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("elapsed", elapsed))
		})
	}
}

// CORSMiddleware: при enabled разрешаем любой origin/метод/заголовок, иначе CORS заголовков нет вовсе.
func CORSMiddleware(enabled bool) func(http.Handler) http.Handler {
	if !enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Trace-ID"},
		MaxAge:         300,
	})
}

// NewLimiter строит глобальный token bucket. rps <= 0 — без ограничения.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, burst)
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// RateLimitMiddleware не ждет токен: лишние запросы сразу получают 429.
func RateLimitMiddleware(limiter *rate.Limiter, t *Telemetry, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				t.ErrorTotal.WithLabelValues("rate_limit").Inc()
				logger.Debug("rate limit exceeded",
					zap.String("trace_id", TraceIDFromContext(r.Context())),
					zap.String("remote", r.RemoteAddr))
				w.Header().Set("Retry-After", "1")
				writeErrorDetails(w, http.StatusTooManyRequests, codeRateLimited, "rate limit exceeded",
					map[string]interface{}{"retry_after_seconds": 1})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
