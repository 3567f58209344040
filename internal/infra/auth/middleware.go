package auth

import (
	"context"
	"net/http"

	"github.com/xela07ax/dash33/internal/domain"
	"go.uber.org/zap"
)

// TokenValidator — все, что умеет разобрать и проверить bearer токен
type TokenValidator interface {
	VerifyToken(tokenStr string) (*domain.CustomClaims, error)
}

type ctxKey string

const claimsKey ctxKey = "claims"

// ClaimsFromContext достает claims, положенные middleware.
func ClaimsFromContext(ctx context.Context) (*domain.CustomClaims, bool) {
	c, ok := ctx.Value(claimsKey).(*domain.CustomClaims)
	return c, ok
}

// NewMiddleware проверяет токен и наличие scope. Пустой scope — достаточно валидного токена.
func NewMiddleware(v TokenValidator, scope string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w)
				return
			}

			claims, err := v.VerifyToken(authHeader)
			if err != nil {
				logger.Warn("auth failure", zap.Error(err))
				unauthorized(w)
				return
			}

			if scope != "" && !claims.HasScope(scope) {
				logger.Warn("missing scope",
					zap.String("user_id", claims.UserID),
					zap.String("scope", scope))
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":{"code":"unauthorized","message":"valid bearer token required"}}`))
}
