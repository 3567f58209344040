package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// ScopeMetricsWrite дает право отправлять наблюдения в POST /metrics/update.
const ScopeMetricsWrite = "metrics:write"

type CustomClaims struct {
	UserID string          `json:"user_id"`
	Scopes map[string]bool `json:"scopes"` // "metrics:write": true
	jwt.RegisteredClaims
}

// HasScope проверяет наличие конкретного права в токене.
func (c *CustomClaims) HasScope(scope string) bool {
	return c != nil && c.Scopes[scope]
}
