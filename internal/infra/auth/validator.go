package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xela07ax/dash33/internal/domain"
)

// BaseValidator содержит общую логику проверки RS256
type BaseValidator struct {
	publicKey *rsa.PublicKey
}

func NewBaseValidator(pubKey *rsa.PublicKey) *BaseValidator {
	return &BaseValidator{publicKey: pubKey}
}

// NewValidatorFromPEM — удобный конструктор для конфига: PEM прямо из AuthConfig.PublicKey.
func NewValidatorFromPEM(pem []byte) (*BaseValidator, error) {
	key, err := ParseRSAPublicKey(pem)
	if err != nil {
		return nil, err
	}
	return NewBaseValidator(key), nil
}

// VerifyToken реализует интерфейс auth.TokenValidator.
// Принимает как голый токен, так и значение заголовка "Bearer <token>".
// Токен без exp не принимается: бессрочный токен на запись не отозвать.
func (v *BaseValidator) VerifyToken(tokenStr string) (*domain.CustomClaims, error) {
	tokenStr = strings.TrimSpace(strings.TrimPrefix(tokenStr, "Bearer "))

	claims := &domain.CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (interface{}, error) { return v.publicKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// ParseRSAPublicKey превращает []byte в объект для проверки подписи
func ParseRSAPublicKey(data []byte) (*rsa.PublicKey, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("public key data is empty")
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return key, nil
}
