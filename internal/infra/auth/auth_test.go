package auth_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/xela07ax/dash33/internal/domain"
	"github.com/xela07ax/dash33/internal/infra/auth"
	"go.uber.org/zap"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func publicPEM(t *testing.T, key *rsa.PrivateKey) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

func sign(t *testing.T, key *rsa.PrivateKey, scopes map[string]bool, ttl time.Duration) string {
	t.Helper()
	claims := domain.CustomClaims{
		UserID: "operator-1",
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func signClaims(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestVerifyToken(t *testing.T) {
	key := newKey(t)
	v, err := auth.NewValidatorFromPEM(publicPEM(t, key))
	if err != nil {
		t.Fatalf("NewValidatorFromPEM: %v", err)
	}

	Convey("Given an RS256 validator", t, func() {
		Convey("A valid bearer token should yield its claims", func() {
			claims, err := v.VerifyToken("Bearer " + sign(t, key, map[string]bool{domain.ScopeMetricsWrite: true}, time.Minute))
			So(err, ShouldBeNil)
			So(claims.UserID, ShouldEqual, "operator-1")
			So(claims.HasScope(domain.ScopeMetricsWrite), ShouldBeTrue)
		})

		Convey("An expired token should be rejected", func() {
			_, err := v.VerifyToken(sign(t, key, nil, -time.Minute))
			So(err, ShouldNotBeNil)
		})

		Convey("A token signed by another key should be rejected", func() {
			_, err := v.VerifyToken(sign(t, newKey(t), nil, time.Minute))
			So(err, ShouldNotBeNil)
		})

		Convey("A token without exp should be rejected", func() {
			tok := signClaims(t, jwt.SigningMethodRS256, key, domain.CustomClaims{
				UserID: "operator-1",
				Scopes: map[string]bool{domain.ScopeMetricsWrite: true},
			})
			claims, err := v.VerifyToken("Bearer " + tok)
			So(claims, ShouldBeNil)
			So(errors.Is(err, jwt.ErrTokenRequiredClaimMissing), ShouldBeTrue)
		})

		Convey("A token signed with another algorithm should be rejected", func() {
			tok := signClaims(t, jwt.SigningMethodRS512, key, domain.CustomClaims{
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
			})
			_, err := v.VerifyToken(tok)
			So(errors.Is(err, jwt.ErrTokenSignatureInvalid), ShouldBeTrue)
		})
	})

	Convey("Given empty key material", t, func() {
		_, err := auth.NewValidatorFromPEM(nil)
		So(err, ShouldNotBeNil)
	})
}

func TestMiddleware(t *testing.T) {
	key := newKey(t)
	v, err := auth.NewValidatorFromPEM(publicPEM(t, key))
	if err != nil {
		t.Fatalf("NewValidatorFromPEM: %v", err)
	}

	var seen *domain.CustomClaims
	handler := auth.NewMiddleware(v, domain.ScopeMetricsWrite, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	do := func(header string) int {
		req := httptest.NewRequest(http.MethodPost, "/metrics/update", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	Convey("Given the write-scope middleware", t, func() {
		seen = nil

		Convey("Requests without a token should be rejected", func() {
			So(do(""), ShouldEqual, http.StatusUnauthorized)
		})

		Convey("Tokens without the scope should be rejected", func() {
			So(do("Bearer "+sign(t, key, map[string]bool{"metrics:read": true}, time.Minute)), ShouldEqual, http.StatusUnauthorized)
		})

		Convey("Tokens with the scope should pass and expose claims", func() {
			So(do("Bearer "+sign(t, key, map[string]bool{domain.ScopeMetricsWrite: true}, time.Minute)), ShouldEqual, http.StatusOK)
			So(seen, ShouldNotBeNil)
			So(seen.UserID, ShouldEqual, "operator-1")
		})
	})
}
