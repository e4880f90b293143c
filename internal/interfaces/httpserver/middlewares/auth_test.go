package middlewares

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/domain"
	authvalidator "promptforge/internal/infrastructure/auth"
)

func newAuthRouter(validator *authvalidator.JWTValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), AuthMiddleware(validator, zerolog.Nop(), "gateway"))
	r.GET("/whoami", func(c *gin.Context) {
		p, _ := PrincipalFromContext(c)
		c.JSON(http.StatusOK, gin.H{"subject": p.Subject, "method": p.AuthMethod, "issuer": p.Issuer})
	})
	return r
}

func TestAuthMiddlewareGatewayHeaders(t *testing.T) {
	r := newAuthRouter(nil)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-User-ID", "42")
	req.Header.Set("X-User-Subject", "alice")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subject":"alice","method":"gateway","issuer":"gateway"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestAuthMiddlewareRejectsAnonymous(t *testing.T) {
	r := newAuthRouter(nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsBearerWithoutValidator(t *testing.T) {
	r := newAuthRouter(nil)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer abc")
	req.Header.Set("X-User-Subject", "alice")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareBearerToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	validator := authvalidator.NewStaticJWTValidator(
		func(*jwt.Token) (interface{}, error) { return &key.PublicKey, nil },
		"https://issuer.test", "", time.Minute, zerolog.Nop(),
	)
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss": "https://issuer.test",
		"sub": "bob",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(key)
	require.NoError(t, err)

	claims, err := validator.Validate(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "bob", claims.Subject)

	r := newAuthRouter(validator)

	t.Run("token only", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"method":"`+string(domain.AuthMethodJWT)+`"`)
		assert.Contains(t, w.Body.String(), `"subject":"bob"`)
	})

	t.Run("conflicting gateway subject", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("X-User-Subject", "mallory")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
