package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := New(nil, []byte(secret))
	r := gin.New()
	r.GET("/p", s.AuthMiddleware, func(c *gin.Context) {
		c.JSON(200, gin.H{"userId": c.GetString("userId")})
	})
	return r
}

func signToken(t *testing.T, secret string, userID string, expiresAt int64) string {
	t.Helper()
	claims := JWTClaims{
		UserID:         userID,
		StandardClaims: jwt.StandardClaims{ExpiresAt: expiresAt},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	r := protectedRouter("test-secret")

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/p", nil))
		assert.Equal(t, 401, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/p", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		r.ServeHTTP(w, req)
		assert.Equal(t, 401, w.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok := signToken(t, "other-secret", "u1", time.Now().Add(time.Hour).Unix())
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/p", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		r.ServeHTTP(w, req)
		assert.Equal(t, 401, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		tok := signToken(t, "test-secret", "u1", time.Now().Add(-time.Hour).Unix())
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/p", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		r.ServeHTTP(w, req)
		assert.Equal(t, 401, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		tok := signToken(t, "test-secret", "u1", time.Now().Add(time.Hour).Unix())
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/p", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		r.ServeHTTP(w, req)
		assert.Equal(t, 200, w.Code)
		assert.Contains(t, w.Body.String(), "u1")
	})
}
