package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/types"
)

type stubValidator struct {
	claims *types.TokenClaims
	err    error
}

func (s *stubValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	return s.claims, s.err
}

func setupMiddlewareTest(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", handler, func(c *gin.Context) {
		id, exists := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{
			"authenticated": exists,
			"user_id":       id,
			"is_staff":      c.GetBool("is_staff"),
		})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	valid := &stubValidator{claims: &types.TokenClaims{UserID: userID, Username: "vasya", IsStaff: true}}

	t.Run("missing header", func(t *testing.T) {
		r := setupMiddlewareTest(middleware.AuthMiddleware(valid))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		r := setupMiddlewareTest(middleware.AuthMiddleware(valid))
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejected token", func(t *testing.T) {
		r := setupMiddlewareTest(middleware.AuthMiddleware(&stubValidator{err: errors.New("invalid token")}))
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer bad")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		r := setupMiddlewareTest(middleware.AuthMiddleware(valid))
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
		assert.Contains(t, w.Body.String(), `"is_staff":true`)
	})
}

func TestOptionalAuthMiddleware(t *testing.T) {
	valid := &stubValidator{claims: &types.TokenClaims{UserID: uuid.New(), Username: "vasya"}}

	t.Run("anonymous passes through", func(t *testing.T) {
		r := setupMiddlewareTest(middleware.OptionalAuthMiddleware(valid))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":false`)
	})

	t.Run("invalid token passes through anonymously", func(t *testing.T) {
		r := setupMiddlewareTest(middleware.OptionalAuthMiddleware(&stubValidator{err: errors.New("invalid token")}))
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer bad")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":false`)
	})

	t.Run("valid token resolves the viewer", func(t *testing.T) {
		r := setupMiddlewareTest(middleware.OptionalAuthMiddleware(valid))
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":true`)
	})
}
