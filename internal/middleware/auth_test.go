package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newTestRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(CtxUserID),
			"role":    c.GetString(CtxUserRole),
		})
	})
	return router
}

func performRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func validClaims(role string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "3e8f9d52-1bb0-4f5c-8f3e-1c2d3e4f5a6b",
		"email": "user@example.com",
		"role":  role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func TestRequireAuthMissingHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := newTestRouter(RequireAuth())

	w := performRequest(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthBadFormat(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := newTestRouter(RequireAuth())

	w := performRequest(router, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthInvalidSignature(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := newTestRouter(RequireAuth())

	token := signToken(t, "other-secret", validClaims(model.RoleCreator))
	w := performRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthExpiredToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := newTestRouter(RequireAuth())

	claims := validClaims(model.RoleCreator)
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	token := signToken(t, "test-secret", claims)

	w := performRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthPassesIdentityToContext(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := newTestRouter(RequireAuth())

	token := signToken(t, "test-secret", validClaims(model.RoleApprover))
	w := performRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), model.RoleApprover)
	assert.Contains(t, w.Body.String(), "3e8f9d52-1bb0-4f5c-8f3e-1c2d3e4f5a6b")
}

func TestRequireRoleRejectsWrongRole(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := newTestRouter(RequireRole(model.RoleApprover))

	token := signToken(t, "test-secret", validClaims(model.RoleCreator))
	w := performRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := newTestRouter(RequireRole(model.RoleCreator, model.RoleApprover))

	token := signToken(t, "test-secret", validClaims(model.RoleCreator))
	w := performRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}
