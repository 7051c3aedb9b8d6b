package middleware

import (
	"net/http"
	"os"
	"strings"

	"backend/internal/model"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by RequireAuth for downstream handlers.
const (
	CtxUserID    = "userID"
	CtxUserEmail = "userEmail"
	CtxUserRole  = "userRole"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// parseBearerToken extracts and verifies the JWT from the Authorization
// header, returning its claims. Expiry is enforced by the jwt library.
func parseBearerToken(c *gin.Context) (jwt.MapClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Authorization header is missing"))
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Invalid authorization format. Expected 'Bearer <token>'"))
		return nil, false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Invalid or expired token"))
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Invalid token claims"))
		return nil, false
	}

	return claims, true
}

// authenticate verifies the bearer token and stores the caller's identity
// (id, email, role) in the request context. Aborts on failure.
func authenticate(c *gin.Context) bool {
	claims, ok := parseBearerToken(c)
	if !ok {
		return false
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || !model.ValidRole(role) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Invalid token claims"))
		return false
	}

	c.Set(CtxUserID, sub)
	c.Set(CtxUserEmail, email)
	c.Set(CtxUserRole, role)
	return true
}

// RequireAuth admits any caller with a valid bearer token.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c) {
			return
		}
		c.Next()
	}
}

// RequireRole validates the bearer token and checks that the caller's role
// is in the allowedRoles list.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c) {
			return
		}

		userRole := c.GetString(CtxUserRole)
		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, response.Error("Access denied: insufficient permissions"))
	}
}
