package handler

import (
	"log"
	"net/http"

	"backend/internal/middleware"
	"backend/pkg/apperror"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error to its HTTP status and the uniform
// error envelope. Unclassified errors are logged and collapsed to 500.
func respondError(c *gin.Context, err error) {
	status := apperror.StatusCode(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, response.Error(apperror.PublicMessage(err)))
}

// caller returns the authenticated user's id and role set by RequireAuth.
func caller(c *gin.Context) (id string, role string) {
	return c.GetString(middleware.CtxUserID), c.GetString(middleware.CtxUserRole)
}
