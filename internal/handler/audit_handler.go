package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/audit-logs", middleware.RequireRole(model.RoleApprover), h.ListAuditLogs)
}

// ListAuditLogs handles GET /audit-logs
// @Summary      List audit logs
// @Description  Paginated audit trail of registrations, request changes and decisions
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        page     query     int     false  "Page number (default 1)"
// @Param        limit    query     int     false  "Items per page (default 10)"
// @Param        action   query     string  false  "Filter by action (e.g. APPROVE_REQUEST)"
// @Param        user_id  query     string  false  "Filter by acting user ID"
// @Success      200    {object}  response.Response{data=object}
// @Failure      400    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Router       /audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), service.AuditLogFilter{
		Action: c.Query("action"),
		UserID: c.Query("user_id"),
		Page:   params.Page,
		Limit:  params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(map[string]interface{}{
		"items": logs,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}
