package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/requests")
	{
		requests.POST("/:id/decide", middleware.RequireRole(model.RoleApprover), h.Decide)
		requests.GET("/:id/approvals", middleware.RequireAuth(), h.History)
	}
}

// Decide handles POST /requests/:id/decide
// @Summary      Decide request
// @Description  Approves or rejects a PENDING request; one decision per request
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                    true  "Request ID"
// @Param        payload  body      service.DecideRequestDTO  true  "Decision Payload"
// @Success      201      {object}  response.Response{data=service.DecisionResult}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /requests/{id}/decide [post]
func (h *ApprovalHandler) Decide(c *gin.Context) {
	var dto service.DecideRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("Invalid request payload: "+err.Error()))
		return
	}

	userID, role := caller(c)
	result, err := h.approvalService.Decide(c.Request.Context(), c.Param("id"), userID, role, dto)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.SuccessMessage(result, "Decision recorded"))
}

// History handles GET /requests/:id/approvals
// @Summary      Approval history
// @Description  Lists decisions for a request in chronological order
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=[]service.ApprovalResponse}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /requests/{id}/approvals [get]
func (h *ApprovalHandler) History(c *gin.Context) {
	userID, role := caller(c)

	approvals, err := h.approvalService.History(c.Request.Context(), c.Param("id"), userID, role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(approvals))
}
