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

type RequestHandler struct {
	requestService service.RequestService
}

func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/requests")
	{
		requests.POST("", middleware.RequireRole(model.RoleCreator), h.Create)
		requests.GET("", middleware.RequireAuth(), h.List)
		requests.GET("/:id", middleware.RequireAuth(), h.Get)
		requests.PATCH("/:id", middleware.RequireRole(model.RoleCreator), h.Update)
	}
}

// Create handles POST /requests
// @Summary      Create request
// @Description  Creates a new PENDING request owned by the calling CREATOR
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRequestDTO  true  "Create Request Payload"
// @Success      201      {object}  response.Response{data=service.RequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var dto service.CreateRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := caller(c)
	request, err := h.requestService.Create(c.Request.Context(), userID, dto)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.SuccessMessage(request, "Request created"))
}

// List handles GET /requests with pagination and optional status filter
// @Summary      List requests
// @Description  CREATOR sees own requests, APPROVER sees all, newest first
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 10)"
// @Param        status  query     string  false  "Filter by status (PENDING, APPROVED, REJECTED)"
// @Success      200     {object}  response.Response{data=service.RequestPage}
// @Failure      400     {object}  response.Response
// @Failure      401     {object}  response.Response
// @Router       /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	params := pagination.Parse(c)
	filter := service.RequestListFilter{
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	userID, role := caller(c)
	page, err := h.requestService.List(c.Request.Context(), userID, role, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(page))
}

// Get handles GET /requests/:id
// @Summary      Get request by ID
// @Description  Fetch a single request; CREATOR callers may only read their own
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	userID, role := caller(c)

	request, err := h.requestService.Get(c.Request.Context(), c.Param("id"), userID, role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(request))
}

// Update handles PATCH /requests/:id
// @Summary      Update request
// @Description  Updates title/description of an owned PENDING request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                    true  "Request ID"
// @Param        payload  body      service.UpdateRequestDTO  true  "Update Request Payload"
// @Success      200      {object}  response.Response{data=service.RequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /requests/{id} [patch]
func (h *RequestHandler) Update(c *gin.Context) {
	var dto service.UpdateRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("Invalid request payload: "+err.Error()))
		return
	}

	userID, role := caller(c)
	request, err := h.requestService.Update(c.Request.Context(), c.Param("id"), userID, role, dto)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessage(request, "Request updated"))
}
