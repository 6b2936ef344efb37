package handler

import (
	"errors"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type LeadHandler struct {
	leadService service.LeadService
}

func NewLeadHandler(leadService service.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

func (h *LeadHandler) RegisterRoutes(router *gin.RouterGroup) {
	leads := router.Group("/api/leads")
	{
		leads.GET("", middleware.RequirePermission("leads.read"), h.ListLeads)
		leads.GET("/:id", middleware.RequirePermission("leads.read"), h.GetLead)
		leads.POST("", middleware.RequirePermission("leads.write"), h.CreateLead)
		leads.POST("/:id/claim", middleware.RequirePermission("leads.write"), h.ClaimLead)
		leads.POST("/:id/convert", middleware.RequirePermission("leads.write"), h.ConvertLead)
		leads.POST("/:id/drop", middleware.RequirePermission("leads.write"), h.DropLead)
	}
}

// ListLeads returns paginated leads with optional status/source filter
// @Summary      List leads
// @Tags         leads
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default: 1)"
// @Param        limit   query     int     false  "Items per page (default: 20)"
// @Param        status  query     string  false  "Filter by status: POOLED, CLAIMED, CONVERTED, DROPPED"
// @Param        source  query     string  false  "Filter by source: WEB, REFERRAL, COLD_CALL, EVENT"
// @Success      200  {object}  response.PaginatedResponse
// @Router       /api/leads [get]
func (h *LeadHandler) ListLeads(c *gin.Context) {
	params := pagination.Parse(c)

	leads, total, err := h.leadService.List(c.Request.Context(), c.Query("status"), c.Query("source"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, leads, params.Page, params.Limit, total))
}

// GetLead returns a single lead
// @Summary      Get lead
// @Tags         leads
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Lead ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/leads/{id} [get]
func (h *LeadHandler) GetLead(c *gin.Context) {
	lead, err := h.leadService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, lead))
}

// CreateLead adds a lead to the shared pool
// @Summary      Create lead
// @Tags         leads
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateLeadRequest  true  "Lead payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/leads [post]
func (h *LeadHandler) CreateLead(c *gin.Context) {
	var req service.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	lead, err := h.leadService.Create(c.Request.Context(), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, lead))
}

// ClaimLead claims a pooled lead for the calling user. Losing a claim race
// returns 409.
// @Summary      Claim lead
// @Tags         leads
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Lead ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/leads/{id}/claim [post]
func (h *LeadHandler) ClaimLead(c *gin.Context) {
	lead, err := h.leadService.Claim(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		h.leadError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, lead))
}

// ConvertLead converts a claimed lead into an inquiry
// @Summary      Convert lead
// @Tags         leads
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Lead ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/leads/{id}/convert [post]
func (h *LeadHandler) ConvertLead(c *gin.Context) {
	lead, inquiry, err := h.leadService.Convert(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		h.leadError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"lead": lead, "inquiry": inquiry}))
}

// DropLead retires a claimed lead without conversion
// @Summary      Drop lead
// @Tags         leads
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Lead ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/leads/{id}/drop [post]
func (h *LeadHandler) DropLead(c *gin.Context) {
	lead, err := h.leadService.Drop(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		h.leadError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, lead))
}

func (h *LeadHandler) leadError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, service.ErrLeadNotPooled),
		errors.Is(err, service.ErrLeadNotClaimed):
		status = http.StatusConflict
	case errors.Is(err, service.ErrNotLeadOwner):
		status = http.StatusForbidden
	}
	c.JSON(status, response.Error(status, err.Error()))
}
