package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type InquiryHandler struct {
	inquiryService service.InquiryService
}

func NewInquiryHandler(inquiryService service.InquiryService) *InquiryHandler {
	return &InquiryHandler{inquiryService: inquiryService}
}

func (h *InquiryHandler) RegisterRoutes(router *gin.RouterGroup) {
	inquiries := router.Group("/api/inquiries")
	{
		inquiries.GET("", middleware.RequirePermission("inquiries.read"), h.ListInquiries)
		inquiries.GET("/:id", middleware.RequirePermission("inquiries.read"), h.GetInquiry)
		inquiries.POST("", middleware.RequirePermission("inquiries.write"), h.CreateInquiry)
		inquiries.PUT("/:id", middleware.RequirePermission("inquiries.write"), h.UpdateInquiry)
		inquiries.DELETE("/:id", middleware.RequirePermission("inquiries.write"), h.DeleteInquiry)
	}
}

// ListInquiries returns paginated inquiries with optional filters
// @Summary      List inquiries
// @Tags         inquiries
// @Security     BearerAuth
// @Produce      json
// @Param        page         query     int     false  "Page number (default: 1)"
// @Param        limit        query     int     false  "Items per page (default: 20)"
// @Param        status       query     string  false  "Filter by status: NEW, CONTACTED, QUALIFIED, CLOSED"
// @Param        search       query     string  false  "Search by contact, company, email"
// @Param        assigned_to  query     string  false  "Filter by assigned user ID"
// @Success      200  {object}  response.PaginatedResponse
// @Router       /api/inquiries [get]
func (h *InquiryHandler) ListInquiries(c *gin.Context) {
	params := pagination.Parse(c)

	inquiries, total, err := h.inquiryService.List(c.Request.Context(),
		c.Query("status"), c.Query("search"), c.Query("assigned_to"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, inquiries, params.Page, params.Limit, total))
}

// GetInquiry returns a single inquiry
// @Summary      Get inquiry
// @Tags         inquiries
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Inquiry ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/inquiries/{id} [get]
func (h *InquiryHandler) GetInquiry(c *gin.Context) {
	inquiry, err := h.inquiryService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, inquiry))
}

// CreateInquiry creates a new inquiry
// @Summary      Create inquiry
// @Tags         inquiries
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateInquiryRequest  true  "Inquiry payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/inquiries [post]
func (h *InquiryHandler) CreateInquiry(c *gin.Context) {
	var req service.CreateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	inquiry, err := h.inquiryService.Create(c.Request.Context(), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, inquiry))
}

// UpdateInquiry updates an existing inquiry
// @Summary      Update inquiry
// @Tags         inquiries
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                        true  "Inquiry ID"
// @Param        payload  body  service.UpdateInquiryRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/inquiries/{id} [put]
func (h *InquiryHandler) UpdateInquiry(c *gin.Context) {
	var req service.UpdateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	inquiry, err := h.inquiryService.Update(c.Request.Context(), c.Param("id"), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, inquiry))
}

// DeleteInquiry deletes an inquiry (soft delete); blocked while a proposal is active
// @Summary      Delete inquiry
// @Tags         inquiries
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Inquiry ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/inquiries/{id} [delete]
func (h *InquiryHandler) DeleteInquiry(c *gin.Context) {
	if err := h.inquiryService.Delete(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Inquiry deleted successfully"}))
}
