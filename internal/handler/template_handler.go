package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	templateService service.TemplateService
}

func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

func (h *TemplateHandler) RegisterRoutes(router *gin.RouterGroup) {
	templates := router.Group("/api/templates")
	{
		templates.GET("", middleware.RequirePermission("proposals.read"), h.ListTemplates)
		templates.GET("/by-service/:type", middleware.RequirePermission("proposals.read"), h.GetByServiceType)
	}
}

// ListTemplates returns all proposal templates
// @Summary      List templates
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	templates, err := h.templateService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, templates))
}

// GetByServiceType returns the template for a service type (default fallback)
// @Summary      Get template by service type
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Param        type  path  string  true  "Service type"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/templates/by-service/{type} [get]
func (h *TemplateHandler) GetByServiceType(c *gin.Context) {
	tpl, err := h.templateService.GetByServiceType(c.Request.Context(), c.Param("type"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, service.TemplateResponse{
		ID:           tpl.ID.String(),
		Name:         tpl.Name,
		ServiceType:  tpl.ServiceType,
		HTMLTemplate: tpl.HTMLTemplate,
		IsDefault:    tpl.IsDefault,
	}))
}
