package handler

import (
	"errors"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/internal/wizard"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type WizardHandler struct {
	wizardService service.WizardService
}

func NewWizardHandler(wizardService service.WizardService) *WizardHandler {
	return &WizardHandler{wizardService: wizardService}
}

func (h *WizardHandler) RegisterRoutes(router *gin.RouterGroup) {
	wz := router.Group("/api/wizard", middleware.RequirePermission("proposals.write"))
	{
		wz.POST("/start", h.Start)
		wz.POST("/:session_id/service", h.SelectService)
		wz.POST("/:session_id/fields", h.SetField)
		wz.POST("/:session_id/advance", h.Advance)
		wz.POST("/:session_id/back", h.Back)
		wz.POST("/:session_id/edited", h.MarkEdited)
		wz.POST("/:session_id/save", h.SaveContent)
		wz.POST("/:session_id/submit", h.Submit)
		wz.DELETE("/:session_id", h.Close)
	}
}

type startWizardRequest struct {
	InquiryID string `json:"inquiry_id" binding:"required"`
}

type selectServiceRequest struct {
	ServiceType string `json:"service_type" binding:"required"`
}

// Start opens a wizard session for an inquiry. If the inquiry's proposal was
// disapproved, the session opens in revision mode.
// @Summary      Start proposal wizard
// @Tags         wizard
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  startWizardRequest  true  "Inquiry to propose for"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/wizard/start [post]
func (h *WizardHandler) Start(c *gin.Context) {
	var req startWizardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	state, err := h.wizardService.Start(c.Request.Context(), req.InquiryID, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, state))
}

// SelectService sets the service type and loads its template
// @Summary      Select service type
// @Tags         wizard
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        session_id  path  string                true  "Session ID"
// @Param        payload     body  selectServiceRequest  true  "Service type"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/wizard/{session_id}/service [post]
func (h *WizardHandler) SelectService(c *gin.Context) {
	var req selectServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	state, err := h.wizardService.SelectService(c.Request.Context(), c.Param("session_id"), req.ServiceType)
	h.respond(c, state, err)
}

// SetField updates one client-info field; only that field is re-validated
// @Summary      Set form field
// @Tags         wizard
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        session_id  path  string                   true  "Session ID"
// @Param        payload     body  service.SetFieldRequest  true  "Field name and value"
// @Success      200  {object}  response.Response
// @Router       /api/wizard/{session_id}/fields [post]
func (h *WizardHandler) SetField(c *gin.Context) {
	var req service.SetFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	state, err := h.wizardService.SetField(c.Request.Context(), c.Param("session_id"), req.Name, req.Value)
	h.respond(c, state, err)
}

// Advance moves the wizard one step forward
// @Summary      Advance wizard step
// @Tags         wizard
// @Security     BearerAuth
// @Produce      json
// @Param        session_id  path  string  true  "Session ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/wizard/{session_id}/advance [post]
func (h *WizardHandler) Advance(c *gin.Context) {
	state, err := h.wizardService.Advance(c.Request.Context(), c.Param("session_id"))
	h.respond(c, state, err)
}

// Back moves the wizard one step backwards
// @Summary      Go back one step
// @Tags         wizard
// @Security     BearerAuth
// @Produce      json
// @Param        session_id  path  string  true  "Session ID"
// @Success      200  {object}  response.Response
// @Router       /api/wizard/{session_id}/back [post]
func (h *WizardHandler) Back(c *gin.Context) {
	state, err := h.wizardService.Back(c.Request.Context(), c.Param("session_id"))
	h.respond(c, state, err)
}

// MarkEdited flags the editor content as diverged from the last save
// @Summary      Mark editor dirty
// @Tags         wizard
// @Security     BearerAuth
// @Produce      json
// @Param        session_id  path  string  true  "Session ID"
// @Success      200  {object}  response.Response
// @Router       /api/wizard/{session_id}/edited [post]
func (h *WizardHandler) MarkEdited(c *gin.Context) {
	state, err := h.wizardService.MarkEdited(c.Request.Context(), c.Param("session_id"))
	h.respond(c, state, err)
}

// SaveContent commits the editor content as the clean checkpoint
// @Summary      Save editor content
// @Tags         wizard
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        session_id  path  string                      true  "Session ID"
// @Param        payload     body  service.SaveContentRequest  true  "Editor content"
// @Success      200  {object}  response.Response
// @Router       /api/wizard/{session_id}/save [post]
func (h *WizardHandler) SaveContent(c *gin.Context) {
	var req service.SaveContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	state, err := h.wizardService.SaveContent(c.Request.Context(), c.Param("session_id"), req)
	h.respond(c, state, err)
}

// Submit runs the submit gate and persists the proposal. An unsaved or empty
// buffer, or a submit already in flight, is rejected with 409.
// @Summary      Submit proposal
// @Tags         wizard
// @Security     BearerAuth
// @Produce      json
// @Param        session_id  path  string  true  "Session ID"
// @Success      201  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/wizard/{session_id}/submit [post]
func (h *WizardHandler) Submit(c *gin.Context) {
	proposal, err := h.wizardService.Submit(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			status = http.StatusNotFound
		case errors.Is(err, wizard.ErrSubmitInFlight),
			errors.Is(err, wizard.ErrContentNotSaved),
			errors.Is(err, wizard.ErrContentEmpty):
			status = http.StatusConflict
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, proposal))
}

// Close discards the session without persisting anything
// @Summary      Close wizard session
// @Tags         wizard
// @Security     BearerAuth
// @Produce      json
// @Param        session_id  path  string  true  "Session ID"
// @Success      200  {object}  response.Response
// @Router       /api/wizard/{session_id} [delete]
func (h *WizardHandler) Close(c *gin.Context) {
	if err := h.wizardService.Close(c.Param("session_id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Session closed"}))
}

func (h *WizardHandler) respond(c *gin.Context, state service.WizardStateResponse, err error) {
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, state))
}
