package handler

import (
	"encoding/base64"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/pdfclient"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProposalHandler struct {
	proposalService service.ProposalService
	pdf             *pdfclient.Client
}

func NewProposalHandler(proposalService service.ProposalService, pdf *pdfclient.Client) *ProposalHandler {
	return &ProposalHandler{proposalService: proposalService, pdf: pdf}
}

func (h *ProposalHandler) RegisterRoutes(router *gin.RouterGroup) {
	proposals := router.Group("/api/proposals")
	{
		proposals.GET("", middleware.RequirePermission("proposals.read"), h.ListProposals)
		proposals.GET("/:id", middleware.RequirePermission("proposals.read"), h.GetProposal)
		proposals.GET("/:id/pdf", middleware.RequirePermission("proposals.read"), h.GetProposalPDF)
		proposals.POST("/:id/approve", middleware.RequirePermission("proposals.review"), h.ApproveProposal)
		proposals.POST("/:id/disapprove", middleware.RequirePermission("proposals.review"), h.DisapproveProposal)
		proposals.POST("/:id/send", middleware.RequirePermission("proposals.write"), h.SendProposal)
		proposals.POST("/:id/cancel", middleware.RequirePermission("proposals.write"), h.CancelProposal)
	}
	// Backend-to-backend callback from the client-facing delivery surface;
	// authenticated by shared secret, not a user session.
	router.POST("/api/proposals/:id/decision", h.RecordClientDecision)
}

// ListProposals returns paginated proposals with optional status/search filter
// @Summary      List proposals
// @Tags         proposals
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default: 1)"
// @Param        limit   query     int     false  "Items per page (default: 20)"
// @Param        status  query     string  false  "Comma-joined status filter, e.g. PENDING,APPROVED"
// @Param        search  query     string  false  "Search by client name"
// @Success      200     {object}  response.PaginatedResponse
// @Router       /api/proposals [get]
func (h *ProposalHandler) ListProposals(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.ProposalFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	proposals, total, err := h.proposalService.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, proposals, params.Page, params.Limit, total))
}

// GetProposal returns a single proposal with its document
// @Summary      Get proposal
// @Tags         proposals
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Proposal ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/proposals/{id} [get]
func (h *ProposalHandler) GetProposal(c *gin.Context) {
	proposal, err := h.proposalService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, proposal))
}

// GetProposalPDF streams the proposal's PDF. A proposal with a stored artifact
// serves that; otherwise the render service generates a one-off preview from
// the saved HTML. A preview already in flight for the same proposal is a no-op.
// @Summary      Get proposal PDF
// @Tags         proposals
// @Security     BearerAuth
// @Produce      application/pdf
// @Param        id  path  string  true  "Proposal ID"
// @Success      200
// @Failure      404  {object}  response.Response
// @Router       /api/proposals/{id}/pdf [get]
func (h *ProposalHandler) GetProposalPDF(c *gin.Context) {
	id := c.Param("id")
	proposal, err := h.proposalService.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	if proposal.PDFURL != "" {
		pdf, fetchErr := h.pdf.Fetch(c.Request.Context(), proposal.PDFURL)
		if fetchErr != nil {
			c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, fetchErr.Error()))
			return
		}
		c.Data(http.StatusOK, "application/pdf", pdf)
		return
	}

	if proposal.Data.EditedHTMLContent == "" {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "proposal has no content to render"))
		return
	}

	encoded, err := h.pdf.RenderPreview(c.Request.Context(), id, proposal.Data.EditedHTMLContent)
	if err == pdfclient.ErrPreviewInFlight {
		c.JSON(http.StatusAccepted, response.Success(http.StatusAccepted, gin.H{"message": "Preview already in progress"}))
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, err.Error()))
		return
	}

	pdf, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, "render service returned invalid document"))
		return
	}
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// ApproveProposal moves a pending proposal to APPROVED
// @Summary      Approve proposal
// @Tags         proposals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                          true   "Proposal ID"
// @Param        payload  body  service.ApproveProposalRequest  false  "Optional admin notes"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/proposals/{id}/approve [post]
func (h *ProposalHandler) ApproveProposal(c *gin.Context) {
	var req service.ApproveProposalRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	proposal, err := h.proposalService.Approve(c.Request.Context(), c.Param("id"), req.AdminNotes, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, proposal))
}

// DisapproveProposal moves a pending proposal to DISAPPROVED; a reason is required
// @Summary      Disapprove proposal
// @Tags         proposals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                             true  "Proposal ID"
// @Param        payload  body  service.DisapproveProposalRequest  true  "Rejection reason"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/proposals/{id}/disapprove [post]
func (h *ProposalHandler) DisapproveProposal(c *gin.Context) {
	var req service.DisapproveProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	proposal, err := h.proposalService.Disapprove(c.Request.Context(), c.Param("id"), req.Reason, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, proposal))
}

// SendProposal dispatches an approved proposal to the client
// @Summary      Send proposal
// @Tags         proposals
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Proposal ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/proposals/{id}/send [post]
func (h *ProposalHandler) SendProposal(c *gin.Context) {
	proposal, err := h.proposalService.Send(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, proposal))
}

// CancelProposal cancels a proposal and frees its inquiry for a new one
// @Summary      Cancel proposal
// @Tags         proposals
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Proposal ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/proposals/{id}/cancel [post]
func (h *ProposalHandler) CancelProposal(c *gin.Context) {
	proposal, err := h.proposalService.Cancel(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, proposal))
}

// RecordClientDecision records the client's accept/reject callback on a sent proposal
// @Summary      Record client decision
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Proposal ID"
// @Param        payload  body  service.ClientDecisionRequest  true  "Decision payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/proposals/{id}/decision [post]
func (h *ProposalHandler) RecordClientDecision(c *gin.Context) {
	var req service.ClientDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	proposal, err := h.proposalService.RecordClientDecision(c.Request.Context(), c.Param("id"), req.Accepted)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, proposal))
}
