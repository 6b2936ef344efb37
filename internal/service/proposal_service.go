package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
)

// --- DTOs ---

// SubmitProposalRequest carries the document assembled by the wizard for
// create and revise. Content must already be saved: a dirty buffer never
// reaches this service.
type SubmitProposalRequest struct {
	InquiryID  string             `json:"inquiry_id" binding:"required"`
	TemplateID string             `json:"template_id"`
	Data       model.ProposalData `json:"data" binding:"required"`
}

type ProposalFilter struct {
	Status string // comma-joined status set, e.g. "PENDING,APPROVED"
	Search string
	Page   int
	Limit  int
}

type DisapproveProposalRequest struct {
	Reason string `json:"reason"`
}

type ApproveProposalRequest struct {
	AdminNotes string `json:"admin_notes"`
}

type ClientDecisionRequest struct {
	Accepted bool `json:"accepted"`
}

type ProposalResponse struct {
	ID              string             `json:"id"`
	InquiryID       string             `json:"inquiry_id"`
	TemplateID      *string            `json:"template_id"`
	Status          string             `json:"status"`
	StatusLabel     string             `json:"status_label"`
	Data            model.ProposalData `json:"data"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	AdminNotes      string             `json:"admin_notes,omitempty"`
	PDFURL          string             `json:"pdf_url,omitempty"`
	CreatedByName   string             `json:"created_by_name,omitempty"`
	ReviewedByName  string             `json:"reviewed_by_name,omitempty"`
	ReviewedAt      *string            `json:"reviewed_at,omitempty"`
	SentAt          *string            `json:"sent_at,omitempty"`
	CreatedAt       string             `json:"created_at"`
	UpdatedAt       string             `json:"updated_at"`
}

// --- Interface ---

type ProposalService interface {
	Create(ctx context.Context, req SubmitProposalRequest, userID string) (ProposalResponse, error)
	Revise(ctx context.Context, id string, req SubmitProposalRequest, userID string) (ProposalResponse, error)
	Approve(ctx context.Context, id, adminNotes, userID string) (ProposalResponse, error)
	Disapprove(ctx context.Context, id, reason, userID string) (ProposalResponse, error)
	Send(ctx context.Context, id, userID string) (ProposalResponse, error)
	Cancel(ctx context.Context, id, userID string) (ProposalResponse, error)
	RecordClientDecision(ctx context.Context, id string, accepted bool) (ProposalResponse, error)
	GetByID(ctx context.Context, id string) (ProposalResponse, error)
	List(ctx context.Context, filter ProposalFilter) ([]ProposalResponse, int64, error)
}

type proposalService struct {
	proposalRepo repository.ProposalRepository
	inquiryRepo  repository.InquiryRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	mail         Mailer
	hub          *ws.Hub
}

// Mailer matches the mailer package's interface; declared here so the service
// depends on behavior, not the package.
type Mailer interface {
	SendProposal(ctx context.Context, to, clientName, proposalID string) error
}

func NewProposalService(
	proposalRepo repository.ProposalRepository,
	inquiryRepo repository.InquiryRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	mail Mailer,
	hub *ws.Hub,
) ProposalService {
	return &proposalService{
		proposalRepo: proposalRepo,
		inquiryRepo:  inquiryRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		mail:         mail,
		hub:          hub,
	}
}

// --- Implementation ---

func (s *proposalService) Create(ctx context.Context, req SubmitProposalRequest, userID string) (ProposalResponse, error) {
	inquiryID, err := uuid.Parse(req.InquiryID)
	if err != nil {
		return ProposalResponse{}, fmt.Errorf("invalid inquiry id: %w", err)
	}
	if req.Data.EditedHTMLContent == "" {
		return ProposalResponse{}, errors.New("proposal content is empty")
	}

	creatorID := parseOptionalUUID(userID)

	var proposal model.Proposal
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, findErr := s.inquiryRepo.FindByID(txCtx, inquiryID); findErr != nil {
			return fmt.Errorf("inquiry not found: %w", findErr)
		}

		// One active (non-cancelled) proposal per inquiry.
		if existing, activeErr := s.proposalRepo.FindActiveByInquiry(txCtx, inquiryID); activeErr == nil {
			return fmt.Errorf("inquiry already has an active proposal (%s, status %s)", existing.ID, existing.Status)
		}

		proposal = model.Proposal{
			InquiryID:  inquiryID,
			TemplateID: parseOptionalUUID(req.TemplateID),
			Status:     model.ProposalPending,
			CreatedBy:  creatorID,
		}
		if setErr := proposal.SetData(req.Data); setErr != nil {
			return fmt.Errorf("failed to serialize proposal data: %w", setErr)
		}
		if createErr := s.proposalRepo.Create(txCtx, &proposal); createErr != nil {
			return fmt.Errorf("failed to create proposal: %w", createErr)
		}

		id := proposal.ID
		if linkErr := s.inquiryRepo.SetProposalID(txCtx, inquiryID, &id); linkErr != nil {
			return fmt.Errorf("failed to link proposal to inquiry: %w", linkErr)
		}

		return s.audit(txCtx, creatorID, model.ActionCreateProposal, &proposal, map[string]interface{}{
			"inquiry_id":   inquiryID.String(),
			"service_type": req.Data.ServiceType,
		})
	})
	if err != nil {
		return ProposalResponse{}, err
	}

	s.notify("proposal.submitted", &proposal)
	return s.reload(ctx, proposal.ID)
}

func (s *proposalService) Revise(ctx context.Context, id string, req SubmitProposalRequest, userID string) (ProposalResponse, error) {
	proposalID, err := uuid.Parse(id)
	if err != nil {
		return ProposalResponse{}, fmt.Errorf("invalid proposal id: %w", err)
	}
	if req.Data.EditedHTMLContent == "" {
		return ProposalResponse{}, errors.New("proposal content is empty")
	}

	reviserID := parseOptionalUUID(userID)

	var proposal *model.Proposal
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		proposal, findErr = s.proposalRepo.FindByID(txCtx, proposalID)
		if findErr != nil {
			return fmt.Errorf("proposal not found: %w", findErr)
		}

		// Revision is the only back-edge: it reuses the proposal's identity
		// rather than creating a new row.
		if !model.CanTransition(proposal.Status, model.ProposalPending) {
			return fmt.Errorf("cannot revise a proposal in status %s", proposal.Status)
		}

		if setErr := proposal.SetData(req.Data); setErr != nil {
			return fmt.Errorf("failed to serialize proposal data: %w", setErr)
		}
		proposal.Status = model.ProposalPending
		proposal.RejectionReason = ""
		proposal.ReviewedBy = nil
		proposal.ReviewedAt = nil
		if req.TemplateID != "" {
			proposal.TemplateID = parseOptionalUUID(req.TemplateID)
		}

		if saveErr := s.proposalRepo.Update(txCtx, proposal); saveErr != nil {
			return fmt.Errorf("failed to update proposal: %w", saveErr)
		}

		return s.audit(txCtx, reviserID, model.ActionReviseProposal, proposal, nil)
	})
	if err != nil {
		return ProposalResponse{}, err
	}

	s.notify("proposal.revised", proposal)
	return s.reload(ctx, proposal.ID)
}

func (s *proposalService) Approve(ctx context.Context, id, adminNotes, userID string) (ProposalResponse, error) {
	return s.review(ctx, id, userID, model.ProposalApproved, model.ActionApproveProposal, func(p *model.Proposal) {
		p.AdminNotes = adminNotes
	})
}

func (s *proposalService) Disapprove(ctx context.Context, id, reason, userID string) (ProposalResponse, error) {
	// Checked before any DB work; the backend would reject it anyway.
	if strings.TrimSpace(reason) == "" {
		return ProposalResponse{}, errors.New("a rejection reason is required to disapprove a proposal")
	}
	return s.review(ctx, id, userID, model.ProposalDisapproved, model.ActionDisapproveProposal, func(p *model.Proposal) {
		p.RejectionReason = reason
	})
}

// review performs the shared approve/disapprove transition from PENDING.
func (s *proposalService) review(ctx context.Context, id, userID, target, action string, mutate func(*model.Proposal)) (ProposalResponse, error) {
	proposalID, err := uuid.Parse(id)
	if err != nil {
		return ProposalResponse{}, fmt.Errorf("invalid proposal id: %w", err)
	}
	reviewerID := parseOptionalUUID(userID)

	var proposal *model.Proposal
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		proposal, findErr = s.proposalRepo.FindByID(txCtx, proposalID)
		if findErr != nil {
			return fmt.Errorf("proposal not found: %w", findErr)
		}

		if !model.CanTransition(proposal.Status, target) {
			return fmt.Errorf("cannot move a proposal from %s to %s", proposal.Status, target)
		}

		now := time.Now()
		proposal.Status = target
		proposal.ReviewedBy = reviewerID
		proposal.ReviewedAt = &now
		mutate(proposal)

		if saveErr := s.proposalRepo.Update(txCtx, proposal); saveErr != nil {
			return fmt.Errorf("failed to update proposal: %w", saveErr)
		}

		details := map[string]interface{}{}
		if proposal.RejectionReason != "" && target == model.ProposalDisapproved {
			details["reason"] = proposal.RejectionReason
		}
		return s.audit(txCtx, reviewerID, action, proposal, details)
	})
	if err != nil {
		return ProposalResponse{}, err
	}

	event := "proposal.approved"
	if target == model.ProposalDisapproved {
		event = "proposal.disapproved"
	}
	s.notify(event, proposal)
	return s.reload(ctx, proposal.ID)
}

func (s *proposalService) Send(ctx context.Context, id, userID string) (ProposalResponse, error) {
	proposalID, err := uuid.Parse(id)
	if err != nil {
		return ProposalResponse{}, fmt.Errorf("invalid proposal id: %w", err)
	}
	senderID := parseOptionalUUID(userID)

	var proposal *model.Proposal
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		proposal, findErr = s.proposalRepo.FindByID(txCtx, proposalID)
		if findErr != nil {
			return fmt.Errorf("proposal not found: %w", findErr)
		}

		if !model.CanTransition(proposal.Status, model.ProposalSent) {
			return fmt.Errorf("cannot send a proposal in status %s; it must be approved first", proposal.Status)
		}

		data, dataErr := proposal.Data()
		if dataErr != nil {
			return fmt.Errorf("failed to read proposal data: %w", dataErr)
		}

		// Delivery is external; the transition commits only if the mail
		// service accepted the dispatch.
		if mailErr := s.mail.SendProposal(txCtx, data.ClientEmail, data.ClientName, proposal.ID.String()); mailErr != nil {
			return fmt.Errorf("failed to dispatch proposal email: %w", mailErr)
		}

		now := time.Now()
		proposal.Status = model.ProposalSent
		proposal.SentAt = &now

		if saveErr := s.proposalRepo.Update(txCtx, proposal); saveErr != nil {
			return fmt.Errorf("failed to update proposal: %w", saveErr)
		}

		return s.audit(txCtx, senderID, model.ActionSendProposal, proposal, map[string]interface{}{
			"client_email": data.ClientEmail,
		})
	})
	if err != nil {
		return ProposalResponse{}, err
	}

	s.notify("proposal.sent", proposal)
	return s.reload(ctx, proposal.ID)
}

func (s *proposalService) Cancel(ctx context.Context, id, userID string) (ProposalResponse, error) {
	proposalID, err := uuid.Parse(id)
	if err != nil {
		return ProposalResponse{}, fmt.Errorf("invalid proposal id: %w", err)
	}
	actorID := parseOptionalUUID(userID)

	var proposal *model.Proposal
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		proposal, findErr = s.proposalRepo.FindByID(txCtx, proposalID)
		if findErr != nil {
			return fmt.Errorf("proposal not found: %w", findErr)
		}

		if !model.CanTransition(proposal.Status, model.ProposalCancelled) {
			return fmt.Errorf("cannot cancel a proposal in status %s", proposal.Status)
		}

		proposal.Status = model.ProposalCancelled
		if saveErr := s.proposalRepo.Update(txCtx, proposal); saveErr != nil {
			return fmt.Errorf("failed to update proposal: %w", saveErr)
		}

		// Cancellation frees the inquiry for a new proposal.
		if linkErr := s.inquiryRepo.SetProposalID(txCtx, proposal.InquiryID, nil); linkErr != nil {
			return fmt.Errorf("failed to unlink proposal from inquiry: %w", linkErr)
		}

		return s.audit(txCtx, actorID, model.ActionCancelProposal, proposal, nil)
	})
	if err != nil {
		return ProposalResponse{}, err
	}

	s.notify("proposal.cancelled", proposal)
	return s.reload(ctx, proposal.ID)
}

// RecordClientDecision handles the backend-to-backend callback when the
// client accepts or rejects a sent proposal. The review UI renders these
// statuses but never writes them.
func (s *proposalService) RecordClientDecision(ctx context.Context, id string, accepted bool) (ProposalResponse, error) {
	proposalID, err := uuid.Parse(id)
	if err != nil {
		return ProposalResponse{}, fmt.Errorf("invalid proposal id: %w", err)
	}

	target := model.ProposalRejected
	if accepted {
		target = model.ProposalAccepted
	}

	var proposal *model.Proposal
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		proposal, findErr = s.proposalRepo.FindByID(txCtx, proposalID)
		if findErr != nil {
			return fmt.Errorf("proposal not found: %w", findErr)
		}

		if !model.CanTransition(proposal.Status, target) {
			return fmt.Errorf("cannot record a client decision on a proposal in status %s", proposal.Status)
		}

		proposal.Status = target
		if saveErr := s.proposalRepo.Update(txCtx, proposal); saveErr != nil {
			return fmt.Errorf("failed to update proposal: %w", saveErr)
		}

		return s.audit(txCtx, nil, model.ActionClientDecision, proposal, map[string]interface{}{
			"accepted": accepted,
		})
	})
	if err != nil {
		return ProposalResponse{}, err
	}

	s.notify("proposal.client_decision", proposal)
	return s.reload(ctx, proposal.ID)
}

func (s *proposalService) GetByID(ctx context.Context, id string) (ProposalResponse, error) {
	proposalID, err := uuid.Parse(id)
	if err != nil {
		return ProposalResponse{}, fmt.Errorf("invalid proposal id: %w", err)
	}
	return s.reload(ctx, proposalID)
}

func (s *proposalService) List(ctx context.Context, filter ProposalFilter) ([]ProposalResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.ProposalFilter{
		Search: filter.Search,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	for _, status := range strings.Split(filter.Status, ",") {
		if status = strings.TrimSpace(strings.ToUpper(status)); status != "" {
			repoFilter.Statuses = append(repoFilter.Statuses, status)
		}
	}

	proposals, total, err := s.proposalRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch proposals: %w", err)
	}

	result := make([]ProposalResponse, 0, len(proposals))
	for i := range proposals {
		result = append(result, toProposalResponse(&proposals[i]))
	}
	return result, total, nil
}

// --- Helpers ---

func (s *proposalService) reload(ctx context.Context, id uuid.UUID) (ProposalResponse, error) {
	proposal, err := s.proposalRepo.FindByIDWithRelations(ctx, id)
	if err != nil {
		return ProposalResponse{}, fmt.Errorf("failed to reload proposal: %w", err)
	}
	return toProposalResponse(proposal), nil
}

func (s *proposalService) audit(ctx context.Context, userID *uuid.UUID, action string, proposal *model.Proposal, details map[string]interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["status"] = proposal.Status
	payload, _ := json.Marshal(details)

	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   proposal.ID.String(),
		EntityName: "proposal",
		Details:    string(payload),
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *proposalService) notify(eventType string, proposal *model.Proposal) {
	s.hub.Notify(ws.Event{
		Type:        eventType,
		ProposalID:  proposal.ID.String(),
		InquiryID:   proposal.InquiryID.String(),
		Status:      proposal.Status,
		StatusLabel: model.StatusLabel(proposal.Status),
	})
}

func toProposalResponse(p *model.Proposal) ProposalResponse {
	resp := ProposalResponse{
		ID:              p.ID.String(),
		InquiryID:       p.InquiryID.String(),
		Status:          p.Status,
		StatusLabel:     model.StatusLabel(p.Status),
		RejectionReason: p.RejectionReason,
		AdminNotes:      p.AdminNotes,
		PDFURL:          p.PDFURL,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.Format(time.RFC3339),
	}

	if data, err := p.Data(); err == nil {
		resp.Data = data
	}
	if p.TemplateID != nil {
		id := p.TemplateID.String()
		resp.TemplateID = &id
	}
	if p.Creator != nil {
		resp.CreatedByName = p.Creator.Username
	}
	if p.Reviewer != nil {
		resp.ReviewedByName = p.Reviewer.Username
	}
	if p.ReviewedAt != nil {
		t := p.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &t
	}
	if p.SentAt != nil {
		t := p.SentAt.Format(time.RFC3339)
		resp.SentAt = &t
	}
	return resp
}

func parseOptionalUUID(value string) *uuid.UUID {
	if value == "" {
		return nil
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		return nil
	}
	return &parsed
}
