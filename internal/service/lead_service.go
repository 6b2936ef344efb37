package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateLeadRequest struct {
	Source         string `json:"source" binding:"required"`
	ContactName    string `json:"contact_name" binding:"required"`
	ContactEmail   string `json:"contact_email"`
	ContactPhone   string `json:"contact_phone"`
	CompanyName    string `json:"company_name"`
	EstimatedValue string `json:"estimated_value"`
	Notes          string `json:"notes"`
}

type LeadResponse struct {
	ID             string          `json:"id"`
	Source         string          `json:"source"`
	ContactName    string          `json:"contact_name"`
	ContactEmail   string          `json:"contact_email,omitempty"`
	ContactPhone   string          `json:"contact_phone,omitempty"`
	CompanyName    string          `json:"company_name,omitempty"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
	Status         string          `json:"status"`
	ClaimedBy      *string         `json:"claimed_by"`
	ClaimerName    string          `json:"claimer_name,omitempty"`
	ClaimedAt      *string         `json:"claimed_at"`
	InquiryID      *string         `json:"inquiry_id"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      string          `json:"created_at"`
}

var (
	ErrLeadNotPooled  = errors.New("lead is not in the pool")
	ErrLeadNotClaimed = errors.New("lead has not been claimed")
	ErrNotLeadOwner   = errors.New("lead is claimed by another user")
)

// --- Interface ---

// LeadService manages the shared lead pool. Claiming takes a row lock so two
// sales users racing for the same lead cannot both win; conversion creates the
// inquiry and retires the lead in one transaction.
type LeadService interface {
	Create(ctx context.Context, req CreateLeadRequest, userID string) (LeadResponse, error)
	GetByID(ctx context.Context, id string) (LeadResponse, error)
	List(ctx context.Context, status, source string, page, limit int) ([]LeadResponse, int64, error)
	Claim(ctx context.Context, id, userID string) (LeadResponse, error)
	Convert(ctx context.Context, id, userID string) (LeadResponse, InquiryResponse, error)
	Drop(ctx context.Context, id, userID string) (LeadResponse, error)
}

type leadService struct {
	leadRepo    repository.LeadRepository
	inquiryRepo repository.InquiryRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewLeadService(
	leadRepo repository.LeadRepository,
	inquiryRepo repository.InquiryRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) LeadService {
	return &leadService{
		leadRepo:    leadRepo,
		inquiryRepo: inquiryRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

// --- Implementation ---

func (s *leadService) Create(ctx context.Context, req CreateLeadRequest, userID string) (LeadResponse, error) {
	switch req.Source {
	case model.LeadSourceWeb, model.LeadSourceReferral, model.LeadSourceColdCall, model.LeadSourceEvent:
	default:
		return LeadResponse{}, fmt.Errorf("unknown lead source: %s", req.Source)
	}

	estimated := decimal.Zero
	if req.EstimatedValue != "" {
		parsed, err := decimal.NewFromString(req.EstimatedValue)
		if err != nil {
			return LeadResponse{}, fmt.Errorf("invalid estimated value: %w", err)
		}
		estimated = parsed
	}

	lead := model.Lead{
		Source:         req.Source,
		ContactName:    req.ContactName,
		ContactEmail:   req.ContactEmail,
		ContactPhone:   req.ContactPhone,
		CompanyName:    req.CompanyName,
		EstimatedValue: estimated,
		Status:         model.LeadPooled,
		Notes:          req.Notes,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.leadRepo.Create(txCtx, &lead); createErr != nil {
			return fmt.Errorf("failed to create lead: %w", createErr)
		}
		return s.auditLead(txCtx, parseOptionalUUID(userID), model.ActionCreateLead, &lead)
	})
	if err != nil {
		return LeadResponse{}, err
	}

	return toLeadResponse(&lead), nil
}

func (s *leadService) GetByID(ctx context.Context, id string) (LeadResponse, error) {
	leadID, err := uuid.Parse(id)
	if err != nil {
		return LeadResponse{}, fmt.Errorf("invalid lead id: %w", err)
	}
	lead, err := s.leadRepo.FindByID(ctx, leadID)
	if err != nil {
		return LeadResponse{}, fmt.Errorf("lead not found: %w", err)
	}
	return toLeadResponse(lead), nil
}

func (s *leadService) List(ctx context.Context, status, source string, page, limit int) ([]LeadResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	leads, total, err := s.leadRepo.List(ctx, status, source, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch leads: %w", err)
	}

	result := make([]LeadResponse, 0, len(leads))
	for i := range leads {
		result = append(result, toLeadResponse(&leads[i]))
	}
	return result, total, nil
}

// Claim takes a pooled lead for the calling user. The row lock makes the
// pooled-status check and the claim write atomic against a concurrent claim.
func (s *leadService) Claim(ctx context.Context, id, userID string) (LeadResponse, error) {
	leadID, err := uuid.Parse(id)
	if err != nil {
		return LeadResponse{}, fmt.Errorf("invalid lead id: %w", err)
	}
	claimerID, err := uuid.Parse(userID)
	if err != nil {
		return LeadResponse{}, fmt.Errorf("invalid user id: %w", err)
	}

	var lead *model.Lead
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		lead, findErr = s.leadRepo.FindByIDForUpdate(txCtx, leadID)
		if findErr != nil {
			return fmt.Errorf("lead not found: %w", findErr)
		}
		if lead.Status != model.LeadPooled {
			return ErrLeadNotPooled
		}

		now := time.Now()
		lead.Status = model.LeadClaimed
		lead.ClaimedBy = &claimerID
		lead.ClaimedAt = &now

		if saveErr := s.leadRepo.Update(txCtx, lead); saveErr != nil {
			return fmt.Errorf("failed to claim lead: %w", saveErr)
		}
		return s.auditLead(txCtx, &claimerID, model.ActionClaimLead, lead)
	})
	if err != nil {
		return LeadResponse{}, err
	}

	return toLeadResponse(lead), nil
}

// Convert turns a claimed lead into an inquiry. Only the claimer may convert;
// the inquiry row, the lead's retirement, and the audit entry commit together.
func (s *leadService) Convert(ctx context.Context, id, userID string) (LeadResponse, InquiryResponse, error) {
	leadID, err := uuid.Parse(id)
	if err != nil {
		return LeadResponse{}, InquiryResponse{}, fmt.Errorf("invalid lead id: %w", err)
	}
	converterID, err := uuid.Parse(userID)
	if err != nil {
		return LeadResponse{}, InquiryResponse{}, fmt.Errorf("invalid user id: %w", err)
	}

	var lead *model.Lead
	var inquiry model.Inquiry
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		lead, findErr = s.leadRepo.FindByIDForUpdate(txCtx, leadID)
		if findErr != nil {
			return fmt.Errorf("lead not found: %w", findErr)
		}
		if lead.Status != model.LeadClaimed {
			return ErrLeadNotClaimed
		}
		if lead.ClaimedBy == nil || *lead.ClaimedBy != converterID {
			return ErrNotLeadOwner
		}

		inquiry = model.Inquiry{
			ContactName:           lead.ContactName,
			ContactEmail:          lead.ContactEmail,
			ContactPhone:          lead.ContactPhone,
			CompanyName:           lead.CompanyName,
			EstimatedMonthlyValue: lead.EstimatedValue,
			Status:                model.InquiryNew,
			Message:               lead.Notes,
			AssignedTo:            &converterID,
		}
		if createErr := s.inquiryRepo.Create(txCtx, &inquiry); createErr != nil {
			return fmt.Errorf("failed to create inquiry from lead: %w", createErr)
		}

		inquiryID := inquiry.ID
		lead.Status = model.LeadConverted
		lead.InquiryID = &inquiryID
		if saveErr := s.leadRepo.Update(txCtx, lead); saveErr != nil {
			return fmt.Errorf("failed to retire lead: %w", saveErr)
		}

		return s.auditLead(txCtx, &converterID, model.ActionConvertLead, lead)
	})
	if err != nil {
		return LeadResponse{}, InquiryResponse{}, err
	}

	return toLeadResponse(lead), toInquiryResponse(&inquiry), nil
}

// Drop retires a claimed lead without conversion. Only the claimer may drop.
func (s *leadService) Drop(ctx context.Context, id, userID string) (LeadResponse, error) {
	leadID, err := uuid.Parse(id)
	if err != nil {
		return LeadResponse{}, fmt.Errorf("invalid lead id: %w", err)
	}
	droppedBy, err := uuid.Parse(userID)
	if err != nil {
		return LeadResponse{}, fmt.Errorf("invalid user id: %w", err)
	}

	var lead *model.Lead
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		lead, findErr = s.leadRepo.FindByIDForUpdate(txCtx, leadID)
		if findErr != nil {
			return fmt.Errorf("lead not found: %w", findErr)
		}
		if lead.Status != model.LeadClaimed {
			return ErrLeadNotClaimed
		}
		if lead.ClaimedBy == nil || *lead.ClaimedBy != droppedBy {
			return ErrNotLeadOwner
		}

		lead.Status = model.LeadDropped
		if saveErr := s.leadRepo.Update(txCtx, lead); saveErr != nil {
			return fmt.Errorf("failed to drop lead: %w", saveErr)
		}
		return s.auditLead(txCtx, &droppedBy, model.ActionDropLead, lead)
	})
	if err != nil {
		return LeadResponse{}, err
	}

	return toLeadResponse(lead), nil
}

// --- Helpers ---

func (s *leadService) auditLead(ctx context.Context, userID *uuid.UUID, action string, lead *model.Lead) error {
	details, _ := json.Marshal(map[string]interface{}{
		"status": lead.Status,
		"source": lead.Source,
	})
	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   lead.ID.String(),
		EntityName: lead.ContactName,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func toLeadResponse(l *model.Lead) LeadResponse {
	resp := LeadResponse{
		ID:             l.ID.String(),
		Source:         l.Source,
		ContactName:    l.ContactName,
		ContactEmail:   l.ContactEmail,
		ContactPhone:   l.ContactPhone,
		CompanyName:    l.CompanyName,
		EstimatedValue: l.EstimatedValue,
		Status:         l.Status,
		Notes:          l.Notes,
		CreatedAt:      l.CreatedAt.Format(time.RFC3339),
	}
	if l.ClaimedBy != nil {
		id := l.ClaimedBy.String()
		resp.ClaimedBy = &id
	}
	if l.Claimer != nil {
		resp.ClaimerName = l.Claimer.Username
	}
	if l.ClaimedAt != nil {
		t := l.ClaimedAt.Format(time.RFC3339)
		resp.ClaimedAt = &t
	}
	if l.InquiryID != nil {
		id := l.InquiryID.String()
		resp.InquiryID = &id
	}
	return resp
}
