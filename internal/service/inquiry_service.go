package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateInquiryRequest struct {
	ContactName           string `json:"contact_name" binding:"required"`
	ContactEmail          string `json:"contact_email" binding:"required,email"`
	ContactPhone          string `json:"contact_phone"`
	CompanyName           string `json:"company_name"`
	SiteAddress           string `json:"site_address"`
	ServiceType           string `json:"service_type"`
	EstimatedMonthlyValue string `json:"estimated_monthly_value"`
	Message               string `json:"message"`
	ClientID              string `json:"client_id"`
	AssignedTo            string `json:"assigned_to"`
}

type UpdateInquiryRequest struct {
	ContactName           *string `json:"contact_name"`
	ContactEmail          *string `json:"contact_email"`
	ContactPhone          *string `json:"contact_phone"`
	CompanyName           *string `json:"company_name"`
	SiteAddress           *string `json:"site_address"`
	ServiceType           *string `json:"service_type"`
	EstimatedMonthlyValue *string `json:"estimated_monthly_value"`
	Status                *string `json:"status"`
	Message               *string `json:"message"`
	AssignedTo            *string `json:"assigned_to"`
}

type InquiryResponse struct {
	ID                    string          `json:"id"`
	ContactName           string          `json:"contact_name"`
	ContactEmail          string          `json:"contact_email"`
	ContactPhone          string          `json:"contact_phone,omitempty"`
	CompanyName           string          `json:"company_name,omitempty"`
	SiteAddress           string          `json:"site_address,omitempty"`
	ServiceType           string          `json:"service_type,omitempty"`
	EstimatedMonthlyValue decimal.Decimal `json:"estimated_monthly_value"`
	Status                string          `json:"status"`
	Message               string          `json:"message,omitempty"`
	ClientID              *string         `json:"client_id"`
	ClientName            string          `json:"client_name,omitempty"`
	AssignedTo            *string         `json:"assigned_to"`
	AssigneeName          string          `json:"assignee_name,omitempty"`
	ProposalID            *string         `json:"proposal_id"`
	CreatedAt             string          `json:"created_at"`
	UpdatedAt             string          `json:"updated_at"`
}

// --- Interface ---

type InquiryService interface {
	Create(ctx context.Context, req CreateInquiryRequest, userID string) (InquiryResponse, error)
	GetByID(ctx context.Context, id string) (InquiryResponse, error)
	List(ctx context.Context, status, search, assignedTo string, page, limit int) ([]InquiryResponse, int64, error)
	Update(ctx context.Context, id string, req UpdateInquiryRequest, userID string) (InquiryResponse, error)
	Delete(ctx context.Context, id, userID string) error
}

type inquiryService struct {
	inquiryRepo repository.InquiryRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewInquiryService(
	inquiryRepo repository.InquiryRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) InquiryService {
	return &inquiryService{
		inquiryRepo: inquiryRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

// --- Implementation ---

func (s *inquiryService) Create(ctx context.Context, req CreateInquiryRequest, userID string) (InquiryResponse, error) {
	if req.ServiceType != "" && !model.IsValidServiceType(req.ServiceType) {
		return InquiryResponse{}, fmt.Errorf("unknown service type: %s", req.ServiceType)
	}

	estimated := decimal.Zero
	if req.EstimatedMonthlyValue != "" {
		parsed, err := decimal.NewFromString(req.EstimatedMonthlyValue)
		if err != nil {
			return InquiryResponse{}, fmt.Errorf("invalid estimated monthly value: %w", err)
		}
		estimated = parsed
	}

	inquiry := model.Inquiry{
		ContactName:           req.ContactName,
		ContactEmail:          req.ContactEmail,
		ContactPhone:          req.ContactPhone,
		CompanyName:           req.CompanyName,
		SiteAddress:           req.SiteAddress,
		ServiceType:           req.ServiceType,
		EstimatedMonthlyValue: estimated,
		Status:                model.InquiryNew,
		Message:               req.Message,
		ClientID:              parseOptionalUUID(req.ClientID),
		AssignedTo:            parseOptionalUUID(req.AssignedTo),
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.inquiryRepo.Create(txCtx, &inquiry); createErr != nil {
			return fmt.Errorf("failed to create inquiry: %w", createErr)
		}
		return s.auditInquiry(txCtx, parseOptionalUUID(userID), model.ActionCreateInquiry, &inquiry)
	})
	if err != nil {
		return InquiryResponse{}, err
	}

	return s.reload(ctx, inquiry.ID)
}

func (s *inquiryService) GetByID(ctx context.Context, id string) (InquiryResponse, error) {
	inquiryID, err := uuid.Parse(id)
	if err != nil {
		return InquiryResponse{}, fmt.Errorf("invalid inquiry id: %w", err)
	}
	return s.reload(ctx, inquiryID)
}

func (s *inquiryService) List(ctx context.Context, status, search, assignedTo string, page, limit int) ([]InquiryResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	inquiries, total, err := s.inquiryRepo.List(ctx, status, search, parseOptionalUUID(assignedTo), page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch inquiries: %w", err)
	}

	result := make([]InquiryResponse, 0, len(inquiries))
	for i := range inquiries {
		result = append(result, toInquiryResponse(&inquiries[i]))
	}
	return result, total, nil
}

func (s *inquiryService) Update(ctx context.Context, id string, req UpdateInquiryRequest, userID string) (InquiryResponse, error) {
	inquiryID, err := uuid.Parse(id)
	if err != nil {
		return InquiryResponse{}, fmt.Errorf("invalid inquiry id: %w", err)
	}

	var inquiry *model.Inquiry
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		inquiry, findErr = s.inquiryRepo.FindByID(txCtx, inquiryID)
		if findErr != nil {
			return fmt.Errorf("inquiry not found: %w", findErr)
		}

		if req.ContactName != nil {
			inquiry.ContactName = *req.ContactName
		}
		if req.ContactEmail != nil {
			inquiry.ContactEmail = *req.ContactEmail
		}
		if req.ContactPhone != nil {
			inquiry.ContactPhone = *req.ContactPhone
		}
		if req.CompanyName != nil {
			inquiry.CompanyName = *req.CompanyName
		}
		if req.SiteAddress != nil {
			inquiry.SiteAddress = *req.SiteAddress
		}
		if req.ServiceType != nil {
			if *req.ServiceType != "" && !model.IsValidServiceType(*req.ServiceType) {
				return fmt.Errorf("unknown service type: %s", *req.ServiceType)
			}
			inquiry.ServiceType = *req.ServiceType
		}
		if req.EstimatedMonthlyValue != nil {
			parsed, parseErr := decimal.NewFromString(*req.EstimatedMonthlyValue)
			if parseErr != nil {
				return fmt.Errorf("invalid estimated monthly value: %w", parseErr)
			}
			inquiry.EstimatedMonthlyValue = parsed
		}
		if req.Status != nil {
			switch *req.Status {
			case model.InquiryNew, model.InquiryContacted, model.InquiryQualified, model.InquiryClosed:
				inquiry.Status = *req.Status
			default:
				return fmt.Errorf("unknown inquiry status: %s", *req.Status)
			}
		}
		if req.Message != nil {
			inquiry.Message = *req.Message
		}
		if req.AssignedTo != nil {
			inquiry.AssignedTo = parseOptionalUUID(*req.AssignedTo)
		}

		if saveErr := s.inquiryRepo.Update(txCtx, inquiry); saveErr != nil {
			return fmt.Errorf("failed to update inquiry: %w", saveErr)
		}
		return s.auditInquiry(txCtx, parseOptionalUUID(userID), model.ActionUpdateInquiry, inquiry)
	})
	if err != nil {
		return InquiryResponse{}, err
	}

	return s.reload(ctx, inquiry.ID)
}

func (s *inquiryService) Delete(ctx context.Context, id, userID string) error {
	inquiryID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid inquiry id: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		inquiry, findErr := s.inquiryRepo.FindByID(txCtx, inquiryID)
		if findErr != nil {
			return fmt.Errorf("inquiry not found: %w", findErr)
		}
		if inquiry.ProposalID != nil {
			return fmt.Errorf("inquiry %s has an active proposal; cancel it first", inquiryID)
		}
		if delErr := s.inquiryRepo.Delete(txCtx, inquiryID); delErr != nil {
			return fmt.Errorf("failed to delete inquiry: %w", delErr)
		}
		return s.auditInquiry(txCtx, parseOptionalUUID(userID), model.ActionDeleteInquiry, inquiry)
	})
}

// --- Helpers ---

func (s *inquiryService) reload(ctx context.Context, id uuid.UUID) (InquiryResponse, error) {
	inquiry, err := s.inquiryRepo.FindByID(ctx, id)
	if err != nil {
		return InquiryResponse{}, fmt.Errorf("failed to reload inquiry: %w", err)
	}
	return toInquiryResponse(inquiry), nil
}

func (s *inquiryService) auditInquiry(ctx context.Context, userID *uuid.UUID, action string, inquiry *model.Inquiry) error {
	details, _ := json.Marshal(map[string]interface{}{
		"status":       inquiry.Status,
		"service_type": inquiry.ServiceType,
	})
	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   inquiry.ID.String(),
		EntityName: inquiry.ContactName,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func toInquiryResponse(i *model.Inquiry) InquiryResponse {
	resp := InquiryResponse{
		ID:                    i.ID.String(),
		ContactName:           i.ContactName,
		ContactEmail:          i.ContactEmail,
		ContactPhone:          i.ContactPhone,
		CompanyName:           i.CompanyName,
		SiteAddress:           i.SiteAddress,
		ServiceType:           i.ServiceType,
		EstimatedMonthlyValue: i.EstimatedMonthlyValue,
		Status:                i.Status,
		Message:               i.Message,
		CreatedAt:             i.CreatedAt.Format(time.RFC3339),
		UpdatedAt:             i.UpdatedAt.Format(time.RFC3339),
	}
	if i.ClientID != nil {
		id := i.ClientID.String()
		resp.ClientID = &id
	}
	if i.Client != nil {
		resp.ClientName = i.Client.Name
	}
	if i.AssignedTo != nil {
		id := i.AssignedTo.String()
		resp.AssignedTo = &id
	}
	if i.Assignee != nil {
		resp.AssigneeName = i.Assignee.Username
	}
	if i.ProposalID != nil {
		id := i.ProposalID.String()
		resp.ProposalID = &id
	}
	return resp
}
