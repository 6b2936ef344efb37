package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InquiryRepository interface {
	Create(ctx context.Context, inquiry *model.Inquiry) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Inquiry, error)
	List(ctx context.Context, status, search string, assignedTo *uuid.UUID, page, limit int) ([]model.Inquiry, int64, error)
	Update(ctx context.Context, inquiry *model.Inquiry) error
	SetServiceType(ctx context.Context, id uuid.UUID, serviceType string) error
	SetProposalID(ctx context.Context, id uuid.UUID, proposalID *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type inquiryRepository struct {
	db *gorm.DB
}

func NewInquiryRepository(db *gorm.DB) InquiryRepository {
	return &inquiryRepository{db: db}
}

func (r *inquiryRepository) Create(ctx context.Context, inquiry *model.Inquiry) error {
	return GetDB(ctx, r.db).Create(inquiry).Error
}

func (r *inquiryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Inquiry, error) {
	var inquiry model.Inquiry
	if err := GetDB(ctx, r.db).Preload("Client").Preload("Assignee").First(&inquiry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inquiry, nil
}

func (r *inquiryRepository) List(ctx context.Context, status, search string, assignedTo *uuid.UUID, page, limit int) ([]model.Inquiry, int64, error) {
	var inquiries []model.Inquiry
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		if status != "" {
			q = q.Where("status = ?", status)
		}
		if assignedTo != nil {
			q = q.Where("assigned_to = ?", *assignedTo)
		}
		if search != "" {
			q = q.Where("contact_name ILIKE ? OR company_name ILIKE ? OR contact_email ILIKE ?",
				"%"+search+"%", "%"+search+"%", "%"+search+"%")
		}
		return q
	}

	if err := apply(db.Model(&model.Inquiry{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := apply(db.Preload("Client").Preload("Assignee")).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&inquiries).Error; err != nil {
		return nil, 0, err
	}

	return inquiries, total, nil
}

func (r *inquiryRepository) Update(ctx context.Context, inquiry *model.Inquiry) error {
	return GetDB(ctx, r.db).Save(inquiry).Error
}

// SetServiceType is the wizard's best-effort write-back of the chosen service
// type onto the owning inquiry.
func (r *inquiryRepository) SetServiceType(ctx context.Context, id uuid.UUID, serviceType string) error {
	return GetDB(ctx, r.db).Model(&model.Inquiry{}).Where("id = ?", id).
		Update("service_type", serviceType).Error
}

// SetProposalID maintains the inquiry's active-proposal back-reference.
// Passing nil clears it (cancellation).
func (r *inquiryRepository) SetProposalID(ctx context.Context, id uuid.UUID, proposalID *uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.Inquiry{}).Where("id = ?", id).
		Update("proposal_id", proposalID).Error
}

func (r *inquiryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Inquiry{}).Error
}
