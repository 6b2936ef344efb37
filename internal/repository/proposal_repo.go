package repository

import (
	"context"
	"strings"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProposalFilter narrows the review listing. Statuses is the already-split
// status set (the handler splits the comma-joined query value); Search matches
// the client name/company stored inside the proposal document.
type ProposalFilter struct {
	Statuses  []string
	InquiryID *uuid.UUID
	Search    string
	Page      int
	Limit     int
}

type ProposalRepository interface {
	Create(ctx context.Context, proposal *model.Proposal) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Proposal, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Proposal, error)
	FindActiveByInquiry(ctx context.Context, inquiryID uuid.UUID) (*model.Proposal, error)
	List(ctx context.Context, filter ProposalFilter) ([]model.Proposal, int64, error)
	Update(ctx context.Context, proposal *model.Proposal) error
}

type proposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) ProposalRepository {
	return &proposalRepository{db: db}
}

func (r *proposalRepository) Create(ctx context.Context, proposal *model.Proposal) error {
	return GetDB(ctx, r.db).Create(proposal).Error
}

func (r *proposalRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Proposal, error) {
	var proposal model.Proposal
	if err := GetDB(ctx, r.db).First(&proposal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *proposalRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Proposal, error) {
	var proposal model.Proposal
	if err := GetDB(ctx, r.db).
		Preload("Inquiry").Preload("Creator").Preload("Reviewer").
		First(&proposal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &proposal, nil
}

// FindActiveByInquiry returns the inquiry's non-cancelled proposal, if any.
// The one-active-proposal-per-inquiry invariant is enforced against this.
func (r *proposalRepository) FindActiveByInquiry(ctx context.Context, inquiryID uuid.UUID) (*model.Proposal, error) {
	var proposal model.Proposal
	err := GetDB(ctx, r.db).
		Where("inquiry_id = ? AND status <> ?", inquiryID, model.ProposalCancelled).
		Order("created_at DESC").
		First(&proposal).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *proposalRepository) List(ctx context.Context, filter ProposalFilter) ([]model.Proposal, int64, error) {
	var proposals []model.Proposal
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		if len(filter.Statuses) > 0 {
			q = q.Where("status IN ?", filter.Statuses)
		}
		if filter.InquiryID != nil {
			q = q.Where("inquiry_id = ?", *filter.InquiryID)
		}
		if s := strings.TrimSpace(filter.Search); s != "" {
			// client name/company live inside the jsonb document
			q = q.Where("proposal_data->>'clientName' ILIKE ? OR proposal_data->>'clientCompany' ILIKE ?",
				"%"+s+"%", "%"+s+"%")
		}
		return q
	}

	if err := apply(db.Model(&model.Proposal{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := apply(db.Preload("Inquiry").Preload("Creator").Preload("Reviewer")).
		Order("created_at DESC").Offset(offset).Limit(filter.Limit).
		Find(&proposals).Error; err != nil {
		return nil, 0, err
	}

	return proposals, total, nil
}

func (r *proposalRepository) Update(ctx context.Context, proposal *model.Proposal) error {
	return GetDB(ctx, r.db).Save(proposal).Error
}
