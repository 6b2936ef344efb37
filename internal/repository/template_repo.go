package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TemplateRepository is read-only: templates are maintained out of band and
// the proposal subsystem only looks them up.
type TemplateRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProposalTemplate, error)
	FindByServiceType(ctx context.Context, serviceType string) (*model.ProposalTemplate, error)
	FindDefault(ctx context.Context) (*model.ProposalTemplate, error)
	List(ctx context.Context) ([]model.ProposalTemplate, error)
}

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ProposalTemplate, error) {
	var tpl model.ProposalTemplate
	if err := GetDB(ctx, r.db).First(&tpl, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *templateRepository) FindByServiceType(ctx context.Context, serviceType string) (*model.ProposalTemplate, error) {
	var tpl model.ProposalTemplate
	if err := GetDB(ctx, r.db).
		Where("service_type = ?", serviceType).
		Order("is_default DESC, updated_at DESC").
		First(&tpl).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *templateRepository) FindDefault(ctx context.Context) (*model.ProposalTemplate, error) {
	var tpl model.ProposalTemplate
	if err := GetDB(ctx, r.db).Where("is_default = true").First(&tpl).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *templateRepository) List(ctx context.Context) ([]model.ProposalTemplate, error) {
	var templates []model.ProposalTemplate
	if err := GetDB(ctx, r.db).Order("service_type ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}
