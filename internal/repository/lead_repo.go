package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeadRepository interface {
	Create(ctx context.Context, lead *model.Lead) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Lead, error)
	// FindByIDForUpdate row-locks the lead so two sales users cannot claim it
	// at the same time.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Lead, error)
	List(ctx context.Context, status, source string, page, limit int) ([]model.Lead, int64, error)
	Update(ctx context.Context, lead *model.Lead) error
}

type leadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

func (r *leadRepository) Create(ctx context.Context, lead *model.Lead) error {
	return GetDB(ctx, r.db).Create(lead).Error
}

func (r *leadRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	var lead model.Lead
	if err := GetDB(ctx, r.db).Preload("Claimer").First(&lead, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	var lead model.Lead
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&lead, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepository) List(ctx context.Context, status, source string, page, limit int) ([]model.Lead, int64, error) {
	var leads []model.Lead
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		if status != "" {
			q = q.Where("status = ?", status)
		}
		if source != "" {
			q = q.Where("source = ?", source)
		}
		return q
	}

	if err := apply(db.Model(&model.Lead{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := apply(db.Preload("Claimer")).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&leads).Error; err != nil {
		return nil, 0, err
	}

	return leads, total, nil
}

func (r *leadRepository) Update(ctx context.Context, lead *model.Lead) error {
	return GetDB(ctx, r.db).Save(lead).Error
}
