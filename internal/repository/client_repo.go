package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	Update(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	FindByEmail(ctx context.Context, email string) (*model.Client, error)
	List(ctx context.Context, search string, activeOnly bool, page, limit int) ([]model.Client, int64, error)
	DeleteAddressesByClientID(ctx context.Context, clientID uuid.UUID) error
	CreateAddresses(ctx context.Context, addresses []model.ClientAddress) error
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Create(client).Error
}

func (r *clientRepository) Update(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Save(client).Error
}

func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Client{}).Error
}

func (r *clientRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	if err := GetDB(ctx, r.db).Preload("Addresses").First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) FindByEmail(ctx context.Context, email string) (*model.Client, error) {
	var client model.Client
	if err := GetDB(ctx, r.db).First(&client, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, search string, activeOnly bool, page, limit int) ([]model.Client, int64, error) {
	var clients []model.Client
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		if activeOnly {
			q = q.Where("is_active = true")
		}
		if search != "" {
			q = q.Where("name ILIKE ? OR company_name ILIKE ? OR phone ILIKE ? OR email ILIKE ?",
				"%"+search+"%", "%"+search+"%", "%"+search+"%", "%"+search+"%")
		}
		return q
	}

	if err := apply(db.Model(&model.Client{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := apply(db.Model(&model.Client{}).Preload("Addresses")).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&clients).Error; err != nil {
		return nil, 0, err
	}

	return clients, total, nil
}

func (r *clientRepository) DeleteAddressesByClientID(ctx context.Context, clientID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("client_id = ?", clientID).Delete(&model.ClientAddress{}).Error
}

func (r *clientRepository) CreateAddresses(ctx context.Context, addresses []model.ClientAddress) error {
	if len(addresses) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&addresses).Error
}
