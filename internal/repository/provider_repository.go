package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/service-marketplace/internal/model"
)

type ProviderRepository interface {
	WithTx(tx *gorm.DB) ProviderRepository

	GetByID(ctx context.Context, id uuid.UUID) (*model.Provider, error)
}

type GormProviderRepository struct {
	db *gorm.DB
}

func NewGormProviderRepository(db *gorm.DB) *GormProviderRepository {
	return &GormProviderRepository{db: db}
}

func (r *GormProviderRepository) WithTx(tx *gorm.DB) ProviderRepository {
	return &GormProviderRepository{db: tx}
}

func (r *GormProviderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	var p model.Provider
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
