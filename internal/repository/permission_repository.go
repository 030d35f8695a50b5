package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/service-marketplace/internal/model"
)

type PermissionRepository interface {
	WithTx(tx *gorm.DB) PermissionRepository

	Create(ctx context.Context, permission *model.PermittedService) error
	// Exists проверяет разрешение для конкретной пары (провайдер, услуга).
	Exists(ctx context.Context, providerID, serviceID uuid.UUID) (bool, error)
}

type GormPermissionRepository struct {
	db *gorm.DB
}

func NewGormPermissionRepository(db *gorm.DB) *GormPermissionRepository {
	return &GormPermissionRepository{db: db}
}

func (r *GormPermissionRepository) WithTx(tx *gorm.DB) PermissionRepository {
	return &GormPermissionRepository{db: tx}
}

func (r *GormPermissionRepository) Create(ctx context.Context, permission *model.PermittedService) error {
	return r.db.WithContext(ctx).Create(permission).Error
}

func (r *GormPermissionRepository) Exists(ctx context.Context, providerID, serviceID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PermittedService{}).
		Where("provider_id = ? AND service_id = ?", providerID, serviceID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
