package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/service-marketplace/internal/model"
)

type RequestRepository interface {
	// Создать новую заявку.
	Create(ctx context.Context, request *model.ServiceRequest) error
	// История заявок клиента, новые первыми.
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.ServiceRequestDetail, error)
	// История заявок на предложения провайдера, новые первыми.
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]model.ServiceRequestDetail, error)
}

// Реализация на GORM.
type GormRequestRepository struct {
	db *gorm.DB
}

func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{db: db}
}

func (r *GormRequestRepository) Create(ctx context.Context, request *model.ServiceRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *GormRequestRepository) history(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("service_requests").
		Select(`service_requests.id AS request_id,
			service_requests.client_id AS client_id,
			service_requests.offered_service_id AS offered_service_id,
			offered_services.provider_id AS provider_id,
			offered_services.service_id AS service_id,
			services.title AS title,
			services.price AS price,
			service_requests.scheduled_for AS scheduled_for,
			service_requests.details AS details,
			service_requests.status AS status,
			service_requests.created_at AS created_at`).
		Joins("JOIN offered_services ON offered_services.id = service_requests.offered_service_id").
		Joins("JOIN services ON services.id = offered_services.service_id")
}

func (r *GormRequestRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.ServiceRequestDetail, error) {
	requests := []model.ServiceRequestDetail{}
	err := r.history(ctx).
		Where("service_requests.client_id = ?", clientID).
		Order("service_requests.created_at DESC").
		Scan(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *GormRequestRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]model.ServiceRequestDetail, error) {
	requests := []model.ServiceRequestDetail{}
	err := r.history(ctx).
		Where("offered_services.provider_id = ?", providerID).
		Order("service_requests.created_at DESC").
		Scan(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}
