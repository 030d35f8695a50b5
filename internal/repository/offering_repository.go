package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/service-marketplace/internal/model"
)

type OfferingRepository interface {
	WithTx(tx *gorm.DB) OfferingRepository

	// Create вставляет только строку предложения, без локаций.
	Create(ctx context.Context, offering *model.OfferedService) error
	// CreateLocations вставляет все локации одним INSERT.
	CreateLocations(ctx context.Context, locations []model.Location) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.OfferedService, error)
	// UpdateState возвращает число затронутых строк.
	UpdateState(ctx context.Context, id uuid.UUID, state model.OfferingState) (int64, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]model.OfferedServiceDetail, error)
	ListLocations(ctx context.Context, offeringIDs []uuid.UUID) ([]model.Location, error)
	ListActiveProviders(ctx context.Context, serviceID uuid.UUID) ([]model.ServiceProvider, error)
}

type GormOfferingRepository struct {
	db *gorm.DB
}

func NewGormOfferingRepository(db *gorm.DB) *GormOfferingRepository {
	return &GormOfferingRepository{db: db}
}

func (r *GormOfferingRepository) WithTx(tx *gorm.DB) OfferingRepository {
	return &GormOfferingRepository{db: tx}
}

func (r *GormOfferingRepository) Create(ctx context.Context, offering *model.OfferedService) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(offering).Error
}

func (r *GormOfferingRepository) CreateLocations(ctx context.Context, locations []model.Location) error {
	if len(locations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&locations).Error
}

func (r *GormOfferingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.OfferedService, error) {
	var o model.OfferedService
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormOfferingRepository) UpdateState(ctx context.Context, id uuid.UUID, state model.OfferingState) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.OfferedService{}).
		Where("id = ?", id).
		Update("state", state)
	return res.RowsAffected, res.Error
}

func (r *GormOfferingRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]model.OfferedServiceDetail, error) {
	offerings := []model.OfferedServiceDetail{}
	err := r.db.WithContext(ctx).
		Table("offered_services").
		Select(`offered_services.id AS offered_service_id,
			offered_services.provider_id AS provider_id,
			offered_services.service_id AS service_id,
			offered_services.state AS state,
			offered_services.description AS description,
			services.title AS title,
			services.price AS price,
			services.img_url AS img_url,
			super_categories.title AS super_category`).
		Joins("JOIN services ON services.id = offered_services.service_id").
		Joins("JOIN categories ON categories.id = services.category_id").
		Joins("JOIN super_categories ON super_categories.id = categories.super_category_id").
		Where("offered_services.provider_id = ?", providerID).
		Order("offered_services.created_at ASC").
		Scan(&offerings).Error
	if err != nil {
		return nil, err
	}
	return offerings, nil
}

func (r *GormOfferingRepository) ListLocations(ctx context.Context, offeringIDs []uuid.UUID) ([]model.Location, error) {
	if len(offeringIDs) == 0 {
		return []model.Location{}, nil
	}
	var locations []model.Location
	err := r.db.WithContext(ctx).
		Where("offered_service_id IN ?", offeringIDs).
		Order("region ASC, district ASC").
		Find(&locations).Error
	if err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *GormOfferingRepository) ListActiveProviders(ctx context.Context, serviceID uuid.UUID) ([]model.ServiceProvider, error) {
	providers := []model.ServiceProvider{}
	err := r.db.WithContext(ctx).
		Table("offered_services").
		Select(`offered_services.id AS offered_service_id,
			offered_services.provider_id AS provider_id,
			offered_services.service_id AS service_id,
			offered_services.description AS description,
			users.first_name AS first_name,
			users.last_name AS last_name`).
		Joins("JOIN providers ON providers.id = offered_services.provider_id").
		Joins("JOIN users ON users.id = providers.user_id").
		Where("offered_services.service_id = ? AND offered_services.state = ?", serviceID, model.OfferingStateActive).
		Order("users.last_name ASC, users.first_name ASC").
		Scan(&providers).Error
	if err != nil {
		return nil, err
	}
	return providers, nil
}
