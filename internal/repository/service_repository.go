package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/service-marketplace/internal/model"
)

type ServiceRepository interface {
	// WithTx возвращает репозиторий, работающий внутри транзакции tx.
	WithTx(tx *gorm.DB) ServiceRepository

	GetByID(ctx context.Context, id uuid.UUID) (*model.Service, error)
	Create(ctx context.Context, service *model.Service) error
	// IsBasic читает флаг базовой услуги; gorm.ErrRecordNotFound, если услуги нет.
	IsBasic(ctx context.Context, id uuid.UUID) (bool, error)
	ListBasic(ctx context.Context) ([]model.Service, error)

	// Денормализованные выборки services → categories → super_categories.
	ListDetails(ctx context.Context) ([]model.ServiceDetail, error)
	ListDetailsByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.ServiceDetail, error)
	ListDetailsBySuperCategory(ctx context.Context, superCategoryID uuid.UUID) ([]model.ServiceDetail, error)
	ListDetailsBySuperCategoryTitle(ctx context.Context, title string) ([]model.ServiceDetail, error)
	// ListPermitted — базовые услуги плюс явно разрешённые этому провайдеру.
	ListPermitted(ctx context.Context, providerID uuid.UUID) ([]model.ServiceDetail, error)

	// SampleBySuperCategory — до limit случайных услуг суперкатегории.
	SampleBySuperCategory(ctx context.Context, superCategoryID uuid.UUID, limit int) ([]model.Service, error)
}

const serviceDetailColumns = `services.id AS service_id,
	services.title AS title,
	services.description AS description,
	services.price AS price,
	services.img_url AS img_url,
	services.is_basic AS is_basic,
	categories.id AS category_id,
	categories.title AS category_title,
	categories.description AS category_description,
	categories.img_url AS category_img_url,
	super_categories.id AS super_category_id,
	super_categories.title AS super_category_title,
	super_categories.description AS super_category_description`

type GormServiceRepository struct {
	db *gorm.DB
}

func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

func (r *GormServiceRepository) WithTx(tx *gorm.DB) ServiceRepository {
	return &GormServiceRepository{db: tx}
}

func (r *GormServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	var s model.Service
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormServiceRepository) Create(ctx context.Context, service *model.Service) error {
	return r.db.WithContext(ctx).Create(service).Error
}

func (r *GormServiceRepository) IsBasic(ctx context.Context, id uuid.UUID) (bool, error) {
	var s model.Service
	err := r.db.WithContext(ctx).
		Select("id", "is_basic").
		First(&s, "id = ?", id).Error
	if err != nil {
		return false, err
	}
	return s.IsBasic, nil
}

func (r *GormServiceRepository) ListBasic(ctx context.Context) ([]model.Service, error) {
	var services []model.Service
	err := r.db.WithContext(ctx).
		Where("is_basic = ?", true).
		Order("title ASC").
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}

// details строит join в порядке иерархии каталога.
func (r *GormServiceRepository) details(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("services").
		Select(serviceDetailColumns).
		Joins("JOIN categories ON categories.id = services.category_id").
		Joins("JOIN super_categories ON super_categories.id = categories.super_category_id")
}

func (r *GormServiceRepository) scanDetails(q *gorm.DB) ([]model.ServiceDetail, error) {
	details := []model.ServiceDetail{}
	if err := q.Order("services.title ASC").Scan(&details).Error; err != nil {
		return nil, err
	}
	return details, nil
}

func (r *GormServiceRepository) ListDetails(ctx context.Context) ([]model.ServiceDetail, error) {
	return r.scanDetails(r.details(ctx))
}

func (r *GormServiceRepository) ListDetailsByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.ServiceDetail, error) {
	return r.scanDetails(r.details(ctx).Where("categories.id = ?", categoryID))
}

func (r *GormServiceRepository) ListDetailsBySuperCategory(ctx context.Context, superCategoryID uuid.UUID) ([]model.ServiceDetail, error) {
	return r.scanDetails(r.details(ctx).Where("super_categories.id = ?", superCategoryID))
}

func (r *GormServiceRepository) ListDetailsBySuperCategoryTitle(ctx context.Context, title string) ([]model.ServiceDetail, error) {
	return r.scanDetails(r.details(ctx).Where("super_categories.title = ?", title))
}

func (r *GormServiceRepository) ListPermitted(ctx context.Context, providerID uuid.UUID) ([]model.ServiceDetail, error) {
	// Фильтр по провайдеру стоит в условии join, а не в WHERE:
	// разрешения других провайдеров не должны открывать услугу.
	q := r.details(ctx).
		Joins("LEFT JOIN permitted_services ON permitted_services.service_id = services.id AND permitted_services.provider_id = ?", providerID).
		Where("services.is_basic = ? OR permitted_services.provider_id IS NOT NULL", true)
	return r.scanDetails(q)
}

func (r *GormServiceRepository) SampleBySuperCategory(ctx context.Context, superCategoryID uuid.UUID, limit int) ([]model.Service, error) {
	services := []model.Service{}
	err := r.db.WithContext(ctx).
		Select("services.*").
		Joins("JOIN categories ON categories.id = services.category_id").
		Where("categories.super_category_id = ?", superCategoryID).
		Order("RANDOM()").
		Limit(limit).
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}
