package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/service-marketplace/internal/model"
)

type CategoryRepository interface {
	WithTx(tx *gorm.DB) CategoryRepository

	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	GetSuperCategory(ctx context.Context, id uuid.UUID) (*model.SuperCategory, error)
	ListSuperCategories(ctx context.Context) ([]model.SuperCategory, error)
}

type GormCategoryRepository struct {
	db *gorm.DB
}

func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) WithTx(tx *gorm.DB) CategoryRepository {
	return &GormCategoryRepository{db: tx}
}

func (r *GormCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormCategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *GormCategoryRepository) GetSuperCategory(ctx context.Context, id uuid.UUID) (*model.SuperCategory, error) {
	var sc model.SuperCategory
	if err := r.db.WithContext(ctx).First(&sc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sc, nil
}

func (r *GormCategoryRepository) ListSuperCategories(ctx context.Context) ([]model.SuperCategory, error) {
	superCategories := []model.SuperCategory{}
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&superCategories).Error; err != nil {
		return nil, err
	}
	return superCategories, nil
}
