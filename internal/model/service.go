package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// super_categories — корень каталога.
type SuperCategory struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"super_category_id"`
	Title       string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	ImgURL      string    `gorm:"type:varchar(512)" json:"img_url"`

	Categories []Category `gorm:"foreignKey:SuperCategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// categories
type Category struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"category_id"`
	SuperCategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"super_category_id"`
	Title           string    `gorm:"type:varchar(255);not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	ImgURL          string    `gorm:"type:varchar(512)" json:"img_url"`

	SuperCategory *SuperCategory `gorm:"foreignKey:SuperCategoryID" json:"-"`
}

// services
type Service struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"service_id"`
	CategoryID  uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	ImgURL      string    `gorm:"type:varchar(512)" json:"img_url"`

	// Базовую услугу может предлагать любой провайдер без явного разрешения.
	IsBasic bool `gorm:"not null;default:false;index" json:"is_basic"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// permitted_services — разрешение провайдеру предлагать небазовую услугу.
type PermittedService struct {
	ProviderID uuid.UUID `gorm:"type:uuid;primaryKey" json:"provider_id"`
	ServiceID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"service_id"`

	CreatedAt time.Time `json:"created_at"`

	Provider *Provider `gorm:"foreignKey:ProviderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Service  *Service  `gorm:"foreignKey:ServiceID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// ServiceDetail — услуга, денормализованная заголовками категории и суперкатегории.
// Не таблица: результат join services → categories → super_categories.
type ServiceDetail struct {
	ServiceID                uuid.UUID `json:"service_id"`
	Title                    string    `json:"title"`
	Description              string    `json:"description"`
	Price                    float64   `json:"price"`
	ImgURL                   string    `json:"img_url"`
	IsBasic                  bool      `json:"is_basic"`
	CategoryID               uuid.UUID `json:"category_id"`
	CategoryTitle            string    `json:"category_title"`
	CategoryDescription      string    `json:"category_description"`
	CategoryImgURL           string    `json:"category_img_url"`
	SuperCategoryID          uuid.UUID `json:"super_category_id"`
	SuperCategoryTitle       string    `json:"super_category_title"`
	SuperCategoryDescription string    `json:"super_category_description"`
}

// SuperCategoryServices — суперкатегория с выборкой её услуг.
type SuperCategoryServices struct {
	SuperCategory
	Services []Service `json:"services"`
}

func (s *SuperCategory) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (s *Service) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
