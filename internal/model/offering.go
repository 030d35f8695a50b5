package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Состояние предложения услуги.
type OfferingState string

const (
	OfferingStateActive   OfferingState = "active"
	OfferingStateInactive OfferingState = "inactive"
)

func (s OfferingState) Valid() bool {
	return s == OfferingStateActive || s == OfferingStateInactive
}

// offered_services — провайдер предлагает услугу в одной или нескольких локациях.
type OfferedService struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey" json:"offered_service_id"`
	ProviderID uuid.UUID     `gorm:"type:uuid;not null;index" json:"provider_id"`
	ServiceID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"service_id"`
	State      OfferingState `gorm:"type:varchar(16);not null;default:'active';index" json:"state"`

	Description string `gorm:"type:text" json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Locations []Location `gorm:"foreignKey:OfferedServiceID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"locations,omitempty"`

	Provider *Provider `gorm:"foreignKey:ProviderID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Service  *Service  `gorm:"foreignKey:ServiceID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// locations
type Location struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"location_id"`
	District         string    `gorm:"type:varchar(255);not null" json:"district"`
	Region           string    `gorm:"type:varchar(255);not null" json:"region"`
	OfferedServiceID uuid.UUID `gorm:"type:uuid;not null;index" json:"offered_service_id"`
}

// OfferedServiceDetail — предложение вместе с данными услуги и её суперкатегорией.
type OfferedServiceDetail struct {
	OfferedServiceID uuid.UUID     `json:"offered_service_id"`
	ProviderID       uuid.UUID     `json:"provider_id"`
	ServiceID        uuid.UUID     `json:"service_id"`
	State            OfferingState `json:"state"`
	Description      string        `json:"description"`
	Title            string        `json:"title"`
	Price            float64       `json:"price"`
	ImgURL           string        `json:"img_url"`
	SuperCategory    string        `json:"super_category"`

	Locations []Location `gorm:"-" json:"locations"`
}

// ServiceProvider — активное предложение услуги с именем провайдера.
type ServiceProvider struct {
	OfferedServiceID uuid.UUID `json:"offered_service_id"`
	ProviderID       uuid.UUID `json:"provider_id"`
	ServiceID        uuid.UUID `json:"service_id"`
	Description      string    `json:"description"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
}

func (o *OfferedService) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.State == "" {
		o.State = OfferingStateActive
	}
	return nil
}

func (l *Location) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
