package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusConfirmed RequestStatus = "confirmed"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// service_requests — заявка клиента на предложение провайдера.
type ServiceRequest struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"request_id"`
	ClientID         uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	OfferedServiceID uuid.UUID `gorm:"type:uuid;not null;index" json:"offered_service_id"`

	// Дата без времени.
	ScheduledFor datatypes.Date `json:"scheduled_for"`

	// Произвольные детали заявки (адрес, комментарий и т.п.).
	Details datatypes.JSON `json:"details,omitempty"`

	Status RequestStatus `gorm:"type:varchar(32);not null;index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client         *Client         `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	OfferedService *OfferedService `gorm:"foreignKey:OfferedServiceID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// ServiceRequestDetail — заявка с данными предложения и услуги для истории.
type ServiceRequestDetail struct {
	RequestID        uuid.UUID      `json:"request_id"`
	ClientID         uuid.UUID      `json:"client_id"`
	OfferedServiceID uuid.UUID      `json:"offered_service_id"`
	ProviderID       uuid.UUID      `json:"provider_id"`
	ServiceID        uuid.UUID      `json:"service_id"`
	Title            string         `json:"title"`
	Price            float64        `json:"price"`
	ScheduledFor     datatypes.Date `json:"scheduled_for"`
	Details          datatypes.JSON `json:"details,omitempty"`
	Status           RequestStatus  `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
}

func (r *ServiceRequest) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = RequestStatusPending
	}
	return nil
}
