package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Provider — исполнитель услуг.
// Привязан к базе пользователей через UserID.
type Provider struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"provider_id"`

	// Внешний ключ на таблицу пользователей.
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	// Краткое описание, специализация и т.п.
	Description string `gorm:"type:text" json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`

	Offerings []OfferedService `gorm:"foreignKey:ProviderID" json:"-"`
}

func (p *Provider) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
