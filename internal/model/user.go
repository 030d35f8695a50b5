package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// users — регистрация и профиль живут вне ядра, здесь только поля для join'ов.
type User struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`

	FirstName string `gorm:"type:varchar(255)" json:"first_name"`
	LastName  string `gorm:"type:varchar(255)" json:"last_name"`
	Email     string `gorm:"type:varchar(255);uniqueIndex" json:"email"`

	// Относительный URL картинки; сам файл хранится снаружи.
	ImgURL string `gorm:"type:varchar(512)" json:"img_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Навигационные поля (опционально)
	Client   *Client   `gorm:"foreignKey:UserID" json:"-"`
	Provider *Provider `gorm:"foreignKey:UserID" json:"-"`
}

// clients
type Client struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"client_id"`

	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (c *Client) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
