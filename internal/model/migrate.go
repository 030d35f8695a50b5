package model

import "gorm.io/gorm"

// AutoMigrate выполняет миграцию всех сущностей ядра маркетплейса.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Client{},
		&Provider{},
		&SuperCategory{},
		&Category{},
		&Service{},
		&PermittedService{},
		&OfferedService{},
		&Location{},
		&ServiceRequest{},
	)
}
