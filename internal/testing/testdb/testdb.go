// Package testdb открывает одноразовые SQLite-базы с полной схемой
// маркетплейса для тестов пакетов.
package testdb

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Leganyst/service-marketplace/internal/model"
)

// New возвращает смигрированную in-memory базу, видимую только вызывающему тесту.
// Внешние ключи проверяются, как в PostgreSQL.
// Пул ограничен одним соединением: новое соединение к in-memory SQLite
// увидело бы пустую схему.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=private&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

// Catalog — небольшой засеянный каталог для тестов.
type Catalog struct {
	Home     model.SuperCategory
	Garden   model.SuperCategory
	Cleaning model.Category
	Repairs  model.Category
	Lawn     model.Category

	// Базовые услуги не требуют разрешения.
	Sweeping model.Service
	Mowing   model.Service
	// Небазовым нужно явное разрешение.
	Plumbing   model.Service
	Electrical model.Service

	ProviderUser  model.User
	Provider      model.Provider
	OtherUser     model.User
	OtherProvider model.Provider
	ClientUser    model.User
	Client        model.Client
}

// Seed вставляет каталог из двух суперкатегорий, двух провайдеров и клиента.
func Seed(t *testing.T, db *gorm.DB) *Catalog {
	t.Helper()

	c := &Catalog{
		Home:   model.SuperCategory{Title: "Home", Description: "In-home services", ImgURL: "/public/sc/home.png"},
		Garden: model.SuperCategory{Title: "Garden", Description: "Outdoor services"},
	}
	mustCreate(t, db, &c.Home)
	mustCreate(t, db, &c.Garden)

	c.Cleaning = model.Category{SuperCategoryID: c.Home.ID, Title: "Cleaning", Description: "Cleaning work"}
	c.Repairs = model.Category{SuperCategoryID: c.Home.ID, Title: "Repairs", Description: "Fixing things"}
	c.Lawn = model.Category{SuperCategoryID: c.Garden.ID, Title: "Lawn", Description: "Grass care"}
	mustCreate(t, db, &c.Cleaning)
	mustCreate(t, db, &c.Repairs)
	mustCreate(t, db, &c.Lawn)

	c.Sweeping = model.Service{CategoryID: c.Cleaning.ID, Title: "Sweeping", Price: 10, IsBasic: true}
	c.Plumbing = model.Service{CategoryID: c.Repairs.ID, Title: "Plumbing", Price: 40}
	c.Electrical = model.Service{CategoryID: c.Repairs.ID, Title: "Electrical", Price: 55}
	c.Mowing = model.Service{CategoryID: c.Lawn.ID, Title: "Mowing", Price: 25, IsBasic: true}
	mustCreate(t, db, &c.Sweeping)
	mustCreate(t, db, &c.Plumbing)
	mustCreate(t, db, &c.Electrical)
	mustCreate(t, db, &c.Mowing)

	c.ProviderUser = model.User{FirstName: "Ana", LastName: "Rojas", Email: "ana@example.com"}
	c.OtherUser = model.User{FirstName: "Luis", LastName: "Perez", Email: "luis@example.com"}
	c.ClientUser = model.User{FirstName: "Eva", LastName: "Soto", Email: "eva@example.com"}
	mustCreate(t, db, &c.ProviderUser)
	mustCreate(t, db, &c.OtherUser)
	mustCreate(t, db, &c.ClientUser)

	c.Provider = model.Provider{UserID: c.ProviderUser.ID}
	c.OtherProvider = model.Provider{UserID: c.OtherUser.ID}
	c.Client = model.Client{UserID: c.ClientUser.ID}
	mustCreate(t, db, &c.Provider)
	mustCreate(t, db, &c.OtherProvider)
	mustCreate(t, db, &c.Client)

	return c
}

// Count — число строк в таблице модели m.
func Count(t *testing.T, db *gorm.DB, m any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(m).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", m, err)
	}
	return n
}

func mustCreate(t *testing.T, db *gorm.DB, v any) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed %T: %v", v, err)
	}
}
