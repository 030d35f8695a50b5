package service

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"gorm.io/gorm"

	"github.com/Leganyst/service-marketplace/internal/db"
	"github.com/Leganyst/service-marketplace/internal/repository"
	"github.com/Leganyst/service-marketplace/internal/testing/testdb"
)

type fixture struct {
	db      *gorm.DB
	catalog *testdb.Catalog

	provisioning *ProvisioningService
	catalogSvc   *CatalogService
	requests     *RequestService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gormDB := testdb.New(t)
	seeded := testdb.Seed(t, gormDB)
	gw := db.NewGateway(gormDB, sql.LevelDefault)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	serviceRepo := repository.NewGormServiceRepository(gormDB)
	categoryRepo := repository.NewGormCategoryRepository(gormDB)
	permissionRepo := repository.NewGormPermissionRepository(gormDB)
	offeringRepo := repository.NewGormOfferingRepository(gormDB)
	providerRepo := repository.NewGormProviderRepository(gormDB)
	requestRepo := repository.NewGormRequestRepository(gormDB)
	clientRepo := repository.NewGormClientRepository(gormDB)

	return &fixture{
		db:           gormDB,
		catalog:      seeded,
		provisioning: NewProvisioningService(gw, serviceRepo, categoryRepo, permissionRepo, offeringRepo, providerRepo, log),
		catalogSvc:   NewCatalogService(gw, serviceRepo, categoryRepo, offeringRepo),
		requests:     NewRequestService(requestRepo, offeringRepo, clientRepo, log),
	}
}
