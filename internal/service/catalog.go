package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/service-marketplace/internal/db"
	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/repository"
)

// BestServicesPerSuperCategory — размер случайной выборки на суперкатегорию.
const BestServicesPerSuperCategory = 5

// CatalogService — чтение каталога. Многошаговые чтения идут одной транзакцией,
// чтобы отдавать согласованный снимок.
type CatalogService struct {
	gw *db.Gateway

	serviceRepo  repository.ServiceRepository
	categoryRepo repository.CategoryRepository
	offeringRepo repository.OfferingRepository
}

func NewCatalogService(
	gw *db.Gateway,
	serviceRepo repository.ServiceRepository,
	categoryRepo repository.CategoryRepository,
	offeringRepo repository.OfferingRepository,
) *CatalogService {
	return &CatalogService{
		gw:           gw,
		serviceRepo:  serviceRepo,
		categoryRepo: categoryRepo,
		offeringRepo: offeringRepo,
	}
}

func (s *CatalogService) ListServices(ctx context.Context) ([]model.ServiceDetail, error) {
	return s.serviceRepo.ListDetails(ctx)
}

func (s *CatalogService) ListServicesByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.ServiceDetail, error) {
	return s.serviceRepo.ListDetailsByCategory(ctx, categoryID)
}

func (s *CatalogService) ListServicesBySuperCategory(ctx context.Context, superCategoryID uuid.UUID) ([]model.ServiceDetail, error) {
	return s.serviceRepo.ListDetailsBySuperCategory(ctx, superCategoryID)
}

func (s *CatalogService) ListServicesBySuperCategoryTitle(ctx context.Context, title string) ([]model.ServiceDetail, error) {
	return s.serviceRepo.ListDetailsBySuperCategoryTitle(ctx, strings.TrimSpace(title))
}

// ListPermittedServices — услуги, которые провайдер может предлагать:
// базовые плюс явно разрешённые именно ему.
func (s *CatalogService) ListPermittedServices(ctx context.Context, providerID uuid.UUID) ([]model.ServiceDetail, error) {
	return s.serviceRepo.ListPermitted(ctx, providerID)
}

func (s *CatalogService) ListBasicServices(ctx context.Context) ([]model.Service, error) {
	return s.serviceRepo.ListBasic(ctx)
}

// SuperCategoriesBestServices для каждой суперкатегории выбирает до
// BestServicesPerSuperCategory случайных услуг. Выборка недетерминирована.
// Любая ошибка подзапроса откатывает всё чтение: частичных результатов нет.
func (s *CatalogService) SuperCategoriesBestServices(ctx context.Context) ([]model.SuperCategoryServices, error) {
	var result []model.SuperCategoryServices

	err := s.gw.InTx(ctx, func(tx *gorm.DB) error {
		superCategories, err := s.categoryRepo.WithTx(tx).ListSuperCategories(ctx)
		if err != nil {
			return err
		}

		services := s.serviceRepo.WithTx(tx)
		acc := make([]model.SuperCategoryServices, 0, len(superCategories))
		for _, sc := range superCategories {
			sample, err := services.SampleBySuperCategory(ctx, sc.ID, BestServicesPerSuperCategory)
			if err != nil {
				return err
			}
			acc = append(acc, model.SuperCategoryServices{SuperCategory: sc, Services: sample})
		}
		result = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListOfferedByProvider возвращает предложения провайдера с их локациями.
func (s *CatalogService) ListOfferedByProvider(ctx context.Context, providerID uuid.UUID) ([]model.OfferedServiceDetail, error) {
	var result []model.OfferedServiceDetail

	err := s.gw.InTx(ctx, func(tx *gorm.DB) error {
		offerings := s.offeringRepo.WithTx(tx)

		list, err := offerings.ListByProvider(ctx, providerID)
		if err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0, len(list))
		for _, o := range list {
			ids = append(ids, o.OfferedServiceID)
		}
		locations, err := offerings.ListLocations(ctx, ids)
		if err != nil {
			return err
		}

		byOffering := make(map[uuid.UUID][]model.Location, len(list))
		for _, loc := range locations {
			byOffering[loc.OfferedServiceID] = append(byOffering[loc.OfferedServiceID], loc)
		}
		for i := range list {
			list[i].Locations = byOffering[list[i].OfferedServiceID]
			if list[i].Locations == nil {
				list[i].Locations = []model.Location{}
			}
		}
		result = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListActiveProviders — провайдеры, активно предлагающие услугу.
func (s *CatalogService) ListActiveProviders(ctx context.Context, serviceID uuid.UUID) ([]model.ServiceProvider, error) {
	return s.offeringRepo.ListActiveProviders(ctx, serviceID)
}

func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	svc, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrServiceNotFound)
	}
	return svc, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	c, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}
	return c, nil
}

func (s *CatalogService) GetSuperCategory(ctx context.Context, id uuid.UUID) (*model.SuperCategory, error) {
	sc, err := s.categoryRepo.GetSuperCategory(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrSuperCategoryNotFound)
	}
	return sc, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *CatalogService) ListSuperCategories(ctx context.Context) ([]model.SuperCategory, error) {
	return s.categoryRepo.ListSuperCategories(ctx)
}
