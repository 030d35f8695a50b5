package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/service-marketplace/internal/db"
	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/repository"
)

// ProvisioningService — разрешения провайдерам и регистрация предложений.
// Все многошаговые записи идут одной транзакцией через Gateway.
type ProvisioningService struct {
	gw *db.Gateway

	serviceRepo    repository.ServiceRepository
	categoryRepo   repository.CategoryRepository
	permissionRepo repository.PermissionRepository
	offeringRepo   repository.OfferingRepository
	providerRepo   repository.ProviderRepository

	log *slog.Logger
}

func NewProvisioningService(
	gw *db.Gateway,
	serviceRepo repository.ServiceRepository,
	categoryRepo repository.CategoryRepository,
	permissionRepo repository.PermissionRepository,
	offeringRepo repository.OfferingRepository,
	providerRepo repository.ProviderRepository,
	log *slog.Logger,
) *ProvisioningService {
	return &ProvisioningService{
		gw:             gw,
		serviceRepo:    serviceRepo,
		categoryRepo:   categoryRepo,
		permissionRepo: permissionRepo,
		offeringRepo:   offeringRepo,
		providerRepo:   providerRepo,
		log:            log,
	}
}

// GrantPermission разрешает провайдеру предлагать услугу и возвращает
// созданную связь вместе с полной записью услуги.
// Ошибки БД возвращаются как есть, без перевода.
func (s *ProvisioningService) GrantPermission(
	ctx context.Context,
	providerID, serviceID uuid.UUID,
) (*model.PermittedService, *model.Service, error) {
	if providerID == uuid.Nil || serviceID == uuid.Nil {
		return nil, nil, fmt.Errorf("%w: provider_id and service_id are required", ErrInvalidInput)
	}

	var (
		permission = &model.PermittedService{ProviderID: providerID, ServiceID: serviceID}
		service    *model.Service
	)

	err := s.gw.InTx(ctx, func(tx *gorm.DB) error {
		// Обе стороны связи проверяются до вставки: промах — NotFound,
		// а не ошибка внешнего ключа.
		if _, err := s.providerRepo.WithTx(tx).GetByID(ctx, providerID); err != nil {
			return notFound(err, ErrProviderNotFound)
		}
		services := s.serviceRepo.WithTx(tx)
		if _, err := services.GetByID(ctx, serviceID); err != nil {
			return notFound(err, ErrServiceNotFound)
		}
		if err := s.permissionRepo.WithTx(tx).Create(ctx, permission); err != nil {
			return err
		}
		svc, err := services.GetByID(ctx, serviceID)
		if err != nil {
			return err
		}
		service = svc
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("permission granted",
		slog.String("provider_id", providerID.String()),
		slog.String("service_id", serviceID.String()),
	)
	return permission, service, nil
}

// ProvideService регистрирует предложение услуги вместе со всеми локациями.
// Проверка права (базовая услуга или явное разрешение) и вставки выполняются
// атомарно: либо есть предложение и все его локации, либо ничего.
func (s *ProvisioningService) ProvideService(
	ctx context.Context,
	offering model.OfferedService,
	locations []model.Location,
) (*model.OfferedService, error) {
	if err := validateOffering(offering, locations); err != nil {
		return nil, err
	}

	var created model.OfferedService

	err := s.gw.InTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.providerRepo.WithTx(tx).GetByID(ctx, offering.ProviderID); err != nil {
			return notFound(err, ErrProviderNotFound)
		}
		isBasic, err := s.serviceRepo.WithTx(tx).IsBasic(ctx, offering.ServiceID)
		if err != nil {
			return notFound(err, ErrServiceNotFound)
		}
		hasPermission, err := s.permissionRepo.WithTx(tx).Exists(ctx, offering.ProviderID, offering.ServiceID)
		if err != nil {
			return err
		}
		if !hasPermission && !isBasic {
			return &EligibilityError{ProviderID: offering.ProviderID, ServiceID: offering.ServiceID}
		}

		offerings := s.offeringRepo.WithTx(tx)

		created = model.OfferedService{
			ProviderID:  offering.ProviderID,
			ServiceID:   offering.ServiceID,
			State:       model.OfferingStateActive,
			Description: offering.Description,
		}
		if err := offerings.Create(ctx, &created); err != nil {
			return err
		}

		rows := make([]model.Location, 0, len(locations))
		for _, loc := range locations {
			rows = append(rows, model.Location{
				District:         strings.TrimSpace(loc.District),
				Region:           strings.TrimSpace(loc.Region),
				OfferedServiceID: created.ID,
			})
		}
		if err := offerings.CreateLocations(ctx, rows); err != nil {
			return err
		}
		created.Locations = rows
		return nil
	})
	if err != nil {
		var eligibility *EligibilityError
		if errors.As(err, &eligibility) {
			s.log.Warn("provide service rejected",
				slog.String("provider_id", offering.ProviderID.String()),
				slog.String("service_id", offering.ServiceID.String()),
			)
		}
		return nil, err
	}

	s.log.Info("service provided",
		slog.String("offered_service_id", created.ID.String()),
		slog.Int("locations", len(created.Locations)),
	)
	return &created, nil
}

// ChangeOfferedServiceState — один UPDATE, транзакция не нужна.
// Возвращает число затронутых строк; 0 означает, что предложения нет.
func (s *ProvisioningService) ChangeOfferedServiceState(
	ctx context.Context,
	id uuid.UUID,
	state model.OfferingState,
) (int64, error) {
	if id == uuid.Nil {
		return 0, fmt.Errorf("%w: offered_service_id is required", ErrInvalidInput)
	}
	if !state.Valid() {
		return 0, ErrInvalidState
	}
	return s.offeringRepo.UpdateState(ctx, id, state)
}

// CreateService добавляет услугу в каталог и перечитывает её в той же транзакции.
func (s *ProvisioningService) CreateService(ctx context.Context, svc model.Service) (*model.Service, error) {
	svc.Title = strings.TrimSpace(svc.Title)
	if svc.Title == "" || svc.CategoryID == uuid.Nil {
		return nil, fmt.Errorf("%w: title and category_id are required", ErrInvalidInput)
	}
	if svc.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	svc.ID = uuid.Nil

	var created *model.Service
	err := s.gw.InTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.categoryRepo.WithTx(tx).GetByID(ctx, svc.CategoryID); err != nil {
			return notFound(err, ErrCategoryNotFound)
		}
		services := s.serviceRepo.WithTx(tx)
		if err := services.Create(ctx, &svc); err != nil {
			return err
		}
		reloaded, err := services.GetByID(ctx, svc.ID)
		if err != nil {
			return err
		}
		created = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func validateOffering(offering model.OfferedService, locations []model.Location) error {
	if offering.ProviderID == uuid.Nil || offering.ServiceID == uuid.Nil {
		return fmt.Errorf("%w: provider_id and service_id are required", ErrInvalidInput)
	}
	if len(locations) == 0 {
		return ErrLocationsRequired
	}
	for i, loc := range locations {
		if strings.TrimSpace(loc.District) == "" || strings.TrimSpace(loc.Region) == "" {
			return fmt.Errorf("%w: location %d needs district and region", ErrInvalidInput, i)
		}
	}
	return nil
}

// notFound переводит gorm.ErrRecordNotFound в доменную ошибку, прочее отдаёт как есть.
func notFound(err, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}
