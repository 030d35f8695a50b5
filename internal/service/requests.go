package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/repository"
)

// ScheduleRequest — входные данные заявки клиента.
type ScheduleRequest struct {
	ClientID         uuid.UUID
	OfferedServiceID uuid.UUID
	ScheduledFor     time.Time
	Details          json.RawMessage
}

// RequestService — заявки клиентов на предложения провайдеров и их история.
type RequestService struct {
	requestRepo  repository.RequestRepository
	offeringRepo repository.OfferingRepository
	clientRepo   repository.ClientRepository

	log *slog.Logger
}

func NewRequestService(
	requestRepo repository.RequestRepository,
	offeringRepo repository.OfferingRepository,
	clientRepo repository.ClientRepository,
	log *slog.Logger,
) *RequestService {
	return &RequestService{
		requestRepo:  requestRepo,
		offeringRepo: offeringRepo,
		clientRepo:   clientRepo,
		log:          log,
	}
}

// Schedule создаёт заявку в статусе pending на активное предложение.
func (s *RequestService) Schedule(ctx context.Context, in ScheduleRequest) (*model.ServiceRequest, error) {
	if in.ClientID == uuid.Nil || in.OfferedServiceID == uuid.Nil {
		return nil, fmt.Errorf("%w: client_id and offered_service_id are required", ErrInvalidInput)
	}
	if in.ScheduledFor.IsZero() {
		return nil, fmt.Errorf("%w: scheduled_for is required", ErrInvalidInput)
	}
	if len(in.Details) > 0 && !json.Valid(in.Details) {
		return nil, fmt.Errorf("%w: details must be valid JSON", ErrInvalidInput)
	}

	if _, err := s.clientRepo.GetByID(ctx, in.ClientID); err != nil {
		return nil, notFound(err, ErrClientNotFound)
	}
	offering, err := s.offeringRepo.GetByID(ctx, in.OfferedServiceID)
	if err != nil {
		return nil, notFound(err, ErrOfferingNotFound)
	}
	if offering.State != model.OfferingStateActive {
		return nil, ErrOfferingInactive
	}

	req := &model.ServiceRequest{
		ClientID:         in.ClientID,
		OfferedServiceID: in.OfferedServiceID,
		ScheduledFor:     datatypes.Date(in.ScheduledFor),
		Status:           model.RequestStatusPending,
	}
	if len(in.Details) > 0 {
		req.Details = datatypes.JSON(in.Details)
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.log.Info("service requested",
		slog.String("request_id", req.ID.String()),
		slog.String("offered_service_id", req.OfferedServiceID.String()),
	)
	return req, nil
}

func (s *RequestService) ClientHistory(ctx context.Context, clientID uuid.UUID) ([]model.ServiceRequestDetail, error) {
	return s.requestRepo.ListByClient(ctx, clientID)
}

func (s *RequestService) ProviderHistory(ctx context.Context, providerID uuid.UUID) ([]model.ServiceRequestDetail, error) {
	return s.requestRepo.ListByProvider(ctx, providerID)
}
