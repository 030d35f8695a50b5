package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/service"
)

// Catalog — чтение каталога для обработчиков.
type Catalog interface {
	ListServices(ctx context.Context) ([]model.ServiceDetail, error)
	ListServicesByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.ServiceDetail, error)
	ListServicesBySuperCategory(ctx context.Context, superCategoryID uuid.UUID) ([]model.ServiceDetail, error)
	ListServicesBySuperCategoryTitle(ctx context.Context, title string) ([]model.ServiceDetail, error)
	ListPermittedServices(ctx context.Context, providerID uuid.UUID) ([]model.ServiceDetail, error)
	ListBasicServices(ctx context.Context) ([]model.Service, error)
	SuperCategoriesBestServices(ctx context.Context) ([]model.SuperCategoryServices, error)
	ListOfferedByProvider(ctx context.Context, providerID uuid.UUID) ([]model.OfferedServiceDetail, error)
	ListActiveProviders(ctx context.Context, serviceID uuid.UUID) ([]model.ServiceProvider, error)
	GetService(ctx context.Context, id uuid.UUID) (*model.Service, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error)
	GetSuperCategory(ctx context.Context, id uuid.UUID) (*model.SuperCategory, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListSuperCategories(ctx context.Context) ([]model.SuperCategory, error)
}

// Provisioning — запись разрешений и предложений.
type Provisioning interface {
	GrantPermission(ctx context.Context, providerID, serviceID uuid.UUID) (*model.PermittedService, *model.Service, error)
	ProvideService(ctx context.Context, offering model.OfferedService, locations []model.Location) (*model.OfferedService, error)
	ChangeOfferedServiceState(ctx context.Context, id uuid.UUID, state model.OfferingState) (int64, error)
	CreateService(ctx context.Context, svc model.Service) (*model.Service, error)
}

// Requests — заявки клиентов и их история.
type Requests interface {
	Schedule(ctx context.Context, in service.ScheduleRequest) (*model.ServiceRequest, error)
	ClientHistory(ctx context.Context, clientID uuid.UUID) ([]model.ServiceRequestDetail, error)
	ProviderHistory(ctx context.Context, providerID uuid.UUID) ([]model.ServiceRequestDetail, error)
}

// ServiceHandler обслуживает /api/services.
type ServiceHandler struct {
	catalog      Catalog
	provisioning Provisioning
	requests     Requests
}

func NewServiceHandler(catalog Catalog, provisioning Provisioning, requests Requests) *ServiceHandler {
	return &ServiceHandler{catalog: catalog, provisioning: provisioning, requests: requests}
}

// Routes монтирует эндпоинты обработчика на r.
func (h *ServiceHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/basic", h.ListBasic)
	r.Get("/best", h.Best)
	r.Get("/category/{id}", h.ListByCategory)
	r.Get("/super-category/{id}", h.ListBySuperCategory)
	r.Get("/super-category/title/{title}", h.ListBySuperCategoryTitle)
	r.Get("/permitted/{providerId}", h.ListPermitted)
	r.Post("/permissions", h.GrantPermission)
	r.Post("/provide", h.Provide)
	r.Get("/offered/provider/{providerId}", h.ListOfferedByProvider)
	r.Patch("/offered/{id}/state", h.ChangeState)
	r.Post("/requests", h.ScheduleRequest)
	r.Get("/requests/client/{clientId}", h.ClientHistory)
	r.Get("/requests/provider/{providerId}", h.ProviderHistory)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/providers", h.ListProviders)
}

func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalog.ListServices(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteList(w, r, "all services.", "services", services)
}

func (h *ServiceHandler) ListBasic(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalog.ListBasicServices(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteList(w, r, "basic services.", "services", services)
}

func (h *ServiceHandler) Best(w http.ResponseWriter, r *http.Request) {
	superCategories, err := h.catalog.SuperCategoriesBestServices(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteList(w, r, "best services by super category.", "super_categories", superCategories)
}

func (h *ServiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}
	svc, err := h.catalog.GetService(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteData(w, http.StatusOK, fmt.Sprintf("service with service_id = %s.", id), "service", svc)
}

func (h *ServiceHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}
	providers, err := h.catalog.ListActiveProviders(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteList(w, r, fmt.Sprintf("providers of service_id = %s.", id), "providers", providers)
}

func (h *ServiceHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}
	services, err := h.catalog.ListServicesByCategory(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteList(w, r, fmt.Sprintf("services with category_id = %s.", id), "services", services)
}

func (h *ServiceHandler) ListBySuperCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}
	services, err := h.catalog.ListServicesBySuperCategory(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteList(w, r, fmt.Sprintf("services with super_category_id = %s.", id), "services", services)
}

func (h *ServiceHandler) ListBySuperCategoryTitle(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")
	services, err := h.catalog.ListServicesBySuperCategoryTitle(r.Context(), title)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteList(w, r, fmt.Sprintf("services with super category title = %s.", title), "services", services)
}

func (h *ServiceHandler) ListPermitted(w http.ResponseWriter, r *http.Request) {
	providerID, err := pathUUID(r, "providerId")
	if err != nil {
		WriteError(w, err)
		return
	}
	services, err := h.catalog.ListPermittedServices(r.Context(), providerID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteList(w, r, fmt.Sprintf("services permitted to provider_id = %s.", providerID), "services", services)
}

type createServiceRequest struct {
	CategoryID  uuid.UUID `json:"category_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImgURL      string    `json:"img_url"`
	IsBasic     bool      `json:"is_basic"`
}

func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createServiceRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	svc, err := h.provisioning.CreateService(r.Context(), model.Service{
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		ImgURL:      req.ImgURL,
		IsBasic:     req.IsBasic,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteData(w, http.StatusCreated, "service created successfully.", "service", svc)
}

type grantPermissionRequest struct {
	ProviderID uuid.UUID `json:"provider_id"`
	ServiceID  uuid.UUID `json:"service_id"`
}

func (h *ServiceHandler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	var req grantPermissionRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	permission, svc, err := h.provisioning.GrantPermission(r.Context(), req.ProviderID, req.ServiceID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, envelope{
		"success":    true,
		"message":    "permission granted successfully.",
		"permission": permission,
		"service":    svc,
	})
}

type locationRequest struct {
	District string `json:"district"`
	Region   string `json:"region"`
}

type provideRequest struct {
	ProviderID  uuid.UUID         `json:"provider_id"`
	ServiceID   uuid.UUID         `json:"service_id"`
	Description string            `json:"description"`
	Locations   []locationRequest `json:"locations"`
}

func (h *ServiceHandler) Provide(w http.ResponseWriter, r *http.Request) {
	var req provideRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	locations := make([]model.Location, 0, len(req.Locations))
	for _, l := range req.Locations {
		locations = append(locations, model.Location{District: l.District, Region: l.Region})
	}

	offering, err := h.provisioning.ProvideService(r.Context(), model.OfferedService{
		ProviderID:  req.ProviderID,
		ServiceID:   req.ServiceID,
		Description: req.Description,
	}, locations)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteData(w, http.StatusCreated, "service provided successfully.", "offered_service", offering)
}

func (h *ServiceHandler) ListOfferedByProvider(w http.ResponseWriter, r *http.Request) {
	providerID, err := pathUUID(r, "providerId")
	if err != nil {
		WriteError(w, err)
		return
	}
	offered, err := h.catalog.ListOfferedByProvider(r.Context(), providerID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteList(w, r, fmt.Sprintf("services offered by provider_id = %s.", providerID), "offered_services", offered)
}

type changeStateRequest struct {
	State model.OfferingState `json:"state"`
}

func (h *ServiceHandler) ChangeState(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}
	var req changeStateRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	affected, err := h.provisioning.ChangeOfferedServiceState(r.Context(), id, req.State)
	if err != nil {
		WriteError(w, err)
		return
	}
	if affected == 0 {
		WriteError(w, fmt.Errorf("%w: offered_service_id = %s", service.ErrOfferingNotFound, id))
		return
	}
	WriteData(w, http.StatusOK, "offered service state updated.", "affected_rows", affected)
}

type scheduleRequest struct {
	ClientID         uuid.UUID       `json:"client_id"`
	OfferedServiceID uuid.UUID       `json:"offered_service_id"`
	ScheduledFor     string          `json:"scheduled_for"`
	Details          json.RawMessage `json:"details"`
}

func (h *ServiceHandler) ScheduleRequest(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	day, err := time.Parse(time.DateOnly, req.ScheduledFor)
	if err != nil {
		WriteError(w, fmt.Errorf("%w: scheduled_for must be YYYY-MM-DD", service.ErrInvalidInput))
		return
	}

	created, err := h.requests.Schedule(r.Context(), service.ScheduleRequest{
		ClientID:         req.ClientID,
		OfferedServiceID: req.OfferedServiceID,
		ScheduledFor:     day,
		Details:          req.Details,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteData(w, http.StatusCreated, "service requested successfully.", "request", created)
}

func (h *ServiceHandler) ClientHistory(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathUUID(r, "clientId")
	if err != nil {
		WriteError(w, err)
		return
	}
	history, err := h.requests.ClientHistory(r.Context(), clientID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteList(w, r, fmt.Sprintf("requests of client_id = %s.", clientID), "requests", history)
}

func (h *ServiceHandler) ProviderHistory(w http.ResponseWriter, r *http.Request) {
	providerID, err := pathUUID(r, "providerId")
	if err != nil {
		WriteError(w, err)
		return
	}
	history, err := h.requests.ProviderHistory(r.Context(), providerID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteList(w, r, fmt.Sprintf("requests for provider_id = %s.", providerID), "requests", history)
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a UUID, got %q", service.ErrInvalidInput, name, raw)
	}
	return id, nil
}
