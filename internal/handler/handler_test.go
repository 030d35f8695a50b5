package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Leganyst/service-marketplace/internal/db"
	"github.com/Leganyst/service-marketplace/internal/repository"
	"github.com/Leganyst/service-marketplace/internal/service"
	"github.com/Leganyst/service-marketplace/internal/testing/testdb"
)

type testAPI struct {
	handler http.Handler
	db      *gorm.DB
	catalog *testdb.Catalog
	metrics *HTTPMetrics
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	gormDB := testdb.New(t)
	seeded := testdb.Seed(t, gormDB)
	gw := db.NewGateway(gormDB, sql.LevelDefault)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	serviceRepo := repository.NewGormServiceRepository(gormDB)
	categoryRepo := repository.NewGormCategoryRepository(gormDB)
	offeringRepo := repository.NewGormOfferingRepository(gormDB)

	metrics := NewHTTPMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics)

	h := NewRouter(Deps{
		Catalog: service.NewCatalogService(gw, serviceRepo, categoryRepo, offeringRepo),
		Provisioning: service.NewProvisioningService(gw, serviceRepo, categoryRepo,
			repository.NewGormPermissionRepository(gormDB), offeringRepo,
			repository.NewGormProviderRepository(gormDB), log),
		Requests: service.NewRequestService(repository.NewGormRequestRepository(gormDB), offeringRepo,
			repository.NewGormClientRepository(gormDB), log),
		Metrics:  metrics,
		Gatherer: reg,
		Log:      log,
	})
	return &testAPI{handler: h, db: gormDB, catalog: seeded, metrics: metrics}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) (int, map[string]json.RawMessage) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func decodeField(t *testing.T, body map[string]json.RawMessage, key string, v any) {
	t.Helper()
	raw, ok := body[key]
	require.True(t, ok, "missing %q", key)
	require.NoError(t, json.Unmarshal(raw, v))
}

func TestListServices(t *testing.T) {
	api := newTestAPI(t)

	code, body := api.do(t, http.MethodGet, "/api/services", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `true`, string(body["success"]))

	var services []struct {
		Title              string `json:"title"`
		SuperCategoryTitle string `json:"super_category_title"`
	}
	decodeField(t, body, "services", &services)
	require.Len(t, services, 4)
	assert.Equal(t, "Electrical", services[0].Title)
	assert.Equal(t, "Home", services[0].SuperCategoryTitle)
	_, paginated := body["pagination"]
	assert.False(t, paginated)
}

func TestListServicesPaginated(t *testing.T) {
	api := newTestAPI(t)

	code, body := api.do(t, http.MethodGet, "/api/services?page=2&page_size=3", nil)
	require.Equal(t, http.StatusOK, code)

	var services []map[string]any
	decodeField(t, body, "services", &services)
	assert.Len(t, services, 1)

	var meta struct {
		Page    int  `json:"page"`
		Total   int  `json:"total"`
		HasPrev bool `json:"has_prev"`
		HasNext bool `json:"has_next"`
	}
	decodeField(t, body, "pagination", &meta)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 4, meta.Total)
	assert.True(t, meta.HasPrev)
	assert.False(t, meta.HasNext)
}

func TestProvideFlow(t *testing.T) {
	api := newTestAPI(t)
	c := api.catalog

	code, body := api.do(t, http.MethodPost, "/api/services/permissions", map[string]any{
		"provider_id": c.Provider.ID, "service_id": c.Plumbing.ID,
	})
	require.Equal(t, http.StatusCreated, code, string(body["message"]))
	var svc struct {
		Title string `json:"title"`
	}
	decodeField(t, body, "service", &svc)
	assert.Equal(t, "Plumbing", svc.Title)

	payload := map[string]any{
		"provider_id": c.Provider.ID,
		"service_id":  c.Plumbing.ID,
		"locations":   []map[string]string{{"district": "X", "region": "Y"}},
	}
	code, body = api.do(t, http.MethodPost, "/api/services/provide", payload)
	require.Equal(t, http.StatusCreated, code, string(body["message"]))
	var offering struct {
		ID        uuid.UUID `json:"offered_service_id"`
		Locations []struct {
			District string `json:"district"`
		} `json:"locations"`
	}
	decodeField(t, body, "offered_service", &offering)
	assert.NotEqual(t, uuid.Nil, offering.ID)
	require.Len(t, offering.Locations, 1)

	payload["provider_id"] = c.OtherProvider.ID
	code, body = api.do(t, http.MethodPost, "/api/services/provide", payload)
	assert.Equal(t, http.StatusForbidden, code)
	assert.JSONEq(t, `false`, string(body["success"]))
	assert.Contains(t, string(body["message"]), c.Plumbing.ID.String())

	code, body = api.do(t, http.MethodGet, "/api/services/offered/provider/"+c.Provider.ID.String(), nil)
	require.Equal(t, http.StatusOK, code)
	var offered []struct {
		SuperCategory string `json:"super_category"`
		Locations     []any  `json:"locations"`
	}
	decodeField(t, body, "offered_services", &offered)
	require.Len(t, offered, 1)
	assert.Equal(t, "Home", offered[0].SuperCategory)
	assert.Len(t, offered[0].Locations, 1)

	code, _ = api.do(t, http.MethodPatch, fmt.Sprintf("/api/services/offered/%s/state", offering.ID), map[string]string{"state": "inactive"})
	assert.Equal(t, http.StatusOK, code)

	code, _ = api.do(t, http.MethodPatch, fmt.Sprintf("/api/services/offered/%s/state", uuid.New()), map[string]string{"state": "inactive"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestProvideValidation(t *testing.T) {
	api := newTestAPI(t)
	c := api.catalog

	code, _ := api.do(t, http.MethodPost, "/api/services/provide", map[string]any{
		"provider_id": c.Provider.ID, "service_id": c.Sweeping.ID, "locations": []any{},
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(t, http.MethodPost, "/api/services/provide", map[string]any{"unexpected": true})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(t, http.MethodPost, "/api/services/provide", map[string]any{
		"provider_id": c.Provider.ID, "service_id": uuid.New(),
		"locations": []map[string]string{{"district": "X", "region": "Y"}},
	})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGetServiceErrors(t *testing.T) {
	api := newTestAPI(t)

	code, _ := api.do(t, http.MethodGet, "/api/services/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(t, http.MethodGet, "/api/services/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body := api.do(t, http.MethodGet, "/api/services/"+api.catalog.Mowing.ID.String(), nil)
	require.Equal(t, http.StatusOK, code)
	var svc struct {
		IsBasic bool `json:"is_basic"`
	}
	decodeField(t, body, "service", &svc)
	assert.True(t, svc.IsBasic)
}

func TestCatalogRoutes(t *testing.T) {
	api := newTestAPI(t)
	c := api.catalog

	tests := []struct {
		path  string
		key   string
		count int
	}{
		{"/api/services/basic", "services", 2},
		{"/api/services/best", "super_categories", 2},
		{"/api/services/category/" + c.Repairs.ID.String(), "services", 2},
		{"/api/services/super-category/" + c.Home.ID.String(), "services", 3},
		{"/api/services/super-category/title/Garden", "services", 1},
		{"/api/services/permitted/" + c.Provider.ID.String(), "services", 2},
		{"/api/services/" + c.Mowing.ID.String() + "/providers", "providers", 0},
		{"/api/categories", "categories", 3},
		{"/api/super-categories", "super_categories", 2},
	}

	for _, tt := range tests {
		code, body := api.do(t, http.MethodGet, tt.path, nil)
		require.Equal(t, http.StatusOK, code, tt.path)
		var items []json.RawMessage
		decodeField(t, body, tt.key, &items)
		assert.Len(t, items, tt.count, tt.path)
	}

	code, _ := api.do(t, http.MethodGet, "/api/categories/"+c.Lawn.ID.String(), nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = api.do(t, http.MethodGet, "/api/super-categories/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCreateService(t *testing.T) {
	api := newTestAPI(t)

	code, body := api.do(t, http.MethodPost, "/api/services", map[string]any{
		"category_id": api.catalog.Lawn.ID, "title": "Hedge trimming", "price": 30,
	})
	require.Equal(t, http.StatusCreated, code, string(body["message"]))

	code, _ = api.do(t, http.MethodPost, "/api/services", map[string]any{
		"category_id": uuid.New(), "title": "Nowhere",
	})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestServiceRequests(t *testing.T) {
	api := newTestAPI(t)
	c := api.catalog

	code, body := api.do(t, http.MethodPost, "/api/services/provide", map[string]any{
		"provider_id": c.Provider.ID, "service_id": c.Sweeping.ID,
		"locations": []map[string]string{{"district": "X", "region": "Y"}},
	})
	require.Equal(t, http.StatusCreated, code)
	var offering struct {
		ID uuid.UUID `json:"offered_service_id"`
	}
	decodeField(t, body, "offered_service", &offering)

	code, body = api.do(t, http.MethodPost, "/api/services/requests", map[string]any{
		"client_id": c.Client.ID, "offered_service_id": offering.ID,
		"scheduled_for": "2026-05-20", "details": map[string]string{"address": "Calle 1"},
	})
	require.Equal(t, http.StatusCreated, code, string(body["message"]))

	code, _ = api.do(t, http.MethodPost, "/api/services/requests", map[string]any{
		"client_id": c.Client.ID, "offered_service_id": offering.ID, "scheduled_for": "tomorrow",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = api.do(t, http.MethodGet, "/api/services/requests/client/"+c.Client.ID.String(), nil)
	require.Equal(t, http.StatusOK, code)
	var history []json.RawMessage
	decodeField(t, body, "requests", &history)
	assert.Len(t, history, 1)

	code, body = api.do(t, http.MethodGet, "/api/services/requests/provider/"+c.Provider.ID.String(), nil)
	require.Equal(t, http.StatusOK, code)
	decodeField(t, body, "requests", &history)
	assert.Len(t, history, 1)
}

func TestHealthzAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	code, body := api.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `"ok"`, string(body["status"]))

	api.do(t, http.MethodGet, "/api/categories", nil)
	// /healthz и /api/categories — две серии.
	assert.Equal(t, 2, testutil.CollectAndCount(api.metrics.requests))

	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "marketplace_http_requests_total")
}

func TestHealthzNotReady(t *testing.T) {
	h := NewRouter(Deps{
		Ready: func() bool { return false },
		Log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
