package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps — всё, что нужно HTTP-поверхности.
type Deps struct {
	Catalog      Catalog
	Provisioning Provisioning
	Requests     Requests

	// Realtime обслуживает GET /ws.
	Realtime http.Handler

	Metrics  *HTTPMetrics
	Gatherer prometheus.Gatherer

	// Ready сообщает, доступна ли БД; nil — всегда готов.
	Ready func() bool

	Log *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logger(d.Log))
	r.Use(middleware.Recoverer)
	if d.Metrics != nil {
		r.Use(Instrument(d.Metrics))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil && !d.Ready() {
			WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}
	if d.Realtime != nil {
		r.Method(http.MethodGet, "/ws", d.Realtime)
	}

	services := NewServiceHandler(d.Catalog, d.Provisioning, d.Requests)
	categories := NewCategoryHandler(d.Catalog)

	r.Route("/api", func(r chi.Router) {
		r.Route("/services", services.Routes)
		r.Route("/categories", categories.CategoryRoutes)
		r.Route("/super-categories", categories.SuperCategoryRoutes)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusNotFound, envelope{"success": false, "message": "route not found."})
	})
	return r
}
