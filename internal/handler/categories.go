package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CategoryHandler обслуживает /api/categories и /api/super-categories.
type CategoryHandler struct {
	catalog Catalog
}

func NewCategoryHandler(catalog Catalog) *CategoryHandler {
	return &CategoryHandler{catalog: catalog}
}

func (h *CategoryHandler) CategoryRoutes(r chi.Router) {
	r.Get("/", h.ListCategories)
	r.Get("/{id}", h.GetCategory)
}

func (h *CategoryHandler) SuperCategoryRoutes(r chi.Router) {
	r.Get("/", h.ListSuperCategories)
	r.Get("/{id}", h.GetSuperCategory)
}

func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteList(w, r, "all categories.", "categories", categories)
}

func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}
	category, err := h.catalog.GetCategory(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteData(w, http.StatusOK, fmt.Sprintf("category with category_id = %s.", id), "category", category)
}

func (h *CategoryHandler) ListSuperCategories(w http.ResponseWriter, r *http.Request) {
	superCategories, err := h.catalog.ListSuperCategories(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteList(w, r, "all super categories.", "super_categories", superCategories)
}

func (h *CategoryHandler) GetSuperCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}
	sc, err := h.catalog.GetSuperCategory(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteData(w, http.StatusOK, fmt.Sprintf("super category with super_category_id = %s.", id), "super_category", sc)
}
