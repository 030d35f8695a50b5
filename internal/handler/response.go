package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Leganyst/service-marketplace/internal/paging"
	"github.com/Leganyst/service-marketplace/internal/service"
)

// envelope — тело любого ответа API: success, message и одна
// именованная нагрузка.
type envelope map[string]any

// WriteJSON пишет JSON-ответ с заданным статусом.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteData пишет успешный ответ с payload под ключом key.
func WriteData(w http.ResponseWriter, status int, message, key string, payload any) {
	WriteJSON(w, status, envelope{
		"success": true,
		"message": message,
		key:       payload,
	})
}

// WriteList пишет коллекцию. Если в запросе есть page или page_size,
// элементы режутся на страницы и добавляется блок pagination.
func WriteList[T any](w http.ResponseWriter, r *http.Request, message, key string, items []T) {
	if items == nil {
		items = []T{}
	}
	body := envelope{"success": true, "message": message}

	if p := paging.FromQuery(r.URL.Query()); p.Enabled() {
		page := paging.Paginate(items, p.Page, p.PageSize)
		body[key] = page.Items
		body["pagination"] = page.Meta
	} else {
		body[key] = items
	}
	WriteJSON(w, http.StatusOK, body)
}

// WriteError переводит err в статус и пишет ответ с ошибкой.
func WriteError(w http.ResponseWriter, err error) {
	status, message := MapServiceError(err)
	WriteJSON(w, status, envelope{"success": false, "message": message})
}

// DecodeJSON разбирает JSON-тело запроса в v; лишние поля — ошибка.
func DecodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", service.ErrInvalidInput, err)
	}
	return nil
}
