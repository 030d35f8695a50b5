package handler

import (
	"errors"
	"net/http"

	"github.com/Leganyst/service-marketplace/internal/service"
)

// MapServiceError переводит ошибку сервиса в HTTP-статус и сообщение.
func MapServiceError(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	switch {
	// ===== Eligibility → 403 =====
	case errors.Is(err, service.ErrNotEligible):
		return http.StatusForbidden, err.Error()

	// ===== Not Found → 404 =====
	case errors.Is(err, service.ErrServiceNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrSuperCategoryNotFound),
		errors.Is(err, service.ErrProviderNotFound),
		errors.Is(err, service.ErrClientNotFound),
		errors.Is(err, service.ErrOfferingNotFound):
		return http.StatusNotFound, err.Error()

	// ===== Validation → 400 =====
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrLocationsRequired),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrOfferingInactive):
		return http.StatusBadRequest, err.Error()

	// ===== Default → 500 =====
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
