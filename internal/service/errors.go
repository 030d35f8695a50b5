package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Ошибки поиска: пустой результат не считается сбоем инфраструктуры.
var (
	ErrServiceNotFound       = errors.New("service not found")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrSuperCategoryNotFound = errors.New("super category not found")
	ErrProviderNotFound      = errors.New("provider not found")
	ErrClientNotFound        = errors.New("client not found")
	ErrOfferingNotFound      = errors.New("offered service not found")
)

// Ошибки валидации входных данных.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrLocationsRequired = errors.New("at least one location is required")
	ErrInvalidState      = errors.New("state must be active or inactive")
	ErrOfferingInactive  = errors.New("offered service is inactive")
)

// ErrNotEligible — бизнес-правило: провайдер не может предлагать услугу.
var ErrNotEligible = errors.New("provider is not eligible for service")

// EligibilityError несёт id услуги, для которой не прошла проверка.
type EligibilityError struct {
	ProviderID uuid.UUID
	ServiceID  uuid.UUID
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("provider cannot provide the service with service_id = %s", e.ServiceID)
}

func (e *EligibilityError) Is(target error) bool {
	return target == ErrNotEligible
}
