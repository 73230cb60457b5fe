package service

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/studio_manager/internal/model"
	"github.com/google/uuid"
)

// Классы ошибок; HTTP слой отображает их в коды ответа через errors.Is
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrStore           = errors.New("store failure")
)

var (
	ErrTokenDecode     = fmt.Errorf("%w: cannot decode token", ErrUnauthenticated)
	ErrProfileNotFound = fmt.Errorf("%w: profile not found", ErrUnauthenticated)
	ErrInvalidRole     = fmt.Errorf("%w: %w", ErrValidation, model.ErrInvalidRole)
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}

// AggregationError - сбой хранилища при расчёте отчёта
type AggregationError struct {
	InstructorID uuid.UUID
	Year         int
	Month        int
	Err          error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregate settlement %s %04d-%02d: %v", e.InstructorID, e.Year, e.Month, e.Err)
}

func (e *AggregationError) Unwrap() []error {
	return []error{ErrStore, e.Err}
}
