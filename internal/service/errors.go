// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import (
	"errors"
	"fmt"

	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/review"
	"github.com/BigWhaleDJY/MCMP-stack/internal/repository"
)

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrInvalidTransition — запись уже проверена, переход статуса запрещён.
	ErrInvalidTransition = errors.New("недопустимый переход статуса")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrIdentityMissing — не указан действующий пользователь.
	ErrIdentityMissing = errors.New("не указан идентификатор пользователя")
	// ErrConflict — значение уже занято другой сущностью.
	ErrConflict = errors.New("конфликт данных")
)

// Имена сущностей в NotFoundError.
const (
	EntityOrganization = "organization"
	EntityUser         = "user"
	EntityTemplate     = "template"
	EntityProject      = "project"
	EntityFileRecord   = "file_record"
	EntityContractor   = "contractor"
)

// NotFoundError — ресурс с указанным идентификатором не найден.
// errors.Is(err, ErrNotFound) возвращает true.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Entity, e.ID, ErrNotFound.Error())
}

// Is сопоставляет NotFoundError с ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: fmt.Sprint(id)}
}

// fromRepo переводит ошибку хранилища в ошибку сервисного слоя.
func fromRepo(err error, entity string, id any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(entity, id)
	}
	return err
}

// invalidTransition оборачивает ошибку перехода в ErrInvalidTransition,
// сохраняя *review.TransitionError для errors.As.
func invalidTransition(err error) error {
	var te *review.TransitionError
	if errors.As(err, &te) {
		return fmt.Errorf("%w: %w", ErrInvalidTransition, te)
	}
	return err
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// failureReason возвращает метку причины ошибки для метрик.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrIdentityMissing):
		return "identity_missing"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}
