package apiclient

import (
	"errors"
	"fmt"

	"github.com/seifadel74/getyourtrip/internal/model"
)

// Error - неуспешный ответ API.
type Error struct {
	Kind    model.FailureKind
	Status  int
	Message string
	// Errors - ошибки по полям (только для валидации), в интерфейсе показывается лишь Message.
	Errors map[string][]string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("api %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("api %s (%d): %s", e.Kind, e.Status, e.Message)
}

// ErrorFrom возвращает *Error для неуспешного ответа и nil для успешного.
func ErrorFrom(env *model.Envelope) error {
	if env.Success {
		return nil
	}
	kind := env.Failure
	if kind == model.FailureNone {
		kind = model.FailureRequest
	}
	return &Error{
		Kind:    kind,
		Status:  env.Status,
		Message: env.Message,
		Errors:  env.Errors,
	}
}

// IsKind сообщает, является ли err ошибкой API указанного вида.
func IsKind(err error, kind model.FailureKind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// Message возвращает текст для пользователя.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Something went wrong. Please try again."
}
