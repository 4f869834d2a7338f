// Package response содержит конверт JSON-ответов дашборда и сопоставление
// ошибок сервисов с HTTP-статусами.
//
// Успех: {"status":"success","data":...}. Ошибка: {"status":"error","message":"..."}.
package response

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/auth"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/shim"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/storage"
)

const (
	// StatusOK значение статуса для успешного ответа.
	StatusOK = "success"
	// StatusError значение статуса для ответа с ошибкой.
	StatusError = "error"
)

// Response конверт ответа.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OKWithData возвращает успешный Response с данными.
func OKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и сообщением.
func Error(msg string) Response {
	return Response{
		Status:  StatusError,
		Message: msg,
	}
}

// ValidationError собирает нарушения валидации в одно сообщение.
func ValidationError(errs validator.ValidationErrors) Response {
	return Error(shim.ValidationMessage(errs))
}

// HTTPStatus подбирает код ответа для ошибки сервиса.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, shim.ErrMalformedPayload):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, shim.ErrValidation), errors.Is(err, shim.ErrUnknownAction):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Message текст ошибки для клиента. Ошибки хранилища не раскрываются.
func Message(err error) string {
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
