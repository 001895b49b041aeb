// Package errors содержит общие доменные ошибки приложения
// и утилиты для error wrapping.
//
// Эти ошибки используются в service и repository слоях
// и маппятся на редиректы с флагом или HTTP-статусы в api слое.
package errors

import (
	"errors"
	"strings"
)

var (
	// Входные данные невалидны (пустые поля и т.п.)
	ErrInvalidInput = errors.New("invalid input")
	// Неверные учётные данные (неизвестный email или неверный пароль)
	ErrInvalidCredentials = errors.New("invalid credentials")
	// Регистрация не удалась: дубликат email или любая ошибка вставки
	ErrRegistrationFailed = errors.New("registration failed")
	// Получена непредвиденная ошибка
	ErrInternal = errors.New("internal error")
	// Полученные JSON данные с ошибками
	ErrBadJSON = errors.New("bad json")
	// Нет действующей сессии
	ErrUnauthorized = errors.New("unauthorized")
	// Хранилище недоступно (ошибка соединения, таймаут пула и т.п.)
	ErrStoreUnavailable = errors.New("store unavailable")
	// Ресурс уже существует (например email уже занят)
	ErrAlreadyExists = errors.New("already exists")
	// Ресурс не найден
	ErrNotFound = errors.New("not found")
)

// ValidationError описывает запрос, в котором не хватает обязательных полей.
//
// Fields содержит имена отсутствующих полей в том виде, в каком они приходят
// от клиента (plz, stadt, email и т.д.).
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	return ErrInvalidInput.Error() + ": missing " + strings.Join(e.Fields, ", ")
}

// Unwrap позволяет проверять ValidationError через errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
