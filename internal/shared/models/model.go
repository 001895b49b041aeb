package models

import "time"

// Address — адрес поискового заказа в том виде, в каком он хранится
// в колонке adresse (JSONB) и отдаётся клиенту.
//
// Поля свободной формы: сервер их не нормализует и не проверяет формат.
type Address struct {
	PostalCode  string `json:"plz"`
	City        string `json:"stadt"`
	Street      string `json:"strasse"`
	HouseNumber string `json:"hausnummer"`
}

// SearchOrder — поисковый заказ пользователя (строка таблицы suchauftraege).
//
// Используется в:
//
//	GET /api/suchauftraege
//
// Сервер отдаёт массив таких объектов, отсортированный по CreatedAt (новые первыми).
type SearchOrder struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Address   Address   `json:"adresse"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateOrderRequest — тело запроса на создание поискового заказа.
//
// Используется в:
//
//	POST /api/suchauftrag
//
// Один тип на сервер и CLI-клиент. Принимается как JSON, так и
// application/x-www-form-urlencoded с теми же именами полей.
// user_id в теле не читается: владелец всегда берётся из сессии.
type CreateOrderRequest struct {
	PostalCode  string `json:"plz" form:"plz" validate:"required"`
	City        string `json:"stadt" form:"stadt" validate:"required"`
	Street      string `json:"strasse" form:"strasse" validate:"required"`
	HouseNumber string `json:"hausnummer" form:"hausnummer" validate:"required"`
}

// Address возвращает адрес из запроса.
func (r CreateOrderRequest) Address() Address {
	return Address(r)
}

// ErrorResponse — стандартный формат ошибки JSON API.
type ErrorResponse struct {
	Error string `json:"error"`
}
