package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	serr "github.com/IvanChernomyrdin/suchauftrag/internal/shared/errors"
	"github.com/IvanChernomyrdin/suchauftrag/internal/shared/models"
)

const loginPath = "/login"

// ListOrders возвращает поисковые заказы текущего пользователя, новые первыми.
//
// Без действующей сессии сервер отвечает редиректом на /login,
// тогда возвращается serr.ErrUnauthorized.
func (c *Client) ListOrders() ([]models.SearchOrder, error) {
	res, err := c.do(http.MethodGet, "/api/suchauftraege", nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if isRedirect(res) {
		out, err := parseOutcome(res)
		if err != nil {
			return nil, err
		}
		if out.Path == loginPath {
			return nil, serr.ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: unexpected redirect to %s", serr.ErrInternal, out.Path)
	}
	if res.StatusCode != http.StatusOK {
		return nil, readAPIErrorBody(res)
	}

	orders := []models.SearchOrder{}
	if err := json.NewDecoder(res.Body).Decode(&orders); err != nil {
		return nil, fmt.Errorf("%w: %w", serr.ErrBadJSON, err)
	}
	return orders, nil
}

// CreateOrder создаёт поисковый заказ для текущего пользователя.
//
// Успех: редирект на /?success=1. Неудача: /?error=1 (serr.ErrInvalidInput
// для пустых полей и ошибок сохранения). Без сессии: serr.ErrUnauthorized.
func (c *Client) CreateOrder(addr models.Address) error {
	out, _, err := c.submit(http.MethodPost, "/api/suchauftrag", models.CreateOrderRequest(addr))
	if err != nil {
		return err
	}
	switch {
	case out.Path == loginPath:
		return serr.ErrUnauthorized
	case out.Has("success"):
		return nil
	default:
		return fmt.Errorf("%w: order rejected by server", serr.ErrInvalidInput)
	}
}
