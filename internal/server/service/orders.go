package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/suchauftrag/internal/server/metrics"
	serr "github.com/IvanChernomyrdin/suchauftrag/internal/shared/errors"
	"github.com/IvanChernomyrdin/suchauftrag/internal/shared/models"
)

// OrdersService — операции над поисковыми заказами.
//
// userID всегда берётся из сессии, вызывающий его не выбирает:
// чужие заказы нельзя ни прочитать, ни создать от чужого имени.
type OrdersService struct {
	orders OrdersRepo
}

func NewOrdersService(orders OrdersRepo) *OrdersService {
	return &OrdersService{orders: orders}
}

// ListOrders возвращает заказы пользователя, новые первыми. Никогда не nil.
func (s *OrdersService) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.SearchOrder, error) {
	if userID == uuid.Nil {
		return nil, serr.ErrUnauthorized
	}

	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.SearchOrder{}
	}
	return orders, nil
}

// CreateOrder сохраняет адрес как новый заказ пользователя.
// Поля адреса не нормализуются.
func (s *OrdersService) CreateOrder(ctx context.Context, userID uuid.UUID, addr models.Address) (uuid.UUID, error) {
	if userID == uuid.Nil {
		return uuid.Nil, serr.ErrUnauthorized
	}

	id, err := s.orders.Create(ctx, userID, addr)
	metrics.RecordOrderCreated(err == nil)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}
