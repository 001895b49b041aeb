package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/suchauftrag/internal/shared/models"
)

// OrdersRepository — таблица suchauftraege.
//
// Каждый запрос параметризован user_id владельца: чужие строки
// не читаются и не создаются ни одним методом.
type OrdersRepository struct {
	base
}

func NewOrdersRepository(db *sql.DB, opts ...Option) *OrdersRepository {
	return &OrdersRepository{base: newBase(db, opts)}
}

// Create сохраняет заказ пользователя. Адрес пишется одной JSONB-колонкой.
func (r *OrdersRepository) Create(ctx context.Context, userID uuid.UUID, addr models.Address) (uuid.UUID, error) {
	payload, err := json.Marshal(addr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal address: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var id uuid.UUID
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO suchauftraege (user_id, adresse)
		 VALUES ($1, $2)
		 RETURNING id`,
		userID, string(payload),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, storeErr(err)
	}
	return id, nil
}

// ListByUser возвращает все заказы пользователя, новые первыми.
// Результат полностью вычитывается; пустой список — не ошибка.
func (r *OrdersRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SearchOrder, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, adresse, created_at
		   FROM suchauftraege
		  WHERE user_id = $1
		  ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	orders := make([]models.SearchOrder, 0)
	for rows.Next() {
		var (
			id, owner uuid.UUID
			raw       []byte
			createdAt time.Time
		)
		if err := rows.Scan(&id, &owner, &raw, &createdAt); err != nil {
			return nil, storeErr(err)
		}

		var addr models.Address
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &addr); err != nil {
				return nil, fmt.Errorf("decode adresse of %s: %w", id, err)
			}
		}

		orders = append(orders, models.SearchOrder{
			ID:        id.String(),
			UserID:    owner.String(),
			Address:   addr,
			CreatedAt: createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return orders, nil
}
