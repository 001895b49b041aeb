// Package repository содержит реализации слоя доступа к данным (Repository layer).
//
// Репозитории инкапсулируют работу с БД и не содержат бизнес-логики.
// Все ошибки приводятся к доменным ошибкам из internal/shared/errors:
//   - нарушение уникальности -> ErrAlreadyExists;
//   - отсутствие строки -> ErrNotFound (или ErrUnauthorized для сессий);
//   - всё остальное -> ErrStoreUnavailable с исходной причиной внутри.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"

	serr "github.com/IvanChernomyrdin/suchauftrag/internal/shared/errors"
)

// pgUniqueViolation — SQLSTATE unique_violation.
const pgUniqueViolation = "23505"

// Option настраивает репозиторий.
type Option func(*base)

// WithQueryTimeout ограничивает время одного запроса, включая ожидание
// свободного соединения в пуле.
func WithQueryTimeout(d time.Duration) Option {
	return func(b *base) {
		b.timeout = d
	}
}

// base — общая часть всех postgres-репозиториев.
type base struct {
	db      *sql.DB
	timeout time.Duration
}

func newBase(db *sql.DB, opts []Option) base {
	b := base{db: db}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b base) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, b.timeout)
}

// Ping проверяет доступность базы (используется в /health).
func (b base) Ping(ctx context.Context) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()
	if err := b.db.PingContext(ctx); err != nil {
		return storeErr(err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %w", serr.ErrStoreUnavailable, err)
}
