package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	serr "github.com/IvanChernomyrdin/suchauftrag/internal/shared/errors"
)

// SessionsRepository хранит серверные сессии в таблице sessions.
//
// В базе лежит только SHA-256 от токена: утечка таблицы не даёт
// готовых значений cookie.
type SessionsRepository struct {
	base
}

// NewSessionsRepository создает новый SessionsRepository.
func NewSessionsRepository(db *sql.DB, opts ...Option) *SessionsRepository {
	return &SessionsRepository{base: newBase(db, opts)}
}

// Create сохраняет сессию пользователя до expiresAt.
func (r *SessionsRepository) Create(ctx context.Context, tokenHash []byte, userID uuid.UUID, expiresAt time.Time) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token_hash, user_id, expires_at)
		 VALUES ($1,$2,$3)`,
		tokenHash, userID, expiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return serr.ErrAlreadyExists
		}
		return storeErr(err)
	}
	return nil
}

// Get возвращает владельца и срок действия сессии.
//
// Проверка срока — забота вызывающего: просроченная, но ещё не удалённая
// строка возвращается как есть.
//
// Возвращает ErrUnauthorized, если сессии нет.
func (r *SessionsRepository) Get(ctx context.Context, tokenHash []byte) (uuid.UUID, time.Time, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var (
		userID    uuid.UUID
		expiresAt time.Time
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, expires_at FROM sessions WHERE token_hash=$1`,
		tokenHash,
	).Scan(&userID, &expiresAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, time.Time{}, serr.ErrUnauthorized
		}
		return uuid.Nil, time.Time{}, storeErr(err)
	}
	return userID, expiresAt, nil
}

// Delete удаляет сессию. Отсутствие строки ошибкой не считается.
func (r *SessionsRepository) Delete(ctx context.Context, tokenHash []byte) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE token_hash=$1`,
		tokenHash,
	); err != nil {
		return storeErr(err)
	}
	return nil
}

// DeleteExpired удаляет все сессии, истёкшие к моменту now.
// Возвращает число удалённых строк.
func (r *SessionsRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= $1`,
		now,
	)
	if err != nil {
		return 0, storeErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr(err)
	}
	return n, nil
}
