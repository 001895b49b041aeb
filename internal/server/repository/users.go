package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	serr "github.com/IvanChernomyrdin/suchauftrag/internal/shared/errors"
)

// UsersRepository — таблица users (id, email unique, password_hash).
type UsersRepository struct {
	base
}

func NewUsersRepository(db *sql.DB, opts ...Option) *UsersRepository {
	return &UsersRepository{base: newBase(db, opts)}
}

// Create добавляет пользователя. Email сохраняется как есть.
//
// Ошибки:
//   - ErrAlreadyExists — email уже занят (в том числе при гонке двух регистраций);
//   - ErrStoreUnavailable — любая другая ошибка БД.
func (r *UsersRepository) Create(ctx context.Context, email, passwordHash string) (uuid.UUID, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var id uuid.UUID
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash)
		 VALUES ($1,$2)
		 RETURNING id`,
		email, passwordHash,
	).Scan(&id)

	if err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, serr.ErrAlreadyExists
		}
		return uuid.Nil, storeErr(err)
	}

	return id, nil
}

// GetByEmail ищет ровно одного пользователя по точному совпадению email.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (uuid.UUID, string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var (
		id   uuid.UUID
		hash string
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE email=$1`,
		email,
	).Scan(&id, &hash)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, "", serr.ErrNotFound
		}
		return uuid.Nil, "", storeErr(err)
	}

	return id, hash, nil
}
