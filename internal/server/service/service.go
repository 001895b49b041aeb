// Package service содержит бизнес-логику приложения (suchauftrag).
// Это прослойка между HTTP-обработчиками (api) и хранилищем данных (repository).
//
// Сервисы не знают про HTTP: они возвращают результат или доменную ошибку,
// а решение «редирект или JSON» принимает api слой.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/suchauftrag/internal/server/config"
	"github.com/IvanChernomyrdin/suchauftrag/internal/server/crypto"
	"github.com/IvanChernomyrdin/suchauftrag/internal/shared/models"
)

// Repositories — набор интерфейсов, которые сервисный слой ожидает от слоя repository.
type Repositories struct {
	Users    UsersRepo
	Sessions SessionsRepo
	Orders   OrdersRepo
	// Health — зависимости для /health по имени (postgres, redis).
	Health map[string]HealthRepo
}

// Services — агрегатор всех сервисов приложения.
type Services struct {
	Auth   *AuthService
	Orders *OrdersService
	Health *HealthService
}

// NewServices собирает все сервисы приложения.
// cfg нужен AuthService (хэшер паролей и TTL сессии).
func NewServices(repos Repositories, cfg *config.Config) *Services {
	return &Services{
		Auth:   NewAuthService(repos.Users, repos.Sessions, cfg),
		Orders: NewOrdersService(repos.Orders),
		Health: NewHealthService(repos.Health),
	}
}

// NewHasher выбирает реализацию хэширования паролей по конфигу.
func NewHasher(cfg config.PasswordConfig) crypto.Hasher {
	if strings.EqualFold(cfg.Hasher, "argon2id") {
		return &crypto.Argon2Hasher{Params: crypto.Argon2Params{
			Time:      cfg.Argon2.Time,
			MemoryKiB: cfg.Argon2.MemoryKiB,
			Threads:   cfg.Argon2.Threads,
			KeyLen:    cfg.Argon2.KeyLen,
			SaltLen:   cfg.Argon2.SaltLen,
		}}
	}
	return crypto.NewBcryptHasher(cfg.Bcrypt.Cost)
}

// HealthRepo — минимально нужное для health-check.
type HealthRepo interface {
	Ping(ctx context.Context) error
}

// UsersRepo — репозиторий пользователей (нужен для register/login).
type UsersRepo interface {
	Create(ctx context.Context, email, passwordHash string) (uuid.UUID, error)
	GetByEmail(ctx context.Context, email string) (uuid.UUID, string, error)
}

// SessionsRepo — хранилище серверных сессий (postgres или redis).
// Ключ — SHA-256 от токена сессии.
type SessionsRepo interface {
	Create(ctx context.Context, tokenHash []byte, userID uuid.UUID, expiresAt time.Time) error
	Get(ctx context.Context, tokenHash []byte) (uuid.UUID, time.Time, error)
	Delete(ctx context.Context, tokenHash []byte) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// OrdersRepo — репозиторий поисковых заказов. Все методы принимают владельца.
type OrdersRepo interface {
	Create(ctx context.Context, userID uuid.UUID, addr models.Address) (uuid.UUID, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SearchOrder, error)
}
