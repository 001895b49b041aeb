package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/suchauftrag/internal/server/config"
	"github.com/IvanChernomyrdin/suchauftrag/internal/server/crypto"
	"github.com/IvanChernomyrdin/suchauftrag/internal/server/metrics"
	"github.com/IvanChernomyrdin/suchauftrag/internal/server/models"
	serr "github.com/IvanChernomyrdin/suchauftrag/internal/shared/errors"
)

// dummyPassword хэшируется один раз и сравнивается при неизвестном email,
// чтобы время ответа не выдавало существование аккаунта.
const dummyPassword = "suchauftrag-dummy-password"

// AuthService реализует регистрацию, вход и серверные сессии.
//
// Ответственность:
//   - регистрация пользователей (хэш пароля, вставка)
//   - логин: проверка пароля и выпуск сессии с фиксированным TTL
//   - logout и проверка сессии для guard
type AuthService struct {
	users    UsersRepo
	sessions SessionsRepo
	hasher   crypto.Hasher

	ttl time.Duration
	now func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService создаёт AuthService с зависимостями и настройками из конфига.
func NewAuthService(users UsersRepo, sessions SessionsRepo, cfg *config.Config) *AuthService {
	ttl := cfg.Auth.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   NewHasher(cfg.Password),
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL — время жизни выдаваемых сессий; из него cmd/server берёт MaxAge cookie,
// чтобы cookie и серверная сессия истекали одновременно.
func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

// Register регистрирует нового пользователя.
//
// Email и пароль не проверяются ни на формат, ни на длину, только на наличие.
// Любая ошибка хэширования или вставки (включая занятый email) возвращается
// как ErrRegistrationFailed: наружу различие не выдаётся, причина остаётся в цепочке.
func (s *AuthService) Register(ctx context.Context, email, password string) (uuid.UUID, error) {
	if err := requireFields("email", email, "password", password); err != nil {
		metrics.RecordRegistration(false)
		return uuid.Nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		metrics.RecordRegistration(false)
		return uuid.Nil, fmt.Errorf("%w: %w", serr.ErrRegistrationFailed, err)
	}

	id, err := s.users.Create(ctx, email, hash)
	if err != nil {
		metrics.RecordRegistration(false)
		return uuid.Nil, fmt.Errorf("%w: %w", serr.ErrRegistrationFailed, err)
	}

	metrics.RecordRegistration(true)
	return id, nil
}

// Login проверяет пару email/пароль и создаёт сессию.
//
// Поведение:
//   - неизвестный email и неверный пароль неотличимы (ErrInvalidCredentials);
//   - при неизвестном email всё равно выполняется сравнение с фиктивным хэшем;
//   - ошибка хранилища тоже ErrInvalidCredentials, но с ErrStoreUnavailable в цепочке.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.Session, error) {
	session, err := s.login(ctx, email, password)
	metrics.RecordLogin(err == nil)
	return session, err
}

func (s *AuthService) login(ctx context.Context, email, password string) (models.Session, error) {
	if err := requireFields("email", email, "password", password); err != nil {
		return models.Session{}, err
	}

	userID, hash, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			s.compareDummy(password)
			return models.Session{}, serr.ErrInvalidCredentials
		}
		return models.Session{}, fmt.Errorf("%w: %w", serr.ErrInvalidCredentials, err)
	}

	ok, err := s.hasher.Verify(password, hash)
	if err != nil {
		// испорченный хэш в базе
		return models.Session{}, fmt.Errorf("%w: %w", serr.ErrInvalidCredentials, err)
	}
	if !ok {
		return models.Session{}, serr.ErrInvalidCredentials
	}

	token, err := crypto.NewSessionToken()
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %w", serr.ErrInternal, err)
	}

	expiresAt := s.now().Add(s.ttl)
	if err := s.sessions.Create(ctx, crypto.HashSessionToken(token), userID, expiresAt); err != nil {
		return models.Session{}, fmt.Errorf("create session: %w", err)
	}

	return models.Session{Token: token, UserID: userID, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) compareDummy(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(dummyPassword)
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

// Logout удаляет сессию. Пустой или неизвестный токен ошибкой не является.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	metrics.RecordLogout()
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, crypto.HashSessionToken(token))
}

// Authenticate возвращает владельца действующей сессии.
//
// Отсутствующая или истёкшая сессия — ErrUnauthorized; истёкшая при этом удаляется.
// Ошибка хранилища возвращается как есть: guard всё равно не пропустит запрос.
func (s *AuthService) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, serr.ErrUnauthorized
	}

	hash := crypto.HashSessionToken(token)
	userID, expiresAt, err := s.sessions.Get(ctx, hash)
	if err != nil {
		return uuid.Nil, err
	}

	if !s.now().Before(expiresAt) {
		_ = s.sessions.Delete(ctx, hash)
		return uuid.Nil, serr.ErrUnauthorized
	}
	if userID == uuid.Nil {
		return uuid.Nil, serr.ErrUnauthorized
	}
	return userID, nil
}

// SweepExpired удаляет все истёкшие сессии. Вызывается периодически из cmd/server.
func (s *AuthService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	metrics.RecordSessionsSwept(n)
	return n, nil
}

// requireFields принимает пары имя/значение и собирает пустые в ValidationError.
func requireFields(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) > 0 {
		return &serr.ValidationError{Fields: missing}
	}
	return nil
}
