// Package middleware содержит HTTP middleware сервера.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/suchauftrag/internal/server/crypto"
	serr "github.com/IvanChernomyrdin/suchauftrag/internal/shared/errors"
	"github.com/IvanChernomyrdin/suchauftrag/internal/shared/logger"
	"github.com/IvanChernomyrdin/suchauftrag/internal/shared/models"
)

// ctxKey используется как тип ключа для хранения значений в context.Context.
// Отдельный тип предотвращает коллизии ключей между пакетами.
type ctxKey string

// userIDKey — ключ контекста, под которым хранится ID аутентифицированного пользователя.
const userIDKey ctxKey = "user_id"

// LoginPath — куда guard отправляет запросы без действующей сессии.
const LoginPath = "/login"

// Authenticator проверяет токен сессии на сервере.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
}

// SessionCookie описывает cookie сессии и умеет её ставить, читать и стирать.
type SessionCookie struct {
	Name   string
	Codec  crypto.CookieCodec
	TTL    time.Duration
	Secure bool // только в проде
}

// Set ставит cookie с подписанным токеном сессии. MaxAge = TTL.
func (c SessionCookie) Set(w http.ResponseWriter, token string, expiresAt time.Time) error {
	value, err := c.Codec.Encode(token, expiresAt)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(c.TTL.Seconds()),
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear просит браузер удалить cookie.
func (c SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Token достаёт токен сессии из запроса.
//
// Возвращает:
//   - токен, true — cookie есть и подпись верна
//   - "", false — cookie нет, она подделана или истекла
func (c SessionCookie) Token(r *http.Request) (string, bool) {
	ck, err := r.Cookie(c.Name)
	if err != nil {
		return "", false
	}
	token, err := c.Codec.Decode(ck.Value)
	if err != nil {
		return "", false
	}
	return token, true
}

// UserIDFromContext извлекает userID аутентифицированного пользователя из контекста.
//
// Возвращает:
//   - userID
//   - false, если пользователь не аутентифицирован
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// WithUserID кладёт userID в контекст (используется guard и тестами обработчиков).
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// RequireSession возвращает guard для защищённых страниц.
//
// Guard:
//   - читает cookie и проверяет её подпись
//   - проверяет серверную сессию через Authenticator
//   - кладёт userID в context.Context и передаёт запрос дальше
//
// Без действующей сессии стирает cookie и отвечает 302 на /login,
// обработчик при этом не вызывается. При ошибке хранилища тоже 302,
// но cookie остаётся. Владение строками guard не проверяет.
func RequireSession(cookie SessionCookie, auth Authenticator, log *logger.HTTPLogger) func(http.Handler) http.Handler {
	return guard(cookie, auth, log, func(w http.ResponseWriter, r *http.Request) {
		// сессия может быть действующей, cookie оставляем
		http.Redirect(w, r, LoginPath, http.StatusFound)
	})
}

// RequireAPISession — тот же guard для JSON API.
//
// Нет сессии: 302 на /login, как у страниц. Хранилище сессий недоступно:
// 500 {"error":"internal error"}, cookie не трогается.
func RequireAPISession(cookie SessionCookie, auth Authenticator, log *logger.HTTPLogger) func(http.Handler) http.Handler {
	return guard(cookie, auth, log, writeInternalError)
}

func guard(cookie SessionCookie, auth Authenticator, log *logger.HTTPLogger, onStoreError http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := cookie.Token(r)
			if !ok {
				deny(w, r, cookie)
				return
			}

			userID, err := auth.Authenticate(r.Context(), token)
			if errors.Is(err, serr.ErrUnauthorized) {
				deny(w, r, cookie)
				return
			}
			if err != nil {
				if log != nil {
					log.Warn("session lookup failed",
						zap.String("uri", r.RequestURI),
						zap.Error(err),
					)
				}
				onStoreError(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, cookie SessionCookie) {
	if _, err := r.Cookie(cookie.Name); err == nil {
		cookie.Clear(w)
	}
	http.Redirect(w, r, LoginPath, http.StatusFound)
}

func writeInternalError(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: serr.ErrInternal.Error()})
}
