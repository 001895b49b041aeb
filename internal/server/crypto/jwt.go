// Package crypto содержит криптографические примитивы сервера:
//   - хэширование паролей (bcrypt, argon2id);
//   - генерацию непрозрачных идентификаторов сессий;
//   - подпись значения session cookie (JWT HS256 на секрете сессий).
package crypto

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCookie — cookie не прошла проверку подписи, срока или формата.
var ErrInvalidCookie = errors.New("invalid session cookie")

// CookieCodec подписывает идентификатор сессии для передачи в cookie.
//
// Значение cookie — JWT HS256, у которого jti — непрозрачный токен сессии.
// Подпись защищает от подбора идентификаторов без обращения к хранилищу,
// а сама сессия всё равно проверяется на сервере.
type CookieCodec struct {
	// Issuer — значение поля iss.
	Issuer string
	// SigningKey — секрет сессий (SESSION_SECRET).
	SigningKey string
}

// Encode возвращает подписанное значение cookie для токена сессии.
func (c CookieCodec) Encode(sessionToken string, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sessionToken,
		Issuer:    c.Issuer,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(c.SigningKey))
}

// Decode проверяет подпись, issuer и срок действия и возвращает токен сессии.
func (c CookieCodec) Decode(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrInvalidCookie
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	}
	if c.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.Issuer))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(value, claims, func(t *jwt.Token) (any, error) {
		return []byte(c.SigningKey), nil
	})
	if err != nil {
		return "", ErrInvalidCookie
	}

	token := strings.TrimSpace(claims.ID)
	if token == "" {
		return "", ErrInvalidCookie
	}
	return token, nil
}
