// В этом файле описаны методы клиента для работы с эндпоинтами
// аутентификации: регистрация, вход и выход.
package api

import (
	"fmt"
	"net/http"

	serr "github.com/IvanChernomyrdin/suchauftrag/internal/shared/errors"
)

// CredentialsRequest описывает тело запросов /register и /login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register регистрирует пользователя.
//
// Успех: редирект на /login?registered=1.
// Неудача (дубликат email, пустые поля, ошибка сервера): /register?error=1,
// возвращается ошибка, обёрнутая в serr.ErrRegistrationFailed.
func (c *Client) Register(email, password string) error {
	out, _, err := c.submit(http.MethodPost, "/register", CredentialsRequest{Email: email, Password: password})
	if err != nil {
		return err
	}
	if out.Has("registered") {
		return nil
	}
	return fmt.Errorf("%w: server redirected to %s", serr.ErrRegistrationFailed, out.Path)
}

// Login выполняет вход и возвращает cookie сессии.
//
// Успех: редирект на /dashboard вместе с Set-Cookie. Cookie сохраняется
// в клиенте, последующие запросы идут от имени пользователя.
// Неудача: /login?error=1, возвращается serr.ErrInvalidCredentials.
func (c *Client) Login(email, password string) (*http.Cookie, error) {
	out, res, err := c.submit(http.MethodPost, "/login", CredentialsRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if out.Has("error") {
		return nil, serr.ErrInvalidCredentials
	}

	for _, ck := range res.Cookies() {
		if ck.Value != "" && ck.MaxAge >= 0 {
			c.session = ck
			return ck, nil
		}
	}
	return nil, fmt.Errorf("%w: login succeeded without session cookie", serr.ErrInternal)
}

// Logout завершает сессию на сервере и забывает cookie.
// Вызов без сессии допустим: сервер всё равно отвечает редиректом на "/".
func (c *Client) Logout() error {
	_, _, err := c.submit(http.MethodGet, "/logout", nil)
	if err != nil {
		return err
	}
	c.session = nil
	return nil
}
