// Package config содержит функции для работы с локальной конфигурацией CLI-клиента.
//
// Конфигурация хранит cookie сессии и адрес сервера, на котором она выдана,
// и размещается в домашней директории пользователя в файле:
//
//	~/.suchauftrag/credentials.json
package config

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Credentials содержит сохранённую сессию CLI-клиента.
//
// ServerURL нужен, чтобы не отправлять cookie на другой сервер.
type Credentials struct {
	ServerURL     string    `json:"server_url,omitempty"`
	CookieName    string    `json:"cookie_name,omitempty"`
	CookieValue   string    `json:"cookie_value,omitempty"`
	SessionExpiry time.Time `json:"session_expiry,omitempty"`
}

// HasSession сообщает, есть ли сохранённая и ещё не истёкшая сессия для serverURL.
func (c *Credentials) HasSession(serverURL string, now time.Time) bool {
	if c == nil || c.CookieName == "" || c.CookieValue == "" {
		return false
	}
	if c.ServerURL != "" && c.ServerURL != serverURL {
		return false
	}
	return c.SessionExpiry.IsZero() || now.Before(c.SessionExpiry)
}

// Cookie возвращает сохранённую сессию в виде http.Cookie.
func (c *Credentials) Cookie() *http.Cookie {
	return &http.Cookie{Name: c.CookieName, Value: c.CookieValue}
}

// Remember сохраняет cookie сессии, выданный сервером serverURL.
func (c *Credentials) Remember(serverURL string, ck *http.Cookie) {
	c.ServerURL = serverURL
	c.CookieName = ck.Name
	c.CookieValue = ck.Value
	c.SessionExpiry = ck.Expires
}

// Forget удаляет сохранённую сессию.
func (c *Credentials) Forget() {
	*c = Credentials{}
}

// DefaultPath возвращает путь к файлу с учётными данными:
//
//	<home>/.suchauftrag/credentials.json
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".suchauftrag", "credentials.json"), nil
}

// Load загружает конфигурацию из указанного файла.
//
// Если файл не существует, возвращает пустую конфигурацию без ошибки.
// Если файл существует, но содержит некорректный JSON, возвращает ошибку.
func Load(path string) (*Credentials, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Credentials{}, nil
		}
		return nil, err
	}
	var c Credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save сохраняет конфигурацию в указанный файл в JSON формате.
//
// Директория создаётся с правами 0700, файл пишется с правами 0600:
// в нём лежит действующая сессия.
func Save(path string, c *Credentials) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
