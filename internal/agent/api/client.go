// Package api содержит HTTP-клиент для сервера поисковых заказов.
//
// Сервер отвечает браузерными редиректами: результат операции закодирован
// в заголовке Location (флаги error=1, registered=1, success=1), а сессия
// живёт в cookie. Поэтому клиент:
//   - не следует за редиректами, а разбирает Location сам;
//   - хранит cookie сессии и подставляет его в каждый запрос;
//   - отправляет тела запросов в JSON.
//
// ВНИМАНИЕ: NewClient включает InsecureSkipVerify=true (TLS сертификат не проверяется).
// Это допустимо только для разработки и локального окружения.
package api

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	serr "github.com/IvanChernomyrdin/suchauftrag/internal/shared/errors"
)

// Client реализует HTTP-клиент для общения с сервером.
//
// Поля:
//   - baseURL: базовый адрес сервера без завершающего слэша.
//   - http: http.Client, который не ходит по редиректам.
//   - session: cookie сессии, полученный при логине (может быть nil).
type Client struct {
	baseURL string
	http    *http.Client
	session *http.Cookie
}

// NewClient создаёт новый HTTP-клиент для общения с сервером.
//
// Поведение:
//   - обрезает завершающий "/" у baseURL;
//   - создаёт http.Client с таймаутом 10 секунд;
//   - редиректы не выполняются, ответ 302 возвращается как есть.
func NewClient(baseURL string) *Client {
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // только для локальной разработки
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   10 * time.Second,
			Transport: tr,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// SetSession задаёт cookie сессии, который будет отправляться с запросами.
// nil сбрасывает сессию.
func (c *Client) SetSession(cookie *http.Cookie) {
	c.session = cookie
}

// Session возвращает текущий cookie сессии (или nil).
func (c *Client) Session() *http.Cookie {
	return c.session
}

// Outcome — разобранный ответ-редирект сервера.
type Outcome struct {
	// Path — путь из Location без query (например "/login").
	Path string
	// Flags — query-параметры Location (error, registered, success).
	Flags url.Values
}

// Has сообщает, выставлен ли флаг name=1.
func (o Outcome) Has(name string) bool {
	return o.Flags.Get(name) == "1"
}

// parseOutcome разбирает заголовок Location ответа 3xx.
func parseOutcome(res *http.Response) (Outcome, error) {
	loc := res.Header.Get("Location")
	if loc == "" {
		return Outcome{}, fmt.Errorf("%w: redirect without Location (%s)", serr.ErrInternal, res.Status)
	}
	u, err := url.Parse(loc)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: bad Location %q: %w", serr.ErrInternal, loc, err)
	}
	return Outcome{Path: u.Path, Flags: u.Query()}, nil
}

func isRedirect(res *http.Response) bool {
	return res.StatusCode >= 300 && res.StatusCode < 400
}

// readAPIErrorBody читает тело ответа сервера и возвращает ошибку с текстом тела.
//
// Если сервер ответил JSON вида {"error": "..."}, берётся поле error.
// Если тело пустое, используется res.Status.
func readAPIErrorBody(res *http.Response) error {
	raw, _ := io.ReadAll(res.Body)
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return errors.New(body.Error)
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = res.Status
	}
	return errors.New(msg)
}

// do отправляет запрос к серверу.
//
// Если req != nil, тело сериализуется в JSON и ставится Content-Type.
// Cookie сессии добавляется, если он задан. Тело ответа закрывает вызывающий.
func (c *Client) do(method, path string, req any) (*http.Response, error) {
	var body io.Reader
	if req != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(req); err != nil {
			return nil, err
		}
		body = &buf
	}

	r, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	r.Header.Set("Accept", "application/json")
	if req != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if c.session != nil {
		r.AddCookie(&http.Cookie{Name: c.session.Name, Value: c.session.Value})
	}

	return c.http.Do(r)
}

// submit отправляет запрос, на который сервер отвечает редиректом, и
// возвращает разобранный Location. Ответ без редиректа считается ошибкой.
func (c *Client) submit(method, path string, req any) (Outcome, *http.Response, error) {
	res, err := c.do(method, path, req)
	if err != nil {
		return Outcome{}, nil, err
	}
	defer res.Body.Close()

	if !isRedirect(res) {
		return Outcome{}, res, readAPIErrorBody(res)
	}
	out, err := parseOutcome(res)
	return out, res, err
}
