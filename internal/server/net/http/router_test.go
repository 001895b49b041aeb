package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/suchauftrag/internal/server/api"
	"github.com/IvanChernomyrdin/suchauftrag/internal/server/config"
	"github.com/IvanChernomyrdin/suchauftrag/internal/server/crypto"
	"github.com/IvanChernomyrdin/suchauftrag/internal/server/middleware"
	"github.com/IvanChernomyrdin/suchauftrag/internal/server/service"
	serr "github.com/IvanChernomyrdin/suchauftrag/internal/shared/errors"
	"github.com/IvanChernomyrdin/suchauftrag/internal/shared/logger"
	"github.com/IvanChernomyrdin/suchauftrag/internal/shared/models"
	"github.com/IvanChernomyrdin/suchauftrag/web"
)

// memStore — хранилище в памяти, реализует все репозитории сервиса.
type memStore struct {
	mu       sync.Mutex
	users    map[string]memUser
	sessions map[string]memSession
	orders   []models.SearchOrder
	clock    time.Time
	// sessionsDown имитирует недоступное хранилище сессий
	sessionsDown bool
}

func (s *memStore) setSessionsDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionsDown = down
}

func (s *memStore) user(email string) memUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[email]
}

func (s *memStore) counts() (sessions, orders int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions), len(s.orders)
}

type memUser struct {
	id   uuid.UUID
	hash string
}

type memSession struct {
	userID    uuid.UUID
	expiresAt time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]memUser{},
		sessions: map[string]memSession{},
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

type memUsers struct{ *memStore }
type memSessions struct{ *memStore }
type memOrders struct{ *memStore }

func (s memUsers) Create(_ context.Context, email, hash string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[email]; ok {
		return uuid.Nil, serr.ErrAlreadyExists
	}
	id := uuid.New()
	s.users[email] = memUser{id: id, hash: hash}
	return id, nil
}

func (s memUsers) GetByEmail(_ context.Context, email string) (uuid.UUID, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return uuid.Nil, "", serr.ErrNotFound
	}
	return u.id, u.hash, nil
}

func (s memSessions) Create(_ context.Context, h []byte, userID uuid.UUID, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[string(h)] = memSession{userID: userID, expiresAt: exp}
	return nil
}

func (s memSessions) Get(_ context.Context, h []byte) (uuid.UUID, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionsDown {
		return uuid.Nil, time.Time{}, fmt.Errorf("%w: connection refused", serr.ErrStoreUnavailable)
	}
	sess, ok := s.sessions[string(h)]
	if !ok {
		return uuid.Nil, time.Time{}, serr.ErrUnauthorized
	}
	return sess.userID, sess.expiresAt, nil
}

func (s memSessions) Delete(_ context.Context, h []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, string(h))
	return nil
}

func (s memSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, v := range s.sessions {
		if !now.Before(v.expiresAt) {
			delete(s.sessions, k)
			n++
		}
	}
	return n, nil
}

func (s memOrders) Create(_ context.Context, userID uuid.UUID, addr models.Address) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.clock = s.clock.Add(time.Second)
	s.orders = append(s.orders, models.SearchOrder{
		ID: id.String(), UserID: userID.String(), Address: addr, CreatedAt: s.clock,
	})
	return id, nil
}

func (s memOrders) ListByUser(_ context.Context, userID uuid.UUID) ([]models.SearchOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.SearchOrder{}
	for _, o := range s.orders {
		if o.UserID == userID.String() {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s memUsers) Ping(context.Context) error { return nil }

func newTestServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()

	store := newMemStore()

	cfg := &config.Config{}
	cfg.Auth.SessionTTL = 24 * time.Hour
	cfg.Password.Hasher = "bcrypt"
	cfg.Password.Bcrypt.Cost = 4

	svc := service.NewServices(service.Repositories{
		Users:    memUsers{store},
		Sessions: memSessions{store},
		Orders:   memOrders{store},
		Health:   map[string]service.HealthRepo{"postgres": memUsers{store}},
	}, cfg)

	cookie := middleware.SessionCookie{
		Name:  "sid",
		Codec: crypto.CookieCodec{Issuer: "suchauftrag", SigningKey: "0123456789abcdef0123456789abcdef"},
		TTL:   svc.Auth.TTL(),
	}
	log := logger.New(logger.Options{File: t.TempDir() + "/http.log"})

	h := api.NewHandler(svc, log, cookie, web.Views())
	srv := httptest.NewServer(NewRouter(h, Options{MetricsPath: "/metrics", Static: web.Static(), MaxBodyBytes: 1 << 20}))
	t.Cleanup(srv.Close)

	return srv, store
}

// newClient — браузер: хранит cookie, редиректы не выполняет
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, c *http.Client, u string, vals url.Values) *http.Response {
	t.Helper()
	resp, err := c.PostForm(u, vals)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func get(t *testing.T, c *http.Client, u string) *http.Response {
	t.Helper()
	resp, err := c.Get(u)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func creds(email, password string) url.Values {
	return url.Values{"email": {email}, "password": {password}}
}

func listOrders(t *testing.T, c *http.Client, base string) []models.SearchOrder {
	t.Helper()
	resp := get(t, c, base+"/api/suchauftraege")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var orders []models.SearchOrder
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&orders))
	return orders
}

// сценарий alice: регистрация, вход, пустой список, создание, список из одного заказа
func TestRouter_AliceScenario(t *testing.T) {
	srv, store := newTestServer(t)
	c := newClient(t)

	resp := postForm(t, c, srv.URL+"/register", creds("alice@example.com", "pw123"))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login?registered=1", resp.Header.Get("Location"))

	resp = postForm(t, c, srv.URL+"/login", creds("alice@example.com", "pw123"))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))
	// cookie живёт столько же, сколько серверная сессия
	require.Len(t, resp.Cookies(), 1)
	require.Equal(t, 86400, resp.Cookies()[0].MaxAge)

	// пустой список — [], а не null
	resp = get(t, c, srv.URL+"/api/suchauftraege")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	require.Equal(t, "[]", string(raw))

	body := `{"plz":"12345","stadt":"Berlin","strasse":"Hauptstr","hausnummer":"1"}`
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/suchauftrag", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err = c.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/?success=1", resp.Header.Get("Location"))

	orders := listOrders(t, c, srv.URL)
	require.Len(t, orders, 1)
	require.Equal(t, models.Address{PostalCode: "12345", City: "Berlin", Street: "Hauptstr", HouseNumber: "1"}, orders[0].Address)
	require.Equal(t, store.user("alice@example.com").id.String(), orders[0].UserID)

	resp = get(t, c, srv.URL+"/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

// неверный пароль и неизвестный email дают одинаковый ответ
func TestRouter_LoginFailuresLookTheSame(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newClient(t)

	postForm(t, c, srv.URL+"/register", creds("alice@example.com", "pw123"))

	wrong := postForm(t, c, srv.URL+"/login", creds("alice@example.com", "nope"))
	unknown := postForm(t, c, srv.URL+"/login", creds("ghost@example.com", "nope"))

	require.Equal(t, wrong.StatusCode, unknown.StatusCode)
	require.Equal(t, "/login?error=1", wrong.Header.Get("Location"))
	require.Equal(t, wrong.Header.Get("Location"), unknown.Header.Get("Location"))
	require.Empty(t, wrong.Cookies())
	require.Empty(t, unknown.Cookies())
}

// повторная регистрация не трогает первого пользователя
func TestRouter_DuplicateRegistration(t *testing.T) {
	srv, store := newTestServer(t)
	c := newClient(t)

	postForm(t, c, srv.URL+"/register", creds("alice@example.com", "pw123"))
	first := store.user("alice@example.com")

	resp := postForm(t, c, srv.URL+"/register", creds("alice@example.com", "other"))
	require.Equal(t, "/register?error=1", resp.Header.Get("Location"))
	require.Equal(t, first, store.user("alice@example.com"))

	resp = postForm(t, c, srv.URL+"/login", creds("alice@example.com", "pw123"))
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

// пароль длиннее 72 байт: регистрация и вход проходят
func TestRouter_LongPassword(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newClient(t)
	pw := strings.Repeat("a", 73)

	resp := postForm(t, c, srv.URL+"/register", creds("alice@example.com", pw))
	require.Equal(t, "/login?registered=1", resp.Header.Get("Location"))

	resp = postForm(t, c, srv.URL+"/login", creds("alice@example.com", pw))
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))
	require.Empty(t, listOrders(t, c, srv.URL))
}

// хранилище сессий недоступно: API отвечает 500 JSON, страница уводит на /login
func TestRouter_SessionStoreDown(t *testing.T) {
	srv, store := newTestServer(t)
	c := newClient(t)

	postForm(t, c, srv.URL+"/register", creds("alice@example.com", "pw"))
	postForm(t, c, srv.URL+"/login", creds("alice@example.com", "pw"))
	store.setSessionsDown(true)

	resp := get(t, c, srv.URL+"/api/suchauftraege")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "internal error", body.Error)

	resp = get(t, c, srv.URL+"/dashboard")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	// хранилище вернулось — сессия снова действует
	store.setSessionsDown(false)
	require.Empty(t, listOrders(t, c, srv.URL))
}

// без сессии защищённые маршруты уводят на /login
func TestRouter_ProtectedWithoutSession(t *testing.T) {
	srv, store := newTestServer(t)
	c := newClient(t)

	for _, path := range []string{"/dashboard", "/api/suchauftraege"} {
		resp := get(t, c, srv.URL+path)
		require.Equal(t, http.StatusFound, resp.StatusCode, path)
		require.Equal(t, "/login", resp.Header.Get("Location"), path)
	}

	resp := postForm(t, c, srv.URL+"/api/suchauftrag", url.Values{"plz": {"1"}, "stadt": {"x"}, "strasse": {"y"}, "hausnummer": {"2"}})
	require.Equal(t, "/login", resp.Header.Get("Location"))
	_, n := store.counts()
	require.Zero(t, n)
}

// после logout всё как до входа
func TestRouter_LogoutThenProtected(t *testing.T) {
	srv, store := newTestServer(t)
	c := newClient(t)

	postForm(t, c, srv.URL+"/register", creds("alice@example.com", "pw123"))
	postForm(t, c, srv.URL+"/login", creds("alice@example.com", "pw123"))
	sessions, _ := store.counts()
	require.Equal(t, 1, sessions)

	resp := get(t, c, srv.URL+"/logout")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
	sessions, _ = store.counts()
	require.Zero(t, sessions)

	resp = get(t, c, srv.URL+"/api/suchauftraege")
	require.Equal(t, "/login", resp.Header.Get("Location"))

	// повторный logout без сессии тоже успешен
	resp = get(t, c, srv.URL+"/logout")
	require.Equal(t, "/", resp.Header.Get("Location"))
}

// каждый видит только свои заказы, user_id из тела игнорируется
func TestRouter_OrdersScopedToSession(t *testing.T) {
	srv, store := newTestServer(t)
	alice, bob := newClient(t), newClient(t)

	postForm(t, alice, srv.URL+"/register", creds("alice@example.com", "pw"))
	postForm(t, bob, srv.URL+"/register", creds("bob@example.com", "pw"))
	postForm(t, alice, srv.URL+"/login", creds("alice@example.com", "pw"))
	postForm(t, bob, srv.URL+"/login", creds("bob@example.com", "pw"))

	aliceID := store.user("alice@example.com").id.String()
	bobID := store.user("bob@example.com").id.String()

	for _, city := range []string{"Berlin", "Hamburg", "München"} {
		resp := postForm(t, alice, srv.URL+"/api/suchauftrag", url.Values{
			"plz": {"1"}, "stadt": {city}, "strasse": {"s"}, "hausnummer": {"1"}, "user_id": {bobID},
		})
		require.Equal(t, "/?success=1", resp.Header.Get("Location"))
	}

	orders := listOrders(t, alice, srv.URL)
	require.Len(t, orders, 3)
	require.Equal(t, "München", orders[0].Address.City)
	require.Equal(t, "Berlin", orders[2].Address.City)
	for _, o := range orders {
		require.Equal(t, aliceID, o.UserID)
	}

	require.Empty(t, listOrders(t, bob, srv.URL))
}

// пустые поля адреса: ошибка и ни одной строки
func TestRouter_CreateOrderMissingFields(t *testing.T) {
	srv, store := newTestServer(t)
	c := newClient(t)

	postForm(t, c, srv.URL+"/register", creds("alice@example.com", "pw"))
	postForm(t, c, srv.URL+"/login", creds("alice@example.com", "pw"))

	resp := postForm(t, c, srv.URL+"/api/suchauftrag", url.Values{"plz": {"12345"}})
	require.Equal(t, "/?error=1", resp.Header.Get("Location"))
	_, n := store.counts()
	require.Zero(t, n)
}

func TestRouter_PublicPagesAndService(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newClient(t)

	for _, path := range []string{"/", "/login", "/register", "/static/style.css", "/health", "/metrics"} {
		resp := get(t, c, srv.URL+path)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp := get(t, c, srv.URL+"/login")
	require.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))
}
