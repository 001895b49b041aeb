package middleware_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/suchauftrag/internal/server/crypto"
	"github.com/IvanChernomyrdin/suchauftrag/internal/server/middleware"
	serr "github.com/IvanChernomyrdin/suchauftrag/internal/shared/errors"
	"github.com/IvanChernomyrdin/suchauftrag/internal/shared/logger"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// fakeAuth — сессии в памяти
type fakeAuth struct {
	sessions map[string]uuid.UUID
	err      error
}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	id, ok := f.sessions[token]
	if !ok {
		return uuid.Nil, serr.ErrUnauthorized
	}
	return id, nil
}

func testCookie() middleware.SessionCookie {
	return middleware.SessionCookie{
		Name:  "sid",
		Codec: crypto.CookieCodec{Issuer: "suchauftrag", SigningKey: testSecret},
		TTL:   24 * time.Hour,
	}
}

func testLogger(t *testing.T) *logger.HTTPLogger {
	return logger.New(logger.Options{File: t.TempDir() + "/test.log"})
}

// cookieFor выставляет cookie через SessionCookie.Set и возвращает её
func cookieFor(t *testing.T, sc middleware.SessionCookie, token string) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, sc.Set(rr, token, time.Now().Add(sc.TTL)))
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSessionCookie_Set(t *testing.T) {
	sc := testCookie()
	ck := cookieFor(t, sc, "tok")

	require.Equal(t, "sid", ck.Name)
	require.True(t, ck.HttpOnly)
	require.False(t, ck.Secure)
	require.Equal(t, 86400, ck.MaxAge)
	require.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	require.NotEqual(t, "tok", ck.Value)
}

func TestRequireSession(t *testing.T) {
	sc := testCookie()
	alice := uuid.New()
	auth := &fakeAuth{sessions: map[string]uuid.UUID{"alice-token": alice}}

	var reached bool
	var gotID uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		gotID, _ = middleware.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := middleware.RequireSession(sc, auth, testLogger(t))(next)

	t.Run("valid session", func(t *testing.T) {
		reached = false
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(cookieFor(t, sc, "alice-token"))
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		require.True(t, reached)
		require.Equal(t, alice, gotID)
	})

	t.Run("no cookie", func(t *testing.T) {
		reached = false
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/suchauftraege", nil))

		require.Equal(t, http.StatusFound, rr.Code)
		require.Equal(t, "/login", rr.Header().Get("Location"))
		require.False(t, reached)
		require.Empty(t, rr.Result().Cookies())
	})

	t.Run("forged cookie", func(t *testing.T) {
		reached = false
		forged := middleware.SessionCookie{Name: "sid", Codec: crypto.CookieCodec{SigningKey: "another-secret-another-secret-xx"}, TTL: time.Hour}

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(cookieFor(t, forged, "alice-token"))
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		require.Equal(t, http.StatusFound, rr.Code)
		require.False(t, reached)

		// cookie стирается
		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, -1, cookies[0].MaxAge)
	})

	t.Run("revoked session", func(t *testing.T) {
		reached = false
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(cookieFor(t, sc, "logged-out-token"))
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		require.Equal(t, http.StatusFound, rr.Code)
		require.Equal(t, "/login", rr.Header().Get("Location"))
		require.False(t, reached)
	})
}

// хранилище недоступно: страница уводит на /login, API отвечает 500 JSON
func TestRequireSession_StoreDown(t *testing.T) {
	sc := testCookie()
	auth := &fakeAuth{err: fmt.Errorf("%w: connection refused", serr.ErrStoreUnavailable)}

	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	})

	t.Run("page", func(t *testing.T) {
		called = false
		h := middleware.RequireSession(sc, auth, testLogger(t))(next)

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(cookieFor(t, sc, "tok"))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		require.Equal(t, http.StatusFound, rr.Code)
		require.Equal(t, "/login", rr.Header().Get("Location"))
		require.Empty(t, rr.Result().Cookies())
		require.False(t, called)
	})

	t.Run("api", func(t *testing.T) {
		called = false
		h := middleware.RequireAPISession(sc, auth, testLogger(t))(next)

		req := httptest.NewRequest(http.MethodGet, "/api/suchauftraege", nil)
		req.AddCookie(cookieFor(t, sc, "tok"))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		require.JSONEq(t, `{"error":"internal error"}`, rr.Body.String())
		require.Empty(t, rr.Result().Cookies())
		require.False(t, called)
	})
}

// API без сессии ведёт себя как страница: 302 на /login
func TestRequireAPISession_NoSession(t *testing.T) {
	sc := testCookie()
	h := middleware.RequireAPISession(sc, &fakeAuth{sessions: map[string]uuid.UUID{}}, testLogger(t))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}),
	)

	for _, withCookie := range []bool{false, true} {
		req := httptest.NewRequest(http.MethodGet, "/api/suchauftraege", nil)
		if withCookie {
			req.AddCookie(cookieFor(t, sc, "unknown-token"))
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		require.Equal(t, http.StatusFound, rr.Code)
		require.Equal(t, "/login", rr.Header().Get("Location"))
	}
}

func TestUserIDFromContext(t *testing.T) {
	_, ok := middleware.UserIDFromContext(context.Background())
	require.False(t, ok)

	_, ok = middleware.UserIDFromContext(middleware.WithUserID(context.Background(), uuid.Nil))
	require.False(t, ok)

	id := uuid.New()
	got, ok := middleware.UserIDFromContext(middleware.WithUserID(context.Background(), id))
	require.True(t, ok)
	require.Equal(t, id, got)
}
