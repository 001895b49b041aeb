package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/suchauftrag/internal/server/middleware"
	"github.com/IvanChernomyrdin/suchauftrag/internal/shared/logger"
)

// Статус по умолчанию и размер
func TestResponseWriter_Write_DefaultStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	w := &middleware.ResponseWriter{ResponseWriter: rr}

	body := []byte("hello")
	n, err := w.Write(body)

	require.NoError(t, err)
	require.Equal(t, len(body), n)
	require.Equal(t, http.StatusOK, w.Status)
	require.Equal(t, len(body), w.Size)
}

// вспомогательная функция
func testHandler(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

// проверка корректного прохода статуса и тела через мидлу, запись попадает в файл
func TestLoggerMiddleware(t *testing.T) {
	file := filepath.Join(t.TempDir(), "http.log")
	log := logger.New(logger.Options{File: file, Format: "json"})

	handler := middleware.LoggerMiddleware(log)(testHandler(http.StatusTeapot, "tea"))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))

	require.Equal(t, http.StatusTeapot, rr.Code)
	require.Equal(t, "tea", rr.Body.String())

	require.NoError(t, log.Sync())
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(data), `"status":418`)
	require.Contains(t, string(data), `"uri":"/test"`)
}

func TestMetricsMiddleware_PassesThrough(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.MetricsMiddleware())
	r.Get("/api/suchauftraege", testHandler(http.StatusOK, "[]").ServeHTTP)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/suchauftraege", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "[]", rr.Body.String())
}
