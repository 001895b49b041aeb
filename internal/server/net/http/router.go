// Package http реализует маршрутизацию HTTP-слоя сервера suchauftrag.
//
// Пакет отвечает за:
//   - регистрацию HTTP-маршрутов и настройку роутера (chi);
//   - логирование и метрики выполнения HTTP-запросов;
//   - подключение guard сессии к защищённым маршрутам.
package http

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/IvanChernomyrdin/suchauftrag/internal/server/api"
	"github.com/IvanChernomyrdin/suchauftrag/internal/server/metrics"
	"github.com/IvanChernomyrdin/suchauftrag/internal/server/middleware"
)

// Options — необязательные части роутера.
type Options struct {
	// MetricsPath — путь /metrics; пустой — метрики не отдаются.
	MetricsPath string
	// Static — файлы под /static/; nil — не отдаются.
	Static fs.FS
	// MaxBodyBytes ограничивает тело запроса; 0 — без ограничения.
	MaxBodyBytes int64
}

// NewRouter создаёт и настраивает HTTP-роутер сервера.
//
// Роутер регистрирует:
//   - публичные страницы и формы (/, /login, /register, /logout);
//   - группу маршрутов за guard сессии (/dashboard, /api/...);
//   - служебные /health, /metrics и /swagger/*.
func NewRouter(h *api.Handler, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	// логирование всех запросов
	r.Use(middleware.LoggerMiddleware(h.Log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.MetricsMiddleware())
	if opts.MaxBodyBytes > 0 {
		r.Use(chimw.RequestSize(opts.MaxBodyBytes))
	}

	// служебные
	r.Get("/health", h.Health)
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	if opts.MetricsPath != "" {
		r.Handle(opts.MetricsPath, metrics.Handler())
	}
	if opts.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(opts.Static)))
	}

	// Публичные пути
	r.Get("/", h.Page("home.html"))
	r.Get("/login", h.Page("login.html"))
	r.Post("/login", h.Login)
	r.Get("/register", h.Page("register.html"))
	r.Post("/register", h.Register)
	r.Get("/logout", h.Logout)

	// защищены пути
	r.With(middleware.RequireSession(h.Cookie, h.Svc.Auth, h.Log)).
		Get("/dashboard", h.Page("dashboard.html"))
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireAPISession(h.Cookie, h.Svc.Auth, h.Log))

		r.Get("/suchauftraege", h.ListOrders)
		r.Post("/suchauftrag", h.CreateOrder)
	})

	return r
}
