// Package api реализует HTTP-слой сервера suchauftrag.
//
// Пакет отвечает за:
//   - разбор форм и JSON-тел запросов и проверку обязательных полей;
//   - вызов сервисного слоя;
//   - перевод результата в редирект с флагом (страницы) или JSON (API);
//   - выдачу статических страниц и /health.
//
// Внутренние детали ошибок клиенту не отдаются, они пишутся в лог.
package api

import (
	"encoding/json"
	"io/fs"
	"net/http"

	"github.com/IvanChernomyrdin/suchauftrag/internal/server/middleware"
	"github.com/IvanChernomyrdin/suchauftrag/internal/server/service"
	"github.com/IvanChernomyrdin/suchauftrag/internal/shared/logger"
	"github.com/IvanChernomyrdin/suchauftrag/internal/shared/models"
)

// Каждый API-ответ отдаётся в JSON.
// Вынес Content-Type и JSON для удобства
const (
	JsonContentType string = "application/json"
	ContentType     string = "Content-Type"
)

// ErrorResponse — тело ответа с ошибкой.
type ErrorResponse = models.ErrorResponse

// Handler агрегирует зависимости HTTP-слоя и предоставляет методы-хендлеры.
//
// Handler содержит:
//   - Svc: сервисный слой (бизнес-логика);
//   - Log: логгер для записи событий и ошибок;
//   - Cookie: параметры cookie сессии;
//   - Views: HTML-страницы.
type Handler struct {
	Svc    *service.Services
	Log    *logger.HTTPLogger
	Cookie middleware.SessionCookie
	Views  fs.FS
}

// NewHandler создаёт экземпляр Handler с переданными зависимостями.
func NewHandler(svc *service.Services, log *logger.HTTPLogger, cookie middleware.SessionCookie, views fs.FS) *Handler {
	return &Handler{
		Svc:    svc,
		Log:    log,
		Cookie: cookie,
		Views:  views,
	}
}

// WriteJSON пишет v как JSON с указанным статусом.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(ContentType, JsonContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Вспомогательная функция вывода ошибки
func WriteError(w http.ResponseWriter, status int, err error) {
	WriteJSON(w, status, ErrorResponse{Error: err.Error()})
}

// redirect — 302 на target. Все изменения состояния через формы заканчиваются им.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusFound)
}
