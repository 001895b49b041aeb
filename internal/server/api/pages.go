// Статические страницы и health-check
package api

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// Page отдаёт HTML-страницу name из Views.
func (h *Handler) Page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		http.ServeFileFS(w, r, h.Views, name)
	}
}

// HealthResponse — ответ /health.
type HealthResponse struct {
	Status string   `json:"status"`
	Failed []string `json:"failed,omitempty"`
}

// Health пингует базу (и Redis, если он используется).
//
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failed := h.Svc.Health.Check(ctx)
	if len(failed) == 0 {
		WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
		return
	}

	names := make([]string, 0, len(failed))
	for name, err := range failed {
		names = append(names, name)
		h.Log.Logger.Sugar().Warnw("dependency unhealthy", "dependency", name, "error", err)
	}
	sort.Strings(names)

	WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Failed: names})
}
