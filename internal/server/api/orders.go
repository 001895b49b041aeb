// HTTP-хендлеры поисковых заказов
package api

import (
	"context"
	"net/http"

	"github.com/IvanChernomyrdin/suchauftrag/internal/server/middleware"
	serr "github.com/IvanChernomyrdin/suchauftrag/internal/shared/errors"
	"github.com/IvanChernomyrdin/suchauftrag/internal/shared/models"
)

const (
	orderOK   = "/?success=1"
	orderFail = "/?error=1"
)

// ListOrders возвращает заказы текущего пользователя, новые первыми.
//
// Пользователь определяется по сессии (guard).
//
// @Summary      List search orders
// @Tags         orders
// @Produce      json
// @Success      200 {array}  models.SearchOrder
// @Failure      302 "Location: /login (no session)"
// @Failure      500 {object} ErrorResponse
// @Router       /api/suchauftraege [get]
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, serr.ErrUnauthorized)
		return
	}

	orders, err := h.Svc.Orders.ListOrders(r.Context(), userID)
	if err != nil {
		h.Log.Logger.Sugar().Errorw(
			"list orders failed",
			"error", err,
			"user_id", userID.String(),
		)
		WriteError(w, http.StatusInternalServerError, serr.ErrInternal)
		return
	}

	WriteJSON(w, http.StatusOK, orders)
}

// CreateOrder создаёт заказ текущего пользователя.
//
// @Summary      Create search order
// @Tags         orders
// @Accept       json,x-www-form-urlencoded
// @Param        request body models.CreateOrderRequest true "Address"
// @Success      302 "Location: /?success=1"
// @Failure      302 "Location: /?error=1"
// @Router       /api/suchauftrag [post]
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		redirect(w, r, middleware.LoginPath)
		return
	}

	var req models.CreateOrderRequest
	err := decodeBody(r, &req, func(get func(string) string) {
		req.PostalCode = get("plz")
		req.City = get("stadt")
		req.Street = get("strasse")
		req.HouseNumber = get("hausnummer")
	})
	if err == nil {
		err = validateStruct(req)
	}
	if err != nil {
		h.Log.Logger.Sugar().Infow("create order rejected", "error", err, "user_id", userID.String())
		redirect(w, r, orderFail)
		return
	}

	id, err := h.Svc.Orders.CreateOrder(context.WithoutCancel(r.Context()), userID, req.Address())
	if err != nil {
		h.Log.Logger.Sugar().Errorw(
			"create order failed",
			"error", err,
			"user_id", userID.String(),
		)
		redirect(w, r, orderFail)
		return
	}

	h.Log.Logger.Sugar().Debugw("order created", "id", id.String(), "user_id", userID.String())
	redirect(w, r, orderOK)
}
