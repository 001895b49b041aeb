// HTTP-хендлеры регистрации, логина и logout
package api

import (
	"context"
	"errors"
	"net/http"

	serr "github.com/IvanChernomyrdin/suchauftrag/internal/shared/errors"
)

// Адреса редиректов страниц авторизации.
const (
	registerOK   = "/login?registered=1"
	registerFail = "/register?error=1"
	loginOK      = "/dashboard"
	loginFail    = "/login?error=1"
	logoutDone   = "/"
)

// CredentialsRequest — тело POST /register и POST /login (форма или JSON).
type CredentialsRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

func decodeCredentials(r *http.Request) (CredentialsRequest, error) {
	var req CredentialsRequest
	err := decodeBody(r, &req, func(get func(string) string) {
		req.Email = get("email")
		req.Password = get("password")
	})
	if err != nil {
		return req, err
	}
	return req, validateStruct(req)
}

// Register обрабатывает регистрацию пользователя.
//
// @Summary      Register
// @Description  Creates a user. Any failure (including a taken email) yields the same redirect.
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Param        email     formData string true "Email"
// @Param        password  formData string true "Password"
// @Success      302 "Location: /login?registered=1"
// @Failure      302 "Location: /register?error=1"
// @Router       /register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		h.Log.Logger.Sugar().Infow("register rejected", "error", err)
		redirect(w, r, registerFail)
		return
	}

	// начатая вставка должна завершиться, даже если клиент ушёл
	ctx := context.WithoutCancel(r.Context())
	if _, err := h.Svc.Auth.Register(ctx, req.Email, req.Password); err != nil {
		h.Log.Logger.Sugar().Errorw("register failed", "error", err)
		redirect(w, r, registerFail)
		return
	}

	redirect(w, r, registerOK)
}

// Login проверяет учётные данные и выдаёт cookie сессии.
//
// @Summary      Login
// @Description  Verifies credentials and sets the session cookie. Unknown email and wrong password look the same.
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Param        email     formData string true "Email"
// @Param        password  formData string true "Password"
// @Success      302 "Location: /dashboard, Set-Cookie: session"
// @Failure      302 "Location: /login?error=1"
// @Router       /login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		h.Log.Logger.Sugar().Infow("login rejected", "error", err)
		redirect(w, r, loginFail)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	sess, err := h.Svc.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, serr.ErrStoreUnavailable) || errors.Is(err, serr.ErrInternal) {
			h.Log.Logger.Sugar().Errorw("login failed", "error", err)
		} else {
			h.Log.Logger.Sugar().Infow("login denied", "error", err)
		}
		redirect(w, r, loginFail)
		return
	}

	// предыдущая сессия этого браузера больше не нужна
	if old, ok := h.Cookie.Token(r); ok {
		if err := h.Svc.Auth.Logout(ctx, old); err != nil {
			h.Log.Logger.Sugar().Warnw("drop previous session failed", "error", err)
		}
	}

	if err := h.Cookie.Set(w, sess.Token, sess.ExpiresAt); err != nil {
		h.Log.Logger.Sugar().Errorw("sign session cookie failed", "error", err, "user_id", sess.UserID.String())
		_ = h.Svc.Auth.Logout(ctx, sess.Token)
		redirect(w, r, loginFail)
		return
	}

	redirect(w, r, loginOK)
}

// Logout удаляет сессию и cookie. Без сессии тоже редиректит на /.
//
// @Summary      Logout
// @Tags         auth
// @Success      302 "Location: /"
// @Router       /logout [get]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := h.Cookie.Token(r); ok {
		if err := h.Svc.Auth.Logout(context.WithoutCancel(r.Context()), token); err != nil {
			h.Log.Logger.Sugar().Errorw("logout failed", "error", err)
		}
	}
	h.Cookie.Clear(w)
	redirect(w, r, logoutDone)
}
