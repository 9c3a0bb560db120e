package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

type AuthHandler struct {
	Svc     *service.AuthService
	Cookies CookieConfig
	Metrics *metrics.Metrics
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Register(ctx, service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		h.Metrics.AuthEvent("register", "failed")
		return err
	}
	h.Metrics.AuthEvent("register", "ok")

	c.SetCookie(h.Cookies.CreateCookie(res.RefreshToken, res.RefreshExp))
	return c.JSON(http.StatusCreated, AuthResponse{
		Success:     true,
		User:        toUserResponse(res.User),
		AccessToken: res.AccessToken,
		ExpiresAt:   res.AccessExp.Unix(),
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, service.LoginInput{
		Contact:  req.Contact,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		h.Metrics.AuthEvent("login", "failed")
		return err
	}
	h.Metrics.AuthEvent("login", "ok")

	c.SetCookie(h.Cookies.CreateCookie(res.RefreshToken, res.RefreshExp))
	return c.JSON(http.StatusOK, AuthResponse{
		Success:     true,
		User:        toUserResponse(res.User),
		AccessToken: res.AccessToken,
		ExpiresAt:   res.AccessExp.Unix(),
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var raw string
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		raw = cookie.Value
	}

	res, err := h.Svc.Refresh(ctx, raw)
	if err != nil {
		h.Metrics.AuthEvent("refresh", "failed")
		if statusFor(err) == http.StatusForbidden {
			c.SetCookie(h.Cookies.DeleteCookie())
		}
		return err
	}
	h.Metrics.AuthEvent("refresh", "ok")

	return c.JSON(http.StatusOK, AuthResponse{
		Success:     true,
		User:        toUserResponse(res.User),
		AccessToken: res.AccessToken,
		ExpiresAt:   res.AccessExp.Unix(),
	})
}

// LogOut always succeeds for the client; a failed revoke is only logged.
func (h *AuthHandler) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		if err := h.Svc.LogOut(ctx, cookie.Value); err != nil {
			l.Error("logout_error", "error", err)
		}
	}
	h.Metrics.AuthEvent("logout", "ok")

	c.SetCookie(h.Cookies.DeleteCookie())
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "logged out successfully"})
}
