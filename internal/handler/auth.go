package handler

import (
	"errors"
	"net/http"

	"filemart/internal/dto"
	"filemart/internal/identity"
	"filemart/internal/middleware"
	"filemart/internal/service"
	"filemart/internal/token"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	authService service.AuthService
	resolver    *identity.Resolver
}

func NewAuthHandler(authService service.AuthService, resolver *identity.Resolver) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		resolver:    resolver,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.authService.Register(ctx, req.Email, req.Name, req.Password); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusCreated)
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	signed, err := h.authService.LoginUser(ctx, req.Email, req.Password)
	if errors.Is(err, service.ErrBadCredentials) {
		return echo.NewHTTPError(http.StatusUnauthorized, "bad credentials")
	}
	if err != nil {
		return httpError(err)
	}

	c.SetCookie(h.resolver.SessionCookie(identity.UserCookie, signed, token.UserTTL))
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) AdminLogin(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	signed, err := h.authService.LoginAdmin(ctx, req.Email, req.Password)
	if errors.Is(err, service.ErrBadCredentials) {
		return echo.NewHTTPError(http.StatusUnauthorized, "bad credentials")
	}
	if err != nil {
		return httpError(err)
	}

	c.SetCookie(h.resolver.SessionCookie(identity.AdminCookie, signed, token.AdminTTL))
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.resolver.ClearCookie(identity.UserCookie))
	return c.NoContent(http.StatusNoContent)
}

// Session reports who the cookies say the caller is. Useful for the UI;
// guests and anonymous visitors get their kind back, nothing more.
func (h *AuthHandler) Session(c echo.Context) error {
	p := middleware.PrincipalFrom(c)
	return c.JSON(http.StatusOK, &dto.SessionResponse{
		Email: p.Email,
		Name:  p.Name,
		Kind:  p.Kind.String(),
	})
}
