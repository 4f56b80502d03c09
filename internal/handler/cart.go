package handler

import (
	"net/http"

	"filemart/internal/dto"
	"filemart/internal/identity"
	"filemart/internal/middleware"
	"filemart/internal/service"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	cartService service.CartService
	resolver    *identity.Resolver
}

func NewCartHandler(cartService service.CartService, resolver *identity.Resolver) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		resolver:    resolver,
	}
}

// AddItem is the first point where an identity has to exist: an anonymous
// visitor gets a guest id minted here, carried only by the cookie set on
// this response.
func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CartAddRequest
	if err := c.Bind(&req); err != nil || req.ProductID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	p := middleware.EnsureCartIdentity(c, h.resolver)

	if err := h.cartService.Add(ctx, p.CartKey(), req.ProductID); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	p := middleware.PrincipalFrom(c)
	if err := h.cartService.Remove(ctx, p.CartKey(), c.Param("productID")); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	p := middleware.PrincipalFrom(c)
	cart, err := h.cartService.Get(ctx, p.CartKey())
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, cart)
}
