package handler

import (
	"errors"
	"fmt"
	"net/http"

	"filemart/internal/middleware"
	"filemart/internal/model"
	"filemart/internal/service"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

func (h *CheckoutHandler) Start(c echo.Context) error {
	ctx := c.Request().Context()

	p := middleware.PrincipalFrom(c)
	resp, err := h.checkoutService.Start(ctx, p)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, resp)
}

// Confirm is the gateway's return target. The customer's browser lands
// here; the real proof of payment is the commit round trip inside the
// service. The gateway signals an abort with TBK_TOKEN instead of token_ws.
func (h *CheckoutHandler) Confirm(c echo.Context) error {
	ctx := c.Request().Context()

	p := middleware.PrincipalFrom(c)

	if aborted := c.QueryParam("TBK_TOKEN"); aborted != "" {
		h.checkoutService.Cancel(ctx, p, c.QueryParam("TBK_ORDEN_COMPRA"))
		return c.HTML(http.StatusOK, resultPage("Payment cancelled", "Your cart is untouched. You can try again whenever you like."))
	}

	confirmationToken := c.QueryParam("token_ws")
	if confirmationToken == "" {
		return c.String(http.StatusBadRequest, "missing confirmation token")
	}

	receipt, err := h.checkoutService.Confirm(ctx, p, confirmationToken)
	switch {
	case errors.Is(err, model.ErrDuplicateCallback):
		// Already reconciled; success as far as anyone is concerned.
		return c.HTML(http.StatusOK, resultPage("Payment complete", "This payment was already processed. Your files are in your downloads."))
	case errors.Is(err, model.ErrPaymentRejected):
		return c.HTML(http.StatusOK, resultPage("Payment declined", "Your bank declined the payment. Your cart is untouched."))
	case err != nil:
		return httpError(err)
	}

	body := fmt.Sprintf("Order %s confirmed. %d file(s) are now in your downloads.",
		receipt.BuyOrder, len(receipt.ProductIDs))
	return c.HTML(http.StatusOK, resultPage("Payment complete", body))
}

func resultPage(title, body string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<meta charset="utf-8">
		<title>%s</title>
		<style>
			body {
				font-family: Arial, sans-serif;
				text-align: center;
				margin-top: 80px;
			}
		</style>
	</head>
	<body>
		<h2>%s</h2>
		<p>%s</p>
		<p><a href="/">Back to the store</a></p>
	</body>
	</html>
	`, title, title, body)
}
