package handler

import (
	"net/http"
	"time"

	"filemart/internal/dto"
	"filemart/internal/repository"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	purchaseRepo repository.PurchaseRepository
}

func NewAdminHandler(purchaseRepo repository.PurchaseRepository) *AdminHandler {
	return &AdminHandler{
		purchaseRepo: purchaseRepo,
	}
}

// ListPurchases is the back-office sales report. Reachable only behind the
// admin token gate.
func (h *AdminHandler) ListPurchases(c echo.Context) error {
	ctx := c.Request().Context()

	purchases, err := h.purchaseRepo.ListAll(ctx, 200)
	if err != nil {
		return httpError(err)
	}

	resp := make([]dto.PurchaseResponse, len(purchases))
	for i, p := range purchases {
		resp[i] = dto.PurchaseResponse{
			ProductID: p.ProductID,
			BuyOrder:  p.BuyOrder,
			Email:     p.Email,
			Amount:    p.Amount,
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
		}
	}

	return c.JSON(http.StatusOK, resp)
}
