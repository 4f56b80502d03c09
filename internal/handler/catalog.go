package handler

import (
	"net/http"

	"filemart/internal/dto"
	"filemart/internal/repository"
	"filemart/internal/service"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	productRepo repository.ProductRepository
	rates       service.RateService
}

func NewCatalogHandler(productRepo repository.ProductRepository, rates service.RateService) *CatalogHandler {
	return &CatalogHandler{
		productRepo: productRepo,
		rates:       rates,
	}
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.productRepo.All(ctx)
	if err != nil {
		return httpError(err)
	}

	resp := make([]dto.ProductResponse, len(products))
	for i, p := range products {
		resp[i] = dto.ProductResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Currency:    p.Currency,
		}
		if usd, ok := h.rates.ToUSD(ctx, p.Price); ok {
			resp[i].PriceUSD = usd
		}
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	product, err := h.productRepo.FindByID(ctx, c.Param("productID"))
	if err != nil {
		return httpError(err)
	}

	resp := dto.ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Currency:    product.Currency,
	}
	if usd, ok := h.rates.ToUSD(ctx, product.Price); ok {
		resp.PriceUSD = usd
	}

	return c.JSON(http.StatusOK, resp)
}
