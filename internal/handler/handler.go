package handler

import (
	"errors"
	"log"
	"net/http"

	"filemart/internal/model"

	"github.com/labstack/echo/v4"
)

// httpError maps the domain error taxonomy to status codes with generic
// bodies. Diagnostic detail is logged, never returned to the caller.
func httpError(err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidToken), errors.Is(err, model.ErrIdentityRequired):
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	case errors.Is(err, model.ErrNotEntitled):
		return echo.NewHTTPError(http.StatusForbidden, "not available")
	case errors.Is(err, model.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, model.ErrUpstream):
		log.Printf("upstream failure: %v", err)
		return echo.NewHTTPError(http.StatusBadGateway, "temporarily unavailable")
	default:
		log.Printf("request failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "request failed")
	}
}
