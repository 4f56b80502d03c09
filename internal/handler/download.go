package handler

import (
	"net/http"
	"net/url"

	"filemart/internal/client"
	"filemart/internal/middleware"
	"filemart/internal/service"

	"github.com/labstack/echo/v4"
)

type DownloadHandler struct {
	downloadService service.DownloadService
	verifier        client.HandleVerifier
}

func NewDownloadHandler(downloadService service.DownloadService, verifier client.HandleVerifier) *DownloadHandler {
	return &DownloadHandler{
		downloadService: downloadService,
		verifier:        verifier,
	}
}

// Download authorizes one product and redirects to the signed handle.
func (h *DownloadHandler) Download(c echo.Context) error {
	ctx := c.Request().Context()

	p := middleware.PrincipalFrom(c)
	handleURL, err := h.downloadService.Authorize(ctx, p, c.Param("productID"))
	if err != nil {
		return httpError(err)
	}

	return c.Redirect(http.StatusFound, handleURL)
}

// DownloadAll streams a zip of every purchase directly into the response.
func (h *DownloadHandler) DownloadAll(c echo.Context) error {
	ctx := c.Request().Context()

	p := middleware.PrincipalFrom(c)

	c.Response().Header().Set(echo.HeaderContentType, "application/zip")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="purchases.zip"`)

	if err := h.downloadService.ArchiveAll(ctx, p, c.Response()); err != nil {
		if c.Response().Committed {
			// Headers are out; the truncated archive is the signal.
			return err
		}
		return httpError(err)
	}

	return nil
}

// ServeFile serves object bytes for an unexpired, correctly signed handle.
// No principal is consulted here: the handle is the authorization, and its
// expiry forces callers back through Download.
func (h *DownloadHandler) ServeFile(c echo.Context) error {
	objectPath, err := url.PathUnescape(c.Param("*"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bad path")
	}

	if !h.verifier.VerifyHandle(objectPath, c.QueryParam("exp"), c.QueryParam("sig")) {
		return echo.NewHTTPError(http.StatusForbidden, "link expired")
	}

	obj, err := h.verifier.Open(objectPath)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	defer obj.Close()

	return c.Stream(http.StatusOK, "application/octet-stream", obj)
}
