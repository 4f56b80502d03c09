package server

import (
	"filemart/internal/handler"
	"filemart/internal/identity"
	mw "filemart/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo            *echo.Echo
	resolver        *identity.Resolver
	authHandler     *handler.AuthHandler
	catalogHandler  *handler.CatalogHandler
	cartHandler     *handler.CartHandler
	checkoutHandler *handler.CheckoutHandler
	downloadHandler *handler.DownloadHandler
	adminHandler    *handler.AdminHandler
}

func NewServer(
	resolver *identity.Resolver,
	authHandler *handler.AuthHandler,
	catalogHandler *handler.CatalogHandler,
	cartHandler *handler.CartHandler,
	checkoutHandler *handler.CheckoutHandler,
	downloadHandler *handler.DownloadHandler,
	adminHandler *handler.AdminHandler,
) *Server {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:            e,
		resolver:        resolver,
		authHandler:     authHandler,
		catalogHandler:  catalogHandler,
		cartHandler:     cartHandler,
		checkoutHandler: checkoutHandler,
		downloadHandler: downloadHandler,
		adminHandler:    adminHandler,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api", mw.WithPrincipal(s.resolver))

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- accounts --------
	api.POST("/register", s.authHandler.Register)
	api.POST("/login", s.authHandler.Login)
	api.POST("/logout", s.authHandler.Logout)
	api.GET("/session", s.authHandler.Session)

	// -------- catalog --------
	api.GET("/products", s.catalogHandler.ListProducts)
	api.GET("/products/:productID", s.catalogHandler.GetProduct)

	// -------- cart --------
	api.POST("/cart", s.cartHandler.AddItem)
	api.GET("/cart", s.cartHandler.GetCart)
	api.DELETE("/cart/:productID", s.cartHandler.RemoveItem)

	// -------- checkout / gateway callbacks --------
	api.POST("/checkout", s.checkoutHandler.Start)
	api.GET("/checkout/confirm", s.checkoutHandler.Confirm)

	// -------- downloads --------
	api.GET("/downloads", s.downloadHandler.DownloadAll)
	api.GET("/downloads/:productID", s.downloadHandler.Download)

	// -------- back office --------
	admin := s.echo.Group("/api/admin")
	admin.POST("/login", s.authHandler.AdminLogin)
	admin.GET("/purchases", s.adminHandler.ListPurchases, mw.AdminOnly(s.resolver))

	// Signed retrieval handles resolve here; the signature in the URL is
	// the only credential checked.
	s.echo.GET("/files/*", s.downloadHandler.ServeFile)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
