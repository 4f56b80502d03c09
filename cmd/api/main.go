package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filemart/internal/client"
	"filemart/internal/config"
	"filemart/internal/handler"
	"filemart/internal/identity"
	"filemart/internal/mailer"
	"filemart/internal/repository"
	"filemart/internal/server"
	"filemart/internal/service"
	"filemart/internal/token"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	db := client.InitDBClient(cfg.DatabaseURL)
	webpayClient := client.NewWebpayClient(&cfg.Webpay)
	storage := client.NewFileStorage(&cfg.Storage, cfg.BaseURL)

	codec := token.NewCodec(cfg.Auth.AdminSecret, cfg.Auth.UserSecret)
	resolver := identity.NewResolver(codec, !cfg.Environment.IsDevelopment())

	productRepo := repository.NewProductRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	cartRepo := repository.NewCartRepository(db)
	userRepo := repository.NewUserRepository(db)
	downloadRepo := repository.NewDownloadRepository(db)

	if cfg.Environment.IsDevelopment() {
		if err := productRepo.Seed(context.Background()); err != nil {
			log.Println("seed products:", err)
		}
	}

	rates := service.NewRateService(cfg.Rates.QuoteURL, time.Duration(cfg.Rates.TTLMin)*time.Minute)
	authService := service.NewAuthService(userRepo, codec)
	cartService := service.NewCartService(cartRepo, productRepo, rates)
	checkoutService := service.NewCheckoutService(
		db, webpayClient, cfg.BaseURL,
		cartRepo,
		productRepo,
		purchaseRepo,
		mailer.NewLogMailer(),
	)
	downloadService := service.NewDownloadService(
		purchaseRepo,
		productRepo,
		downloadRepo,
		storage,
		time.Duration(cfg.Storage.HandleTTLMin)*time.Minute,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(
		resolver,
		handler.NewAuthHandler(authService, resolver),
		handler.NewCatalogHandler(productRepo, rates),
		handler.NewCartHandler(cartService, resolver),
		handler.NewCheckoutHandler(checkoutService),
		handler.NewDownloadHandler(downloadService, storage),
		handler.NewAdminHandler(purchaseRepo),
	)

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
