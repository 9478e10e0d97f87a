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

	"angohost-storefront/internal/cart"
	"angohost-storefront/internal/client"
	"angohost-storefront/internal/config"
	"angohost-storefront/internal/repository"
	"angohost-storefront/internal/server"
	"angohost-storefront/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
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

	db := client.InitMysqlClient(cfg.DatabaseURL)
	emisClient := client.NewEmisClient(&cfg.Emis)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}

	carts := cart.NewStore(cart.NewRedisKV(redisClient))

	customerRepo := repository.NewCustomerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	profileRepo := repository.NewContactProfileRepository(db)
	eventRepo := repository.NewGatewayEventRepository(db)

	bootstrapper := service.NewSessionBootstrapper(emisClient)
	confirmations := service.NewConfirmationService(emisClient)

	checkoutService := service.NewCheckoutService(
		carts,
		bootstrapper,
		confirmations,
		customerRepo,
		orderRepo,
		invoiceRepo,
		eventRepo,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(
		cfg.Auth.JWTSecret,
		carts,
		checkoutService,
		bootstrapper,
		confirmations,
		profileRepo,
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

	confirmations.Close()

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
