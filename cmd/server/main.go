package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/srujanab94/acp-commerce/internal/api"
	"github.com/srujanab94/acp-commerce/internal/catalog"
	"github.com/srujanab94/acp-commerce/internal/checkout"
	"github.com/srujanab94/acp-commerce/internal/payment"
	"github.com/srujanab94/acp-commerce/internal/store"
)

type Config struct {
	HTTPPort            string
	StoreBackend        string // "memory" or "redis"
	RedisAddr           string
	RedisPassword       string
	CheckoutTTL         time.Duration
	StripeAPIKey        string
	StripeWebhookSecret string
	RequestTimeout      time.Duration
	ShutdownTimeout     time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		StoreBackend:        getEnv("STORE_BACKEND", "memory"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		CheckoutTTL:         store.DefaultCheckoutTTL,
		StripeAPIKey:        getEnv("STRIPE_API_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		RequestTimeout:      30 * time.Second,
		ShutdownTimeout:     10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	// .env is optional, real env vars win
	_ = godotenv.Load()

	cfg := loadConfig()

	checkoutStore, cleanup, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("failed to set up checkout store: %v", err)
	}
	defer cleanup()

	var gateway payment.Gateway
	if cfg.StripeAPIKey != "" {
		gateway = payment.NewStripeGateway(cfg.StripeAPIKey)
		log.Printf("using Stripe payment gateway")
	} else {
		gateway = payment.NewSimulatedGateway()
		log.Printf("STRIPE_API_KEY not set, using simulated payment gateway")
	}

	products := catalog.Seed()
	svc := checkout.NewService(checkoutStore, products, gateway)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(api.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Mount("/", api.NewRouter(
		api.NewProductHandler(products),
		api.NewCheckoutHandler(svc, cfg.RequestTimeout),
		api.NewWebhookHandler(svc, cfg.StripeWebhookSecret),
	))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("checkout API starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

func buildStore(cfg *Config) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		log.Printf("using redis checkout store at %s", cfg.RedisAddr)
		return store.NewRedisStore(client, cfg.CheckoutTTL), func() { client.Close() }, nil
	default:
		log.Printf("using in-memory checkout store")
		s := store.NewMemoryStore(cfg.CheckoutTTL)
		return s, s.Close, nil
	}
}
