package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/alvbalcab/PetJoy/internal/cart"
	"github.com/alvbalcab/PetJoy/internal/catalog"
	"github.com/alvbalcab/PetJoy/internal/checkout"
	"github.com/alvbalcab/PetJoy/internal/email"
	"github.com/alvbalcab/PetJoy/internal/events"
	"github.com/alvbalcab/PetJoy/internal/orders"
	"github.com/alvbalcab/PetJoy/internal/payment"
	"github.com/alvbalcab/PetJoy/internal/pricing"
	h "github.com/alvbalcab/PetJoy/internal/http"
)

type Config struct {
	HTTPPort        string
	BaseURL         string
	SessionSecret   string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		BaseURL:         getEnv("BASE_URL", "http://localhost:8080"),
		SessionSecret:   getEnv("SESSION_SECRET", "petjoy-dev-secret"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log.Println("storefront starting...")

	cfg := loadConfig()
	ctx := context.Background()

	// Postgres holds products and orders; one pool for both.
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		log.Fatalf("Invalid DB_PORT: %v", err)
	}
	creds := &orders.Credentials{
		Host:              getEnv("DB_HOST", "localhost"),
		Port:              dbPort,
		User:              getEnv("DB_USER", "postgres"),
		Password:          getEnv("DB_PASSWORD", "postgres"),
		DBName:            getEnv("DB_NAME", "petjoy"),
		MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./migrations"),
	}

	orderRepo, err := orders.NewRepository(creds)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer orderRepo.Close()

	if err := orderRepo.RunMigrations(creds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	productRepo := catalog.NewRepository(orderRepo.DB())

	// MongoDB holds the session carts.
	mongoURI := getEnv("MONGO_URI", "mongodb://localhost:27017")
	mongoDB, err := cart.ConnectMongoDB(ctx, mongoURI, getEnv("MONGO_DB_NAME", "petjoy"))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := cart.EnsureIndexes(ctx, mongoDB); err != nil {
		log.Fatalf("Failed to create cart indexes: %v", err)
	}
	cartRepo := cart.NewMongoRepository(mongoDB)
	log.Printf("Connected to MongoDB at %s", mongoURI)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")

	cartService := cart.NewService(cartRepo, cart.NewRedisCache(redisClient), productRepo)

	calculator := pricing.NewCalculator(
		pricing.ThresholdShippingPolicy{
			FlatRate: decimal.RequireFromString(getEnv("SHIPPING_FLAT_RATE", "4.95")),
			FreeOver: decimal.RequireFromString(getEnv("SHIPPING_FREE_OVER", "50")),
		},
		pricing.FlatTaxPolicy{
			Rate: decimal.RequireFromString(getEnv("TAX_RATE", "0.21")),
		},
	)

	company := email.CompanyInfo{
		Name:    getEnv("COMPANY_NAME", "PetJoy"),
		Email:   getEnv("COMPANY_EMAIL", "hola@petjoy.example"),
		Phone:   getEnv("COMPANY_PHONE", ""),
		Website: getEnv("COMPANY_WEBSITE", ""),
	}
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		log.Fatalf("Invalid SMTP_PORT: %v", err)
	}
	mailer := email.NewSMTPSender(
		getEnv("SMTP_HOST", "localhost"),
		smtpPort,
		getEnv("SMTP_USER", ""),
		getEnv("SMTP_PASSWORD", ""),
		getEnv("SMTP_FROM", company.Email),
	)

	provider := payment.NewStripeProvider(getEnv("STRIPE_SECRET_KEY", ""))

	checkoutService := checkout.NewService(
		cartService,
		calculator,
		orderRepo,
		provider,
		checkout.NewRedisPendingStore(redisClient),
		mailer,
		checkout.Config{
			BaseURL:  cfg.BaseURL,
			Currency: getEnv("CURRENCY", "eur"),
			Company:  company,
		},
	)

	// Outbox poller pushes order events to Kafka until cancelled.
	pollerCtx, stopPoller := context.WithCancel(ctx)
	defer stopPoller()
	poller := events.NewOutboxPoller(orderRepo, getEnv("KAFKA_BROKER", "localhost:9092"))
	go poller.Run(pollerCtx)

	cartHandler := h.NewCartHandler(cartService, calculator, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(checkoutService, cfg.RequestTimeout)
	paymentHandler := h.NewPaymentHandler(checkoutService, cfg.RequestTimeout)
	ordersHandler := h.NewOrdersHandler(orderRepo, cfg.RequestTimeout)
	visitor := h.NewVisitorMiddleware([]byte(cfg.SessionSecret))

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(visitor.Handler)
	r.Use(h.CustomerMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Payment provider redirects land outside the API prefix.
	r.Get("/payment/success", paymentHandler.Success)
	r.Get("/payment/cancel", paymentHandler.Cancel)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateItem)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.Checkout)
			r.Post("/payment-session", checkoutHandler.CreatePaymentSession)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.ListOrders)
			r.Post("/track", ordersHandler.TrackOrder)
			r.Get("/{number}", ordersHandler.GetOrder)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	stopPoller()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	mongoDB.Client().Disconnect(ctx)
	log.Println("server exited")
}
