package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ticketly/internal/auth"
	"ticketly/internal/catalog"
	catalogdb "ticketly/internal/catalog/db"
	"ticketly/internal/config"
	"ticketly/internal/database/migrations"
	"ticketly/internal/kafka"
	"ticketly/internal/logger"
	"ticketly/internal/order"
	orderapi "ticketly/internal/order/api"
	orderdb "ticketly/internal/order/db"
	"ticketly/internal/payment"
	"ticketly/internal/payment/paypal"
	"ticketly/internal/payment/stripeprov"
	"ticketly/internal/tickets"
	ticketsapi "ticketly/internal/tickets/api"
	ticketsdb "ticketly/internal/tickets/db"
	"ticketly/internal/tickets/qr"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	appLogger := logger.NewLogger()

	// --- PostgreSQL ---
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Database.Username, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)

	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		appLogger.Error("DATABASE", fmt.Sprintf("Failed to open Postgres connection: %v", err))
		os.Exit(1)
	}
	defer sqldb.Close()

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		appLogger.Error("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
		os.Exit(1)
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := runner.Up(); err != nil {
		appLogger.Error("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		os.Exit(1)
	}

	// --- Redis (payment token cache) ---
	ctx := context.Background()
	var tokenCache paypal.TokenCache = &paypal.MemoryTokenCache{}
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Warn("REDIS", fmt.Sprintf("Redis unavailable, falling back to in-memory token cache: %v", err))
	} else {
		tokenCache = paypal.NewRedisTokenCache(redisClient, appLogger)
	}

	// --- Kafka ---
	var publisher order.EventPublisher = noopPublisher{}
	if cfg.Kafka.Enabled {
		topics := []string{
			cfg.Kafka.Topics.OrderReserved,
			cfg.Kafka.Topics.OrderCompleted,
			cfg.Kafka.Topics.OrderReleased,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
			appLogger.Warn("KAFKA", fmt.Sprintf("Topic bootstrap failed: %v", err))
		}
		producer := kafka.NewProducer(
			cfg.Kafka.Brokers,
			cfg.Kafka.Topics.OrderReserved,
			cfg.Kafka.Topics.OrderCompleted,
			cfg.Kafka.Topics.OrderReleased,
			appLogger,
		)
		defer producer.Close()
		publisher = producer
	}

	// --- Payment provider ---
	if err := payment.ValidateProviderName(cfg.Payment.Provider); err != nil {
		appLogger.Error("PAYMENT", err.Error())
		os.Exit(1)
	}

	var provider payment.Provider
	switch cfg.Payment.Provider {
	case payment.ProviderStripe:
		provider, err = stripeprov.New(cfg.Payment.StripeKey, appLogger)
		if err != nil {
			appLogger.Error("PAYMENT", fmt.Sprintf("Stripe setup failed: %v", err))
			os.Exit(1)
		}
	default:
		provider = paypal.NewClient(
			cfg.Payment.PayPalAPIURL,
			cfg.Payment.PayPalClient,
			cfg.Payment.PayPalSecret,
			&http.Client{Timeout: cfg.Payment.Timeout},
			tokenCache,
			appLogger,
		)
	}

	// --- Services ---
	priceService := catalog.NewPriceService(&catalogdb.DB{Bun: bunDB}, appLogger)
	qrGen := qr.NewGenerator(cfg.Payment.QRSecretKey)
	ticketService := tickets.NewTicketService(&ticketsdb.DB{Bun: bunDB}, priceService, qrGen, appLogger)
	orderService := order.NewOrderService(&orderdb.DB{Bun: bunDB}, priceService, provider, publisher, cfg.Payment.ReturnURL, appLogger)

	ticketHandler := ticketsapi.NewHandler(ticketService, priceService)
	orderHandler := orderapi.NewHandler(orderService)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(appLogger))

	adminOnly := func(next http.Handler) http.Handler { return next }
	authed := func(next http.Handler) http.Handler { return next }
	if cfg.Auth.OIDCIssuer != "" {
		verify, err := auth.Middleware(cfg.Auth.OIDCIssuer)
		if err != nil {
			appLogger.Error("AUTH", fmt.Sprintf("OIDC setup failed: %v", err))
			os.Exit(1)
		}
		authed = verify
		adminOnly = auth.RequireRole("admin")
	} else {
		appLogger.Warn("AUTH", "OIDC_ISSUER not set, authentication disabled")
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Inventory and pricing management
		r.Group(func(r chi.Router) {
			r.Use(authed, adminOnly)
			r.Post("/events/{eventID}/prices", ticketHandler.CreatePrices)
			r.Post("/calendars/{calendarID}/tickets", ticketHandler.CreateTickets)
			r.Delete("/companies/{companyID}/calendars/{calendarID}/tickets", ticketHandler.DeleteTickets)
		})

		r.Get("/calendars/{calendarID}/tickets/summary", ticketHandler.GetTicketSummary)
		r.Get("/tickets/{ticketID}/pass", ticketHandler.GetTicketPass)

		// Checkout flow
		r.Group(func(r chi.Router) {
			r.Use(authed)
			r.Post("/orders", orderHandler.Checkout)
			r.Post("/orders/{orderID}/release", orderHandler.Release)
			r.Get("/orders/{orderID}/tickets", orderHandler.GetOrderTickets)
		})

		// Provider redirect target, no auth: the payer arrives from PayPal/Stripe
		r.Get("/orders/capture", orderHandler.Capture)
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("SERVER", fmt.Sprintf("Ticketing service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("SERVER", fmt.Sprintf("HTTP server error: %v", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("SERVER", "Shutdown signal received, cleaning up...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		appLogger.Error("SERVER", fmt.Sprintf("Server forced to shutdown: %v", err))
		os.Exit(1)
	}

	appLogger.Info("SERVER", "Server exited gracefully")
}

func requestLogger(l *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			l.LogAPI(r.Method, r.URL.Path, fmt.Sprintf("%d", ww.Status()), time.Since(start).String())
		})
	}
}

// noopPublisher stands in when Kafka is disabled.
type noopPublisher struct{}

func (noopPublisher) PublishOrderReserved(string, []string, string) error { return nil }
func (noopPublisher) PublishOrderCompleted(string, int) error             { return nil }
func (noopPublisher) PublishOrderReleased(string, int) error              { return nil }
