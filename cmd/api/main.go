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

	"delivery-marketplace/internal/api"
	appmw "delivery-marketplace/internal/api/middleware"
	"delivery-marketplace/internal/config"
	"delivery-marketplace/internal/hours"
	"delivery-marketplace/internal/logger"
	"delivery-marketplace/internal/models"
	"delivery-marketplace/internal/modules/accounts"
	"delivery-marketplace/internal/modules/cart"
	"delivery-marketplace/internal/modules/catalog"
	"delivery-marketplace/internal/modules/checkout"
	"delivery-marketplace/internal/modules/orders"
	"delivery-marketplace/internal/pricing"
	"delivery-marketplace/pkg/email"
	"delivery-marketplace/pkg/utils"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// 1. --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	fees, err := feeSchedule(cfg)
	if err != nil {
		zl.Fatal("Invalid fee configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. --- Database Connection ---
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		zl.Fatal("Unable to parse database configuration", zap.Error(err))
	}
	dbPool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		zl.Fatal("Unable to create connection pool", zap.Error(err))
	}
	defer dbPool.Close()
	if err := dbPool.Ping(ctx); err != nil {
		zl.Fatal("Unable to ping database", zap.Error(err))
	}
	zl.Info("Successfully connected to the database")

	// --- Redis (optional) ---
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			zl.Fatal("Unable to reach Redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
	}

	// --- Email ---
	var sender email.Sender = email.NewLogSender(zl)
	if cfg.SESFromEmail != "" {
		ses, err := email.NewSESV2Sender(ctx, cfg.SESRegion, cfg.SESFromEmail, zl)
		if err != nil {
			zl.Fatal("Unable to configure SES", zap.Error(err))
		}
		sender = ses
	}
	templates, err := email.NewTemplateManager()
	if err != nil {
		zl.Fatal("Unable to parse email templates", zap.Error(err))
	}

	// 3. --- Dependency Injection (Wiring everything up) ---
	hub := cart.NewHub()
	notifiers := cart.Notifiers{cart.NewLogNotifier(zl), hub}
	if rdb != nil {
		notifiers = append(notifiers, cart.NewRedisNotifier(rdb, zl))
	}
	carts := cart.NewRegistry(notifiers)

	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, zl)
	monitor := hours.NewMonitor(cfg.HoursRefreshInterval, zl)
	go monitor.Run(ctx)

	accountRepo := accounts.NewRepository(dbPool)

	orderRepo := orders.NewRepository(dbPool)
	orderService := orders.NewService(orderRepo, accountRepo, sender, templates, zl)

	sessions, err := sessionStore(cfg, rdb)
	if err != nil {
		zl.Fatal("Invalid session store", zap.Error(err))
	}
	checkoutService := checkout.NewService(sessions, carts, catalogClient, orderService, checkout.Config{
		Fees:               fees,
		GeolocationTimeout: cfg.GeolocationTimeout,
		SubmissionTimeout:  cfg.SubmissionTimeout,
		FallbackLocation: models.DeliveryLocation{
			Lat:     cfg.FallbackLat,
			Lng:     cfg.FallbackLng,
			Address: cfg.FallbackAddress,
		},
	}, zl)

	accountService := accounts.NewService(accountRepo, carts, checkoutService, sender, templates, cfg.JWTSecret, zl)

	handlers := api.Handlers{
		Accounts:   accounts.NewHandler(accountService),
		Catalog:    catalog.NewHandler(catalogClient, catalog.NewAvailabilityService(catalogClient, monitor)),
		Cart:       cart.NewHandler(carts),
		CartEvents: cart.NewEventsHandler(carts, hub, zl),
		Checkout:   checkout.NewHandler(checkoutService),
		Orders:     orders.NewHandler(orderService),
	}

	// 4. --- Echo & Middleware ---
	e := echo.New()
	e.HideBanner = true
	e.Validator = utils.GetValidator()
	e.Use(middleware.Recover())
	e.Use(appmw.RequestLogger(zl))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:5173", cfg.ClientOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(appmw.RateLimit(cfg.RateLimitPerSec, zl))

	api.SetupRoutes(e, handlers, cfg.JWTSecret)

	// 5. --- Start Server with graceful shutdown logic ---
	go func() {
		zl.Info("Starting server", zap.String("port", cfg.ServerPort))
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			zl.Fatal("shutting down the server an error occurred", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("Server forced to shutdown", zap.Error(err))
	}
	zl.Info("Server exiting")
}

func feeSchedule(cfg config.Config) (pricing.FeeSchedule, error) {
	base, err := decimal.NewFromString(cfg.BaseFee)
	if err != nil {
		return pricing.FeeSchedule{}, fmt.Errorf("BASE_FEE: %w", err)
	}
	perKm, err := decimal.NewFromString(cfg.PerKmRate)
	if err != nil {
		return pricing.FeeSchedule{}, fmt.Errorf("PER_KM_RATE: %w", err)
	}
	handling, err := decimal.NewFromString(cfg.HandlingFee)
	if err != nil {
		return pricing.FeeSchedule{}, fmt.Errorf("HANDLING_FEE: %w", err)
	}
	return pricing.FeeSchedule{BaseFee: base, PerKmRate: perKm, HandlingFee: handling}, nil
}

func sessionStore(cfg config.Config, rdb *redis.Client) (checkout.SessionStore, error) {
	switch cfg.SessionStore {
	case "", "memory":
		return checkout.NewMemoryStore(), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("SESSION_STORE=redis requires REDIS_ADDR")
		}
		return checkout.NewRedisStore(rdb, cfg.SessionTTL), nil
	}
	return nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.SessionStore)
}
