package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	adminApi "github.com/ridloal/woodkits-store/internal/admin/api"
	adminRepo "github.com/ridloal/woodkits-store/internal/admin/repository"
	adminService "github.com/ridloal/woodkits-store/internal/admin/service"
	"github.com/ridloal/woodkits-store/internal/notification"
	orderApi "github.com/ridloal/woodkits-store/internal/order/api"
	"github.com/ridloal/woodkits-store/internal/order/events"
	orderRepo "github.com/ridloal/woodkits-store/internal/order/repository"
	orderService "github.com/ridloal/woodkits-store/internal/order/service"
	paymentApi "github.com/ridloal/woodkits-store/internal/payment/api"
	"github.com/ridloal/woodkits-store/internal/payment/gateway"
	paymentService "github.com/ridloal/woodkits-store/internal/payment/service"
	"github.com/ridloal/woodkits-store/internal/platform/config"
	"github.com/ridloal/woodkits-store/internal/platform/database"
	"github.com/ridloal/woodkits-store/internal/platform/logger"
	"github.com/ridloal/woodkits-store/internal/platform/middleware"
	pricingApi "github.com/ridloal/woodkits-store/internal/pricing/api"
	pricingService "github.com/ridloal/woodkits-store/internal/pricing/service"
	productApi "github.com/ridloal/woodkits-store/internal/product/api"
	productRepo "github.com/ridloal/woodkits-store/internal/product/repository"
	productService "github.com/ridloal/woodkits-store/internal/product/service"
	reviewApi "github.com/ridloal/woodkits-store/internal/review/api"
	reviewRepo "github.com/ridloal/woodkits-store/internal/review/repository"
	reviewService "github.com/ridloal/woodkits-store/internal/review/service"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logger.Error("Invalid configuration", err)
		os.Exit(2)
	}
	logger.Setup(cfg.AppEnv, cfg.LogLevel)
	decimal.MarshalJSONWithoutQuotes = true

	logger.Info("Starting Store Service...", logger.Fields{"env": cfg.AppEnv})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", err)
		os.Exit(1)
	}
	defer db.Close()

	router, cleanup, err := buildRouter(ctx, cfg, db)
	if err != nil {
		logger.Error("Failed to wire Store Service", err)
		os.Exit(1)
	}
	defer cleanup()

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Store Service running", logger.Fields{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Store Service server crashed", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down Store Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", err)
	}
}

// buildRouter wires repositories, services and handlers. The returned cleanup
// stops background work started here.
func buildRouter(ctx context.Context, cfg config.Config, db *sql.DB) (*gin.Engine, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// Catalog and pricing
	productRepository := productRepo.NewPostgresProductRepository(db)
	prodService := productService.NewProductService(productRepository)
	priceService := pricingService.NewPricingService(productRepository)

	// Admin
	adminRepository := adminRepo.NewPostgresAdminRepository(db)
	admService := adminService.NewAdminService(adminRepository, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err := admService.EnsureBootstrapAdmin(ctx, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword); err != nil {
		return nil, cleanup, err
	}

	// Orders
	var orderOpts []orderService.Option
	if len(cfg.Kafka.SeedBrokers) > 0 {
		client, err := events.NewKafkaClient(cfg.Kafka.SeedBrokers, cfg.Kafka.OrderTopic)
		if err != nil {
			return nil, cleanup, err
		}
		publisher := events.NewKafkaPublisher(client, cfg.Kafka.OrderTopic)
		closers = append(closers, publisher.Close)
		orderOpts = append(orderOpts, orderService.WithPublisher(publisher))
		logger.Info("Publishing order events", logger.Fields{"topic": cfg.Kafka.OrderTopic, "brokers": cfg.Kafka.SeedBrokers})
	}

	var sender notification.EmailSender = notification.LogSender{}
	if cfg.Mail.SendGridAPIKey != "" {
		sg, err := notification.NewSendGridSender(cfg.Mail.SendGridAPIKey, cfg.Mail.FromAddress, cfg.Mail.FromName)
		if err != nil {
			return nil, cleanup, err
		}
		sender = sg
	} else {
		logger.Warn("SendGrid API key not set, emails will only be logged")
	}
	orderOpts = append(orderOpts, orderService.WithNotifier(notification.NewOrderNotifier(sender, cfg.Mail.FromName, cfg.Mail.ShopAddress)))

	orderRepository := orderRepo.NewPostgresOrderRepository(db)
	ordService := orderService.NewOrderService(orderRepository, priceService, productRepository, cfg.Orders.PaymentTimeout, orderOpts...)
	if err := ordService.StartScheduler(cfg.Orders.TimeoutSchedule); err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, ordService.StopScheduler)

	// Reviews
	revService := reviewService.NewReviewService(reviewRepo.NewPostgresReviewRepository(db), productRepository, cfg.Reviews.AutoApprove)

	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.RequestLogger(), gin.Recovery(), middleware.Locale(cfg.DefaultLocale))

	router.GET("/healthz", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			logger.Error("Health check: database unreachable", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := router.Group("/api/v1")
	admin := apiV1.Group("/admin", adminApi.RequireAdmin(admService))

	adminApi.NewAdminHandler(admService).RegisterRoutes(apiV1, admin)

	productHandler := productApi.NewProductHandler(prodService)
	productHandler.RegisterRoutes(apiV1)
	productHandler.RegisterAdminRoutes(admin)

	pricingApi.NewPricingHandler(priceService).RegisterRoutes(apiV1)

	orderHandler := orderApi.NewOrderHandler(ordService)
	orderHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterAdminRoutes(admin)

	reviewHandler := reviewApi.NewReviewHandler(revService)
	reviewHandler.RegisterRoutes(apiV1)
	reviewHandler.RegisterAdminRoutes(admin)

	if cfg.Payment.StripeSecretKey != "" {
		gw := gateway.NewStripeGateway(cfg.Payment.StripeSecretKey, cfg.Payment.StripeWebhookSecret)
		paymentApi.NewPaymentHandler(paymentService.NewPaymentService(ordService, gw)).RegisterRoutes(apiV1)
	} else {
		logger.Warn("Stripe secret key not set, payment routes are disabled")
	}

	return router, cleanup, nil
}
