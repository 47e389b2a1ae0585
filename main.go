package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/clients"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/config"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/handlers"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/metrics"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/middleware"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
	natsclient "github.com/AdithaBuwaneka/fashion-mart-backend/internal/nats"
	redisclient "github.com/AdithaBuwaneka/fashion-mart-backend/internal/redis"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/repository"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/services"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/storage"
)

func main() {
	cfg := config.New()
	logger := newLogger(cfg)

	db, err := initDatabase(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	// Redis is optional: payment idempotency and dashboard caching degrade
	// to database-only behavior without it.
	redisCli, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, running without cache and confirm guard")
		redisCli = nil
	}

	// NATS is optional too; a nil client drops events on the floor.
	natsCli, err := natsclient.NewClient(cfg.NATS.URL, logger)
	if err != nil {
		logger.WithError(err).Warn("NATS unavailable, event publishing disabled")
		natsCli = nil
	}
	defer natsCli.Close()

	imageStore, err := storage.NewImageStore(cfg.Upload)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize upload storage")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	designRepo := repository.NewDesignRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	returnRepo := repository.NewReturnRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	reportRepo := repository.NewReportRepository(db)

	paymentClient := clients.NewPaymentClient(cfg.Payment)

	// Services
	notificationSvc := services.NewNotificationService(notificationRepo, logger)
	authSvc := services.NewAuthService(userRepo, cfg.App.JWTSecret, logger)
	userSvc := services.NewUserService(userRepo, notificationSvc, natsCli, logger)
	catalogSvc := services.NewCatalogService(productRepo, categoryRepo, logger)
	inventorySvc := services.NewInventoryService(categoryRepo, productRepo, designRepo,
		userRepo, notificationSvc, lowStockGuard(redisCli), natsCli, logger)
	designSvc := services.NewDesignService(designRepo, categoryRepo, userRepo,
		notificationSvc, natsCli, logger)
	orderSvc := services.NewOrderService(orderRepo, productRepo, inventorySvc,
		notificationSvc, natsCli, m.StockConflicts, logger)
	paymentSvc := services.NewPaymentService(orderRepo, paymentClient, confirmGuard(redisCli),
		notificationSvc, natsCli, logger)
	returnSvc := services.NewReturnService(returnRepo, orderRepo, notificationSvc, natsCli, logger)
	reportSvc := services.NewReportService(reportRepo, orderRepo, designRepo, userRepo,
		returnRepo, productRepo, statsCache(redisCli), logger)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db, redisCli)
	catalogHandler := handlers.NewCatalogHandler(catalogSvc, logger)
	customerHandler := handlers.NewCustomerHandler(userSvc, orderSvc, paymentSvc, returnSvc,
		imageStore, m, logger)
	designerHandler := handlers.NewDesignerHandler(designSvc, imageStore, logger)
	staffHandler := handlers.NewStaffHandler(orderSvc, returnSvc, m, logger)
	inventoryHandler := handlers.NewInventoryHandler(inventorySvc, designSvc, imageStore, m, logger)
	adminHandler := handlers.NewAdminHandler(userSvc, reportSvc, logger)
	notificationHandler := handlers.NewNotificationHandler(notificationSvc, logger)
	webhookHandler := handlers.NewWebhookHandler(paymentSvc, m, logger)

	auth := middleware.NewAuthMiddleware(authSvc)

	router := setupRouter(cfg, logger, m, auth, imageStore,
		healthHandler, catalogHandler, customerHandler, designerHandler,
		staffHandler, inventoryHandler, adminHandler, notificationHandler, webhookHandler)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.WithField("addr", server.Addr).Info("Starting fashion-mart-backend")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	if redisCli != nil {
		if err := redisCli.Close(); err != nil {
			logger.WithError(err).Error("Error closing Redis connection")
		}
	}
	logger.Info("Server exited")
}

func setupRouter(
	cfg *config.Config,
	logger *logrus.Logger,
	m *metrics.Metrics,
	auth *middleware.AuthMiddleware,
	imageStore *storage.ImageStore,
	healthHandler *handlers.HealthHandler,
	catalogHandler *handlers.CatalogHandler,
	customerHandler *handlers.CustomerHandler,
	designerHandler *handlers.DesignerHandler,
	staffHandler *handlers.StaffHandler,
	inventoryHandler *handlers.InventoryHandler,
	adminHandler *handlers.AdminHandler,
	notificationHandler *handlers.NotificationHandler,
	webhookHandler *handlers.WebhookHandler,
) *gin.Engine {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.App.ClientURL}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	corsConfig.AllowCredentials = true

	router.Use(cors.New(corsConfig))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(m.Middleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	router.Static(cfg.Upload.PublicPath, imageStore.BaseDir())

	api := router.Group("/api")
	{
		// Public catalog
		products := api.Group("/products")
		{
			products.GET("", catalogHandler.ListProducts)
			products.GET("/featured", catalogHandler.ListFeatured)
			products.GET("/:id", catalogHandler.GetProduct)
			products.GET("/:id/availability", catalogHandler.GetAvailability)
			products.GET("/:id/related", catalogHandler.ListRelated)
		}
		categories := api.Group("/categories")
		{
			categories.GET("", catalogHandler.ListCategories)
			categories.GET("/:id", catalogHandler.GetCategory)
		}

		// Provider callbacks
		api.POST("/payments/webhook", webhookHandler.PaymentWebhook)

		// Authenticated, any role
		authed := api.Group("")
		authed.Use(auth.Authenticate())
		{
			notifications := authed.Group("/notifications")
			{
				notifications.GET("", notificationHandler.List)
				notifications.PUT("/read-all", notificationHandler.MarkAllRead)
				notifications.PUT("/:id/read", notificationHandler.MarkRead)
			}

			customer := authed.Group("/customer")
			customer.Use(auth.RequireRole(models.RoleCustomer, models.RoleAdmin))
			{
				customer.GET("/profile", customerHandler.GetProfile)
				customer.PUT("/profile", customerHandler.UpdateProfile)
				customer.POST("/profile/image", customerHandler.UploadProfileImage)

				customer.POST("/orders", customerHandler.Checkout)
				customer.GET("/orders", customerHandler.ListOrders)
				customer.GET("/orders/:id", customerHandler.GetOrder)
				customer.POST("/orders/:id/cancel", customerHandler.CancelOrder)
				customer.POST("/orders/:id/payment", customerHandler.CreatePaymentIntent)
				customer.POST("/orders/:id/payment/confirm", customerHandler.ConfirmPayment)

				customer.POST("/returns", customerHandler.RequestReturn)
				customer.GET("/returns", customerHandler.ListReturns)
			}

			designer := authed.Group("/designer")
			designer.Use(auth.RequireRole(models.RoleDesigner, models.RoleAdmin))
			{
				designer.POST("/designs", designerHandler.CreateDesign)
				designer.GET("/designs", designerHandler.ListDesigns)
				designer.GET("/designs/:id", designerHandler.GetDesign)
				designer.PUT("/designs/:id", designerHandler.UpdateDesign)
				designer.DELETE("/designs/:id", designerHandler.DeleteDesign)
				designer.POST("/designs/:id/submit", designerHandler.SubmitDesign)
			}

			staff := authed.Group("/staff")
			staff.Use(auth.RequireRole(models.RoleStaff, models.RoleAdmin))
			{
				staff.GET("/orders/pending", staffHandler.ListPendingOrders)
				staff.GET("/orders/assigned", staffHandler.ListAssignedOrders)
				staff.POST("/orders/:id/assign", staffHandler.AssignOrder)
				staff.PUT("/orders/:id/status", staffHandler.UpdateOrderStatus)

				staff.GET("/returns/pending", staffHandler.ListPendingReturns)
				staff.GET("/returns/assigned", staffHandler.ListAssignedReturns)
				staff.POST("/returns/:id/assign", staffHandler.AssignReturn)
				staff.PUT("/returns/:id/process", staffHandler.ProcessReturn)
			}

			inventory := authed.Group("/inventory")
			inventory.Use(auth.RequireRole(models.RoleInventoryManager, models.RoleAdmin))
			{
				inventory.GET("/designs/pending", inventoryHandler.ListPendingDesigns)
				inventory.PUT("/designs/:id/review", inventoryHandler.ReviewDesign)

				inventory.POST("/categories", inventoryHandler.CreateCategory)
				inventory.GET("/categories", inventoryHandler.ListCategories)
				inventory.PUT("/categories/:id", inventoryHandler.UpdateCategory)
				inventory.DELETE("/categories/:id", inventoryHandler.DeleteCategory)

				inventory.POST("/products", inventoryHandler.CreateProduct)
				inventory.GET("/products", inventoryHandler.ListProducts)
				inventory.PUT("/products/:id", inventoryHandler.UpdateProduct)
				inventory.POST("/products/:id/image", inventoryHandler.UploadProductImage)

				inventory.PUT("/stock/:id", inventoryHandler.UpdateStock)
				inventory.GET("/stock/low", inventoryHandler.ListLowStock)
			}

			admin := authed.Group("/admin")
			admin.Use(auth.RequireRole(models.RoleAdmin))
			{
				admin.GET("/dashboard/stats", adminHandler.Dashboard)

				admin.GET("/users", adminHandler.ListUsers)
				admin.GET("/users/:id", adminHandler.GetUser)
				admin.PUT("/users/:id/role", adminHandler.UpdateUserRole)
				admin.PUT("/users/:id/status", adminHandler.SetUserActive)

				admin.POST("/reports", adminHandler.GenerateReport)
				admin.GET("/reports", adminHandler.ListReports)
				admin.GET("/reports/:id", adminHandler.GetReport)
				admin.DELETE("/reports/:id", adminHandler.DeleteReport)
			}
		}
	}

	return router
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// The nil conversions below keep typed-nil interface values out of the
// services when Redis is absent.

func confirmGuard(c *redisclient.Client) services.ConfirmGuard {
	if c == nil {
		return nil
	}
	return c
}

func lowStockGuard(c *redisclient.Client) services.LowStockGuard {
	if c == nil {
		return nil
	}
	return c
}

func statsCache(c *redisclient.Client) services.StatsCache {
	if c == nil {
		return nil
	}
	return c
}
