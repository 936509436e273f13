package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"garmentFactory/app/echo-server/router"
	"garmentFactory/business/employee"
	"garmentFactory/business/finance"
	"garmentFactory/business/orders"
	"garmentFactory/business/payments"
	"garmentFactory/business/product"
	userService "garmentFactory/business/user"
	"garmentFactory/internal/middleware"
	"garmentFactory/internal/repository/events"
	"garmentFactory/internal/repository/notification"
	psqlRepo "garmentFactory/internal/repository/postgres"
	redisRepo "garmentFactory/internal/repository/redis"
	"garmentFactory/internal/repository/xendit"
	"garmentFactory/internal/rest"
	"garmentFactory/pkg/config"
	"garmentFactory/pkg/database"
	natsConn "garmentFactory/pkg/database/nats"
	redisClient "garmentFactory/pkg/database/redis"
	"garmentFactory/pkg/logger"
	"garmentFactory/pkg/metrics"
	"garmentFactory/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting garment factory API", "version", cfg.App.Version, "env", cfg.App.Environment)

	utils.InitJWT(cfg.JWT.SecretKey, cfg.JWT.TTL)
	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer func() {
		if err := database.ClosePostgres(db); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()
	logger.Info("Database connected successfully")

	rdb, err := redisClient.NewRedisClient(context.Background(), cfg)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}
	defer func() {
		if err := redisClient.CloseRedisClient(rdb); err != nil {
			logger.Error("Failed to close redis", "error", err)
		}
	}()
	logger.Info("Redis connected successfully")

	// Order events go to NATS when configured and are dropped otherwise.
	var publisher orders.EventPublisher = events.NewNoopPublisher()
	nc, err := natsConn.NewConnection(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}
	if nc != nil {
		defer nc.Drain()
		natsPublisher, err := events.NewNATSPublisher(nc)
		if err != nil {
			logger.Fatal("Failed to create NATS publisher", "error", err)
		}
		publisher = natsPublisher
		logger.Info("NATS connected", "url", nc.ConnectedUrl())
	}

	mailjetEmail := notification.NewMailjetRepository(
		notification.MailjetConfig{
			MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
			MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
			MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
			MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
			MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
		},
	)

	xenditRepo := xendit.NewXenditRepository(
		xendit.XenditConfig{
			XenditApi:          cfg.Xendit.XenditSecretKey,
			XenditUrl:          cfg.Xendit.XenditUrl,
			SuccessRedirectUrl: cfg.Xendit.RedirectUrl,
			FailureRedirectUrl: cfg.Xendit.RedirectUrl,
		},
	)

	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	ordersRepo := psqlRepo.NewOrdersRepository(db)
	productsRepo := psqlRepo.NewProductRepository(db)
	employeeRepo := psqlRepo.NewEmployeeRepository(db)
	financeRepo := psqlRepo.NewFinanceRepository(db)
	tokenRepo := redisRepo.NewTokenRepository(rdb)

	// Init service
	userSvc := userService.NewUserService(userRepo, tokenRepo, validate, mailjetEmail, cfg.App.AppEmailVerificationKey, cfg.App.AppDeploymentUrl, cfg.JWT.IdleTimeout)
	ordersSvc := orders.NewOrdersService(ordersRepo, productsRepo, publisher, validate)
	paymentsSvc := payments.NewPaymentsService(xenditRepo, userRepo, ordersSvc, cfg.Xendit.XenditWebhookVerificationToken)
	productSvc := product.NewProductService(productsRepo)
	employeeSvc := employee.NewEmployeeService(employeeRepo, validate)
	financeSvc := finance.NewFinanceService(financeRepo, productsRepo, cfg.App.LowStockThreshold)

	// Init handler
	timeout := cfg.Server.RequestTimeout
	userHandler := rest.NewUserHandler(userSvc, timeout)
	ordersHandler := rest.NewOrdersHandler(ordersSvc, timeout)
	paymentsHandler := rest.NewPaymentsHandler(paymentsSvc, timeout)
	productHandler := rest.NewProductHandler(productSvc, timeout)
	employeeHandler := rest.NewEmployeeHandler(employeeSvc, timeout)
	financeHandler := rest.NewFinanceHandler(financeSvc, timeout)
	healthHandler := rest.NewHealthHandler(map[string]rest.Pinger{
		"database": rest.PingFunc(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
		"redis": rest.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}),
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(middleware.RequestID())
	e.Use(metrics.Middleware())
	e.Use(middleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit("2M"))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.App.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	authRequired := middleware.AuthMiddlewareWithRedis(userSvc)

	api := e.Group("/api")
	router.SetupHealthRoutes(e, api, healthHandler)
	router.SetupAuthRoutes(api, userHandler, authRequired)
	router.SetupUserRoutes(api, userHandler, authRequired)
	router.SetupOrdersRoutes(api, ordersHandler, paymentsHandler, authRequired)
	router.SetupPaymentsRoutes(api, paymentsHandler)
	router.SetupProductRoutes(api, productHandler, authRequired)
	router.SetupEmployeeRoutes(api, employeeHandler, authRequired)
	router.SetupFinanceRoutes(api, financeHandler, authRequired)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
