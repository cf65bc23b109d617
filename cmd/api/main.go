package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kavyadav/adminhub-api/internal/config"
	"github.com/kavyadav/adminhub-api/internal/database"
	"github.com/kavyadav/adminhub-api/internal/handler"
	"github.com/kavyadav/adminhub-api/internal/middleware"
	"github.com/kavyadav/adminhub-api/internal/models"
	"github.com/kavyadav/adminhub-api/internal/observability"
	"github.com/kavyadav/adminhub-api/internal/repository"
	"github.com/kavyadav/adminhub-api/internal/router"
	"github.com/kavyadav/adminhub-api/internal/service"
	"github.com/kavyadav/adminhub-api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	observability.RegisterMetrics()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Student{}, &models.Notification{}, &models.ActivityLog{}, &models.Settings{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	fileStore, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		log.Fatalf("failed to prepare upload storage: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, redisClient, cfg.RealtimeChannel, natsConn, logger)
	uploadService := service.NewUploadService(fileStore, cfg.AvatarMaxMB, cfg.DocumentMaxMB, cfg.MaxDocumentFiles, logger)
	authService := service.NewAuthService(userRepo, activityService, notificationService, cfg.JWTSecret, cfg.TokenTTL, logger)
	userService := service.NewUserService(userRepo, activityService, notificationService, logger)
	profileService := service.NewProfileService(userRepo, uploadService, activityService, logger)
	studentService := service.NewStudentService(studentRepo, uploadService, activityService, logger)
	settingsService := service.NewSettingsService(settingsRepo, activityService, logger)
	reportService := service.NewReportService(userRepo, activityRepo, activityService, logger)
	dashboardService := service.NewDashboardService(userRepo, activityRepo, redisClient, cfg.RealtimeChannel, cfg.DashboardCacheTTL, logger)

	if cfg.SeedAccounts {
		if err := service.NewSeedService(userRepo, logger).Run(context.Background()); err != nil {
			log.Fatalf("failed to seed accounts: %v", err)
		}
	}

	authHandler := handler.NewAuthHandler(authService, validate, logger)
	profileHandler := handler.NewProfileHandler(profileService, validate, logger)
	userHandler := handler.NewUserHandler(userService, validate, logger)
	studentHandler := handler.NewStudentHandler(studentService, validate, logger)
	settingsHandler := handler.NewSettingsHandler(settingsService, validate, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger)
	activityLogHandler := handler.NewActivityLogHandler(activityService, logger)
	reportHandler := handler.NewReportHandler(reportService, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.DocumentMaxMB + 2) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{
		Logger:     &logger,
		CORSOrigin: cfg.CORSOrigin,
	})

	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         authHandler,
		ProfileHandler:      profileHandler,
		UserHandler:         userHandler,
		StudentHandler:      studentHandler,
		SettingsHandler:     settingsHandler,
		NotificationHandler: notificationHandler,
		ActivityLogHandler:  activityLogHandler,
		ReportHandler:       reportHandler,
		DashboardHandler:    dashboardHandler,
		Authenticate:        middleware.Authenticate(cfg.JWTSecret, userRepo),
	})

	serviceCtx, cancelServices := context.WithCancel(context.Background())
	defer cancelServices()
	notificationService.Start(serviceCtx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, cancelServices)
}

func waitForShutdown(app *fiber.App, cancelServices context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	cancelServices()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
