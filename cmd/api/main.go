package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coursehub-api/internal/config"
	"github.com/noah-isme/coursehub-api/internal/database"
	"github.com/noah-isme/coursehub-api/internal/handler"
	"github.com/noah-isme/coursehub-api/internal/middleware"
	"github.com/noah-isme/coursehub-api/internal/repository"
	"github.com/noah-isme/coursehub-api/internal/router"
	"github.com/noah-isme/coursehub-api/internal/service"
	cloud "github.com/noah-isme/coursehub-api/pkg/cloudinary"
	"github.com/noah-isme/coursehub-api/pkg/localstore"
	"github.com/noah-isme/coursehub-api/pkg/token"
	"github.com/noah-isme/coursehub-api/pkg/validation"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.AppEnv == "development" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	logger = logger.With().Str("service", cfg.AppName).Logger()

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Drain()
	}

	var (
		storage   service.FileStorage
		uploadDir string
	)
	if cfg.CloudinaryEnabled() {
		storage, err = cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create cloudinary client")
		}
	} else {
		store, err := localstore.New(cfg.UploadDir, "/uploads")
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare upload directory")
		}
		storage = store
		uploadDir = store.Dir()
	}

	validator := validation.New()
	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	studyPlanRepo := repository.NewStudyPlanRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	images := service.NewImageService(storage, cfg.UploadMaxSizeMB, logger)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, redisClient, cfg.NotificationChannel, natsConn, validator.Validate, logger)
	authService := service.NewAuthService(userRepo, tokens, cfg.AllowCoordinatorSignup, validator.Validate, logger)
	userService := service.NewUserService(userRepo, images, validator.Validate, logger)
	courseService := service.NewCourseService(courseRepo, userRepo, notificationService, images, redisClient, cfg.CourseCacheTTL, validator.Validate, logger)
	studyPlanService := service.NewStudyPlanService(studyPlanRepo, courseRepo, validator.Validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, courseRepo, validator.Validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, validator.Validate, logger)
	gradebookService := service.NewGradebookService(submissionRepo, assignmentRepo, logger)

	if cfg.BootstrapCoordinator.Enabled() {
		seed := cfg.BootstrapCoordinator
		if err := authService.EnsureCoordinator(context.Background(), seed.Name, seed.Email, seed.Password); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed bootstrap coordinator")
		}
	}

	streamCtx, stopStreams := context.WithCancel(context.Background())
	defer stopStreams()
	notificationService.Start(streamCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxSizeMB + 1) * 1024 * 1024,
		ErrorHandler: handler.ErrorHandler(logger),
	})

	middleware.Register(app, middleware.Config{
		Logger:         &logger,
		AllowedOrigins: cfg.CORSOrigins(),
		AccessLog:      cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, validator, logger),
		UserHandler:         handler.NewUserHandler(userService, validator, logger),
		CourseHandler:       handler.NewCourseHandler(courseService, validator, logger),
		StudyPlanHandler:    handler.NewStudyPlanHandler(studyPlanService, validator, logger),
		AssignmentHandler:   handler.NewAssignmentHandler(assignmentService, validator, logger),
		SubmissionHandler:   handler.NewSubmissionHandler(submissionService, gradebookService, validator, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, validator, logger, cfg.NotificationKeepAlive),
		JWTMiddleware:       middleware.JWTProtected(tokens),
		StreamMiddleware:    middleware.WithAuth(tokens, middleware.AuthOptions{AllowQueryToken: true}),
		AuthRateLimit:       middleware.RateLimit("auth", cfg.LoginRateLimit, time.Minute),
		UploadDir:           uploadDir,
	})

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress()).Msg("starting http server")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
