package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/techbridge-api/internal/config"
	"github.com/noah-isme/techbridge-api/internal/database"
	"github.com/noah-isme/techbridge-api/internal/grading"
	"github.com/noah-isme/techbridge-api/internal/handler"
	"github.com/noah-isme/techbridge-api/internal/middleware"
	"github.com/noah-isme/techbridge-api/internal/models"
	"github.com/noah-isme/techbridge-api/internal/repository"
	"github.com/noah-isme/techbridge-api/internal/router"
	"github.com/noah-isme/techbridge-api/internal/service"
	"github.com/noah-isme/techbridge-api/internal/utils"
	cloud "github.com/noah-isme/techbridge-api/pkg/cloudinary"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}
	logger = logger.With().Str("service", cfg.AppName).Str("env", cfg.AppEnv).Logger()

	db, err := database.Connect(cfg.DatabaseURL)
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
	} else {
		logger.Warn().Msg("redis disabled, caching and pub/sub are off")
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}
	if natsConn != nil {
		defer func() { _ = natsConn.Drain() }()
	}

	var uploader service.FileUploader
	cloudCfg := cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}
	if cloudCfg.Enabled() {
		cloudinaryService, err := cloud.New(cloudCfg, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create cloudinary client")
		}
		uploader = cloudinaryService
	} else {
		logger.Warn().Msg("cloudinary disabled, file uploads will be rejected")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	repos := repository.NewRepositories(db)
	uow := repository.NewUnitOfWork(db)
	policy := servicePolicy(cfg.Policy)

	pointsService := service.NewPointsService(repos.Students, logger)
	activityService := service.NewActivityService(repos.Activity, logger)
	notificationService := service.NewNotificationService(repos.Notifications, redisClient, cfg.EventChannelBase, natsConn, logger)
	effects := service.SideEffects{
		Points:   pointsService,
		Events:   notificationService,
		Activity: activityService,
		Cache:    service.NewCacheInvalidator(redisClient, logger),
	}

	enrollmentService := service.NewEnrollmentService(repos, uow, validate, policy, effects, logger)
	quizService := service.NewQuizService(repos, uow, validate, policy, effects, logger)
	submissionService := service.NewSubmissionService(repos, uow, validate, uploader, policy, effects, logger)
	gradeService := service.NewGradeService(repos, redisClient, cfg.GradeCacheTTL, logger)
	analyticsService := service.NewAnalyticsService(repos, logger)
	dashboardService := service.NewStudentDashboardService(repos, redisClient, cfg.DashboardCacheTTL, logger)
	certificateService := service.NewCertificateService(repos, logger)
	seedService := service.NewSeedService(repos.Courses, repos.Students, validate, cfg.SeedEnabled, cfg.SeedToken, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    int(policy.MaxAttachmentBytes)*4 + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fiberErr, ok := err.(*fiber.Error); ok {
				return utils.SendError(c, fiberErr.Code, fiberErr.Message)
			}
			return utils.SendAppError(c, err)
		},
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		EnrollmentHandler: handler.NewEnrollmentHandler(enrollmentService, logger),
		QuizHandler: handler.NewQuizHandler(quizService,
			middleware.RateLimit("quiz_submit", cfg.QuizSubmitRateLimit, cfg.QuizSubmitRateWindow), logger),
		SubmissionHandler:       handler.NewSubmissionHandler(submissionService, logger),
		GradeHandler:            handler.NewGradeHandler(gradeService, analyticsService, activityService, logger),
		CertificateHandler:      handler.NewCertificateHandler(certificateService, logger),
		NotificationHandler:     handler.NewNotificationHandler(notificationService, logger),
		LeaderboardHandler:      handler.NewLeaderboardHandler(pointsService, logger),
		StudentDashboardHandler: handler.NewStudentDashboardHandler(dashboardService, logger),
		SeedHandler:             handler.NewSeedHandler(seedService, logger),
		HealthProbes:            healthProbes(db, redisClient, natsConn),
		JWTMiddleware:           middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Msg("starting http server")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func servicePolicy(p config.Policy) service.Policy {
	return service.Policy{
		Quiz: models.QuizRules{
			PassingScore: p.QuizPassingScore,
			Attempts: grading.AttemptPolicy{
				MaxAttempts:   p.QuizMaxAttempts,
				CooldownHours: p.QuizCooldownHours,
			},
		},
		Late: models.LatePolicy{
			PenaltyPerDay: p.LatePenaltyPerDay,
			MaxLateDays:   p.MaxLateDays,
		},
		QuizPassBonus:      p.QuizPassBonus,
		LessonBonus:        p.LessonBonus,
		UnenrollThreshold:  p.UnenrollThreshold,
		MaxAttachmentBytes: p.MaxAttachmentBytes,
	}
}

func healthProbes(db *gorm.DB, redisClient *redis.Client, natsConn *nats.Conn) map[string]handler.HealthProbe {
	probes := map[string]handler.HealthProbe{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		probes["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if natsConn != nil {
		probes["nats"] = func(context.Context) error {
			if !natsConn.IsConnected() {
				return nats.ErrConnectionClosed
			}
			return nil
		}
	}
	return probes
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
