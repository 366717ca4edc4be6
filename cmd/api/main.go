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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/edupreneurx/submissions-api/api/swagger"
	"github.com/edupreneurx/submissions-api/internal/emails"
	"github.com/edupreneurx/submissions-api/internal/handler"
	internalmiddleware "github.com/edupreneurx/submissions-api/internal/middleware"
	"github.com/edupreneurx/submissions-api/internal/repository"
	"github.com/edupreneurx/submissions-api/internal/scheduler"
	"github.com/edupreneurx/submissions-api/internal/service"
	"github.com/edupreneurx/submissions-api/pkg/cache"
	"github.com/edupreneurx/submissions-api/pkg/config"
	"github.com/edupreneurx/submissions-api/pkg/database"
	"github.com/edupreneurx/submissions-api/pkg/jobs"
	"github.com/edupreneurx/submissions-api/pkg/logger"
	"github.com/edupreneurx/submissions-api/pkg/mailer"
	corsmiddleware "github.com/edupreneurx/submissions-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edupreneurx/submissions-api/pkg/middleware/requestid"
	"github.com/edupreneurx/submissions-api/pkg/refnum"
)

// @title EduPreneurX Submissions API
// @version 1.0.0
// @description Public form intake and admin triage for EduPreneurX leads
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const schedulerRunTimeout = 2 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Stats.CacheEnabled {
		dialCtx, cancelDial := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = cache.NewRedis(dialCtx, cfg.Redis)
		cancelDial()
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, stats cache disabled", "error", err)
		} else {
			defer redisClient.Close()
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, "edupx", logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, cacheRepo != nil)

	submissionRepo := repository.NewSubmissionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)

	renderer, err := emails.NewRenderer(emails.Branding{
		InstituteName: cfg.Institute.Name,
		DashboardURL:  cfg.Institute.DashboardURL,
		SupportEmail:  cfg.Institute.SupportEmail,
	})
	if err != nil {
		logr.Sugar().Fatalw("failed to parse email templates", "error", err)
	}

	sender, err := mailer.New(cfg.Mail, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init mailer", "error", err)
	}

	dispatcher := service.NewEmailDispatcher(renderer, sender, validate, logr, cfg.Mail.AdminAddress)
	worker := service.NewNotificationWorker(notificationRepo, dispatcher, metricsSvc, logr)
	queue := jobs.NewQueue("notifications", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
		OnGiveUp:   worker.GiveUp,
	})

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue.Start(rootCtx)
	defer queue.Stop()

	notifier := service.NewNotifier(notificationRepo, queue, logr, service.NotifierConfig{
		AdminAddress: cfg.Mail.AdminAddress,
		NotifyStaff:  cfg.Mail.NotifyStaff,
	})
	notifier.RecoverPending(rootCtx)

	submissionSvc := service.NewSubmissionService(
		submissionRepo,
		refnum.New(cfg.Institute.ReferencePrefix),
		notifier,
		cacheSvc,
		metricsSvc,
		validate,
		logr,
		service.SubmissionServiceConfig{StatsCacheTTL: cfg.Stats.CacheTTL},
	)
	digestSvc := service.NewDigestService(submissionRepo, notifier, metricsSvc, logr, service.DigestConfig{SkipEmpty: cfg.Digest.SkipEmpty})
	authSvc := service.NewAuthService(adminRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	cron := scheduler.New(logr, schedulerRunTimeout)
	if cfg.Digest.Enabled {
		if err := cron.ScheduleDigest(cfg.Digest.Schedule, digestSvc); err != nil {
			logr.Sugar().Fatalw("invalid digest schedule", "schedule", cfg.Digest.Schedule, "error", err)
		}
	}
	if cfg.Notifications.RecoverSchedule != "" {
		if err := cron.ScheduleRecovery(cfg.Notifications.RecoverSchedule, notifier); err != nil {
			logr.Sugar().Fatalw("invalid notification recovery schedule", "schedule", cfg.Notifications.RecoverSchedule, "error", err)
		}
	}
	cron.Start()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics", "/health", "/ready"))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, readinessChecks(db, redisClient))
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), routeHandlers{
		auth:        handler.NewAuthHandler(authSvc),
		submissions: handler.NewSubmissionHandler(submissionSvc),
		exports:     handler.NewExportHandler(service.NewExportService(submissionRepo, logr)),
		emails:      handler.NewEmailHandler(dispatcher, digestSvc, notifier),
		jwt:         internalmiddleware.JWT(authSvc),
		logger:      logr,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	cron.Stop(shutdownCtx)
}

type routeHandlers struct {
	auth        *handler.AuthHandler
	submissions *handler.SubmissionHandler
	exports     *handler.ExportHandler
	emails      *handler.EmailHandler
	jwt         gin.HandlerFunc
	logger      *zap.Logger
}

func registerRoutes(api *gin.RouterGroup, h routeHandlers) {
	api.POST("/submissions", h.submissions.Create)
	api.POST("/auth/login", h.auth.Login)

	admin := api.Group("")
	admin.Use(h.jwt)
	admin.GET("/auth/me", h.auth.Me)

	submissions := admin.Group("/submissions")
	submissions.GET("", h.submissions.List)
	submissions.GET("/stats", h.submissions.Stats)
	submissions.GET("/export", h.exports.Export)
	submissions.GET("/reference/:reference", h.submissions.GetByReference)
	submissions.GET("/:id", h.submissions.Get)
	submissions.PATCH("/:id/status", internalmiddleware.Audit(h.logger, "submission.status"), h.submissions.UpdateStatus)
	submissions.DELETE("/:id", internalmiddleware.Audit(h.logger, "submission.delete"), h.submissions.Delete)

	admin.POST("/emails/send", internalmiddleware.Audit(h.logger, "email.send"), h.emails.Send)
	admin.POST("/digest/run", internalmiddleware.Audit(h.logger, "digest.run"), h.emails.RunDigest)
	admin.GET("/notifications", h.emails.ListNotifications)
}

func readinessChecks(db *sqlx.DB, redisClient *redis.Client) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"database": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}
