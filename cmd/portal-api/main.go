package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skoolhq/sms-portal-api/internal/connectivity"
	"github.com/skoolhq/sms-portal-api/internal/handler"
	internalmiddleware "github.com/skoolhq/sms-portal-api/internal/middleware"
	"github.com/skoolhq/sms-portal-api/internal/remote"
	"github.com/skoolhq/sms-portal-api/internal/repository"
	"github.com/skoolhq/sms-portal-api/internal/service"
	"github.com/skoolhq/sms-portal-api/pkg/cache"
	"github.com/skoolhq/sms-portal-api/pkg/config"
	"github.com/skoolhq/sms-portal-api/pkg/database"
	"github.com/skoolhq/sms-portal-api/pkg/jobs"
	"github.com/skoolhq/sms-portal-api/pkg/logger"
	corsmiddleware "github.com/skoolhq/sms-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/skoolhq/sms-portal-api/pkg/middleware/requestid"
)

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(cfg.Database, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to open store", "error", err)
	}
	defer store.Close()

	if err := store.Seed(ctx, cfg.Seed); err != nil {
		logr.Sugar().Fatalw("failed to seed store", "error", err)
	}

	var redisClient *redis.Client
	if cfg.Stats.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, stats cache disabled", "error", err)
			redisClient = nil
		}
	}

	validate := validator.New()
	monitor := connectivity.NewMonitor(cfg.Sync.StartOnline)

	db := store.DB()
	studentRepo := repository.NewStudentRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	syncQueueRepo := repository.NewSyncQueueRepository(db)
	backupRepo := repository.NewBackupRepository(db)

	metricsSvc := service.NewMetricsService()

	statsSvc := service.NewStatsService(studentRepo, nil, cfg.Stats.CacheTTL, logr)
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		statsSvc = service.NewStatsService(studentRepo, cacheRepo, cfg.Stats.CacheTTL, logr).
			WithCacheObserver(metricsSvc)
	}

	var endpoint remote.Endpoint
	if cfg.Sync.RemoteURL != "" {
		endpoint = remote.NewHTTPEndpoint(cfg.Sync.RemoteURL, cfg.Sync.PushTimeout)
	} else {
		endpoint = remote.NewLogEndpoint(logr)
	}

	authSvc := service.NewAuthService(adminRepo, studentRepo, syncQueueRepo, monitor, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, syncQueueRepo, monitor, statsSvc, validate, logr)
	adminSvc := service.NewAdminService(adminRepo, validate, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, studentRepo, validate, logr)
	backupSvc := service.NewBackupService(studentRepo, adminRepo, notificationRepo, backupRepo, logr)
	exportSvc := service.NewExportService(studentRepo, logr)
	syncSvc := service.NewSyncService(syncQueueRepo, studentRepo, monitor, endpoint, logr)

	// Reconnecting triggers a background drain so queued offline mutations
	// reach the remote without waiting for a manual POST /sync/drain.
	drainQueue := jobs.NewQueue("sync-drain", func(jobCtx context.Context, _ jobs.Job) error {
		err := syncSvc.Drain(jobCtx)
		metricsSvc.RecordSyncDrain(err == nil)
		if status, statusErr := syncSvc.Status(jobCtx); statusErr == nil {
			metricsSvc.SetSyncQueueDepth(status.Pending)
		}
		return err
	}, jobs.Options{
		Workers:    1,
		MaxRetries: cfg.Sync.DrainRetries,
		RetryDelay: cfg.Sync.DrainInterval,
		Logger:     logr,
	})
	drainQueue.Start(ctx)
	defer drainQueue.Stop()

	monitor.Subscribe(func(online bool) {
		if !online {
			return
		}
		if err := drainQueue.Enqueue(jobs.Job{Type: "drain", Enqueued: time.Now()}); err != nil {
			logr.Warn("failed to schedule drain", zap.Error(err))
		}
	})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	handlers := &handler.Set{
		Auth:          handler.NewAuthHandler(authSvc),
		Students:      handler.NewStudentHandler(studentSvc),
		Admins:        handler.NewAdminHandler(adminSvc),
		Notifications: handler.NewNotificationHandler(notificationSvc),
		Stats:         handler.NewStatsHandler(statsSvc),
		Backup:        handler.NewBackupHandler(backupSvc),
		Exports:       handler.NewExportHandler(exportSvc),
		Sync:          handler.NewSyncHandler(syncSvc, monitor),
		Metrics:       handler.NewMetricsHandler(metricsSvc),
	}
	handlers.Register(r, authSvc)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "driver", store.Driver())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
