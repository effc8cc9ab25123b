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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/arka-edu/timetable-api/api/swagger"
	"github.com/arka-edu/timetable-api/internal/handler"
	"github.com/arka-edu/timetable-api/internal/middleware"
	"github.com/arka-edu/timetable-api/internal/repository"
	"github.com/arka-edu/timetable-api/internal/service"
	"github.com/arka-edu/timetable-api/pkg/cache"
	"github.com/arka-edu/timetable-api/pkg/config"
	"github.com/arka-edu/timetable-api/pkg/database"
	"github.com/arka-edu/timetable-api/pkg/jobs"
	"github.com/arka-edu/timetable-api/pkg/logger"
	corsmiddleware "github.com/arka-edu/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/arka-edu/timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 1.0.0
// @description Timetable generation, storage, and substitute replacement for the school portal.
// @BasePath /
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Timetable.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Timetable.CacheTTL, logr, true)
		}
	}

	termRepo := repository.NewTermRepository(db)
	classRepo := repository.NewClassRepository(db)
	requirementRepo := repository.NewSubjectRequirementRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	slotRepo := repository.NewTimetableSlotRepository(db)
	absenceRepo := repository.NewAbsenceRepository(db)
	replacementRepo := repository.NewReplacementRepository(db)

	validate := validator.New()
	catalog := service.NewSlotCatalog()

	timetableSvc := service.NewTimetableService(slotRepo, cacheSvc, catalog, logr)
	generatorSvc := service.NewGeneratorService(
		termRepo, classRepo, requirementRepo, teacherRepo, slotRepo, absenceRepo,
		timetableSvc, catalog, validate, logr, metrics,
		service.GeneratorConfig{
			BacktrackLimit: cfg.Scheduler.BacktrackLimit,
			Parallelism:    cfg.Scheduler.Parallelism,
		},
	)
	replacementSvc := service.NewReplacementService(
		replacementRepo, absenceRepo, slotRepo, teacherRepo, timetableSvc, termRepo,
		&service.LogNotifier{Logger: logr}, logr, metrics, cfg.Replacement.OfferTTL,
	)

	if cfg.Replacement.Enabled {
		sweeper := jobs.NewQueue("offer-expiry", func(ctx context.Context, _ jobs.Job) error {
			expired, err := replacementSvc.ExpireStaleOffers(ctx)
			if err != nil {
				return err
			}
			if expired > 0 {
				logr.Sugar().Infow("stale offers expired", "count", expired)
			}
			return nil
		}, jobs.QueueConfig{Workers: cfg.Replacement.QueueWorkers, Logger: logr})
		sweeper.Start(ctx)
		defer sweeper.Stop()

		go func() {
			ticker := time.NewTicker(cfg.Replacement.SweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := sweeper.Enqueue(jobs.Job{Type: "expire-offers"}); err != nil {
						logr.Sugar().Warnw("failed to enqueue expiry sweep", "error", err)
					}
				}
			}
		}()
	}

	schedulerHandler := handler.NewSchedulerHandler(generatorSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	replacementHandler := handler.NewReplacementHandler(replacementSvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		if cfg.Scheduler.Enabled {
			api.POST("/timetable/generate", schedulerHandler.Generate)
		}

		api.GET("/classes/:classId/timetable", timetableHandler.Slots)
		api.GET("/classes/:classId/timetable/export", timetableHandler.Export)
		api.POST("/timetable/slots", timetableHandler.UpsertSlot)
		api.POST("/timetable/overrides", timetableHandler.ApplyOverride)
		api.DELETE("/timetable/overrides/:slotId", timetableHandler.RemoveOverride)

		if cfg.Replacement.Enabled {
			api.POST("/absences", replacementHandler.ReportAbsence)
			api.POST("/absences/:id/revoke", replacementHandler.RevokeAbsence)
			api.GET("/replacements", replacementHandler.ListWorkflows)
			api.POST("/offers/:id/accept", replacementHandler.AcceptOffer)
			api.POST("/offers/:id/decline", replacementHandler.DeclineOffer)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
