package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Ahmadayed22/University-Project/api/swagger"
	"github.com/Ahmadayed22/University-Project/internal/handler"
	"github.com/Ahmadayed22/University-Project/internal/middleware"
	"github.com/Ahmadayed22/University-Project/internal/repository"
	"github.com/Ahmadayed22/University-Project/internal/service"
	"github.com/Ahmadayed22/University-Project/pkg/cache"
	"github.com/Ahmadayed22/University-Project/pkg/config"
	"github.com/Ahmadayed22/University-Project/pkg/database"
	"github.com/Ahmadayed22/University-Project/pkg/export"
	"github.com/Ahmadayed22/University-Project/pkg/logger"
	corsmiddleware "github.com/Ahmadayed22/University-Project/pkg/middleware/cors"
	reqidmiddleware "github.com/Ahmadayed22/University-Project/pkg/middleware/requestid"
	"github.com/Ahmadayed22/University-Project/pkg/storage"
)

// @title University Recognition API
// @version 1.0.0
// @description Accreditation workflow for university recognition applications
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	// Redis is optional: without it the dashboard is computed per request.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, status caching disabled", zap.Error(err))
		redisClient = nil
	}

	letterStore, err := storage.NewLetterStore(cfg.Letters.StorageDir)
	if err != nil {
		logr.Fatal("failed to init letter store", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Letters.SignedURLSecret, cfg.Letters.SignedURLTTL)

	institutionRepo := repository.NewInstitutionRepository(db)
	supervisorRepo := repository.NewSupervisorRepository(db)
	decisionRepo := repository.NewDecisionRepository(db)
	queueRepo := repository.NewQueueRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	letterSvc := service.NewLetterService(
		export.NewLetterRenderer(), letterStore, signer,
		cfg.Letters.WorkerConcurrency, cfg.Letters.WorkerRetries, logr)
	letterSvc.Start(context.Background())
	defer letterSvc.Stop()

	validate := validator.New()
	statusSvc := service.NewStatusService(
		institutionRepo, decisionRepo, meetingRepo, cacheRepo, cfg.Statuses.CacheTTL, logr)
	assignmentSvc := service.NewAssignmentService(supervisorRepo, institutionRepo, meetingRepo, validate, logr)
	workflowSvc := service.NewWorkflowService(institutionRepo, queueRepo, assignmentSvc, validate, logr)
	decisionSvc := service.NewDecisionService(
		decisionRepo, institutionRepo, meetingRepo, letterSvc, statusSvc, validate, logr)
	meetingSvc := service.NewMeetingService(
		meetingRepo, queueRepo, decisionRepo, letterSvc, statusSvc, logr)

	applicationHandler := handler.NewApplicationHandler(workflowSvc, metricsSvc)
	supervisorHandler := handler.NewSupervisorHandler(assignmentSvc, workflowSvc, decisionSvc, metricsSvc)
	meetingHandler := handler.NewMeetingHandler(meetingSvc, decisionSvc, assignmentSvc, metricsSvc)
	statusHandler := handler.NewStatusHandler(statusSvc, decisionSvc)
	letterHandler := handler.NewLetterHandler(letterSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

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
		api.GET("/institutions", applicationHandler.List)
		api.POST("/institutions", applicationHandler.Create)
		api.GET("/institutions/:id", applicationHandler.Get)
		api.POST("/institutions/:id/submit", applicationHandler.Submit)
		api.PUT("/institutions/:id/supervisor", meetingHandler.ChangeSupervisor)
		api.GET("/institutions/:id/decisions", supervisorHandler.DecisionHistory)
		api.GET("/institutions/:id/history", statusHandler.History)
		api.GET("/institutions/:id/letter", statusHandler.Letter)

		api.GET("/supervisors", supervisorHandler.List)
		api.POST("/supervisors", supervisorHandler.Create)
		api.GET("/supervisors/:id", supervisorHandler.Get)
		api.DELETE("/supervisors/:id", supervisorHandler.Delete)
		api.GET("/supervisors/:id/institutions", supervisorHandler.Institutions)

		api.POST("/decisions", supervisorHandler.AppendDecision)
		api.POST("/decisions/finalize", meetingHandler.Finalize)

		api.GET("/applications/pending", meetingHandler.Pending)
		api.POST("/applications/return", meetingHandler.Return)

		api.GET("/meetings", meetingHandler.List)
		api.POST("/meetings", meetingHandler.Create)
		api.GET("/meetings/entries", meetingHandler.Entries)

		api.GET("/statuses", statusHandler.Dashboard)
		api.GET("/letters/download", letterHandler.Download)
		api.GET("/metrics/snapshot", metricsHandler.Snapshot)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
