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

	_ "github.com/gradekeeper/registrar-api/api/swagger"
	"github.com/gradekeeper/registrar-api/internal/handler"
	"github.com/gradekeeper/registrar-api/internal/middleware"
	"github.com/gradekeeper/registrar-api/internal/models"
	"github.com/gradekeeper/registrar-api/internal/repository"
	"github.com/gradekeeper/registrar-api/internal/service"
	"github.com/gradekeeper/registrar-api/pkg/cache"
	"github.com/gradekeeper/registrar-api/pkg/config"
	"github.com/gradekeeper/registrar-api/pkg/database"
	"github.com/gradekeeper/registrar-api/pkg/logger"
	corsmiddleware "github.com/gradekeeper/registrar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/gradekeeper/registrar-api/pkg/middleware/requestid"
)

// @title Registrar API
// @version 0.1.0
// @description Grading period lifecycle, revision requests and gated grade writes
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.PeriodTTL, logr, true)
	} else {
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Cache.PeriodTTL, logr, false)
	}

	periodRepo := repository.NewPeriodRepository(db)
	revisionRepo := repository.NewRevisionRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	auditSvc := service.NewAuditService(auditRepo, service.AuditQueueOptions{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
	}, logr)
	if cfg.Audit.Enabled {
		auditSvc.Start(ctx)
		defer auditSvc.Stop()
	}

	gate := service.NewEditGate(periodRepo, revisionRepo, cfg.InstitutionID)

	periodSvc := service.NewPeriodService(periodRepo, cacheSvc, cfg.InstitutionID, validate, logr)
	revisionSvc := service.NewRevisionService(revisionRepo, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, enrollmentRepo, gate, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, validate, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	if cfg.Scheduler.Enabled {
		scheduler := service.NewWindowScheduler(periodRepo, cacheSvc, metricsSvc, cfg.InstitutionID,
			cfg.Scheduler.TickInterval, cfg.Scheduler.Timezone, logr)
		go scheduler.Run(ctx)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(authSvc)
	periodHandler := handler.NewPeriodHandler(periodSvc)
	revisionHandler := handler.NewRevisionHandler(revisionSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	userHandler := handler.NewUserHandler(userSvc)

	audit := func(action, resource string) gin.HandlerFunc {
		if !cfg.Audit.Enabled {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.Audit(auditSvc, action, resource)
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", middleware.JWT(authSvc), authHandler.Me)

	staff := []models.UserRole{models.RoleAdmin, models.RoleRegistrar, models.RoleDean, models.RoleInstructor}
	registrars := []models.UserRole{models.RoleAdmin, models.RoleRegistrar}

	periods := api.Group("/periods", middleware.JWT(authSvc))
	{
		periods.GET("/current", periodHandler.Current)
		periods.GET("/current/window", periodHandler.WindowStatus)

		mutate := periods.Group("", middleware.RequireRoles(registrars...))
		mutate.POST("/rollover", audit(models.AuditActionPeriodUpdate, "grading_period"), periodHandler.Rollover)
		mutate.POST("/advance-term", audit(models.AuditActionPeriodUpdate, "grading_period"), periodHandler.AdvanceTerm)
		mutate.POST("/switch-semester", audit(models.AuditActionPeriodUpdate, "grading_period"), periodHandler.SwitchSemester)
		mutate.POST("/complete-term", audit(models.AuditActionTermComplete, "grading_period"), periodHandler.CompleteTerm)
	}

	revisions := api.Group("/revision-requests", middleware.JWT(authSvc))
	{
		revisions.GET("", middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar, models.RoleDean), revisionHandler.List)
		revisions.GET("/mine", middleware.RequireRoles(models.RoleInstructor), revisionHandler.ListMine)
		revisions.POST("", middleware.RequireRoles(registrars...),
			audit(models.AuditActionRevisionOpen, "revision_request"), revisionHandler.Open)
		revisions.POST("/:id/close", middleware.RequireRoles(registrars...),
			audit(models.AuditActionRevisionClose, "revision_request"), revisionHandler.Close)
	}

	grades := api.Group("/grades", middleware.JWT(authSvc))
	{
		grades.GET("", middleware.RequireRoles(staff...), gradeHandler.ListBySubject)
		grades.PUT("/bulk", middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar, models.RoleInstructor),
			audit(models.AuditActionGradeWrite, "grades"), gradeHandler.BulkUpdate)
		grades.POST("/remarks", middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar, models.RoleInstructor),
			audit(models.AuditActionRemarkWrite, "grades"), gradeHandler.SetRemark)
	}

	enrollments := api.Group("/enrollments", middleware.JWT(authSvc))
	{
		enrollments.GET("", middleware.RequireRoles(staff...), enrollmentHandler.List)
		enrollments.POST("", middleware.RequireRoles(registrars...),
			audit(models.AuditActionEnrollmentEdit, "enrollments"), enrollmentHandler.Create)
		enrollments.DELETE("/:id", middleware.RequireRoles(registrars...),
			audit(models.AuditActionEnrollmentEdit, "enrollments"), enrollmentHandler.Delete)
	}

	users := api.Group("/users", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		users.GET("", userHandler.List)
		users.POST("", audit(models.AuditActionUserCreate, "users"), userHandler.Create)
		users.PATCH("/:id/active", audit(models.AuditActionUserUpdate, "users"), userHandler.SetActive)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
