package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/dsewell/school-scheduler-api/api/swagger"
	"github.com/dsewell/school-scheduler-api/internal/handler"
	"github.com/dsewell/school-scheduler-api/internal/middleware"
	"github.com/dsewell/school-scheduler-api/internal/models"
	"github.com/dsewell/school-scheduler-api/internal/repository"
	"github.com/dsewell/school-scheduler-api/internal/service"
	"github.com/dsewell/school-scheduler-api/pkg/cache"
	"github.com/dsewell/school-scheduler-api/pkg/config"
	"github.com/dsewell/school-scheduler-api/pkg/database"
	"github.com/dsewell/school-scheduler-api/pkg/logger"
	corsmiddleware "github.com/dsewell/school-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/dsewell/school-scheduler-api/pkg/middleware/requestid"
)

// @title School Scheduler API
// @version 1.0.0
// @description Timetable consistency and enrollment engine for school scheduling
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, schedule cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	slotRepo := repository.NewTimeSlotRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && cacheRepo != nil)

	checker := service.NewConflictChecker(slotRepo, enrollmentRepo, logr)
	schedulerSvc := service.NewSchedulingService(db, userRepo, classRepo, slotRepo, enrollmentRepo, checker, cacheSvc, metricsSvc, validate, logr, cfg.Engine.TxTimeout)

	userSvc := service.NewUserService(userRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, userRepo, validate, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "school-scheduler-api",
	})
	exportSvc := service.NewExportService(schedulerSvc, nil, nil, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc, schedulerSvc)
	classHandler := handler.NewClassHandler(classSvc, schedulerSvc, slotRepo)
	slotHandler := handler.NewTimeSlotHandler(schedulerSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(schedulerSvc, enrollmentRepo)
	scheduleHandler := handler.NewScheduleHandler(schedulerSvc, exportSvc)
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

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
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
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))

	secured.GET("/auth/me", authHandler.Me)
	secured.GET("/metrics/snapshot", metricsHandler.Snapshot)

	admin := middleware.RequireRoles(models.RoleAdmin)

	users := secured.Group("/users")
	users.GET("", admin, userHandler.List)
	users.POST("", admin, userHandler.Create)
	users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), middleware.AllowSelf), userHandler.Get)
	users.PUT("/:id", admin, userHandler.Update)
	users.DELETE("/:id", admin, userHandler.Delete)

	classes := secured.Group("/classes")
	classes.GET("", classHandler.List)
	classes.GET("/:id", classHandler.Get)
	classes.GET("/:id/time-slots", classHandler.ListSlots)
	classes.POST("", admin, classHandler.Create)
	classes.PUT("/:id", admin, classHandler.Update)
	classes.DELETE("/:id", admin, classHandler.Delete)

	slots := secured.Group("/time-slots")
	slots.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), slotHandler.Assign)
	slots.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), slotHandler.Delete)

	enrollments := secured.Group("/enrollments")
	enrollments.GET("", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), enrollmentHandler.List)
	enrollments.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleStudent), enrollmentHandler.Create)
	enrollments.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleStudent), enrollmentHandler.Delete)

	schedules := secured.Group("/schedules")
	schedules.GET("/teachers/:id", middleware.RBAC(string(models.RoleAdmin), string(models.RoleTeacher), middleware.AllowSelf), scheduleHandler.TeacherSchedule)
	schedules.GET("/teachers/:id/export", middleware.RBAC(string(models.RoleAdmin), string(models.RoleTeacher), middleware.AllowSelf), scheduleHandler.ExportTeacherSchedule)
	schedules.GET("/students/:id", middleware.RBAC(string(models.RoleAdmin), middleware.AllowSelf), scheduleHandler.StudentSchedule)
	schedules.GET("/students/:id/export", middleware.RBAC(string(models.RoleAdmin), middleware.AllowSelf), scheduleHandler.ExportStudentSchedule)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
