package main

import (
	"context"
	"errors"
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

	_ "github.com/Sai69186/ai-time-table-generator/api/swagger"
	"github.com/Sai69186/ai-time-table-generator/internal/handler"
	internalmiddleware "github.com/Sai69186/ai-time-table-generator/internal/middleware"
	"github.com/Sai69186/ai-time-table-generator/internal/models"
	"github.com/Sai69186/ai-time-table-generator/internal/repository"
	"github.com/Sai69186/ai-time-table-generator/internal/service"
	"github.com/Sai69186/ai-time-table-generator/internal/timetable"
	"github.com/Sai69186/ai-time-table-generator/pkg/cache"
	"github.com/Sai69186/ai-time-table-generator/pkg/config"
	"github.com/Sai69186/ai-time-table-generator/pkg/database"
	"github.com/Sai69186/ai-time-table-generator/pkg/jobs"
	"github.com/Sai69186/ai-time-table-generator/pkg/logger"
	corsmiddleware "github.com/Sai69186/ai-time-table-generator/pkg/middleware/cors"
	reqidmiddleware "github.com/Sai69186/ai-time-table-generator/pkg/middleware/requestid"
)

// @title AI Time Table Generator API
// @version 1.0.0
// @description Weekly academic timetable generation service
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, view cache disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.ViewTTL, logr, cfg.Cache.Enabled && redisClient != nil)

	// Services.
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
	})
	branchSvc := service.NewBranchService(branchRepo, sectionRepo, validate, logr)
	sectionSvc := service.NewSectionService(sectionRepo, branchRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, sectionRepo, subjectRepo, teacherRepo, roomRepo, validate, logr)

	generator := timetable.NewGenerator(nil, logr)
	timetableSvc := service.NewTimetableService(
		timetableRepo,
		sectionRepo,
		branchRepo,
		courseRepo,
		generator,
		cacheSvc,
		metricsSvc,
		validate,
		logr,
		timetable.Config{
			StartTime:      cfg.Scheduler.StartTime,
			EndTime:        cfg.Scheduler.EndTime,
			PeriodDuration: cfg.Scheduler.PeriodDuration,
			BreakDuration:  cfg.Scheduler.BreakDuration,
			LunchStart:     cfg.Scheduler.LunchStart,
			LunchDuration:  cfg.Scheduler.LunchDuration,
			WorkingDays:    cfg.Scheduler.WorkingDays,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var regenQueue *jobs.Queue
	if cfg.Jobs.Enabled {
		regenQueue = jobs.NewQueue("timetable-regeneration", timetableSvc.HandleRegenerateJob, jobs.QueueConfig{
			Workers:    cfg.Jobs.Workers,
			BufferSize: cfg.Jobs.QueueSize,
			Logger:     logr,
		})
		regenQueue.Start(ctx)
		defer regenQueue.Stop()
		timetableSvc.SetQueue(regenQueue)
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	branchHandler := handler.NewBranchHandler(branchSvc)
	sectionHandler := handler.NewSectionHandler(sectionSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	requireJWT := internalmiddleware.JWT(authSvc)
	requireAdmin := internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.POST("/logout", requireJWT, authHandler.Logout)
			auth.POST("/change-password", requireJWT, authHandler.ChangePassword)
			auth.GET("/me", requireJWT, authHandler.Me)
		}

		branches := api.Group("/branches", requireJWT)
		{
			branches.GET("", branchHandler.List)
			branches.GET("/:id", branchHandler.Get)
			branches.POST("", requireAdmin, branchHandler.Create)
			branches.PUT("/:id", requireAdmin, branchHandler.Update)
			branches.DELETE("/:id", requireAdmin, branchHandler.Delete)
		}

		sections := api.Group("/sections", requireJWT)
		{
			sections.GET("", sectionHandler.List)
			sections.GET("/:id", sectionHandler.Get)
			sections.GET("/:id/courses", courseHandler.ListBySection)
			sections.POST("", requireAdmin, sectionHandler.Create)
			sections.PUT("/:id", requireAdmin, sectionHandler.Update)
			sections.DELETE("/:id", requireAdmin, sectionHandler.Delete)
		}

		teachers := api.Group("/teachers", requireJWT)
		{
			teachers.GET("", teacherHandler.List)
			teachers.GET("/:id", teacherHandler.Get)
			teachers.POST("", requireAdmin, teacherHandler.Create)
			teachers.PUT("/:id", requireAdmin, teacherHandler.Update)
			teachers.DELETE("/:id", requireAdmin, teacherHandler.Delete)
		}

		rooms := api.Group("/rooms", requireJWT)
		{
			rooms.GET("", roomHandler.List)
			rooms.GET("/:id", roomHandler.Get)
			rooms.POST("", requireAdmin, roomHandler.Create)
			rooms.PUT("/:id", requireAdmin, roomHandler.Update)
			rooms.DELETE("/:id", requireAdmin, roomHandler.Delete)
		}

		subjects := api.Group("/subjects", requireJWT)
		{
			subjects.GET("", subjectHandler.List)
			subjects.GET("/:id", subjectHandler.Get)
			subjects.POST("", requireAdmin, subjectHandler.Create)
			subjects.PUT("/:id", requireAdmin, subjectHandler.Update)
			subjects.DELETE("/:id", requireAdmin, subjectHandler.Delete)
		}

		courses := api.Group("/courses", requireJWT)
		{
			courses.GET("", courseHandler.List)
			courses.GET("/:id", courseHandler.Get)
			courses.POST("", requireAdmin, courseHandler.Create)
			courses.PUT("/:id", requireAdmin, courseHandler.Update)
			courses.DELETE("/:id", requireAdmin, courseHandler.Delete)
		}

		api.GET("/system/stats", requireJWT, requireAdmin, metricsHandler.Stats)

		timetables := api.Group("/timetables", requireJWT)
		{
			timetables.POST("/generate", requireAdmin, timetableHandler.Generate)
			timetables.GET("/sections/:id", timetableHandler.GetView)
			timetables.DELETE("/sections/:id", requireAdmin, timetableHandler.DeleteForSection)
			timetables.GET("/:id/conflicts", timetableHandler.GetConflicts)
			timetables.GET("/:id/export", timetableHandler.Export)
			timetables.POST("/branches/:id/regenerate", requireAdmin, timetableHandler.RegenerateBranch)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
