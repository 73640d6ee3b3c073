package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/campus-records-api/api/swagger"
	"github.com/noah-isme/campus-records-api/internal/handler"
	"github.com/noah-isme/campus-records-api/internal/repository"
	"github.com/noah-isme/campus-records-api/internal/router"
	"github.com/noah-isme/campus-records-api/internal/service"
	"github.com/noah-isme/campus-records-api/internal/token"
	"github.com/noah-isme/campus-records-api/pkg/cache"
	"github.com/noah-isme/campus-records-api/pkg/config"
	"github.com/noah-isme/campus-records-api/pkg/database"
	"github.com/noah-isme/campus-records-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-records-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-records-api/pkg/middleware/requestid"
	"github.com/noah-isme/campus-records-api/pkg/validation"
)

// @title Campus Records API
// @version 1.0.0
// @description Students, lecturers, courses and enrollments
// @BasePath /
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
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	issuer, err := token.New(cfg.Token)
	if err != nil {
		logr.Fatal("failed to init token issuer", zap.Error(err))
	}

	validate := validation.New()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	lecturerRepo := repository.NewLecturerRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	revocations := repository.NewTokenRevocationRepository(redisClient, logr)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	studentSvc := service.NewStudentService(studentRepo, userRepo, enrollmentRepo, db, validate, logr)
	lecturerSvc := service.NewLecturerService(lecturerRepo, userRepo, db, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, lecturerRepo, enrollmentRepo, db, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, lecturerRepo, db, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, 30*time.Second, logr, redisClient != nil)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Students:    studentSvc,
		Courses:     courseSvc,
		Lecturers:   lecturerSvc,
		Enrollments: enrollmentSvc,
		Cache:       cacheSvc,
		Logger:      logr,
	})
	transcriptSvc := service.NewTranscriptService(studentSvc, courseSvc, enrollmentSvc, metrics, logr)
	authSvc := service.NewAuthService(service.AuthServiceParams{
		Users:      userRepo,
		Students:   studentRepo,
		Lecturers:  lecturerRepo,
		Registrar:  studentSvc,
		Issuer:     issuer,
		Revocation: revocations,
		Metrics:    metrics,
		Validator:  validate,
		Logger:     logr,
	})

	if cfg.Seed.Enabled {
		seed := service.NewSeedService(userRepo, studentSvc, lecturerSvc, courseSvc, service.SeedConfig{
			AdminUsername: cfg.Seed.AdminUsername,
			AdminPassword: cfg.Seed.AdminPassword,
		}, logr)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := seed.Run(ctx)
		cancel()
		if err != nil {
			logr.Fatal("failed to seed development data", zap.Error(err))
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	router.Register(r, router.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Students:    handler.NewStudentHandler(studentSvc),
		Lecturers:   handler.NewLecturerHandler(lecturerSvc, courseSvc),
		Courses:     handler.NewCourseHandler(courseSvc),
		Enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		Transcripts: handler.NewTranscriptHandler(transcriptSvc),
		Dashboard:   handler.NewDashboardHandler(dashboardSvc),
		Metrics:     handler.NewMetricsHandler(metrics, db),
	}, router.Options{
		Prefix:        cfg.APIPrefix,
		Authenticator: authSvc,
		Audit:         userRepo,
		Invalidator:   dashboardSvc,
		Metrics:       metrics,
		Logger:        logr,
		ExposeMetrics: cfg.Features.Metrics,
		Transcripts:   cfg.Features.Transcripts,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "tokenScheme", cfg.Token.Scheme)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
