package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campusdesk/campusdesk-api/api/swagger"
	"github.com/campusdesk/campusdesk-api/internal/handler"
	"github.com/campusdesk/campusdesk-api/internal/middleware"
	"github.com/campusdesk/campusdesk-api/internal/repository"
	"github.com/campusdesk/campusdesk-api/internal/service"
	"github.com/campusdesk/campusdesk-api/pkg/cache"
	"github.com/campusdesk/campusdesk-api/pkg/config"
	"github.com/campusdesk/campusdesk-api/pkg/database"
	"github.com/campusdesk/campusdesk-api/pkg/logger"
	corsmiddleware "github.com/campusdesk/campusdesk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusdesk/campusdesk-api/pkg/middleware/requestid"
)

// @title CampusDesk API
// @version 1.0.0
// @description Student complaint and feedback tracking service
// @BasePath /api
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
	defer db.Close() //nolint:errcheck

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, stats caching disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	defer cacheRepo.Close() //nolint:errcheck

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	complaintSvc := service.NewComplaintService(complaintRepo, userRepo, cacheRepo, metricsSvc, cfg.Stats.CacheTTL, validate, logr)
	feedbackSvc := service.NewFeedbackService(feedbackRepo, complaintRepo, cacheRepo, metricsSvc, cfg.Stats.CacheTTL, validate, logr)
	exportSvc := service.NewExportService(complaintRepo, logr)

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
		start := time.Now()
		err := db.PingContext(c.Request.Context())
		metricsSvc.ObserveDBQuery("ping", time.Since(start))
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, handler.RouterDeps{
		Auth:           handler.NewAuthHandler(authSvc, userSvc),
		Complaints:     handler.NewComplaintHandler(complaintSvc, exportSvc),
		Feedback:       handler.NewFeedbackHandler(feedbackSvc),
		Users:          handler.NewUserHandler(userSvc),
		AuthService:    authSvc,
		Metrics:        metricsSvc,
		APIPrefix:      cfg.APIPrefix,
		ExportsEnabled: cfg.Exports.Enabled,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
