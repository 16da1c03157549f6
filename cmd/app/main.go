package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"eduquest_backend/internal/api"
	"eduquest_backend/internal/middleware"
	"eduquest_backend/internal/repository"
	"eduquest_backend/internal/service"
	"eduquest_backend/pkg/auth"
	"eduquest_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	policy, err := service.ParseErrorPolicy(cfg.EligibilityOnError)
	if err != nil {
		zapLogger.Fatal("Invalid eligibility error policy", zap.Error(err))
	}

	progressService := service.NewProgressService(repo)
	eligibilityService := service.NewEligibilityService(repo, policy)
	enrollmentService := service.NewEnrollmentService(repo)
	courseService := service.NewCourseService(repo)

	serviceAuth := auth.NewServiceAuth(cfg.Auth.Secret, cfg.Auth.DebugMode)
	authz := middleware.NewAuthorization()

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	corsConfig.AllowHeaders = []string{"*"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour

	router.Use(cors.New(corsConfig))

	a := router.Group("/api/v1")
	api.NewCourseRoutes(a, courseService, serviceAuth, authz)
	api.NewProgressRoutes(a, progressService, eligibilityService, serviceAuth)
	api.NewEnrollmentRoutes(a, enrollmentService, serviceAuth, authz)
	api.NewStreamRoutes(a, progressService, serviceAuth)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
