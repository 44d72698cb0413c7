package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dynamocards-backend/internal/app"
	"dynamocards-backend/internal/config"
	"dynamocards-backend/internal/logger"
	"dynamocards-backend/internal/queue"
	"dynamocards-backend/internal/telemetry"
	"dynamocards-backend/middleware"
	"dynamocards-backend/routes"
	"dynamocards-backend/services"

	"github.com/gin-gonic/gin"
)

const serviceName = "dynamocards-backend"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	if cfg.OTelEndpoint != "" {
		shutdown, err := telemetry.InitTracer(serviceName, cfg.OTelEndpoint, cfg.OTelSampleRatio)
		if err != nil {
			log.Printf("Tracing disabled: %v", err)
		} else {
			defer shutdown()
		}
	}
	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Printf("Metrics disabled: %v", err)
	}

	deps, err := app.Build(context.Background(), cfg, metrics)
	if err != nil {
		log.Fatal("Failed to initialize pipeline:", err)
	}
	defer deps.Close()

	// Async analysis needs both the queue (Redis) and the history (Mongo)
	var enqueuer services.Enqueuer
	if deps.Redis != nil && deps.Store != nil {
		redisOpt, err := config.RedisOptions(cfg)
		if err != nil {
			log.Fatal("Failed to configure queue:", err)
		}
		client := queue.NewClient(queue.RedisConnOpt(redisOpt))
		defer client.Close()
		enqueuer = client
	}
	analysisService := deps.AnalysisService(enqueuer, metrics)

	if deps.Store != nil {
		cleanup := services.NewCleanupService(deps.Store, cfg.AnalysisRetentionDays)
		if err := cleanup.Schedule(cfg.CleanupCron); err != nil {
			log.Fatal("Invalid CLEANUP_CRON:", err)
		}
		cleanup.Start()
		defer cleanup.Stop()
	}

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddlewareWithOrigins(cfg.CORSOrigins))
	router.Use(middleware.TracingMiddleware(serviceName))
	router.Use(middleware.MetricsMiddleware(metrics))

	routes.SetupHealthRoutes(router)

	authMiddleware := middleware.NewAuthMiddleware(cfg.APIJWTSecret)
	guards := []gin.HandlerFunc{
		middleware.RequestSizeLimit(cfg.MaxBodySize),
		authMiddleware.RequireAuth(),
		middleware.EnrichTrace(),
	}
	if deps.Redis != nil {
		guards = append(guards, middleware.RateLimitMiddleware(deps.Redis, cfg))
	}
	routes.SetupAnalysisRoutes(router, analysisService, services.NewExportService(), guards...)

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// In-flight analyses see their request context cancelled by Shutdown's deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Println("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
