package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"sentiment-service/internal/adapters/primary/http/handlers"
	"sentiment-service/internal/adapters/primary/http/middleware"
	"sentiment-service/internal/adapters/secondary/filesystem"
	"sentiment-service/internal/adapters/secondary/postgres"
	"sentiment-service/internal/config"
	output "sentiment-service/internal/core/ports/output"
	"sentiment-service/internal/core/services"
	"sentiment-service/internal/logger"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logCloser := logger.Init(cfg.Logger)
	defer logCloser.Close()

	health := handlers.NewHealthHandler()

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Secondary Adapters (Output Ports)
	diskStore := filesystem.NewArtifactStore(cfg.Artifacts.Root)
	var store output.ArtifactStore = diskStore
	if cfg.Artifacts.CacheEnabled {
		cached, err := filesystem.NewCachedArtifactStore(diskStore, cfg.Artifacts.CacheSize)
		if err != nil {
			log.Fatalf("create artifact cache: %v", err)
		}
		defer cached.Close()
		store = cached
		log.WithField("size", cfg.Artifacts.CacheSize).Info("Artifact cache enabled")
	} else {
		log.Info("Artifact cache disabled, bundles load from disk on every request")
	}
	health.AddCheck("artifacts", func(context.Context) error {
		_, err := os.Stat(cfg.Artifacts.Root)
		return err
	})

	// Comparison history (Optional - based on config)
	var historySvc *services.ComparisonHistoryService
	if cfg.Database.Enabled {
		pool, err := postgres.Connect(context.Background(), cfg.Database)
		if err != nil {
			log.Fatalf("connect db: %v", err)
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		log.Info("database connection established")

		historySvc = services.NewComparisonHistoryService(postgres.NewComparisonRepository(pool))
		health.AddCheck("database", pool.Ping)
	} else {
		log.Info("Comparison history disabled")
	}

	// Core Services (Application Layer)
	predictionSvc := services.NewPredictionService(store)

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(predictionSvc, historySvc)

	corsMiddleware, err := middleware.CORS(cfg.CORS.AllowedOrigins)
	if err != nil {
		log.Fatalf("cors: %v", err)
	}

	// Setup router
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		corsMiddleware,
		middleware.BodyLimit(cfg.Server.MaxBodyBytes),
		middleware.Preflight(),
	)
	health.Register(router)

	protected := router.Group("", middleware.Auth(cfg.Auth.APIKey))
	h.RegisterPredictRoutes(protected, router)
	h.RegisterRoutes(protected.Group("/api/v1"))

	if cfg.Auth.APIKey == "" {
		log.Warn("AUTH_API_KEY not set, requests are served anonymously")
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	health.SetReady(true)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	health.SetReady(false)
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("server forced shutdown: %v", err)
		return
	}

	log.Info("server stopped")
}
