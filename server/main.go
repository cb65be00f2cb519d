package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phambaophuc/image-thumbnails/internal/config"
	"github.com/phambaophuc/image-thumbnails/internal/http/handlers"
	"github.com/phambaophuc/image-thumbnails/internal/http/routes"
	"github.com/phambaophuc/image-thumbnails/internal/services/cache"
	"github.com/phambaophuc/image-thumbnails/internal/services/processor"
	"github.com/phambaophuc/image-thumbnails/internal/services/queue"
	"github.com/phambaophuc/image-thumbnails/internal/services/storage"
	"github.com/phambaophuc/image-thumbnails/internal/services/thumbnails"
	"github.com/phambaophuc/image-thumbnails/internal/services/watcher"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize services
	engine := processor.NewEngine(processor.NewImagingProvider())

	backend, err := storage.New(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage backend", zap.Error(err))
	}

	var (
		urlCache     cache.URLCache
		cacheMonitor handlers.CacheMonitor
	)
	redisCache := cache.NewRedisCache(cfg.Redis)
	pingCtx, cancelPing := context.WithTimeout(ctx, 3*time.Second)
	if err := redisCache.HealthCheck(pingCtx); err != nil {
		logger.Warn("Redis unavailable, thumbnail URLs will not be cached", zap.Error(err))
		redisCache.Close()
	} else {
		urlCache = redisCache
		cacheMonitor = redisCache
		defer redisCache.Close()
	}
	cancelPing()

	thumbs := thumbnails.NewService(cfg, backend, urlCache, engine, logger)

	var regenQueue handlers.RegenerationQueue
	queueService, err := queue.NewQueueService(cfg.RabbitMQ, thumbs, logger)
	if err != nil {
		logger.Warn("Failed to initialize queue service", zap.Error(err))
		// Continue without queue service for basic functionality
	} else {
		defer queueService.Close()
		regenQueue = queueService
		for i := 1; i <= cfg.RabbitMQ.Workers; i++ {
			if err := queueService.StartWorker(ctx, i); err != nil {
				logger.Error("Failed to start worker", zap.Int("worker_id", i), zap.Error(err))
			}
		}
	}

	if cfg.Storage.WatchUploads {
		if local, ok := backend.(*storage.LocalBackend); ok {
			w, err := watcher.NewWatcher(local.Root(), thumbs, cfg.Storage.AllowedExtensions, logger)
			if err != nil {
				logger.Fatal("Failed to create upload watcher", zap.Error(err))
			}
			if err := w.Start(ctx); err != nil {
				logger.Fatal("Failed to start upload watcher", zap.Error(err))
			}
			defer w.Close()
		} else {
			logger.Warn("WATCH_UPLOADS only applies to the local storage backend",
				zap.String("backend", backend.Name()))
		}
	}

	// Initialize handlers
	imageHandler := handlers.NewImageHandler(thumbs, engine, regenQueue, cacheMonitor, logger, cfg)

	router := routes.NewRouter(imageHandler, logger)
	if local, ok := backend.(*storage.LocalBackend); ok {
		router.ServeMedia(local.Root())
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server",
			zap.String("addr", server.Addr),
			zap.String("storage", backend.Name()),
			zap.Strings("thumbnails", thumbs.Names()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stop()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
