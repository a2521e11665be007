package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/huytrandev/sermon-scribe/internal/adapter/handler"
	"github.com/huytrandev/sermon-scribe/internal/adapter/repository"
	"github.com/huytrandev/sermon-scribe/internal/infrastructure/cache"
	"github.com/huytrandev/sermon-scribe/internal/infrastructure/capture"
	"github.com/huytrandev/sermon-scribe/internal/infrastructure/storage"
	"github.com/huytrandev/sermon-scribe/internal/usecase/processing"
	"github.com/huytrandev/sermon-scribe/internal/usecase/recording"
	"github.com/huytrandev/sermon-scribe/pkg/config"
	"github.com/huytrandev/sermon-scribe/pkg/summarize"
	"github.com/huytrandev/sermon-scribe/pkg/transcribe"
	pkgvalidator "github.com/huytrandev/sermon-scribe/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	// Initialize the record store backend
	var store cache.BlobStore
	switch cfg.Store.Backend {
	case "redis":
		log.Println("📦 Connecting to Redis...")
		redisStore, err := cache.NewRedisStore(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
	default:
		log.Println("📦 Using in-memory record store")
		store = cache.NewMemoryStore()
	}

	// Initialize repository
	log.Println("⚙️  Initializing sermon repository...")
	sermonRepo := repository.NewSermonRepository(store, cfg.Store.Key, logger)

	// Initialize vendor clients
	log.Println("🤖 Initializing transcription client...")
	transcriber := transcribe.NewClient(&cfg.Assembly, logger)

	var summarizer processing.Summarizer
	if cfg.OpenAI.APIKey != "" {
		log.Println("🧾 Initializing summarization client...")
		summarizer = summarize.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, logger)
	} else {
		log.Println("⚠️  OPENAI_API_KEY not set, summaries disabled")
	}

	var archiver processing.Archiver
	if cfg.Archive.Enabled {
		log.Println("🗄️  Initializing audio archiver...")
		minioArchiver, err := storage.NewMinIOArchiver(&cfg.Archive)
		if err != nil {
			log.Fatalf("Failed to initialize audio archiver: %v", err)
		}
		archiver = minioArchiver
	}

	// Initialize processing orchestrator
	log.Println("⚙️  Initializing processing orchestrator...")
	orchestrator := processing.NewOrchestrator(sermonRepo, transcriber, summarizer, archiver, logger)

	// Reconcile recordings stuck in processing from a previous run
	if err := orchestrator.ReconcileStale(context.Background(), cfg.Recording.StaleAfter); err != nil {
		log.Printf("⚠️  Stale recording reconciliation failed: %v", err)
	}

	// Initialize capture device and recording controller
	log.Println("🎙️ Initializing recording controller...")
	device := capture.NewFFmpegDevice(cfg.Recording.FFmpegPath, logger)
	controller := recording.NewController(device, orchestrator, sermonRepo, recording.CaptureConfig{
		OutputDir:   cfg.Recording.OutputDir,
		InputFormat: cfg.Recording.InputFormat,
		InputDevice: cfg.Recording.InputDevice,
		SampleRate:  cfg.Recording.SampleRate,
		Channels:    cfg.Recording.Channels,
		BitRate:     cfg.Recording.BitRate,
	}, logger)

	// Initialize handlers
	sermonHandler := handler.NewSermonHandler(sermonRepo, logger)
	recordingHandler := handler.NewRecordingHandler(controller, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, sermonHandler, recordingHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("👋 Server exited")
}
