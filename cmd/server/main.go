package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	conversionapp "github.com/dibaisales/central/internal/application/conversion"
	transcriptionapp "github.com/dibaisales/central/internal/application/transcription"
	validationapp "github.com/dibaisales/central/internal/application/validation"
	"github.com/dibaisales/central/internal/domain/mapping"
	"github.com/dibaisales/central/internal/infrastructure/audio"
	"github.com/dibaisales/central/internal/infrastructure/cache"
	"github.com/dibaisales/central/internal/infrastructure/config"
	"github.com/dibaisales/central/internal/infrastructure/gemini"
	"github.com/dibaisales/central/internal/infrastructure/logger"
	"github.com/dibaisales/central/internal/infrastructure/printing"
	"github.com/dibaisales/central/internal/infrastructure/storage"
	"github.com/dibaisales/central/internal/infrastructure/telemetry"
	"github.com/dibaisales/central/internal/infrastructure/whatsapp"
	"github.com/dibaisales/central/internal/infrastructure/worker"
	"github.com/dibaisales/central/internal/interfaces/http/handler"
	"github.com/dibaisales/central/internal/interfaces/http/middleware"
	"github.com/dibaisales/central/internal/interfaces/http/router"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, cfg.App.Name)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.App.Name,
		ServiceVersion:    handler.Version,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if tp.IsEnabled() {
		log = zap.New(zapcore.NewTee(log.Core(), tp.ZapCore(zapcore.InfoLevel)),
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		)
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting sales operations service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", handler.Version),
		zap.Bool("telemetry", tp.IsEnabled()),
	)

	meter := tp.Meter(cfg.App.Name)
	metrics, err := telemetry.NewMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create metrics", zap.Error(err))
	}

	// Spreadsheet conversion
	mapper := mapping.NewMapper(mapping.NewTransformRegistry())
	conversionSvc := conversionapp.NewService(mapper, log,
		conversionapp.WithMaxRows(cfg.Conversion.MaxRows),
		conversionapp.WithMetrics(metrics),
	)

	// WhatsApp validation
	store, err := cache.NewStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create cache store", zap.Error(err))
	}
	defer store.Close()

	waClient := whatsapp.NewClient(cfg.WhatsApp,
		whatsapp.WithMetrics(metrics),
		whatsapp.WithLogger(log),
	)
	waPool := worker.New(validationapp.Feature, cfg.WhatsApp.Concurrency,
		worker.WithRate(cfg.WhatsApp.RatePerSecond, cfg.WhatsApp.Concurrency),
		worker.WithLogger(log),
	)
	validationSvc := validationapp.NewService(waClient, waPool, log,
		validationapp.WithCache(store, cfg.WhatsApp.CacheTTL),
		validationapp.WithMetrics(metrics),
	)

	// Call transcription
	fetcherOpts := []audio.FetcherOption{
		audio.WithMetrics(metrics),
		audio.WithLogger(log),
	}
	objects, err := storage.NewS3ObjectStorage(ctx, cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Warn("Object storage unavailable, s3:// recordings will be skipped", zap.Error(err))
	} else {
		fetcherOpts = append(fetcherOpts, audio.WithObjectStorage(objects))
	}
	fetcher := audio.NewFetcher(cfg.Transcription.DownloadTimeout, fetcherOpts...)

	var transcriptionHandler *handler.TranscriptionHandler
	transcriber, err := gemini.NewTranscriber(ctx, cfg.Gemini, nil,
		gemini.WithMetrics(metrics),
		gemini.WithLogger(log),
	)
	if err != nil {
		log.Warn("Transcription disabled", zap.Error(err))
	} else {
		renderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			ExecPath:       cfg.PDF.ChromePath,
			NoSandbox:      true,
			DefaultTimeout: cfg.PDF.Timeout,
			Logger:         log,
		})
		if err != nil {
			log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
		}
		defer renderer.Close()

		transcriptionPool := worker.New(transcriptionapp.Feature, cfg.Transcription.Concurrency,
			worker.WithLogger(log),
		)
		transcriptionSvc := transcriptionapp.NewService(fetcher, transcriber,
			printing.NewReportPrinter(renderer),
			transcriptionPool,
			cfg.Transcription,
			log,
			transcriptionapp.WithMetrics(metrics),
		)
		transcriptionHandler = handler.NewTranscriptionHandler(transcriptionSvc)
		log.Info("Transcription enabled", zap.String("model", transcriber.Model()))
	}

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
		defer limiter.Stop()
	}

	engine := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.App.Name,
		APIVersion:     cfg.App.APIVersion,
		CORSOrigins:    cfg.HTTP.CORSAllowOrigins,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		RateLimiter:    limiter,
		Tracing:        tp.IsEnabled(),
		Meter:          meter,
		Logger:         log,
	}, router.Handlers{
		Conversion:    handler.NewConversionHandler(conversionSvc),
		WhatsApp:      handler.NewWhatsAppHandler(validationSvc),
		Transcription: transcriptionHandler,
		System:        handler.NewSystemHandler(cfg.App.Name, cfg.App.Env),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
