package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/dibaisales/central/internal/infrastructure/logger"
	"github.com/dibaisales/central/internal/interfaces/http/dto"
	"github.com/dibaisales/central/internal/interfaces/http/handler"
	"github.com/dibaisales/central/internal/interfaces/http/middleware"
)

// Handlers are the endpoint handlers mounted by NewEngine
type Handlers struct {
	Conversion    *handler.ConversionHandler
	WhatsApp      *handler.WhatsAppHandler
	Transcription *handler.TranscriptionHandler
	System        *handler.SystemHandler
}

// EngineConfig holds the HTTP surface settings
type EngineConfig struct {
	ServiceName    string
	APIVersion     string
	CORSOrigins    []string
	TrustedProxies []string
	MaxBodySize    int64
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *middleware.RateLimiter
	Tracing     bool
	// Meter is optional; nil disables HTTP metrics.
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewEngine builds the gin engine with the middleware stack and every route.
//
// Middleware order: Recovery, RequestID, Tracing, Logger, Security, CORS,
// BodyLimit, RateLimit.
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	if cfg.Tracing {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.TracingAttributeInjector(), middleware.SpanErrorMarker())
	}
	engine.Use(middleware.HTTPMetrics(cfg.Meter))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORSOrigins
	engine.Use(middleware.CORSWithConfig(cors))
	engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "route not found", c.GetString("request_id")))
	})

	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}

	r := NewRouter(engine, WithAPIVersion(cfg.APIVersion))
	if h.System != nil {
		r.Register(NewFeatureGroup("system", "/system").
			GET("/info", h.System.GetSystemInfo))
	}
	if h.Conversion != nil {
		r.Register(NewFeatureGroup("conversion", "").
			POST("/converter_planilha", h.Conversion.ConvertLeads).
			POST("/speedio_assertiva", h.Conversion.UnifyRegistry).
			POST("/salesforce", h.Conversion.ExportSalesforce).
			POST("/extrator-numero", h.Conversion.ExtractPartnerPhones).
			POST("/extrator-email", h.Conversion.ExtractEmails))
	}
	if h.WhatsApp != nil {
		r.Register(NewFeatureGroup("whatsapp", "").
			POST("/whatsapp_validator", h.WhatsApp.Validate))
	}
	if h.Transcription != nil {
		r.Register(NewFeatureGroup("transcription", "").
			POST("/transcrever_audios", h.Transcription.Transcribe))
	}
	for _, route := range r.Setup() {
		log.Debug("Route mounted",
			zap.String("feature", route.Feature),
			zap.String("method", route.Method),
			zap.String("path", route.Path))
	}

	return engine
}
