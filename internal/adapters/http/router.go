package http

import (
	"cmp"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/lingo-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/lingo-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/lingo-service/internal/platform/config"
	"github.com/jsamuelsen/lingo-service/internal/platform/i18n"
	"github.com/jsamuelsen/lingo-service/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 25 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is stored in every request context.
	Logger *slog.Logger

	// ServiceName names the tracer used for server spans.
	ServiceName string

	// Translator localizes error bodies on the API surface.
	Translator *i18n.Translator

	// MaxErrorBodySize caps buffered error bodies. Zero uses the
	// middleware default.
	MaxErrorBodySize int64

	// AuthConfig contains authentication header configuration.
	AuthConfig *config.AuthConfig

	Admission   config.AdmissionConfig
	CORS        config.CORSConfig
	Compression config.CompressionConfig

	// Timeout is the per-request deadline of the API. Zero disables it.
	Timeout time.Duration

	HealthHandler *handlers.HealthHandler
	UserHandler   *handlers.UserHandler
	DemoHandler   *handlers.DemoHandler
}

// SetupRouter configures all routes and middleware on the Gin engine.
//
// Global middleware, outermost first:
//  1. CORS
//  2. Compression
//  3. Context logger, request ID and correlation ID
//  4. OpenTelemetry tracing and HTTP metrics
//
// The /api/v1 group then adds, outermost first: error translation,
// recovery, request logging, admission and the request timeout. Error
// translation wraps every layer that turns a fault into a body, so those
// bodies are localized too. Unmatched routes get translation and recovery.
//
// Health endpoints under /-/ only get recovery. Probe bodies are meant for
// orchestrators and stay untranslated.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.HandleMethodNotAllowed = true

	if cfg.CORS.Enabled {
		engine.Use(cors.New(corsConfig(cfg.CORS)))
	}

	if cfg.Compression.Enabled {
		engine.Use(gzip.Gzip(cfg.Compression.Level))
	}

	if cfg.Logger != nil {
		engine.Use(middleware.ContextLogger(cfg.Logger))
	}

	engine.Use(
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.Tracing(cfg.ServiceName),
		telemetry.Middleware(),
	)

	translate := middleware.ErrorTranslation(middleware.TranslationConfig{
		Translator:   cfg.Translator,
		MaxBodyBytes: cfg.MaxErrorBodySize,
	})

	if cfg.HealthHandler != nil {
		health := engine.Group("/-", middleware.Recovery())
		cfg.HealthHandler.RegisterHealthRoutes(health)
	}

	apiV1 := engine.Group("/api/v1", translate, middleware.Recovery(), middleware.Logging())

	if cfg.Admission.Enabled {
		apiV1.Use(middleware.Admission(middleware.AdmissionConfig{
			MaxConcurrent: cfg.Admission.MaxConcurrent,
			Rate:          cfg.Admission.Rate,
			Burst:         cfg.Admission.Burst,
		}))
	}

	if cfg.Timeout > 0 {
		apiV1.Use(middleware.Timeout(cfg.Timeout))
	}

	setupAPIRoutes(apiV1, cfg)

	engine.NoRoute(translate, middleware.Recovery(), NoRoute)
	engine.NoMethod(translate, middleware.Recovery(), NoMethod)
}

// setupAPIRoutes registers business API routes.
func setupAPIRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.UserHandler != nil {
		cfg.UserHandler.RegisterUserRoutes(rg, cfg.AuthConfig)
	}

	if cfg.DemoHandler != nil {
		cfg.DemoHandler.RegisterDemoRoutes(rg)
	}
}

// corsConfig builds the CORS policy. A "*" origin allows every origin.
func corsConfig(cfg config.CORSConfig) cors.Config {
	out := cors.Config{
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept-Language",
			middleware.HeaderRequestID,
			middleware.HeaderCorrelationID,
		},
		ExposeHeaders: []string{
			middleware.HeaderRequestID,
			middleware.HeaderCorrelationID,
			telemetry.HeaderTraceID,
		},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	if slices.Contains(cfg.AllowOrigins, "*") {
		out.AllowAllOrigins = true
	} else {
		out.AllowOrigins = cfg.AllowOrigins
	}

	return out
}

// NewDefaultRouterConfig creates a RouterConfig with sensible defaults.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	cfg *config.Config,
	translator *i18n.Translator,
	healthHandler *handlers.HealthHandler,
) RouterConfig {
	return RouterConfig{
		Logger:           logger,
		ServiceName:      cfg.App.Name,
		Translator:       translator,
		MaxErrorBodySize: cfg.I18n.MaxErrorBodySize,
		AuthConfig:       &cfg.Auth,
		Admission:        cfg.Admission,
		CORS:             cfg.CORS,
		Compression:      cfg.Compression,
		Timeout:          cmp.Or(cfg.Server.RequestTimeout, DefaultRequestTimeout),
		HealthHandler:    healthHandler,
	}
}
