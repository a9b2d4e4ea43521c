// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"carbonyx/internal/domain/emissions"
	"carbonyx/internal/infrastructure/http/v1/handlers"
	"carbonyx/internal/infrastructure/http/v1/middleware"
	"carbonyx/internal/infrastructure/metrics"
	"carbonyx/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	Reports handlers.ReportBuilder
	Factors handlers.FactorService

	// Ledger enables the recording endpoints when set
	Ledger *emissions.Ledger

	// Ping backs the readiness probe
	Ping handlers.PingFunc

	// Metrics and Gatherer are optional; /metrics is served only with a Gatherer
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.GinMiddleware())
	}

	healthHandler := handlers.NewHealthHandler(cfg.Ping)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.JWTValidator))
	{
		registerEmissionRoutes(v1, cfg)
		registerFactorRoutes(v1, cfg)
	}

	return router
}

func registerEmissionRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewEmissionsHandler(cfg.Reports, cfg.Ledger)

	group := rg.Group("/emissions")
	group.GET("/report", h.Report)
	group.GET("/periods", h.Periods)
	if h.CanRecord() {
		group.POST("/activities", h.RecordActivity)
		group.POST("/offsets", h.RecordOffset)
	}
}

func registerFactorRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewFactorsHandler(cfg.Factors)

	group := rg.Group("/factors")
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.POST("", h.Create)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}
