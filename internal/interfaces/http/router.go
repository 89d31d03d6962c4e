// Package http exposes the status server: liveness, chunk status and
// Prometheus metrics.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Antecedent-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/Antecedent-Intelligence/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree. Nil handlers leave their routes unmounted.
type RouterConfig struct {
	Mode string // gin mode; "release" when empty

	HealthHandler *handlers.HealthHandler
	StatusHandler *handlers.StatusHandler

	Metrics *prom.AnalysisMetrics
	Logger  logging.Logger
	Logging middleware.LoggingConfig
}

// NewRouter builds the gin engine.
func NewRouter(cfg RouterConfig) *gin.Engine {
	mode := cfg.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger, cfg.Logging))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Health)
	}
	if cfg.StatusHandler != nil {
		r.GET("/status", cfg.StatusHandler.Status)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Collector().Handler()))
	}
	return r
}

//Personal.AI order the ending
