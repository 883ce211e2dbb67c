package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/humidity-adviser/internal/domain"
	"github.com/couchcryptid/humidity-adviser/internal/scenario"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// JobRunner runs a simulation job to completion.
type JobRunner interface {
	Run(ctx context.Context, job domain.SimulationJob) (domain.SimulationResult, error)
}

// Dependencies are the services the API routes call into.
type Dependencies struct {
	Resolver   domain.AddressResolver
	Forecaster domain.Forecaster
	Scenarios  *scenario.Registry
	Runner     JobRunner
	Ready      sharedobs.ReadinessChecker
}

// Server exposes the humidity API next to health, readiness, and metrics
// endpoints.
type Server struct {
	deps       Dependencies
	engine     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates the gin engine and registers every route.
func NewServer(addr string, deps Dependencies, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	s := &Server{
		deps:   deps,
		engine: engine,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      engine,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", gin.WrapF(sharedobs.LivenessHandler()))
	s.engine.GET("/readyz", gin.WrapF(sharedobs.ReadinessHandler(s.deps.Ready)))
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.engine.Group("/v1")
	v1.GET("/geocode", s.handleGeocode)
	v1.GET("/reverse", s.handleReverse)
	v1.GET("/forecast", s.handleForecast)
	v1.GET("/current", s.handleCurrent)
	v1.GET("/conditions", s.handleConditions)
	v1.GET("/scenarios", s.handleListScenarios)
	v1.GET("/scenarios/:name", s.handleScenario)
	v1.POST("/simulate", s.handleSimulate)
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// AlwaysReady is the readiness checker used when no background pipeline runs.
type AlwaysReady struct{}

func (AlwaysReady) CheckReadiness(context.Context) error { return nil }

// ServeHTTP delegates to the gin engine, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}
