// Package api exposes InvestBoard over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/Aidin1998/investboard/api/handlers"
	"github.com/Aidin1998/investboard/api/responses"
	"github.com/Aidin1998/investboard/internal/catalog"
	"github.com/Aidin1998/investboard/internal/config"
	"github.com/Aidin1998/investboard/internal/investments"
	"github.com/Aidin1998/investboard/internal/profiles"
	"github.com/Aidin1998/investboard/internal/simulations"
	"github.com/Aidin1998/investboard/internal/telemetry"
	"github.com/Aidin1998/investboard/pkg/validation"
)

// Services are the domain services the API serves
type Services struct {
	Profiles    profiles.ProfileService
	Catalog     catalog.CatalogService
	Investments investments.InvestmentService
	Simulations simulations.SimulationService
	Telemetry   *telemetry.Recorder
	// Health reports whether storage is reachable
	Health func(ctx context.Context) error
}

// Server represents the API server
type Server struct {
	router   *gin.Engine
	logger   *zap.Logger
	cfg      *config.Config
	services Services
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterDecimalRules(v)
	}
}

// NewServer creates a new API server with injected services
func NewServer(logger *zap.Logger, cfg *config.Config, services Services) *Server {
	server := &Server{
		logger:   logger,
		cfg:      cfg,
		services: services,
	}

	router := gin.New()

	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	router.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	router.Use(traceIDMiddleware())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Trace-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Trace-ID"},
		MaxAge:        12 * time.Hour,
	}
	if allowsAnyOrigin(cfg.Server.AllowedOrigins) {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	if services.Telemetry != nil {
		router.Use(services.Telemetry.Middleware())
	}
	if cfg.RateLimit.Enabled {
		router.Use(newIPLimiter(cfg.RateLimit).middleware())
	}

	router.NoRoute(func(c *gin.Context) {
		responses.NotFound(c, "route not found")
	})

	server.router = router
	server.registerRoutes()
	return server
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return len(origins) == 0
}

// Router returns the internal Gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

// HTTPServer wraps the router with the configured timeouts
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	public := s.router.Group("/api/v1")
	{
		public.GET("/metrics", gin.WrapH(promhttp.Handler()))
		public.GET("/health", s.healthCheck)
	}

	protected := s.router.Group("/api/v1")
	if s.cfg.Auth.Enabled {
		protected.Use(jwtMiddleware(s.cfg.Auth, s.logger))
	}

	profileHandler := handlers.NewProfileHandler(s.services.Profiles, s.logger)
	protected.GET("/profile-types", profileHandler.ListProfileTypes)
	protected.GET("/profiles", profileHandler.ListClients)
	protected.GET("/profiles/:clientId", profileHandler.GetClient)
	protected.POST("/profiles", profileHandler.CreateClient)
	protected.PUT("/profiles", profileHandler.ChangeProfile)

	productHandler := handlers.NewProductHandler(s.services.Catalog, s.logger)
	protected.GET("/products", productHandler.ListProducts)
	protected.GET("/products/:productId", productHandler.GetProduct)
	protected.GET("/recommended-products/:profileId", productHandler.RecommendedForProfile)
	protected.GET("/clients/:clientId/recommended-products", productHandler.RecommendedForClient)

	investmentHandler := handlers.NewInvestmentHandler(s.services.Investments, s.logger)
	protected.GET("/investments/:clientId", investmentHandler.ListByClient)
	protected.GET("/investments/:clientId/:investmentId", investmentHandler.Get)
	protected.POST("/investments", investmentHandler.Record)

	simulationHandler := handlers.NewSimulationHandler(s.services.Simulations, s.logger)
	protected.POST("/simulate-investment", simulationHandler.ByCategory)
	protected.POST("/simulate-investment/product", simulationHandler.ByProduct)
	protected.GET("/simulations", simulationHandler.List)
	protected.GET("/simulations/by-product-day", simulationHandler.ByProductDay)

	if s.services.Telemetry != nil {
		telemetryHandler := handlers.NewTelemetryHandler(s.services.Telemetry, s.logger)
		protected.GET("/telemetry", telemetryHandler.Summary)
	}
}

// healthCheck handles the health check endpoint
func (s *Server) healthCheck(c *gin.Context) {
	if s.services.Health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.services.Health(ctx); err != nil {
			s.logger.Warn("Health check failed", zap.Error(err))
			responses.ServiceUnavailable(c, "storage unreachable")
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}
