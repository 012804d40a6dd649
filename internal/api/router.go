package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/marine-watch/backend/internal/api/controllers"
	"github.com/marine-watch/backend/internal/api/middleware"
	"github.com/marine-watch/backend/internal/config"
	"github.com/marine-watch/backend/internal/db"
	"github.com/marine-watch/backend/internal/services"
	"github.com/marine-watch/backend/internal/utils"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router manages the API routes and controllers
type Router struct {
	engine                 *gin.Engine
	logger                 *utils.Logger
	config                 *config.Config
	serviceProvider        *services.ServiceProvider
	db                     *db.Database
	apiV1                  *gin.RouterGroup
	metricsController      *controllers.MetricsController
	speciesController      *controllers.SpeciesController
	fisheriesController    *controllers.FisheriesController
	oceanController        *controllers.OceanController
	alertsController       *controllers.AlertsController
	notificationController *controllers.NotificationController
}

// NewRouter creates a new Router instance
func NewRouter(
	config *config.Config,
	logger *utils.Logger,
	db *db.Database,
	serviceProvider *services.ServiceProvider,
) *Router {
	// Set Gin mode based on environment
	if config.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Use the logger and recovery middleware
	engine.Use(gin.Recovery())
	engine.Use(middleware.LoggingMiddleware(logger))

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Authorization", "Content-Type", "Origin"}
	engine.Use(cors.New(corsConfig))

	return &Router{
		engine:          engine,
		logger:          logger.Named("router"),
		config:          config,
		serviceProvider: serviceProvider,
		db:              db,
	}
}

// SetupRoutes configures all API routes
func (r *Router) SetupRoutes() {
	// Health check endpoint
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// API version group - all main API routes are under /api/v1
	r.apiV1 = r.engine.Group("/api/v1")

	// Setup controllers against the shared services
	r.metricsController = controllers.NewMetricsController(
		r.serviceProvider.GetMetricsService(),
		r.serviceProvider.GetSustainabilityService(),
		r.logger,
	)
	r.speciesController = controllers.NewSpeciesController(r.serviceProvider.GetSpeciesService(), r.logger)
	r.fisheriesController = controllers.NewFisheriesController(r.serviceProvider.GetFisheriesService(), r.logger)
	r.oceanController = controllers.NewOceanController(r.serviceProvider.GetOceanService(), r.logger)
	r.alertsController = controllers.NewAlertsController(r.serviceProvider.GetAlertRuleService(), r.logger)
	r.notificationController = controllers.NewNotificationController(r.serviceProvider.GetNotificationService(), r.logger)

	// Register metrics and biodiversity routes
	r.metricsController.RegisterRoutes(r.apiV1)

	// Group for species endpoints
	speciesRoutes := r.apiV1.Group("/species")
	r.speciesController.RegisterRoutes(speciesRoutes)

	// Group for fisheries endpoints
	fisheriesRoutes := r.apiV1.Group("/fisheries")
	r.fisheriesController.RegisterRoutes(fisheriesRoutes)

	// Group for ocean endpoints
	oceanRoutes := r.apiV1.Group("/ocean")
	r.oceanController.RegisterRoutes(oceanRoutes)

	// Group for alert endpoints
	alertRoutes := r.apiV1.Group("/alerts")
	r.alertsController.RegisterRoutes(alertRoutes)

	// Websocket notifications
	wsRoutes := r.engine.Group("/ws")
	r.notificationController.RegisterRoutes(wsRoutes)

	// Add Swagger documentation if not in production
	if !r.config.Server.IsProduction() {
		r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.logger.Info("API routes setup completed")
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
