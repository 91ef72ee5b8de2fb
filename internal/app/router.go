package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"transit/internal/handler"
	"transit/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TransitHandler *handler.TransitHandler
	DriverHandler  *handler.DriverHandler
	ClientHandler  *handler.ClientHandler
	CarTypeHandler *handler.CarTypeHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	if deps.RedisClient != nil {
		router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics.
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Client routes.
		clients := v1.Group("/clients")
		{
			clients.POST("/register", deps.ClientHandler.Register)
			clients.GET("/:id", deps.ClientHandler.Get)
		}

		// Transit routes.
		transits := v1.Group("/transits")
		{
			transits.POST("", deps.TransitHandler.Create)
			transits.GET("", deps.TransitHandler.GetAll)
			transits.GET("/:id", deps.TransitHandler.Get)
			transits.POST("/:id/publish", deps.TransitHandler.Publish)
			transits.POST("/:id/accept", deps.TransitHandler.Accept)
			transits.POST("/:id/reject", deps.TransitHandler.Reject)
			transits.POST("/:id/start", deps.TransitHandler.Start)
			transits.POST("/:id/complete", deps.TransitHandler.Complete)
			transits.POST("/:id/cancel", deps.TransitHandler.Cancel)
			transits.POST("/:id/change-pickup", deps.TransitHandler.ChangePickup)
			transits.POST("/:id/change-destination", deps.TransitHandler.ChangeDestination)
			transits.GET("/:id/invoice", deps.TransitHandler.GetInvoice)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.POST("/:id/position", deps.DriverHandler.UpdatePosition)
			drivers.POST("/:id/status", deps.DriverHandler.SetStatus)
			drivers.POST("/:id/login", deps.DriverHandler.LogIn)
			drivers.POST("/:id/logout", deps.DriverHandler.LogOut)
			drivers.PUT("/:id/fee", deps.DriverHandler.SetFee)
		}

		// Car class registry routes.
		carTypes := v1.Group("/car-types")
		{
			carTypes.POST("", deps.CarTypeHandler.Register)
			carTypes.GET("/active", deps.CarTypeHandler.ActiveClasses)
			carTypes.POST("/:class/activate", deps.CarTypeHandler.Activate)
			carTypes.POST("/:class/deactivate", deps.CarTypeHandler.Deactivate)
		}
	}

	return router
}
