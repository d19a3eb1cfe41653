// This file contains the core route definitions; feature routes are
// registered by their owning modules.
package server

import (
	"github.com/gin-gonic/gin"

	"github.com/shaflix/shaflix/internal/apiroutes"
	"github.com/shaflix/shaflix/internal/modules/modulemanager"
	"github.com/shaflix/shaflix/internal/server/handlers"
)

// setupRoutes configures the core routes and hands the router to the modules
func setupRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		setupHealthRoutes(api)
		setupEventRoutes(api)
	}

	// Register module routes
	modulemanager.RegisterRoutes(r)

	// Root /api discovery endpoint
	r.GET("/api", handlers.ApiRootHandler)
}

// setupHealthRoutes configures health check and status endpoints
func setupHealthRoutes(api *gin.RouterGroup) {
	api.GET("/health", handlers.HandleHealthCheck)
	apiroutes.Register(api.BasePath()+"/health", "GET", "System health check.")

	api.GET("/db-status", handlers.HandleDBStatus)
	apiroutes.Register(api.BasePath()+"/db-status", "GET", "Database connection status.")

	api.GET("/db-health", handlers.HandleDatabaseHealth)
	apiroutes.Register(api.BasePath()+"/db-health", "GET", "Database health check with connection pool metrics.")
}

// setupEventRoutes configures the event history endpoints
func setupEventRoutes(api *gin.RouterGroup) {
	if systemEventBus == nil {
		return
	}

	eventsHandler := handlers.NewEventsHandler(systemEventBus)
	eventsGroup := api.Group("/events")
	{
		eventsGroup.GET("", eventsHandler.GetEvents)
		apiroutes.Register(eventsGroup.BasePath(), "GET", "List recorded events.")

		eventsGroup.GET("/stats", eventsHandler.GetEventStats)
		apiroutes.Register(eventsGroup.BasePath()+"/stats", "GET", "Get statistics about recorded events.")
	}
}
