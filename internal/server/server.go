// Package server provides HTTP server functionality for the Shaflix
// application.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shaflix/shaflix/internal/apiroutes"
	"github.com/shaflix/shaflix/internal/config"
	"github.com/shaflix/shaflix/internal/database"
	"github.com/shaflix/shaflix/internal/events"
	"github.com/shaflix/shaflix/internal/logger"
	"github.com/shaflix/shaflix/internal/modules/modulemanager"

	// Import all modules to trigger their registration
	_ "github.com/shaflix/shaflix/internal/modules/authmodule"
	_ "github.com/shaflix/shaflix/internal/modules/catalogmodule"
	_ "github.com/shaflix/shaflix/internal/modules/collectionsmodule"
	_ "github.com/shaflix/shaflix/internal/modules/diarymodule"
	_ "github.com/shaflix/shaflix/internal/modules/listmodule"
	_ "github.com/shaflix/shaflix/internal/modules/statsmodule"
	_ "github.com/shaflix/shaflix/internal/modules/syncmodule"
)

var systemEventBus events.EventBus

var moduleInitialized bool

// SetupRouter configures and returns the main router
func SetupRouter() *gin.Engine {
	r := gin.Default()

	cfg := config.Get()
	if cfg.Server.EnableCORS {
		r.Use(corsMiddleware(cfg.Security.AllowedOrigins))
	}

	// Initialize event bus system
	if err := initializeEventBus(); err != nil {
		log.Printf("Failed to initialize event bus: %v", err)
	}

	// Initialize module system
	if err := initializeModules(); err != nil {
		log.Printf("Failed to initialize modules: %v", err)
	}

	apiroutes.Register("/api", "GET", "Lists all available API endpoints.")

	setupRoutes(r)

	return r
}

// corsMiddleware sets CORS headers. An empty origin list allows any origin;
// otherwise the request Origin must match an entry to get CORS headers at all.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case len(allowedOrigins) == 0:
			c.Header("Access-Control-Allow-Origin", "*")
		case originAllowed(allowedOrigins, origin):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, o := range allowed {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// DisableModule disables a specific module (for development/testing only)
func DisableModule(moduleID string) {
	if moduleInitialized {
		logger.Warn("Attempting to disable module %s after modules have been initialized", moduleID)
		return
	}

	modulemanager.DisableModule(moduleID)
	logger.Info("Module disabled for development: %s", moduleID)
}

// initializeModules sets up the module system and loads all modules
func initializeModules() error {
	if moduleInitialized {
		return nil
	}

	db := database.GetDB()

	// Register the event bus globally so modules can access it
	events.SetGlobalEventBus(systemEventBus)

	if err := modulemanager.LoadAll(db); err != nil {
		return err
	}

	moduleInitialized = true
	logModuleStatus()

	return nil
}

// logModuleStatus logs the loaded modules
func logModuleStatus() {
	modules := modulemanager.ListModules()

	log.Printf("Module system initialized with %d modules", len(modules))

	log.Printf("┌────────────────────────────────────────────────────────────────┐")
	log.Printf("│ %-20s │ %-25s │ %-8s │", "MODULE NAME", "MODULE ID", "CORE")
	log.Printf("├────────────────────────────────────────────────────────────────┤")

	for _, module := range modules {
		coreStatus := "No"
		if module.Core() {
			coreStatus = "Yes"
		}
		log.Printf("│ %-20s │ %-25s │ %-8s │",
			truncate(module.Name(), 20),
			truncate(module.ID(), 25),
			coreStatus)
	}

	log.Printf("└────────────────────────────────────────────────────────────────┘")
}

// truncate shortens a string to the given length, adding ... if needed
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// initializeEventBus sets up the system-wide event bus
func initializeEventBus() error {
	busConfig := events.DefaultEventBusConfig()
	busConfig.BufferSize = 1000

	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized before event bus")
	}

	// The event log table belongs to no module, so the bus owns its migration
	if err := db.AutoMigrate(&events.SystemEvent{}); err != nil {
		return fmt.Errorf("failed to migrate event log schema: %w", err)
	}
	storage := events.NewDatabaseEventStorage(db)

	systemEventBus = events.NewEventBus(busConfig, &eventLogger{}, storage)

	ctx := context.Background()
	if err := systemEventBus.Start(ctx); err != nil {
		log.Printf("Failed to start event bus: %v", err)
		return err
	}

	log.Println("System event bus initialized and started")
	return nil
}

// eventLogger implements the events.EventLogger interface
type eventLogger struct{}

func (l *eventLogger) Info(msg string, args ...interface{}) { log.Printf("[EVENT-INFO] "+msg, args...) }
func (l *eventLogger) Error(msg string, args ...interface{}) {
	log.Printf("[EVENT-ERROR] "+msg, args...)
}
func (l *eventLogger) Warn(msg string, args ...interface{}) { log.Printf("[EVENT-WARN] "+msg, args...) }
func (l *eventLogger) Debug(msg string, args ...interface{}) {
	log.Printf("[EVENT-DEBUG] "+msg, args...)
}

// GetEventBus returns the system event bus instance
func GetEventBus() events.EventBus {
	return systemEventBus
}

// ShutdownEventBus gracefully shuts down the event bus
func ShutdownEventBus() error {
	if systemEventBus == nil {
		return nil
	}
	log.Println("INFO: Shutting down event bus...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return systemEventBus.Stop(ctx)
}
