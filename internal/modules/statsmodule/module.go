package statsmodule

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shaflix/shaflix/internal/apiroutes"
	"github.com/shaflix/shaflix/internal/database"
	"github.com/shaflix/shaflix/internal/events"
	"github.com/shaflix/shaflix/internal/logger"
	"github.com/shaflix/shaflix/internal/modules/authmodule"
	"github.com/shaflix/shaflix/internal/modules/modulemanager"
)

// Module represents the User Stats module
type Module struct {
	id          string
	name        string
	version     string
	core        bool
	initialized bool
	db          *gorm.DB
}

// Auto-register the module when imported
func init() {
	Register()
}

// Register registers this module with the module system
func Register() {
	statsModule := &Module{
		id:      "system.stats",
		name:    "User Stats",
		version: "1.0.0",
		core:    true,
	}
	modulemanager.Register(statsModule)
}

// ID returns the module ID
func (m *Module) ID() string {
	return m.id
}

// Name returns the module name
func (m *Module) Name() string {
	return m.name
}

// Core returns whether this is a core module
func (m *Module) Core() bool {
	return m.core
}

// Migrate performs any pending migrations
func (m *Module) Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&database.UserStats{}); err != nil {
		return fmt.Errorf("failed to migrate stats schema: %w", err)
	}
	return nil
}

// Init initializes the stats module
func (m *Module) Init() error {
	m.db = database.GetDB()

	// Seed a zeroed stats row whenever the auth bridge creates a user
	if bus := events.GetGlobalEventBus(); bus != nil {
		filter := events.EventFilter{Types: []events.EventType{events.EventUserCreated}}
		_, err := bus.Subscribe(context.Background(), filter, m.onUserCreated)
		if err != nil {
			logger.Warn("Stats module could not subscribe to user events: %v", err)
		}
	}

	m.initialized = true
	logger.Info("Stats module initialized")
	return nil
}

// onUserCreated seeds the stats row for a freshly created user
func (m *Module) onUserCreated(event events.Event) error {
	userID, ok := userIDFromEventData(event.Data)
	if !ok {
		return fmt.Errorf("stats: user.created event without user_id")
	}
	return InitializeUserStats(m.db, userID)
}

// userIDFromEventData tolerates both in-process uint payloads and
// JSON-roundtripped float64 ones
func userIDFromEventData(data map[string]interface{}) (uint, bool) {
	switch v := data["user_id"].(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

// RegisterRoutes registers the stats module API routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/users/me/stats", authmodule.RequireAuth(), m.getMyStats)

	apiroutes.Register("/api/users/me/stats", "GET", "Denormalized per-user counters.")
}
