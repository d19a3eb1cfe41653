// Package diarymodule manages dated viewing logs with ratings, reviews,
// and tags.
package diarymodule

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shaflix/shaflix/internal/apiroutes"
	"github.com/shaflix/shaflix/internal/database"
	"github.com/shaflix/shaflix/internal/logger"
	"github.com/shaflix/shaflix/internal/modules/authmodule"
	"github.com/shaflix/shaflix/internal/modules/catalogmodule"
	"github.com/shaflix/shaflix/internal/modules/modulemanager"
)

// Module represents the Diary module
type Module struct {
	id          string
	name        string
	version     string
	core        bool
	initialized bool
	db          *gorm.DB

	cache *catalogmodule.MovieCache
}

// Auto-register the module when imported
func init() {
	Register()
}

// Register registers this module with the module system
func Register() {
	diaryModule := &Module{
		id:      "system.diary",
		name:    "Diary",
		version: "1.0.0",
		core:    true,
	}
	modulemanager.Register(diaryModule)
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
	if err := db.AutoMigrate(&database.DiaryEntry{}); err != nil {
		return fmt.Errorf("failed to migrate diary schema: %w", err)
	}
	return nil
}

// Init initializes the diary module
func (m *Module) Init() error {
	m.db = database.GetDB()
	m.cache = catalogmodule.GetCache()
	m.initialized = true
	logger.Info("Diary module initialized")
	return nil
}

// RegisterRoutes registers the diary module API routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	diaryGroup := router.Group("/api/diary", authmodule.RequireAuth())
	{
		diaryGroup.GET("", m.listEntries)
		diaryGroup.POST("", m.createEntry)
		diaryGroup.PATCH("/:id", m.updateEntry)
		diaryGroup.DELETE("/:id", m.deleteEntry)
	}

	apiroutes.Register("/api/diary", "GET", "Lists the user's diary entries.")
	apiroutes.Register("/api/diary", "POST", "Logs a dated viewing.")
	apiroutes.Register("/api/diary/:id", "PATCH", "Patches rating, review, or tags of an entry.")
	apiroutes.Register("/api/diary/:id", "DELETE", "Deletes a diary entry.")
}
