// Package listmodule manages user-owned named lists of movies with
// explicit ordering and public/private visibility.
package listmodule

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

// Module represents the Lists module
type Module struct {
	id          string
	name        string
	version     string
	core        bool
	initialized bool
	db          *gorm.DB

	manager *Manager
}

// Auto-register the module when imported
func init() {
	Register()
}

// Register registers this module with the module system
func Register() {
	listModule := &Module{
		id:      "system.lists",
		name:    "Lists",
		version: "1.0.0",
		core:    true,
	}
	modulemanager.Register(listModule)
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
	if err := db.AutoMigrate(&database.CustomList{}, &database.CustomListMovie{}); err != nil {
		return fmt.Errorf("failed to migrate list schema: %w", err)
	}
	return nil
}

// Init initializes the lists module
func (m *Module) Init() error {
	m.db = database.GetDB()
	m.manager = NewManager(m.db, catalogmodule.GetCache())
	m.initialized = true
	logger.Info("Lists module initialized")
	return nil
}

// RegisterRoutes registers the lists module API routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	listGroup := router.Group("/api/lists")
	{
		listGroup.GET("", authmodule.RequireAuth(), m.listLists)
		listGroup.POST("", authmodule.RequireAuth(), m.createList)
		// Public lists are readable without a credential
		listGroup.GET("/:id", authmodule.OptionalAuth(), m.getList)
		listGroup.PATCH("/:id", authmodule.RequireAuth(), m.updateList)
		listGroup.DELETE("/:id", authmodule.RequireAuth(), m.deleteList)
	}

	apiroutes.Register("/api/lists", "GET", "Lists the user's custom lists.")
	apiroutes.Register("/api/lists", "POST", "Creates an empty custom list.")
	apiroutes.Register("/api/lists/:id", "GET", "Returns list metadata and ordered movies.")
	apiroutes.Register("/api/lists/:id", "PATCH", "Patches metadata and applies one membership operation.")
	apiroutes.Register("/api/lists/:id", "DELETE", "Deletes a list and its membership rows.")
}

// GetManager exposes the list manager for other modules
func (m *Module) GetManager() *Manager {
	return m.manager
}
