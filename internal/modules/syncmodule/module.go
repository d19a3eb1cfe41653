// Package syncmodule replays a client-side snapshot of a user's data in one
// request, section by section.
package syncmodule

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shaflix/shaflix/internal/apiroutes"
	"github.com/shaflix/shaflix/internal/database"
	"github.com/shaflix/shaflix/internal/logger"
	"github.com/shaflix/shaflix/internal/modules/authmodule"
	"github.com/shaflix/shaflix/internal/modules/catalogmodule"
	"github.com/shaflix/shaflix/internal/modules/collectionsmodule"
	"github.com/shaflix/shaflix/internal/modules/modulemanager"
)

// Module represents the Sync module
type Module struct {
	id          string
	name        string
	version     string
	core        bool
	initialized bool
	db          *gorm.DB

	importer *Importer
}

// Auto-register the module when imported
func init() {
	Register()
}

// Register registers this module with the module system
func Register() {
	syncModule := &Module{
		id:      "system.sync",
		name:    "Sync",
		version: "1.0.0",
		core:    true,
	}
	modulemanager.Register(syncModule)
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

// Migrate performs any pending migrations. Sync writes into tables owned
// by the other modules and has no schema of its own.
func (m *Module) Migrate(db *gorm.DB) error {
	return nil
}

// Init initializes the sync module
func (m *Module) Init() error {
	m.db = database.GetDB()

	// Module init order is not fixed, so the collections store may not be
	// up yet; build an equivalent one in that case.
	store := collectionsmodule.GetStore()
	if store == nil {
		store = collectionsmodule.NewStore(m.db, catalogmodule.GetCache())
	}
	m.importer = NewImporter(m.db, catalogmodule.GetCache(), store)
	m.initialized = true
	logger.Info("Sync module initialized")
	return nil
}

// RegisterRoutes registers the sync module API routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/sync", authmodule.RequireAuth(), m.runSync)

	apiroutes.Register("/api/sync", "POST", "Imports a bulk snapshot of the user's collections.")
}
